// Package authz implements the per-node-kind authorization predicates of
// spec.md §4.2, evaluated against a dynamically evolving authorizer set.
//
// The authorization mode is a two-variant tagged type (DontAuthorize |
// Authorize(set)), grounded on the teacher's pluggable-scheme interface
// pattern in pkg/attestation/strategy: a small interface with named
// constructors rather than a boolean flag standing in for "is this mode
// active".
package authz

import "github.com/certen/scenario-ledger/pkg/txtree"

// Mode is either DontAuthorize (no checks are performed, the failure map
// stays empty) or Authorize(authorizers).
type Mode interface {
	// Authorizers returns the current authorizer set and ok=true when the
	// mode is Authorize. ok=false means DontAuthorize.
	Authorizers() (authorizers txtree.PartySet, ok bool)

	// WithAuthorizers returns a new mode of the same kind with the
	// authorizer set replaced — used by the enricher on entry to an
	// Exercise node. Under DontAuthorize this is a no-op.
	WithAuthorizers(authorizers txtree.PartySet) Mode
}

// DontAuthorize returns the mode under which no authorization check is
// ever performed.
func DontAuthorize() Mode { return dontAuthorize{} }

// Authorize returns the mode that checks every node against authorizers.
func Authorize(authorizers txtree.PartySet) Mode { return authorize{authorizers: authorizers} }

type dontAuthorize struct{}

func (dontAuthorize) Authorizers() (txtree.PartySet, bool) { return nil, false }
func (dontAuthorize) WithAuthorizers(txtree.PartySet) Mode { return dontAuthorize{} }

type authorize struct {
	authorizers txtree.PartySet
}

func (a authorize) Authorizers() (txtree.PartySet, bool) { return a.authorizers, true }
func (a authorize) WithAuthorizers(authorizers txtree.PartySet) Mode {
	return authorize{authorizers: authorizers}
}
