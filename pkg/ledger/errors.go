// Copyright 2025 Certen Protocol
//
// Package ledger provides sentinel errors for ledger operations.
// F.4 remediation: Explicit errors instead of nil, nil returns

package ledger

import (
	"errors"
	"fmt"

	"github.com/certen/scenario-ledger/pkg/authz"
	"github.com/certen/scenario-ledger/pkg/ids"
	"github.com/certen/scenario-ledger/pkg/txtree"
)

// Sentinel errors for ledger operations
var (
	// ErrFailedAuthorizations is the sentinel AuthorizationError unwraps
	// to; match against it with errors.Is.
	ErrFailedAuthorizations = errors.New("transaction rejected: authorization failures")

	// ErrUniqueKeyViolation is the sentinel KeyViolationError unwraps to.
	ErrUniqueKeyViolation = errors.New("transaction rejected: active key already exists")
)

// AuthorizationError is returned by CommitTransaction when the
// enrichment pass recorded one or more authorization failures, one per
// offending local-node-id in the submitted transaction.
type AuthorizationError struct {
	Failures map[ids.LocalNodeID]authz.Failure
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s: %d node(s)", ErrFailedAuthorizations, len(e.Failures))
}

func (e *AuthorizationError) Unwrap() error { return ErrFailedAuthorizations }

// KeyViolationError is returned by CommitTransaction when a Create
// node's key is already held by another active contract.
type KeyViolationError struct {
	Template txtree.TemplateID
	Name     txtree.GlobalKeyName
}

func (e *KeyViolationError) Error() string {
	return fmt.Sprintf("%s: %s#%s", ErrUniqueKeyViolation, e.Template, e.Name)
}

func (e *KeyViolationError) Unwrap() error { return ErrUniqueKeyViolation }
