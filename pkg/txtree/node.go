// Package txtree models the input transaction forest (spec.md §3): an
// ordered sequence of root local-node-ids and a mapping from local-node-id
// to node, where a node is one of Create, Fetch, Exercise or LookupByKey.
package txtree

import (
	"github.com/certen/scenario-ledger/pkg/ids"
	"github.com/certen/scenario-ledger/pkg/value"
)

// TemplateID, ChoiceName and GlobalKeyName are opaque identifiers supplied
// by the caller.
type TemplateID string
type ChoiceName string
type GlobalKeyName string

// Location is an optional source location attached to a node for
// diagnostics. A nil *Location means "no location supplied".
type Location struct {
	Module string
	Line   int
}

// GlobalKey pairs a template-scoped key name with its maintainers. The
// key is identified by name only; it carries no key value.
type GlobalKey struct {
	Template    TemplateID
	Name        GlobalKeyName
	Maintainers PartySet
}

// KeyIdentity is the comparable projection of a GlobalKey used to index
// the ledger's active-keys map: maintainers are informational annotation
// on the key, not part of its identity, and PartySet (a map) is itself
// uncomparable, so only Template and Name participate.
type KeyIdentity struct {
	Template TemplateID
	Name     GlobalKeyName
}

// Identity returns k's comparable map key.
func (k GlobalKey) Identity() KeyIdentity {
	return KeyIdentity{Template: k.Template, Name: k.Name}
}

// Node is the sealed interface implemented by Create, Fetch, Exercise and
// LookupByKey. The unexported method prevents other packages from adding
// new variants — any addition must happen here and be handled by every
// exhaustive switch in pkg/authz and pkg/enrich (spec.md §9).
type Node interface {
	isNode()
}

// Create records a new contract instance.
type Create struct {
	ContractID   value.ContractID
	Template     TemplateID
	Signatories  PartySet
	Stakeholders PartySet
	Key          *GlobalKey // nil if the template has no key
	Instance     value.Value
	Location     *Location
}

func (Create) isNode() {}

// Fetch references an existing, presumed-active contract.
type Fetch struct {
	ContractID   value.ContractID
	Template     TemplateID
	Stakeholders PartySet
	Location     *Location
}

func (Fetch) isNode() {}

// Exercise invokes a choice on an existing contract, optionally
// consuming it, and may have children executed in its authorization
// and witness context.
type Exercise struct {
	TargetContractID             value.ContractID
	Template                     TemplateID
	Choice                       ChoiceName
	ActingParties                PartySet
	Signatories                  PartySet
	Stakeholders                 PartySet
	Consuming                    bool
	ControllersDifferFromActors  bool
	Children                     []ids.LocalNodeID
	Location                     *Location
}

func (Exercise) isNode() {}

// LookupByKey resolves a global key to a contract-id (possibly none).
type LookupByKey struct {
	Template    TemplateID
	Key         GlobalKey
	Maintainers PartySet
	Result      *value.ContractID // nil means the lookup was negative
	Location    *Location
}

func (LookupByKey) isNode() {}

// Transaction is the input forest: an ordered sequence of root
// local-node-ids and the local-node-id → node mapping.
type Transaction struct {
	Roots []ids.LocalNodeID
	Nodes map[ids.LocalNodeID]Node
}

// NodeAt looks up a node by local id, returning ok=false if absent. A
// missing node referenced during traversal is a fatal invariant
// violation at the caller (spec.md §7.2), not an expected error here.
func (t *Transaction) NodeAt(id ids.LocalNodeID) (Node, bool) {
	n, ok := t.Nodes[id]
	return n, ok
}
