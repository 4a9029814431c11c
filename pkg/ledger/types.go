package ledger

import (
	"time"

	"github.com/certen/scenario-ledger/pkg/ids"
	"github.com/certen/scenario-ledger/pkg/txtree"
	"github.com/certen/scenario-ledger/pkg/value"
)

// NodeInfo is the committed, event-id-addressed record spec.md §4.4 keeps
// per node: the node itself (as submitted; an Exercise's children,
// rewritten to event-ids, are held in Children), when it became
// effective, who consumed it (if anyone), who else has referenced it, and
// the per-party onset step of its observer relation.
type NodeInfo struct {
	Node        txtree.Node
	EventID     ids.EventID
	EffectiveAt time.Time
	Parent      *ids.EventID

	// Children holds the event-id-rewritten child list for an Exercise
	// node; nil for every other kind.
	Children []ids.EventID

	// Consumer is set once an Exercise node consumes the contract this
	// info describes (only meaningful when Node is a Create).
	Consumer *ids.EventID

	// ReferencedBy collects every event-id that fetched, exercised on, or
	// positively looked up this contract, including the consuming one.
	ReferencedBy map[ids.EventID]struct{}

	// ObservingSince is the per-party onset step for the observer
	// relation spec.md §4.4 step 4 builds: a party's entry is the step-id
	// of the FIRST commit that disclosed or divulged to it, never
	// overwritten by a later commit (monotonicity, spec.md §6).
	ObservingSince map[txtree.Party]ids.StepID
}

func newNodeInfo(eventID ids.EventID, node txtree.Node, effectiveAt time.Time, parent *ids.EventID) *NodeInfo {
	return &NodeInfo{
		Node:           node,
		EventID:        eventID,
		EffectiveAt:    effectiveAt,
		Parent:         parent,
		ReferencedBy:   make(map[ids.EventID]struct{}),
		ObservingSince: make(map[txtree.Party]ids.StepID),
	}
}

// clone returns a shallow copy of info safe to mutate independently of
// the original: ReferencedBy and ObservingSince get fresh maps, Children
// a fresh slice; Node and Consumer (value/pointer) are shared since
// neither is ever mutated in place.
func (info *NodeInfo) clone() *NodeInfo {
	c := *info
	c.ReferencedBy = make(map[ids.EventID]struct{}, len(info.ReferencedBy))
	for k := range info.ReferencedBy {
		c.ReferencedBy[k] = struct{}{}
	}
	c.ObservingSince = make(map[txtree.Party]ids.StepID, len(info.ObservingSince))
	for k, v := range info.ObservingSince {
		c.ObservingSince[k] = v
	}
	if info.Children != nil {
		c.Children = append([]ids.EventID(nil), info.Children...)
	}
	return &c
}

// Observers returns the parties currently in info's observer relation.
func (info *NodeInfo) Observers() txtree.PartySet {
	s := txtree.NewPartySet()
	for p := range info.ObservingSince {
		s[p] = struct{}{}
	}
	return s
}

// LedgerData is the committed state spec.md §4.1 describes: the active
// contract set, the active-key index, the contract-id → event-id index,
// and the per-event-id node-info map. Every field is a plain Go map;
// CommitTransaction never mutates the maps reachable from an existing
// Ledger value in place — see commit.go's copy-on-write discipline.
type LedgerData struct {
	ActiveContracts map[value.ContractID]struct{}
	ActiveKeys      map[txtree.KeyIdentity]value.ContractID
	ContractToEvent map[value.ContractID]ids.EventID
	NodeInfo        map[ids.EventID]*NodeInfo
}

func newLedgerData() *LedgerData {
	return &LedgerData{
		ActiveContracts: make(map[value.ContractID]struct{}),
		ActiveKeys:      make(map[txtree.KeyIdentity]value.ContractID),
		ContractToEvent: make(map[value.ContractID]ids.EventID),
		NodeInfo:        make(map[ids.EventID]*NodeInfo),
	}
}

// clone returns a shallow copy whose top-level maps are distinct from
// the receiver's (safe to mutate/insert/delete into without affecting
// the original), while NodeInfo values are shared pointers until a
// mutation clones the individual entry (see commit.go's referenceContract,
// consume and applyObservers).
func (d *LedgerData) clone() *LedgerData {
	n := &LedgerData{
		ActiveContracts: make(map[value.ContractID]struct{}, len(d.ActiveContracts)),
		ActiveKeys:      make(map[txtree.KeyIdentity]value.ContractID, len(d.ActiveKeys)),
		ContractToEvent: make(map[value.ContractID]ids.EventID, len(d.ContractToEvent)),
		NodeInfo:        make(map[ids.EventID]*NodeInfo, len(d.NodeInfo)),
	}
	for k := range d.ActiveContracts {
		n.ActiveContracts[k] = struct{}{}
	}
	for k, v := range d.ActiveKeys {
		n.ActiveKeys[k] = v
	}
	for k, v := range d.ContractToEvent {
		n.ContractToEvent[k] = v
	}
	for k, v := range d.NodeInfo {
		n.NodeInfo[k] = v
	}
	return n
}

// Step is the sealed interface over the three step kinds a scenario
// ledger's step-log may contain (spec.md §4.6).
type Step interface {
	isStep()
	StepID() ids.StepID
}

// CommitStep records one successfully committed transaction.
type CommitStep struct {
	ID        ids.StepID
	Committer txtree.Party
	Rich      *RichTransaction
}

func (s CommitStep) isStep()            {}
func (s CommitStep) StepID() ids.StepID { return s.ID }

// PassTimeStep records an advance of the ledger's current time.
type PassTimeStep struct {
	ID          ids.StepID
	DeltaMicros int64
}

func (s PassTimeStep) isStep()            {}
func (s PassTimeStep) StepID() ids.StepID { return s.ID }

// AssertMustFailStep records a scenario-level assertion that a submission
// was expected to, and did, fail authorization or commitment.
type AssertMustFailStep struct {
	ID       ids.StepID
	Actor    txtree.Party
	Location *txtree.Location
	At       time.Time
}

func (s AssertMustFailStep) isStep()            {}
func (s AssertMustFailStep) StepID() ids.StepID { return s.ID }

// RichTransaction is the committed, event-id-addressed transaction
// spec.md §4.4 produces: the tree's roots as ledger-global event-ids,
// paired with the disclosure and divulgence relations the enricher
// computed, now keyed the same way. It does not hold the nodes
// themselves, the committer or the authorization-failure map; the
// committed nodes (with Exercise children as event-ids) live in the
// ledger's NodeInfo map, and the committer in the enclosing CommitStep.
type RichTransaction struct {
	EffectiveAt              time.Time
	Location                 *txtree.Location
	Roots                    []ids.EventID
	ExplicitDisclosure       map[ids.EventID]txtree.PartySet
	LocalImplicitDisclosure  map[ids.EventID]txtree.PartySet
	GlobalImplicitDisclosure map[ids.EventID]txtree.PartySet
}

// Ledger is the immutable value spec.md §4.1 defines: the current time,
// the next step-id to be assigned, the full step log, and the committed
// ledger data. Every operation in this package takes a *Ledger and
// returns a NEW *Ledger; the receiver is never mutated (see commit.go).
type Ledger struct {
	CurrentTime time.Time
	NextStepID  ids.StepID
	StepLog     []Step
	Data        *LedgerData
}

// Initial returns the empty ledger at the given starting time, as
// spec.md §4.1 defines step-id 0 / an empty step-log / empty ledger data.
func Initial(startTime time.Time) *Ledger {
	return &Ledger{
		CurrentTime: startTime,
		NextStepID:  0,
		StepLog:     nil,
		Data:        newLedgerData(),
	}
}

// PtxEventID forms the event-id a local-node-id WOULD be assigned if
// committed as the next step — used by diagnostics and error messages
// about an in-flight, not-yet-committed transaction (spec.md §4.4).
func PtxEventID(l *Ledger, local ids.LocalNodeID) ids.EventID {
	return ids.NewEventID(l.NextStepID, local)
}
