package ledger

import (
	"time"

	"github.com/certen/scenario-ledger/pkg/crash"
	"github.com/certen/scenario-ledger/pkg/ids"
	"github.com/certen/scenario-ledger/pkg/txtree"
	"github.com/certen/scenario-ledger/pkg/value"
)

// PassTime returns a new ledger with CurrentTime advanced by deltaMicros
// microseconds and a PassTimeStep appended. A negative delta moves the
// clock backwards; neither this function nor the scenario file loader
// rejects one.
func PassTime(l *Ledger, deltaMicros int64) *Ledger {
	stepID := l.NextStepID
	return &Ledger{
		CurrentTime: l.CurrentTime.Add(time.Duration(deltaMicros) * time.Microsecond),
		NextStepID:  stepID + 1,
		StepLog:     append(append([]Step(nil), l.StepLog...), PassTimeStep{ID: stepID, DeltaMicros: deltaMicros}),
		Data:        l.Data,
	}
}

// InsertAssertMustFail records that actor's submission at l's current
// time was asserted (and, by the caller having reached this call,
// observed) to fail.
func InsertAssertMustFail(l *Ledger, actor txtree.Party, location *txtree.Location) *Ledger {
	stepID := l.NextStepID
	step := AssertMustFailStep{ID: stepID, Actor: actor, Location: location, At: l.CurrentTime}
	return &Ledger{
		CurrentTime: l.CurrentTime,
		NextStepID:  stepID + 1,
		StepLog:     append(append([]Step(nil), l.StepLog...), step),
		Data:        l.Data,
	}
}

// View decides which contracts are visible to a lookup (spec.md §4.5):
// the operator view sees every contract regardless of its observer
// relation, while a participant view is restricted to contracts that
// party is a stakeholder of or observes.
type View interface {
	visible(info *NodeInfo, create txtree.Create) bool
}

type operatorView struct{}

func (operatorView) visible(*NodeInfo, txtree.Create) bool { return true }

// OperatorView returns the unrestricted view.
func OperatorView() View { return operatorView{} }

type participantView struct{ party txtree.Party }

func (v participantView) visible(info *NodeInfo, create txtree.Create) bool {
	if create.Stakeholders.Contains(v.party) {
		return true
	}
	_, observes := info.ObservingSince[v.party]
	return observes
}

// ParticipantView returns the view restricted to what party may see.
func ParticipantView(party txtree.Party) View { return participantView{party: party} }

// LookupOutcome names the six-way classification spec.md §4.5 assigns a
// global contract-id lookup.
type LookupOutcome int

const (
	LookupNotFound LookupOutcome = iota
	LookupNotFoundNonCreate
	LookupNotEffective
	LookupNotActive
	LookupNotVisible
	LookupOK
)

// LookupResult carries the outcome plus whichever fields are meaningful
// for it; fields irrelevant to Outcome are left zero.
type LookupResult struct {
	Outcome LookupOutcome

	// Populated on LookupNotEffective.
	EffectiveAt time.Time
	// Populated on LookupNotEffective, LookupNotActive, LookupNotVisible, LookupOK.
	Template txtree.TemplateID

	// Populated on LookupNotActive.
	Consumer ids.EventID

	// Populated on LookupNotVisible.
	Observers txtree.PartySet

	// Populated on LookupOK.
	ContractID   value.ContractID
	Instance     value.Value
	Stakeholders txtree.PartySet
}

// LookupGlobalContract implements spec.md §4.5's classification: a
// contract-id unknown to the ledger is not-found; one whose indexed
// event is not a Create is not-found (the producer never indexes
// anything else, so this branch only guards the invariant); one not yet
// effective at asOf is not-effective; one the view cannot see is
// not-visible (even if consumed); one already consumed is not-active;
// otherwise ok.
func LookupGlobalContract(l *Ledger, view View, asOf time.Time, coid value.ContractID) LookupResult {
	eventID, ok := l.Data.ContractToEvent[coid]
	if !ok {
		return LookupResult{Outcome: LookupNotFound}
	}
	info, ok := l.Data.NodeInfo[eventID]
	if !ok {
		crash.Now("contract %s indexed at %s but node-info missing", coid, eventID)
	}
	create, ok := info.Node.(txtree.Create)
	if !ok {
		return LookupResult{Outcome: LookupNotFoundNonCreate}
	}
	if info.EffectiveAt.After(asOf) {
		return LookupResult{Outcome: LookupNotEffective, EffectiveAt: info.EffectiveAt, Template: create.Template}
	}
	// Visibility is checked before consumption: a party that cannot see a
	// contract at all must not learn, via not-active, that it ever
	// existed and was later consumed (spec.md §8 scenario 1: a
	// non-stakeholder, non-observing party gets not-visible even though
	// the contract is, in fact, already consumed).
	if !view.visible(info, create) {
		return LookupResult{Outcome: LookupNotVisible, Template: create.Template, Observers: info.Observers()}
	}
	if info.Consumer != nil {
		return LookupResult{Outcome: LookupNotActive, Template: create.Template, Consumer: *info.Consumer}
	}
	return LookupResult{
		Outcome:      LookupOK,
		ContractID:   coid,
		Instance:     create.Instance,
		Stakeholders: create.Stakeholders,
		Template:     create.Template,
	}
}
