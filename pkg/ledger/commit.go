package ledger

import (
	"time"

	"github.com/certen/scenario-ledger/pkg/authz"
	"github.com/certen/scenario-ledger/pkg/crash"
	"github.com/certen/scenario-ledger/pkg/enrich"
	"github.com/certen/scenario-ledger/pkg/ids"
	"github.com/certen/scenario-ledger/pkg/metrics"
	"github.com/certen/scenario-ledger/pkg/txtree"
	"github.com/certen/scenario-ledger/pkg/value"
)

// CommitResult is the successful outcome of CommitTransaction: the new
// ledger value, the step-id just assigned, and the rich transaction
// committed under it.
type CommitResult struct {
	Ledger *Ledger
	StepID ids.StepID
	Rich   *RichTransaction
}

// CommitTransaction implements spec.md §4.4: it enriches tx under mode,
// rejects outright on any authorization failure, and otherwise walks the
// tree a second time in the same pre-order, rewriting local-node-ids to
// event-ids and applying each node's effect on the active-contract set,
// the active-key index and the per-node-info bookkeeping.
//
// On success it returns a non-nil *CommitResult and a nil error; l
// itself is never mutated. On rejection it returns (nil, err): the
// caller's existing *Ledger value is by construction already the
// unchanged "ledger after a failed commit". ErrFailedAuthorizations
// wraps one authz.Failure per offending local-node-id;
// ErrUniqueKeyViolation names the colliding key's template/name.
func CommitTransaction(
	l *Ledger,
	committer txtree.Party,
	effectiveAt time.Time,
	location *txtree.Location,
	tx *txtree.Transaction,
	mode authz.Mode,
) (*CommitResult, error) {
	result := enrich.Enrich(tx, mode)
	if len(result.FailedAuthorizations) > 0 {
		metrics.Commits.WithLabelValues("failed_authorizations").Inc()
		for _, f := range result.FailedAuthorizations {
			metrics.AuthorizationFailures.WithLabelValues(string(f.Tag)).Inc()
		}
		return nil, &AuthorizationError{Failures: result.FailedAuthorizations}
	}

	stepID := l.NextStepID
	data := l.Data.clone()
	localToEvent := make(map[ids.LocalNodeID]ids.EventID, len(tx.Nodes))

	roots := make([]ids.EventID, len(tx.Roots))
	for i, r := range tx.Roots {
		roots[i] = ids.NewEventID(stepID, r)
	}

	type frame struct {
		id     ids.LocalNodeID
		parent *ids.EventID
	}
	stack := make([]frame, 0, len(tx.Roots))
	for i := len(tx.Roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{id: tx.Roots[i]})
	}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node, ok := tx.NodeAt(cur.id)
		if !ok {
			crash.Now("missing node %d referenced during commit", cur.id)
		}
		eventID := ids.NewEventID(stepID, cur.id)
		localToEvent[cur.id] = eventID

		switch n := node.(type) {
		case txtree.Create:
			if n.Key != nil {
				identity := n.Key.Identity()
				if _, exists := data.ActiveKeys[identity]; exists {
					metrics.Commits.WithLabelValues("unique_key_violation").Inc()
					return nil, &KeyViolationError{Template: n.Key.Template, Name: n.Key.Name}
				}
				data.ActiveKeys[identity] = n.ContractID
			}
			data.ActiveContracts[n.ContractID] = struct{}{}
			data.ContractToEvent[n.ContractID] = eventID
			data.NodeInfo[eventID] = newNodeInfo(eventID, n, effectiveAt, cur.parent)

		case txtree.Fetch:
			// No consumed-ness check: fetching an already-consumed contract
			// does not fail the commit; the reference is still recorded.
			referenceContract(data, n.ContractID, eventID)
			data.NodeInfo[eventID] = newNodeInfo(eventID, n, effectiveAt, cur.parent)

		case txtree.Exercise:
			targetEvent := referenceContract(data, n.TargetContractID, eventID)
			if n.Consuming {
				consume(data, targetEvent, eventID)
			}
			info := newNodeInfo(eventID, n, effectiveAt, cur.parent)
			children := make([]ids.EventID, len(n.Children))
			for i, c := range n.Children {
				children[i] = ids.NewEventID(stepID, c)
			}
			info.Children = children
			data.NodeInfo[eventID] = info
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, frame{id: n.Children[i], parent: &eventID})
			}

		case txtree.LookupByKey:
			if n.Result != nil {
				referenceContract(data, *n.Result, eventID)
			}
			data.NodeInfo[eventID] = newNodeInfo(eventID, n, effectiveAt, cur.parent)

		default:
			crash.Now("unhandled node kind for node %d during commit", cur.id)
		}
	}

	rich := &RichTransaction{
		EffectiveAt:              effectiveAt,
		Location:                 location,
		Roots:                    roots,
		ExplicitDisclosure:       rekey(result.Disclosure, localToEvent),
		LocalImplicitDisclosure:  rekey(result.LocalImplicitDisclosure, localToEvent),
		GlobalImplicitDisclosure: rekeyByContract(data, result.GlobalDivulgence),
	}

	applyObservers(data, stepID, rich.ExplicitDisclosure)
	applyObservers(data, stepID, rich.LocalImplicitDisclosure)
	applyObservers(data, stepID, rich.GlobalImplicitDisclosure)

	next := &Ledger{
		CurrentTime: l.CurrentTime,
		NextStepID:  stepID + 1,
		StepLog:     append(append([]Step(nil), l.StepLog...), CommitStep{ID: stepID, Committer: committer, Rich: rich}),
		Data:        data,
	}
	metrics.Commits.WithLabelValues("ok").Inc()
	metrics.ActiveContracts.Set(float64(len(data.ActiveContracts)))
	return &CommitResult{Ledger: next, StepID: stepID, Rich: rich}, nil
}

// referenceContract resolves coid to its node-info, marks referrer as
// having referenced it, and returns the contract's event-id. A coid with
// no entry in ContractToEvent was never created on this ledger — an
// invariant violation in the transaction producer, not an expected
// outcome of committing (spec.md §7.2).
func referenceContract(data *LedgerData, coid value.ContractID, referrer ids.EventID) ids.EventID {
	target, ok := data.ContractToEvent[coid]
	if !ok {
		crash.Now("reference to never-created contract %s", coid)
	}
	info, ok := data.NodeInfo[target]
	if !ok {
		crash.Now("contract %s indexed at %s but node-info missing", coid, target)
	}
	info = info.clone()
	info.ReferencedBy[referrer] = struct{}{}
	data.NodeInfo[target] = info
	return target
}

// consume marks contractEvent's Create node-info as consumed by
// consumer, removes it from the active set, and drops its key (if any)
// from the active-key index.
func consume(data *LedgerData, contractEvent, consumer ids.EventID) {
	info, ok := data.NodeInfo[contractEvent]
	if !ok {
		crash.Now("consumed contract %s has no node-info", contractEvent)
	}
	create, ok := info.Node.(txtree.Create)
	if !ok {
		crash.Now("consumed event %s is not a Create", contractEvent)
	}
	info = info.clone()
	info.Consumer = &consumer
	data.NodeInfo[contractEvent] = info

	delete(data.ActiveContracts, create.ContractID)
	if create.Key != nil {
		delete(data.ActiveKeys, create.Key.Identity())
	}
}

// rekey rewrites a local-node-id-keyed party-set map to an
// event-id-keyed one using the commit's freshly assigned mapping.
func rekey(m map[ids.LocalNodeID]txtree.PartySet, localToEvent map[ids.LocalNodeID]ids.EventID) map[ids.EventID]txtree.PartySet {
	out := make(map[ids.EventID]txtree.PartySet, len(m))
	for local, parties := range m {
		eventID, ok := localToEvent[local]
		if !ok {
			crash.Now("disclosure recorded for unvisited node %d", local)
		}
		out[eventID] = parties
	}
	return out
}

// rekeyByContract rewrites a contract-id-keyed divulgence map to the
// event-id of the contract's own Create node, via the (now-complete)
// contract-to-event index. A divulged coid absent from that index was
// never created on this ledger at all — an invariant violation.
func rekeyByContract(data *LedgerData, m map[value.ContractID]txtree.PartySet) map[ids.EventID]txtree.PartySet {
	out := make(map[ids.EventID]txtree.PartySet, len(m))
	for coid, parties := range m {
		eventID, ok := data.ContractToEvent[coid]
		if !ok {
			crash.Now("global divulgence recorded for never-created contract %s", coid)
		}
		out[eventID] = parties
	}
	return out
}

// applyObservers folds one observer relation into every named
// contract's NodeInfo.ObservingSince, giving each newly-observing party
// an onset of stepID and leaving any existing onset untouched — the
// monotonicity spec.md §6 requires.
func applyObservers(data *LedgerData, stepID ids.StepID, rel map[ids.EventID]txtree.PartySet) {
	for eventID, parties := range rel {
		info, ok := data.NodeInfo[eventID]
		if !ok {
			crash.Now("observer relation recorded for unknown event %s", eventID)
		}
		info = info.clone()
		for p := range parties {
			if _, exists := info.ObservingSince[p]; !exists {
				info.ObservingSince[p] = stepID
			}
		}
		data.NodeInfo[eventID] = info
	}
}
