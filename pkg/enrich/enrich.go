// Package enrich implements the single top-down traversal of spec.md §4.3:
// it propagates witnesses down a transaction tree to produce per-node
// disclosure, accumulates divulgence (the flow of contract-ids to parties
// through parent-exercise witness sets), and runs the authorization
// checker per node against a dynamically evolving authorizer set.
package enrich

import (
	"github.com/certen/scenario-ledger/pkg/authz"
	"github.com/certen/scenario-ledger/pkg/crash"
	"github.com/certen/scenario-ledger/pkg/ids"
	"github.com/certen/scenario-ledger/pkg/txtree"
	"github.com/certen/scenario-ledger/pkg/value"
)

// Result is the enricher's output: the tree shape is unchanged, but every
// node now has an entry (possibly empty) in Disclosure, and divulgence and
// failure maps are populated where applicable.
//
// Disclosure and LocalImplicitDisclosure are both local-node-id-keyed;
// they are kept separate because LocalImplicitDisclosure only ever
// targets a Create visited earlier in *this* tree (resolved without
// needing the ledger's contract-id → event-id index), while
// GlobalDivulgence targets a contract-id that may have been created by an
// earlier, already-committed transaction — the commit processor resolves
// it through that index and folds it into the same event-id-keyed
// observer relation (spec.md §4.4 step 4).
type Result struct {
	Disclosure              map[ids.LocalNodeID]txtree.PartySet
	LocalImplicitDisclosure map[ids.LocalNodeID]txtree.PartySet
	GlobalDivulgence        map[value.ContractID]txtree.PartySet
	FailedAuthorizations    map[ids.LocalNodeID]authz.Failure
}

func newResult() *Result {
	return &Result{
		Disclosure:              make(map[ids.LocalNodeID]txtree.PartySet),
		LocalImplicitDisclosure: make(map[ids.LocalNodeID]txtree.PartySet),
		GlobalDivulgence:        make(map[value.ContractID]txtree.PartySet),
		FailedAuthorizations:    make(map[ids.LocalNodeID]authz.Failure),
	}
}

type workItem struct {
	id        ids.LocalNodeID
	witnesses txtree.PartySet
	mode      authz.Mode
}

// Enrich runs the enricher over tx under mode. Re-visiting a node-id (not
// expected in a well-formed tree, but defined) unions disclosure rather
// than overwriting it, and the first authorization failure recorded for a
// node-id wins — later attempts leave it intact.
func Enrich(tx *txtree.Transaction, mode authz.Mode) *Result {
	res := newResult()
	createdInTx := make(map[value.ContractID]ids.LocalNodeID)

	initialWitnesses := txtree.NewPartySet()
	if authorizers, ok := mode.Authorizers(); ok {
		initialWitnesses = authorizers
	}

	stack := make([]workItem, 0, len(tx.Roots))
	for i := len(tx.Roots) - 1; i >= 0; i-- {
		stack = append(stack, workItem{id: tx.Roots[i], witnesses: initialWitnesses, mode: mode})
	}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node, ok := tx.NodeAt(cur.id)
		if !ok {
			crash.Now("missing node %d referenced during traversal", cur.id)
		}

		switch n := node.(type) {
		case txtree.Create:
			recordFailure(res, cur.id, authz.CheckNode(n, cur.mode))
			witnesses := cur.witnesses.Union(txtree.Informees(n))
			addDisclosure(res.Disclosure, cur.id, witnesses)
			createdInTx[n.ContractID] = cur.id

		case txtree.Fetch:
			witnesses := cur.witnesses.Union(n.Stakeholders)
			addDisclosure(res.Disclosure, cur.id, witnesses)
			divulgeTo := cur.witnesses.Minus(n.Stakeholders)
			if !divulgeTo.Empty() {
				divulge(res, createdInTx, n.ContractID, divulgeTo)
			}
			recordFailure(res, cur.id, authz.CheckNode(n, cur.mode))

		case txtree.Exercise:
			recordFailure(res, cur.id, authz.CheckNode(n, cur.mode))
			witnesses := cur.witnesses.Union(txtree.Informees(n))
			addDisclosure(res.Disclosure, cur.id, witnesses)
			divulgeTo := cur.witnesses.Minus(n.Stakeholders)
			if !divulgeTo.Empty() {
				divulge(res, createdInTx, n.TargetContractID, divulgeTo)
			}

			childMode := cur.mode
			if _, ok := cur.mode.Authorizers(); ok {
				childMode = cur.mode.WithAuthorizers(n.Signatories.Union(n.ActingParties))
			}
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, workItem{id: n.Children[i], witnesses: witnesses, mode: childMode})
			}

		case txtree.LookupByKey:
			recordFailure(res, cur.id, authz.CheckNode(n, cur.mode))
			witnesses := cur.witnesses.Union(txtree.Informees(n))
			addDisclosure(res.Disclosure, cur.id, witnesses)

		default:
			crash.Now("unhandled node kind for node %d", cur.id)
		}
	}

	return res
}

func addDisclosure(m map[ids.LocalNodeID]txtree.PartySet, id ids.LocalNodeID, witnesses txtree.PartySet) {
	if existing, ok := m[id]; ok {
		m[id] = existing.Union(witnesses)
	} else {
		m[id] = witnesses
	}
}

func divulge(res *Result, createdInTx map[value.ContractID]ids.LocalNodeID, coid value.ContractID, to txtree.PartySet) {
	if localID, ok := createdInTx[coid]; ok {
		addDisclosure(res.LocalImplicitDisclosure, localID, to)
		return
	}
	if existing, ok := res.GlobalDivulgence[coid]; ok {
		res.GlobalDivulgence[coid] = existing.Union(to)
	} else {
		res.GlobalDivulgence[coid] = to
	}
}

func recordFailure(res *Result, id ids.LocalNodeID, f *authz.Failure) {
	if f == nil {
		return
	}
	if _, exists := res.FailedAuthorizations[id]; exists {
		return // first-wins
	}
	res.FailedAuthorizations[id] = *f
}
