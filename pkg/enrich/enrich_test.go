package enrich

import (
	"testing"

	"github.com/certen/scenario-ledger/pkg/authz"
	"github.com/certen/scenario-ledger/pkg/ids"
	"github.com/certen/scenario-ledger/pkg/txtree"
)

func ps(parties ...txtree.Party) txtree.PartySet { return txtree.NewPartySet(parties...) }

// TestDivulgenceViaParentExercise is spec.md §8 scenario 3: an Exercise by
// Alice whose child Fetches a contract whose stakeholders are {Bob}
// divulges the fetched coid to Alice, who is not a stakeholder.
func TestDivulgenceViaParentExercise(t *testing.T) {
	tx := &txtree.Transaction{
		Roots: []ids.LocalNodeID{0},
		Nodes: map[ids.LocalNodeID]txtree.Node{
			0: txtree.Exercise{
				TargetContractID: "x",
				Template:         "T",
				Signatories:      ps("Alice"),
				ActingParties:    ps("Alice"),
				Stakeholders:     ps("Alice"),
				Children:         []ids.LocalNodeID{1},
			},
			1: txtree.Fetch{
				ContractID:   "f1",
				Template:     "T",
				Stakeholders: ps("Bob"),
			},
		},
	}

	res := Enrich(tx, authz.DontAuthorize())

	to, ok := res.GlobalDivulgence["f1"]
	if !ok {
		t.Fatalf("expected divulgence entry for f1, got %+v", res.GlobalDivulgence)
	}
	if !to.Contains("Alice") {
		t.Errorf("expected f1 divulged to Alice, got %v", to)
	}
	if to.Contains("Bob") {
		t.Errorf("Bob is a stakeholder, should not be divulged to, got %v", to)
	}
}

// TestLocalImplicitDisclosureWithinSameTransaction covers the case where
// a contract created earlier in the same tree is later fetched by a
// sibling exercise: the divulgence resolves locally by node-id rather
// than through the (not-yet-committed) global contract-id index.
func TestLocalImplicitDisclosureWithinSameTransaction(t *testing.T) {
	tx := &txtree.Transaction{
		Roots: []ids.LocalNodeID{0, 1},
		Nodes: map[ids.LocalNodeID]txtree.Node{
			0: txtree.Create{
				ContractID:   "c1",
				Template:     "T",
				Signatories:  ps("Bob"),
				Stakeholders: ps("Bob"),
			},
			1: txtree.Exercise{
				TargetContractID: "other",
				Template:         "T",
				Signatories:      ps("Alice"),
				ActingParties:    ps("Alice"),
				Stakeholders:     ps("Alice"),
				Children:         []ids.LocalNodeID{2},
			},
			2: txtree.Fetch{
				ContractID:   "c1",
				Template:     "T",
				Stakeholders: ps("Bob"),
			},
		},
	}

	res := Enrich(tx, authz.DontAuthorize())

	if _, ok := res.GlobalDivulgence["c1"]; ok {
		t.Errorf("c1 was created in this tx, should not appear in global divulgence: %+v", res.GlobalDivulgence)
	}
	to, ok := res.LocalImplicitDisclosure[0]
	if !ok || !to.Contains("Alice") {
		t.Errorf("expected local implicit disclosure of node 0 to Alice, got %+v", res.LocalImplicitDisclosure)
	}
}

func TestEnricherIdempotence(t *testing.T) {
	tx := &txtree.Transaction{
		Roots: []ids.LocalNodeID{0},
		Nodes: map[ids.LocalNodeID]txtree.Node{
			0: txtree.Create{
				ContractID:   "c1",
				Template:     "T",
				Signatories:  ps("Alice"),
				Stakeholders: ps("Alice", "Bob"),
			},
		},
	}
	mode := authz.Authorize(ps("Alice"))
	a := Enrich(tx, mode)
	b := Enrich(tx, mode)

	if len(a.Disclosure) != len(b.Disclosure) {
		t.Fatalf("disclosure map size differs across runs: %d vs %d", len(a.Disclosure), len(b.Disclosure))
	}
	for id, w := range a.Disclosure {
		if !setsEqual(w, b.Disclosure[id]) {
			t.Errorf("disclosure for node %d differs: %v vs %v", id, w, b.Disclosure[id])
		}
	}
	if len(a.FailedAuthorizations) != len(b.FailedAuthorizations) {
		t.Errorf("failure map size differs: %d vs %d", len(a.FailedAuthorizations), len(b.FailedAuthorizations))
	}
}

func TestAuthorizationFirstWinsPerNode(t *testing.T) {
	// A Create with empty signatories fails no-signatories first; the
	// second applicable check (maintainers-not-subset) must not override it.
	tx := &txtree.Transaction{
		Roots: []ids.LocalNodeID{0},
		Nodes: map[ids.LocalNodeID]txtree.Node{
			0: txtree.Create{
				Template:     "T",
				Signatories:  ps(),
				Stakeholders: ps("Alice"),
				Key:          &txtree.GlobalKey{Maintainers: ps("Alice")},
			},
		},
	}
	res := Enrich(tx, authz.Authorize(ps("Alice")))
	f, ok := res.FailedAuthorizations[0]
	if !ok {
		t.Fatal("expected a recorded failure")
	}
	if f.Tag != authz.FailureNoSignatories {
		t.Errorf("expected no-signatories to win first, got %v", f.Tag)
	}
}

func setsEqual(a, b txtree.PartySet) bool {
	if len(a) != len(b) {
		return false
	}
	for p := range a {
		if !b.Contains(p) {
			return false
		}
	}
	return true
}
