package authz

import (
	"testing"

	"github.com/certen/scenario-ledger/pkg/txtree"
)

func parties(ps ...txtree.Party) txtree.PartySet { return txtree.NewPartySet(ps...) }

func TestCreateEmptySignatoriesFails(t *testing.T) {
	n := txtree.Create{Template: "T", Signatories: parties(), Stakeholders: parties("Alice")}
	f := CheckNode(n, Authorize(parties("Alice")))
	if f == nil || f.Tag != FailureNoSignatories {
		t.Fatalf("expected no-signatories, got %+v", f)
	}
}

func TestCreateKeyedMaintainersNotSubset(t *testing.T) {
	n := txtree.Create{
		Template:     "T",
		Signatories:  parties("Alice"),
		Stakeholders: parties("Alice", "Bob"),
		Key:          &txtree.GlobalKey{Maintainers: parties("Alice", "Bob")},
	}
	f := CheckNode(n, Authorize(parties("Alice", "Bob")))
	if f == nil || f.Tag != FailureMaintainersNotSubsetSignatories {
		t.Fatalf("expected maintainers-not-subset-of-signatories, got %+v", f)
	}
}

func TestExerciseEmptyActingPartiesFails(t *testing.T) {
	n := txtree.Exercise{Template: "T", ActingParties: parties(), Signatories: parties("Alice")}
	f := CheckNode(n, Authorize(parties("Alice")))
	if f == nil || f.Tag != FailureNoControllers {
		t.Fatalf("expected no-controllers, got %+v", f)
	}
}

func TestExerciseActorMismatchIndependentOfMissingAuth(t *testing.T) {
	n := txtree.Exercise{
		Template:                    "T",
		ActingParties:               parties("Alice"),
		Signatories:                 parties("Alice"),
		ControllersDifferFromActors: true,
	}
	f := CheckNode(n, Authorize(parties("Alice")))
	if f == nil || f.Tag != FailureActorMismatch {
		t.Fatalf("expected actor-mismatch, got %+v", f)
	}
}

func TestLookupByKeyStricterThanFetch(t *testing.T) {
	// Maintainers = {Alice, Bob}, authorizers = {Alice}: fails even though
	// the key is otherwise stakeholder-visible (spec.md §8).
	lookup := txtree.LookupByKey{Template: "T", Maintainers: parties("Alice", "Bob")}
	f := CheckNode(lookup, Authorize(parties("Alice")))
	if f == nil || f.Tag != FailureLookupByKeyMissingAuth {
		t.Fatalf("expected lookup-by-key-missing-auth, got %+v", f)
	}

	// Replacing with Fetch of a contract whose stakeholders include Alice
	// succeeds with no failure.
	fetch := txtree.Fetch{Template: "T", Stakeholders: parties("Alice", "Bob")}
	if got := CheckNode(fetch, Authorize(parties("Alice"))); got != nil {
		t.Fatalf("expected fetch to succeed, got %+v", got)
	}
}

func TestDontAuthorizeNeverFails(t *testing.T) {
	n := txtree.Create{Template: "T", Signatories: parties()}
	if f := CheckNode(n, DontAuthorize()); f != nil {
		t.Fatalf("DontAuthorize should never fail, got %+v", f)
	}
}

func TestFetchMissingAuth(t *testing.T) {
	n := txtree.Fetch{Template: "T", Stakeholders: parties("Carol")}
	f := CheckNode(n, Authorize(parties("Alice")))
	if f == nil || f.Tag != FailureFetchMissingAuth {
		t.Fatalf("expected fetch-missing-auth, got %+v", f)
	}
}
