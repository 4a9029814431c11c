package authz

import "github.com/certen/scenario-ledger/pkg/txtree"

// FailureTag names one of the eight failure kinds spec.md §4.2 defines.
type FailureTag string

const (
	FailureCreateMissingAuth              FailureTag = "create-missing-auth"
	FailureNoSignatories                  FailureTag = "no-signatories"
	FailureMaintainersNotSubsetSignatories FailureTag = "maintainers-not-subset-of-signatories"
	FailureNoControllers                  FailureTag = "no-controllers"
	FailureActorMismatch                  FailureTag = "actor-mismatch"
	FailureExerciseMissingAuth            FailureTag = "exercise-missing-auth"
	FailureFetchMissingAuth               FailureTag = "fetch-missing-auth"
	FailureLookupByKeyMissingAuth         FailureTag = "lookup-by-key-missing-auth"
)

// Failure records one authorization check failing for one node, with
// enough context for test assertions and diagnostics (spec.md §7): the
// template, the optional location, and the two sets compared.
type Failure struct {
	Tag      FailureTag
	Template txtree.TemplateID
	Location *txtree.Location

	// Required is the set the node needed authority over (e.g.
	// signatories, acting-parties, maintainers).
	Required txtree.PartySet
	// Actual is the authorizer set in force at the moment of the check.
	Actual txtree.PartySet
}

// CheckNode evaluates every predicate that applies to n's kind, in the
// order spec.md's table lists them, and returns the first one that fails.
// Under DontAuthorize it always returns nil. Returns nil when every
// applicable predicate passes.
func CheckNode(n txtree.Node, mode Mode) *Failure {
	authorizers, ok := mode.Authorizers()
	if !ok {
		return nil
	}
	switch t := n.(type) {
	case txtree.Create:
		return checkCreate(t, authorizers)
	case txtree.Fetch:
		return checkFetch(t, authorizers)
	case txtree.Exercise:
		return checkExercise(t, authorizers)
	case txtree.LookupByKey:
		return checkLookupByKey(t, authorizers)
	default:
		return nil
	}
}

func checkCreate(n txtree.Create, authorizers txtree.PartySet) *Failure {
	if !n.Signatories.SubsetOf(authorizers) {
		return &Failure{Tag: FailureCreateMissingAuth, Template: n.Template, Location: n.Location,
			Required: n.Signatories, Actual: authorizers}
	}
	if n.Signatories.Empty() {
		return &Failure{Tag: FailureNoSignatories, Template: n.Template, Location: n.Location,
			Required: n.Signatories, Actual: authorizers}
	}
	if n.Key != nil && !n.Key.Maintainers.SubsetOf(n.Signatories) {
		return &Failure{Tag: FailureMaintainersNotSubsetSignatories, Template: n.Template, Location: n.Location,
			Required: n.Key.Maintainers, Actual: n.Signatories}
	}
	return nil
}

func checkFetch(n txtree.Fetch, authorizers txtree.PartySet) *Failure {
	if n.Stakeholders.Intersect(authorizers).Empty() {
		return &Failure{Tag: FailureFetchMissingAuth, Template: n.Template, Location: n.Location,
			Required: n.Stakeholders, Actual: authorizers}
	}
	return nil
}

func checkExercise(n txtree.Exercise, authorizers txtree.PartySet) *Failure {
	if n.ActingParties.Empty() {
		return &Failure{Tag: FailureNoControllers, Template: n.Template, Location: n.Location,
			Required: n.ActingParties, Actual: authorizers}
	}
	if n.ControllersDifferFromActors {
		return &Failure{Tag: FailureActorMismatch, Template: n.Template, Location: n.Location,
			Required: n.ActingParties, Actual: authorizers}
	}
	if !n.ActingParties.SubsetOf(authorizers) {
		return &Failure{Tag: FailureExerciseMissingAuth, Template: n.Template, Location: n.Location,
			Required: n.ActingParties, Actual: authorizers}
	}
	return nil
}

func checkLookupByKey(n txtree.LookupByKey, authorizers txtree.PartySet) *Failure {
	if !n.Maintainers.SubsetOf(authorizers) {
		return &Failure{Tag: FailureLookupByKeyMissingAuth, Template: n.Template, Location: n.Location,
			Required: n.Maintainers, Actual: authorizers}
	}
	return nil
}
