package txtree

// Informees returns the parties that must be informed of the node's
// existence (GLOSSARY): stakeholders for Create/Fetch, signatories ∪
// acting-parties for Exercise, maintainers for LookupByKey.
func Informees(n Node) PartySet {
	switch t := n.(type) {
	case Create:
		return t.Stakeholders
	case Fetch:
		return t.Stakeholders
	case Exercise:
		return t.Signatories.Union(t.ActingParties)
	case LookupByKey:
		return t.Maintainers
	default:
		return NewPartySet()
	}
}
