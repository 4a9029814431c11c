package value

// ContractIDSet is a set of contract-ids, used as the walker's output.
type ContractIDSet map[ContractID]struct{}

// NewContractIDSet builds a set from the given members.
func NewContractIDSet(members ...ContractID) ContractIDSet {
	s := make(ContractIDSet, len(members))
	for _, m := range members {
		s[m] = struct{}{}
	}
	return s
}

// Add inserts coid into the set.
func (s ContractIDSet) Add(coid ContractID) { s[coid] = struct{}{} }

// Union returns a new set containing every member of s and other.
func (s ContractIDSet) Union(other ContractIDSet) ContractIDSet {
	out := make(ContractIDSet, len(s)+len(other))
	for k := range s {
		out[k] = struct{}{}
	}
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

// CollectContractIDs recurses through v and returns every contract-id
// transitively reachable inside it. The switch is exhaustive over Kind —
// a new shape added to the Value sum type must add a case here too, or
// contract-ids inside that shape are silently missed.
func CollectContractIDs(v Value) ContractIDSet {
	out := make(ContractIDSet)
	collectInto(v, out)
	return out
}

func collectInto(v Value, out ContractIDSet) {
	switch v.Kind {
	case KindContractID:
		out.Add(v.ContractIDLeaf)
	case KindRecord:
		for _, f := range v.RecordFields {
			collectInto(f, out)
		}
	case KindVariant:
		if v.VariantValue != nil {
			collectInto(*v.VariantValue, out)
		}
	case KindList:
		for _, e := range v.ListElems {
			collectInto(e, out)
		}
	case KindOptional:
		if v.OptionalValue != nil {
			collectInto(*v.OptionalValue, out)
		}
	case KindTextMap:
		for _, e := range v.MapEntries {
			collectInto(e, out)
		}
	case KindGenMap:
		for _, entry := range v.GenMapEntries {
			collectInto(entry.Key, out)
			collectInto(entry.Value, out)
		}
	case KindLeaf:
		// enum, numeric, text, date, unit: no contract-ids.
	}
}
