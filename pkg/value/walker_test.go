package value

import "testing"

func TestCollectContractIDsLeaf(t *testing.T) {
	if got := CollectContractIDs(Leaf()); len(got) != 0 {
		t.Errorf("leaf should contribute nothing, got %v", got)
	}
}

func TestCollectContractIDsNested(t *testing.T) {
	v := Record(
		ContractIDValue("c1"),
		List(ContractIDValue("c2"), Leaf()),
		Some(Variant(ContractIDValue("c3"))),
		None(),
		TextMap(map[string]Value{"k": ContractIDValue("c4")}),
		GenMap(GenMapEntry{Key: ContractIDValue("c5"), Value: ContractIDValue("c6")}),
	)
	got := CollectContractIDs(v)
	want := []ContractID{"c1", "c2", "c3", "c4", "c5", "c6"}
	if len(got) != len(want) {
		t.Fatalf("got %d contract-ids, want %d: %v", len(got), len(want), got)
	}
	for _, w := range want {
		if _, ok := got[w]; !ok {
			t.Errorf("missing contract-id %q in %v", w, got)
		}
	}
}

func TestCollectContractIDsEmptyOptionalDoesNotPanic(t *testing.T) {
	got := CollectContractIDs(None())
	if len(got) != 0 {
		t.Errorf("none should contribute nothing, got %v", got)
	}
}

func TestContractIDSetUnion(t *testing.T) {
	a := NewContractIDSet("x", "y")
	b := NewContractIDSet("y", "z")
	u := a.Union(b)
	if len(u) != 3 {
		t.Errorf("union should have 3 members, got %d: %v", len(u), u)
	}
}
