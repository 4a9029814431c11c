package scenariofile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/certen/scenario-ledger/pkg/txtree"
)

const sample = `
name: create-fetch-exercise
parties: [Alice, Bob]
steps:
  - commit:
      committer: Alice
      authorize: [Alice]
      roots:
        - create:
            contractId: "1"
            template: Iou
            signatories: [Alice]
            stakeholders: [Alice, Bob]
        - fetch:
            contractId: "1"
            template: Iou
            stakeholders: [Alice, Bob]
        - exercise:
            targetContractId: "1"
            template: Iou
            choice: Transfer
            actingParties: [Alice]
            signatories: [Alice]
            stakeholders: [Alice, Bob]
            consuming: true
  - passTime:
      deltaMicros: 500000
  - assertMustFail:
      actor: Bob
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func TestLoadParsesAllStepKinds(t *testing.T) {
	s, err := Load(writeSample(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Name != "create-fetch-exercise" {
		t.Errorf("unexpected name: %s", s.Name)
	}
	if len(s.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(s.Steps))
	}
	if s.Steps[0].Commit == nil || len(s.Steps[0].Commit.Roots) != 3 {
		t.Fatalf("expected a commit step with 3 roots, got %+v", s.Steps[0])
	}
	if s.Steps[1].PassTime == nil || s.Steps[1].PassTime.DeltaMicros != 500000 {
		t.Errorf("unexpected pass-time step: %+v", s.Steps[1])
	}
	if s.Steps[2].AssertMustFail == nil || s.Steps[2].AssertMustFail.Actor != "Bob" {
		t.Errorf("unexpected assert-must-fail step: %+v", s.Steps[2])
	}
}

func TestCommitStepBuildAssignsPreOrderLocalIDs(t *testing.T) {
	s, err := Load(writeSample(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tx := s.Steps[0].Commit.Build()
	if len(tx.Roots) != 3 {
		t.Fatalf("expected 3 roots, got %d", len(tx.Roots))
	}
	for i, root := range tx.Roots {
		if int(root) != i {
			t.Errorf("expected root %d to have local-id %d, got %d", i, i, root)
		}
	}
	node0, _ := tx.NodeAt(0)
	create, ok := node0.(txtree.Create)
	if !ok || create.ContractID != "1" {
		t.Fatalf("unexpected node 0: %+v", node0)
	}
	node2, _ := tx.NodeAt(2)
	exercise, ok := node2.(txtree.Exercise)
	if !ok || !exercise.Consuming {
		t.Fatalf("unexpected node 2: %+v", node2)
	}
}

func TestCommitStepBuildAssignsChildrenAfterParent(t *testing.T) {
	s := &Scenario{
		Steps: []Step{{
			Commit: &CommitStep{
				Committer: "Alice",
				Roots: []NodeSpec{{
					Exercise: &ExerciseSpec{
						TargetContractID: "x",
						ActingParties:    []string{"Alice"},
						Signatories:      []string{"Alice"},
						Children: []NodeSpec{
							{Fetch: &FetchSpec{ContractID: "1", Stakeholders: []string{"Alice"}}},
							{Fetch: &FetchSpec{ContractID: "2", Stakeholders: []string{"Alice"}}},
						},
					},
				}},
			},
		}},
	}
	tx := s.Steps[0].Commit.Build()
	node0, _ := tx.NodeAt(0)
	exercise := node0.(txtree.Exercise)
	if len(exercise.Children) != 2 || exercise.Children[0] != 1 || exercise.Children[1] != 2 {
		t.Fatalf("expected children [1,2] after parent 0, got %v", exercise.Children)
	}
}
