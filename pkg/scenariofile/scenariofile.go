// Copyright 2025 Certen Protocol
//
// Package scenariofile loads a YAML scenario description — a named
// sequence of commits, time advances and must-fail assertions — and
// compiles it into the pkg/txtree and pkg/ledger calls the CLI drives.
//
// Structure follows the teacher's pkg/config YAML loader: nested structs
// with `yaml:"..."` tags, environment variable expansion left to the
// caller. Load applies no defaults after unmarshal; an omitted
// effectiveAt or authorize is resolved by the caller (the CLI uses the
// ledger's current time and DontAuthorize).
package scenariofile

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/certen/scenario-ledger/pkg/ids"
	"github.com/certen/scenario-ledger/pkg/txtree"
	"github.com/certen/scenario-ledger/pkg/value"
)

// Scenario is the root of a scenario file: a human-readable name, the
// universe of party names it may reference, and the ordered step list.
type Scenario struct {
	Name    string   `yaml:"name"`
	Parties []string `yaml:"parties"`
	Steps   []Step   `yaml:"steps"`
}

// Step is a tagged union over the three kinds of scenario step; exactly
// one field is set per entry in the YAML list.
type Step struct {
	Commit         *CommitStep         `yaml:"commit,omitempty"`
	PassTime       *PassTimeStep       `yaml:"passTime,omitempty"`
	AssertMustFail *AssertMustFailStep `yaml:"assertMustFail,omitempty"`
}

// CommitStep submits a transaction tree built from Roots.
type CommitStep struct {
	Committer   string     `yaml:"committer"`
	EffectiveAt *time.Time `yaml:"effectiveAt,omitempty"`
	Authorize   []string   `yaml:"authorize,omitempty"` // omitted means DontAuthorize
	Roots       []NodeSpec `yaml:"roots"`
}

// PassTimeStep advances the ledger clock.
type PassTimeStep struct {
	DeltaMicros int64 `yaml:"deltaMicros"`
}

// AssertMustFailStep records an expected-failure assertion.
type AssertMustFailStep struct {
	Actor string `yaml:"actor"`
}

// NodeSpec is the YAML shape of a single txtree.Node; exactly one of
// Create/Fetch/Exercise/LookupByKey is set.
type NodeSpec struct {
	Create      *CreateSpec      `yaml:"create,omitempty"`
	Fetch       *FetchSpec       `yaml:"fetch,omitempty"`
	Exercise    *ExerciseSpec    `yaml:"exercise,omitempty"`
	LookupByKey *LookupByKeySpec `yaml:"lookupByKey,omitempty"`
}

type CreateSpec struct {
	ContractID   string   `yaml:"contractId"`
	Template     string   `yaml:"template"`
	Signatories  []string `yaml:"signatories"`
	Stakeholders []string `yaml:"stakeholders"`
	KeyName      string   `yaml:"keyName,omitempty"`
	Maintainers  []string `yaml:"maintainers,omitempty"`
}

type FetchSpec struct {
	ContractID   string   `yaml:"contractId"`
	Template     string   `yaml:"template"`
	Stakeholders []string `yaml:"stakeholders"`
}

type ExerciseSpec struct {
	TargetContractID            string     `yaml:"targetContractId"`
	Template                    string     `yaml:"template"`
	Choice                      string     `yaml:"choice"`
	ActingParties               []string   `yaml:"actingParties"`
	Signatories                 []string   `yaml:"signatories"`
	Stakeholders                []string   `yaml:"stakeholders"`
	Consuming                   bool       `yaml:"consuming"`
	ControllersDifferFromActors bool       `yaml:"controllersDifferFromActors,omitempty"`
	Children                    []NodeSpec `yaml:"children,omitempty"`
}

type LookupByKeySpec struct {
	Template    string   `yaml:"template"`
	KeyName     string   `yaml:"keyName"`
	Maintainers []string `yaml:"maintainers"`
	ResultCoid  string   `yaml:"resultCoid,omitempty"` // empty means negative lookup
}

// Load reads and parses a scenario file from path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file %s: %w", path, err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario file %s: %w", path, err)
	}
	return &s, nil
}

// Build compiles cs.Roots into a txtree.Transaction, assigning
// local-node-ids in the same pre-order a committed tree would use.
func (cs *CommitStep) Build() *txtree.Transaction {
	tx := &txtree.Transaction{Nodes: make(map[ids.LocalNodeID]txtree.Node)}
	var next ids.LocalNodeID
	for _, root := range cs.Roots {
		tx.Roots = append(tx.Roots, placeNode(tx, &next, root))
	}
	return tx
}

func placeNode(tx *txtree.Transaction, next *ids.LocalNodeID, spec NodeSpec) ids.LocalNodeID {
	id := *next
	*next++
	tx.Nodes[id] = spec.toNode(tx, next)
	return id
}

func (spec NodeSpec) toNode(tx *txtree.Transaction, next *ids.LocalNodeID) txtree.Node {
	switch {
	case spec.Create != nil:
		c := spec.Create
		n := txtree.Create{
			ContractID:   value.ContractID(c.ContractID),
			Template:     txtree.TemplateID(c.Template),
			Signatories:  partySet(c.Signatories),
			Stakeholders: partySet(c.Stakeholders),
			Instance:     value.Leaf(),
		}
		if c.KeyName != "" {
			n.Key = &txtree.GlobalKey{
				Template:    n.Template,
				Name:        txtree.GlobalKeyName(c.KeyName),
				Maintainers: partySet(c.Maintainers),
			}
		}
		return n
	case spec.Fetch != nil:
		f := spec.Fetch
		return txtree.Fetch{
			ContractID:   value.ContractID(f.ContractID),
			Template:     txtree.TemplateID(f.Template),
			Stakeholders: partySet(f.Stakeholders),
		}
	case spec.Exercise != nil:
		e := spec.Exercise
		children := make([]ids.LocalNodeID, len(e.Children))
		for i, c := range e.Children {
			children[i] = placeNode(tx, next, c)
		}
		return txtree.Exercise{
			TargetContractID:            value.ContractID(e.TargetContractID),
			Template:                    txtree.TemplateID(e.Template),
			Choice:                      txtree.ChoiceName(e.Choice),
			ActingParties:               partySet(e.ActingParties),
			Signatories:                 partySet(e.Signatories),
			Stakeholders:                partySet(e.Stakeholders),
			Consuming:                   e.Consuming,
			ControllersDifferFromActors: e.ControllersDifferFromActors,
			Children:                    children,
		}
	case spec.LookupByKey != nil:
		l := spec.LookupByKey
		n := txtree.LookupByKey{
			Template: txtree.TemplateID(l.Template),
			Key: txtree.GlobalKey{
				Template:    txtree.TemplateID(l.Template),
				Name:        txtree.GlobalKeyName(l.KeyName),
				Maintainers: partySet(l.Maintainers),
			},
			Maintainers: partySet(l.Maintainers),
		}
		if l.ResultCoid != "" {
			coid := value.ContractID(l.ResultCoid)
			n.Result = &coid
		}
		return n
	default:
		panic("scenariofile: NodeSpec has no variant set")
	}
}

func partySet(names []string) txtree.PartySet {
	parties := make([]txtree.Party, len(names))
	for i, n := range names {
		parties[i] = txtree.Party(n)
	}
	return txtree.NewPartySet(parties...)
}
