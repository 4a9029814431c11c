// Copyright 2025 Certen Protocol
//
// Package digest computes a deterministic fingerprint over a ledger's
// committed step log, so two independently replayed scenarios can be
// compared for exact equality without diffing Go values field by field.
//
// The canonicalize-then-SHA256 algorithm below is the teacher's own
// commitment scheme (pkg/commitment in the teacher repo), retargeted
// from "arbitrary JSON blob" to "step log snapshot".
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/certen/scenario-ledger/pkg/ledger"
	"github.com/certen/scenario-ledger/pkg/txtree"
)

// Fingerprint returns the hex-encoded SHA-256 digest of l's canonicalized
// step log. Two ledgers built from the same sequence of operations
// always produce identical fingerprints, regardless of map iteration
// order or the Go-internal representation of party sets.
func Fingerprint(l *ledger.Ledger) (string, error) {
	snapshot := make([]interface{}, len(l.StepLog))
	for i, step := range l.StepLog {
		snapshot[i] = snapshotStep(step)
	}
	canon, err := marshalCanonical(snapshot)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}

func snapshotStep(step ledger.Step) map[string]interface{} {
	switch s := step.(type) {
	case ledger.CommitStep:
		return map[string]interface{}{
			"kind":      "commit",
			"stepId":    s.ID.String(),
			"committer": string(s.Committer),
			"rich":      snapshotRich(s.Rich),
		}
	case ledger.PassTimeStep:
		return map[string]interface{}{
			"kind":        "passTime",
			"stepId":      s.ID.String(),
			"deltaMicros": s.DeltaMicros,
		}
	case ledger.AssertMustFailStep:
		return map[string]interface{}{
			"kind":   "assertMustFail",
			"stepId": s.ID.String(),
			"actor":  string(s.Actor),
			"at":     s.At.UnixMicro(),
		}
	default:
		return map[string]interface{}{"kind": "unknown"}
	}
}

func snapshotRich(rtx *ledger.RichTransaction) map[string]interface{} {
	roots := make([]string, len(rtx.Roots))
	for i, r := range rtx.Roots {
		roots[i] = r.String()
	}
	return map[string]interface{}{
		"effectiveAt":              rtx.EffectiveAt.UnixMicro(),
		"roots":                    roots,
		"explicitDisclosure":       snapshotEventRelation(rtx.ExplicitDisclosure),
		"localImplicitDisclosure":  snapshotEventRelation(rtx.LocalImplicitDisclosure),
		"globalImplicitDisclosure": snapshotEventRelation(rtx.GlobalImplicitDisclosure),
	}
}

// snapshotEventRelation renders an event-id → party-set relation as a
// sorted-key, sorted-value map so its JSON form is independent of Go map
// iteration order.
func snapshotEventRelation[K interface{ String() string }](rel map[K]txtree.PartySet) map[string][]string {
	out := make(map[string][]string, len(rel))
	for k, parties := range rel {
		out[k.String()] = sortedParties(parties)
	}
	return out
}

func sortedParties(parties txtree.PartySet) []string {
	out := make([]string, 0, len(parties))
	for p := range parties {
		out = append(out, string(p))
	}
	sort.Strings(out)
	return out
}

// marshalCanonical encodes v as JSON, then recursively sorts every
// object's keys so the output is byte-identical across runs.
func marshalCanonical(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return json.Marshal(canonicalizeValue(decoded))
}

func canonicalizeValue(v interface{}) interface{} {
	switch vv := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(vv))
		for k := range vv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ordered := make(map[string]interface{}, len(vv))
		for _, k := range keys {
			ordered[k] = canonicalizeValue(vv[k])
		}
		return ordered
	case []interface{}:
		out := make([]interface{}, len(vv))
		for i, e := range vv {
			out[i] = canonicalizeValue(e)
		}
		return out
	default:
		return vv
	}
}
