// Package ids defines the step, node and event identifiers shared by the
// transaction tree, the enricher and the ledger index.
package ids

import (
	"fmt"
	"strconv"
	"strings"
)

// StepID is a monotonically increasing, non-negative step counter. Its
// decimal form is bounded to 11 characters (the counter is bounded by the
// signed-32 maximum).
type StepID int64

// String returns the unpadded decimal representation of the step id.
func (s StepID) String() string {
	return strconv.FormatInt(int64(s), 10)
}

// LocalNodeID identifies a node within a single, not-yet-committed
// transaction tree.
type LocalNodeID int64

// EventID is the global identifier of a committed node: the pair of the
// step that committed it and its local node id within that step's tree.
type EventID struct {
	StepID      StepID
	LocalNodeID LocalNodeID
}

// NewEventID builds an EventID from its components.
func NewEventID(step StepID, node LocalNodeID) EventID {
	return EventID{StepID: step, LocalNodeID: node}
}

// String renders the canonical wire form "#<step>:<node>".
func (e EventID) String() string {
	return "#" + e.StepID.String() + ":" + strconv.FormatInt(int64(e.LocalNodeID), 10)
}

// MaxEventIDLength is the upper bound on the canonical textual form,
// matching spec.md's 255-byte wire bound.
const MaxEventIDLength = 255

// ParseEventID is the exact inverse of EventID.String. Any other shape
// yields ErrParseEventID with the offending input attached.
func ParseEventID(s string) (EventID, error) {
	if len(s) == 0 || s[0] != '#' {
		return EventID{}, fmt.Errorf("%w %s", ErrParseEventID, s)
	}
	body := s[1:]
	sep := strings.IndexByte(body, ':')
	if sep < 0 {
		return EventID{}, fmt.Errorf("%w %s", ErrParseEventID, s)
	}
	stepText, nodeText := body[:sep], body[sep+1:]
	if stepText == "" || nodeText == "" {
		return EventID{}, fmt.Errorf("%w %s", ErrParseEventID, s)
	}
	step, err := strconv.ParseInt(stepText, 10, 64)
	if err != nil || step < 0 {
		return EventID{}, fmt.Errorf("%w %s", ErrParseEventID, s)
	}
	node, err := strconv.ParseInt(nodeText, 10, 64)
	if err != nil || node < 0 {
		return EventID{}, fmt.Errorf("%w %s", ErrParseEventID, s)
	}
	// Reject non-canonical forms (leading zeros, '+' signs, etc.) by
	// requiring the round-trip to hold exactly.
	candidate := NewEventID(StepID(step), LocalNodeID(node))
	if candidate.String() != s {
		return EventID{}, fmt.Errorf("%w %s", ErrParseEventID, s)
	}
	if len(s) > MaxEventIDLength {
		return EventID{}, fmt.Errorf("%w %s", ErrParseEventID, s)
	}
	return candidate, nil
}
