package ids

import (
	"strings"
	"testing"
)

func TestEventIDRoundTrip(t *testing.T) {
	cases := []EventID{
		NewEventID(0, 0),
		NewEventID(7, 3),
		NewEventID(123456789, 42),
	}
	for _, e := range cases {
		s := e.String()
		got, err := ParseEventID(s)
		if err != nil {
			t.Fatalf("ParseEventID(%q) failed: %v", s, err)
		}
		if got != e {
			t.Errorf("round-trip mismatch: got %+v, want %+v", got, e)
		}
	}
}

func TestParseEventIDLiteral(t *testing.T) {
	got, err := ParseEventID("#7:3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != NewEventID(7, 3) {
		t.Errorf("got %+v, want {7 3}", got)
	}
}

func TestParseEventIDRejectsMalformed(t *testing.T) {
	for _, s := range []string{"7:3", "#7", "#7:abc", "", "#:3", "#7:", "#-1:3", "#7:-1"} {
		if _, err := ParseEventID(s); err == nil {
			t.Errorf("ParseEventID(%q) should have failed", s)
		} else if !strings.Contains(err.Error(), "cannot parse eventId") {
			t.Errorf("ParseEventID(%q) error missing standard prefix: %v", s, err)
		}
	}
}

func TestEventIDStringBound(t *testing.T) {
	e := NewEventID(99999999999, 99999999999)
	if len(e.String()) > MaxEventIDLength {
		t.Errorf("event id string exceeds bound: %q", e.String())
	}
}
