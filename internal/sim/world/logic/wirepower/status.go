package wirepower

import "fmt"

// Status is the lifecycle stage of a WireNode within one pass.
type Status uint8

const (
	StatusFresh Status = iota
	StatusDiscovered
	StatusSearched
	StatusSeeded
	StatusSettled
	StatusCommitted

	// StatusRemoved and StatusBroken absorb: no offers, no further transitions.
	StatusRemoved
	StatusBroken
)

var statusNames = [...]string{
	StatusFresh:      "FRESH",
	StatusDiscovered: "DISCOVERED",
	StatusSearched:   "SEARCHED",
	StatusSeeded:     "SEEDED",
	StatusSettled:    "SETTLED",
	StatusCommitted:  "COMMITTED",
	StatusRemoved:    "REMOVED",
	StatusBroken:     "BROKEN",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Retired reports whether the node left the propagation for this pass.
func (s Status) Retired() bool { return s == StatusRemoved || s == StatusBroken }

func (s Status) canMove(to Status) bool {
	switch to {
	case StatusRemoved, StatusBroken:
		return s < StatusSettled
	default:
		return !s.Retired() && to == s+1
	}
}

// Origin records why a node is part of the pass.
type Origin uint8

const (
	OriginNetwork Origin = iota // reached by discovery
	OriginRoot                  // named by a change
	OriginAdded                 // named by a change that placed it
)
