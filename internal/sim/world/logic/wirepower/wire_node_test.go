package wirepower

import (
	"errors"
	"testing"
)

func TestOfferPower_Monotonic(t *testing.T) {
	n := NewWireNode(at(0, 0), CellState{Block: blockWire}, DefaultRange)
	offers := []struct {
		power int
		dir   Dir
	}{
		{3, East}, {7, North}, {5, West}, {7, South}, {2, East}, {9, West}, {1, North},
	}
	prev := n.VirtualPower
	for _, o := range offers {
		n.OfferPower(o.power, o.dir)
		if n.VirtualPower < prev {
			t.Fatalf("virtual power decreased: %d -> %d", prev, n.VirtualPower)
		}
		prev = n.VirtualPower
	}
	if n.VirtualPower != 9 {
		t.Fatalf("virtual power: got %d want 9", n.VirtualPower)
	}
	if n.Priority != 9 {
		t.Fatalf("priority: got %d want 9", n.Priority)
	}
}

func TestOfferPower_TieAccumulates(t *testing.T) {
	n := NewWireNode(at(0, 0), CellState{Block: blockWire}, DefaultRange)
	if !n.OfferPower(6, East) {
		t.Fatalf("first offer should report a change")
	}
	if n.OfferPower(6, West) {
		t.Fatalf("equal offer must not report a change")
	}
	if n.VirtualPower != 6 {
		t.Fatalf("virtual power: got %d want 6", n.VirtualPower)
	}
	if !n.FlowsFrom(East) || !n.FlowsFrom(West) || n.Inflows() != 2 {
		t.Fatalf("flow in: got %04b want East|West", n.FlowIn)
	}
}

func TestOfferPower_StrictIncreaseResetsTies(t *testing.T) {
	n := NewWireNode(at(0, 0), CellState{Block: blockWire}, DefaultRange)
	n.OfferPower(4, East)
	n.OfferPower(4, North)
	if !n.OfferPower(8, South) {
		t.Fatalf("greater offer should report a change")
	}
	if n.FlowIn != South.bit() {
		t.Fatalf("flow in: got %04b want only South", n.FlowIn)
	}
}

func TestOfferPower_LowerOfferIgnored(t *testing.T) {
	n := NewWireNode(at(0, 0), CellState{Block: blockWire}, DefaultRange)
	n.OfferPower(10, East)
	if n.OfferPower(7, North) {
		t.Fatalf("lower offer reported a change")
	}
	if n.VirtualPower != 10 || n.FlowIn != East.bit() {
		t.Fatalf("state changed by lower offer: power=%d flow=%04b", n.VirtualPower, n.FlowIn)
	}
}

func TestOfferPower_RetiredNodesRejectOffers(t *testing.T) {
	for _, retire := range []func(*WireNode){(*WireNode).MarkRemoved, (*WireNode).MarkBroken} {
		n := NewWireNode(at(0, 0), CellState{Block: blockWire, Power: 3}, DefaultRange)
		retire(n)
		if n.OfferPower(12, East) {
			t.Fatalf("%s node accepted an offer", n.Status)
		}
		if n.VirtualPower != 0 || n.FlowIn != 0 {
			t.Fatalf("%s node changed: power=%d flow=%04b", n.Status, n.VirtualPower, n.FlowIn)
		}
	}
}

func TestSetPower_RemovedNeverTouchesGrid(t *testing.T) {
	g := newFakeGrid()
	n := NewWireNode(at(0, 0), CellState{Block: blockWire, Power: 5}, DefaultRange)
	n.MarkRemoved()
	for i := 0; i < 3; i++ {
		if err := n.SetPower(g); err != nil {
			t.Fatalf("SetPower on removed node: %v", err)
		}
	}
	if g.writes != 0 || len(g.cells) != 0 {
		t.Fatalf("removed node touched the grid: writes=%d cells=%d", g.writes, len(g.cells))
	}
}

func TestSetPower_StaleWhenCellReplaced(t *testing.T) {
	g := newFakeGrid()
	g.wire(at(0, 0), 2)
	n := NewWireNode(at(0, 0), g.Cell(at(0, 0)), DefaultRange)
	n.OfferPower(9, East)

	g.replace(at(0, 0), blockStone, 0)

	if err := n.SetPower(g); !errors.Is(err, ErrStaleNode) {
		t.Fatalf("SetPower: got %v want ErrStaleNode", err)
	}
	if got := g.Cell(at(0, 0)); got.Block != blockStone || got.Power != 0 {
		t.Fatalf("stale commit overwrote the cell: %+v", got)
	}
}

func TestSetPower_StaleWhenEpochAdvanced(t *testing.T) {
	g := newFakeGrid()
	g.wire(at(0, 0), 2)
	n := NewWireNode(at(0, 0), g.Cell(at(0, 0)), DefaultRange)
	n.OfferPower(9, East)

	// Another pass rewrote the wire in between.
	g.wire(at(0, 0), 4)

	if err := n.SetPower(g); !errors.Is(err, ErrStaleNode) {
		t.Fatalf("SetPower: got %v want ErrStaleNode", err)
	}
	if g.power(at(0, 0)) != 4 {
		t.Fatalf("power overwritten: got %d want 4", g.power(at(0, 0)))
	}
}

func TestSetPower_ClampsAndWrites(t *testing.T) {
	g := newFakeGrid()
	g.wire(at(0, 0), 0)
	n := NewWireNode(at(0, 0), g.Cell(at(0, 0)), DefaultRange)
	n.OfferPower(40, East)
	if err := n.SetPower(g); err != nil {
		t.Fatalf("SetPower: %v", err)
	}
	if n.CurrentPower != 15 || g.power(at(0, 0)) != 15 {
		t.Fatalf("committed power: node=%d grid=%d want 15", n.CurrentPower, g.power(at(0, 0)))
	}
}

func TestSetPower_BrokenDropsWire(t *testing.T) {
	g := newFakeGrid()
	g.wire(at(0, 0), 7)
	n := NewWireNode(at(0, 0), g.Cell(at(0, 0)), DefaultRange)
	n.MarkBroken()
	if err := n.SetPower(g); err != nil {
		t.Fatalf("SetPower: %v", err)
	}
	if len(g.broken) != 1 || g.broken[0] != at(0, 0) {
		t.Fatalf("broken cells: %v", g.broken)
	}
	if g.Cell(at(0, 0)).Block != blockAir {
		t.Fatalf("broken wire still present")
	}
}

func TestWireNodeSet_Panics(t *testing.T) {
	n := NewWireNode(at(0, 0), CellState{Block: blockWire}, DefaultRange)
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrUnsupportedMutation) {
			t.Fatalf("recover: got %v want ErrUnsupportedMutation", r)
		}
	}()
	n.Set(at(1, 0), CellState{})
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusFresh, StatusDiscovered, true},
		{StatusDiscovered, StatusSearched, true},
		{StatusSearched, StatusSeeded, true},
		{StatusSeeded, StatusSettled, true},
		{StatusSettled, StatusCommitted, true},
		{StatusFresh, StatusSeeded, false},
		{StatusSettled, StatusSeeded, false},
		{StatusDiscovered, StatusBroken, true},
		{StatusSeeded, StatusRemoved, true},
		{StatusSettled, StatusBroken, false},
		{StatusRemoved, StatusSearched, false},
		{StatusBroken, StatusRemoved, false},
		{StatusCommitted, StatusFresh, false},
	}
	for _, tc := range cases {
		if got := tc.from.canMove(tc.to); got != tc.ok {
			t.Errorf("%s -> %s: got %v want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestFlowDir(t *testing.T) {
	cases := []struct {
		mask uint8
		want Dir
	}{
		{0, NoDir},
		{West.bit(), West},
		{South.bit(), South},
		{West.bit() | East.bit(), NoDir},
		{West.bit() | North.bit(), West},
		{North.bit() | East.bit(), North},
		{West.bit() | North.bit() | East.bit(), North},
		{0x0f, NoDir},
	}
	for _, tc := range cases {
		if got := FlowDir(tc.mask, NoDir); got != tc.want {
			t.Errorf("FlowDir(%04b): got %s want %s", tc.mask, got, tc.want)
		}
	}
	if got := FlowDir(0, East); got != East {
		t.Errorf("fallback: got %s want EAST", got)
	}
}
