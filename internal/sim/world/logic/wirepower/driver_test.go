package wirepower

import "testing"

// line builds wires at x=1..n on z=0 with a source of the given power at x=0.
func line(g *fakeGrid, n, source int) {
	g.source(at(0, 0), source)
	for x := 1; x <= n; x++ {
		g.wire(at(x, 0), 0)
	}
}

func powers(g *fakeGrid, n int) []int {
	out := make([]int, 0, n)
	for x := 1; x <= n; x++ {
		out = append(out, g.power(at(x, 0)))
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRun_LineFromSource(t *testing.T) {
	g := newFakeGrid()
	line(g, 5, 15)
	d, _ := newFakeDriver(g, Config{})

	res := d.Run([]Change{{Pos: at(1, 0), Kind: ChangePlaced}})

	if got, want := powers(g, 5), []int{15, 14, 13, 12, 11}; !equalInts(got, want) {
		t.Fatalf("powers: got %v want %v", got, want)
	}
	if res.Nodes != 5 || len(res.Changed) != 5 {
		t.Fatalf("result: nodes=%d changed=%d", res.Nodes, len(res.Changed))
	}
	if len(res.Stale) != 0 || len(res.Failed) != 0 {
		t.Fatalf("unexpected failures: stale=%v failed=%v", res.Stale, res.Failed)
	}
}

func TestRun_SourceRemovedDrainsLine(t *testing.T) {
	g := newFakeGrid()
	line(g, 5, 15)
	d, _ := newFakeDriver(g, Config{})
	d.Run([]Change{{Pos: at(1, 0), Kind: ChangePlaced}})

	g.replace(at(0, 0), blockAir, 0)
	res := d.Run([]Change{{Pos: at(1, 0), Kind: ChangeRepowered}})

	if got, want := powers(g, 5), []int{0, 0, 0, 0, 0}; !equalInts(got, want) {
		t.Fatalf("powers: got %v want %v", got, want)
	}
	if len(res.Changed) != 5 {
		t.Fatalf("changed: got %d want 5", len(res.Changed))
	}
}

func TestRun_RemovedWireCutsLine(t *testing.T) {
	g := newFakeGrid()
	line(g, 5, 15)
	d, _ := newFakeDriver(g, Config{})
	d.Run([]Change{{Pos: at(1, 0), Kind: ChangePlaced}})

	g.replace(at(3, 0), blockAir, 0)
	res := d.Run([]Change{{Pos: at(3, 0), Kind: ChangeRemoved}})

	if got, want := []int{g.power(at(1, 0)), g.power(at(2, 0)), g.power(at(4, 0)), g.power(at(5, 0))}, []int{15, 14, 0, 0}; !equalInts(got, want) {
		t.Fatalf("powers: got %v want %v", got, want)
	}
	if g.Cell(at(3, 0)).Block != blockAir {
		t.Fatalf("removed cell rewritten")
	}
	if res.Nodes != 5 {
		t.Fatalf("nodes: got %d want 5 (removed root + 4 wires)", res.Nodes)
	}
}

func TestRun_StrongerInflowWins(t *testing.T) {
	g := newFakeGrid()
	// W(0,0) fed 11 from the west; V(1,1) fed 8 from the south; X(1,0) between them.
	g.source(at(-1, 0), 11)
	g.wire(at(0, 0), 0)
	g.wire(at(1, 0), 0)
	g.wire(at(1, 1), 0)
	g.source(at(1, 2), 8)
	d, _ := newFakeDriver(g, Config{})

	p := d.run([]Change{{Pos: at(1, 0), Kind: ChangePlaced}})

	x := &p.arena[p.byPos[at(1, 0)]]
	if x.VirtualPower != 10 {
		t.Fatalf("virtual power: got %d want 10", x.VirtualPower)
	}
	if x.FlowIn != East.bit() {
		t.Fatalf("flow in: got %04b want only East", x.FlowIn)
	}
	if x.IFlowDir != East {
		t.Fatalf("flow dir: got %s want EAST", x.IFlowDir)
	}
	if g.power(at(1, 1)) != 9 {
		t.Fatalf("weaker branch: got %d want 9", g.power(at(1, 1)))
	}
}

func TestRun_TiedInflowsRecorded(t *testing.T) {
	g := newFakeGrid()
	g.source(at(-1, 0), 11)
	g.wire(at(0, 0), 0)
	g.wire(at(1, 0), 0)
	g.wire(at(2, 0), 0)
	g.source(at(3, 0), 11)
	d, _ := newFakeDriver(g, Config{})

	p := d.run([]Change{{Pos: at(1, 0), Kind: ChangePlaced}})

	x := &p.arena[p.byPos[at(1, 0)]]
	if x.VirtualPower != 10 || g.power(at(1, 0)) != 10 {
		t.Fatalf("power: virtual=%d grid=%d want 10", x.VirtualPower, g.power(at(1, 0)))
	}
	if !x.FlowsFrom(East) || !x.FlowsFrom(West) || x.Inflows() != 2 {
		t.Fatalf("flow in: got %04b want East|West", x.FlowIn)
	}
	if x.IFlowDir != NoDir {
		t.Fatalf("opposed inflows should cancel, got %s", x.IFlowDir)
	}
}

func TestRun_StaleNodeIsolated(t *testing.T) {
	g := newFakeGrid()
	line(g, 5, 15)
	d, _ := newFakeDriver(g, Config{})

	// The first commit triggers a host edit that replaces the far wire.
	fired := false
	g.onWrite = func(Pos) {
		if fired {
			return
		}
		fired = true
		g.replace(at(5, 0), blockStone, 0)
	}
	res := d.Run([]Change{{Pos: at(1, 0), Kind: ChangePlaced}})

	if len(res.Stale) != 1 || res.Stale[0] != at(5, 0) {
		t.Fatalf("stale: got %v want [%v]", res.Stale, at(5, 0))
	}
	if g.Cell(at(5, 0)).Block != blockStone {
		t.Fatalf("stale cell overwritten: %+v", g.Cell(at(5, 0)))
	}
	if got, want := powers(g, 4), []int{15, 14, 13, 12}; !equalInts(got, want) {
		t.Fatalf("siblings: got %v want %v", got, want)
	}
}

func TestRun_UnsupportedWireBreaks(t *testing.T) {
	g := newFakeGrid()
	line(g, 5, 15)
	d, conns := newFakeDriver(g, Config{})
	d.Run([]Change{{Pos: at(1, 0), Kind: ChangePlaced}})

	conns.unsupported[at(2, 0)] = true
	res := d.Run([]Change{{Pos: at(2, 0), Kind: ChangeRepowered}})

	if len(res.Broken) != 1 || res.Broken[0] != at(2, 0) {
		t.Fatalf("broken: got %v", res.Broken)
	}
	if g.Cell(at(2, 0)).Block != blockAir {
		t.Fatalf("broken wire still in grid")
	}
	if g.power(at(1, 0)) != 15 || g.power(at(3, 0)) != 0 || g.power(at(5, 0)) != 0 {
		t.Fatalf("powers after break: %d %d %d", g.power(at(1, 0)), g.power(at(3, 0)), g.power(at(5, 0)))
	}
}

func TestRun_BudgetKeepsBoundaryFloor(t *testing.T) {
	g := newFakeGrid()
	line(g, 5, 15)
	d, _ := newFakeDriver(g, Config{})
	d.Run([]Change{{Pos: at(1, 0), Kind: ChangePlaced}})

	small, _ := newFakeDriver(g, Config{MaxNodes: 3})
	res := small.Run([]Change{{Pos: at(5, 0), Kind: ChangeRepowered}})

	if !res.Truncated || res.Nodes != 3 {
		t.Fatalf("truncated=%v nodes=%d", res.Truncated, res.Nodes)
	}
	if got, want := powers(g, 5), []int{15, 14, 13, 12, 11}; !equalInts(got, want) {
		t.Fatalf("powers: got %v want %v", got, want)
	}
	if len(res.Frontier) != 1 || res.Frontier[0] != at(2, 0) {
		t.Fatalf("frontier: %v", res.Frontier)
	}
}

func TestRun_FrontierDrainsOverPasses(t *testing.T) {
	g := newFakeGrid()
	line(g, 5, 15)
	d, _ := newFakeDriver(g, Config{})
	d.Run([]Change{{Pos: at(1, 0), Kind: ChangePlaced}})

	g.replace(at(0, 0), blockAir, 0)
	small, _ := newFakeDriver(g, Config{MaxNodes: 3})
	res := small.Run([]Change{{Pos: at(1, 0), Kind: ChangeRepowered}})
	if got, want := powers(g, 5), []int{9, 10, 11, 12, 11}; !equalInts(got, want) {
		t.Fatalf("first pass powers: got %v want %v", got, want)
	}
	if len(res.Frontier) != 1 || res.Frontier[0] != at(4, 0) {
		t.Fatalf("frontier: %v", res.Frontier)
	}

	passes := 1
	for len(res.Changed) > 0 && len(res.Frontier) > 0 {
		if passes > 20 {
			t.Fatalf("drain did not settle, powers %v", powers(g, 5))
		}
		roots := make([]Change, 0, len(res.Frontier))
		for _, p := range res.Frontier {
			roots = append(roots, Change{Pos: p, Kind: ChangeRepowered})
		}
		res = small.Run(roots)
		passes++
	}
	if got, want := powers(g, 5), []int{0, 0, 0, 0, 0}; !equalInts(got, want) {
		t.Fatalf("powers after %d passes: got %v want %v", passes, got, want)
	}
}

// settledAt reports whether the wire at pos holds the best of its external
// input and its neighbours' power less one.
func settledAt(g *fakeGrid, conns *fakeConns, pos Pos) bool {
	want := 0
	for _, o := range Neighbors6 {
		np := pos.Add(o)
		if c := g.Cell(np); c.Block == blockSource && int(c.Power) > want {
			want = int(c.Power)
		}
	}
	for _, l := range conns.Links(pos) {
		if v := g.power(l.Pos) - 1; v > want {
			want = v
		}
	}
	return g.power(pos) == DefaultRange.Clamp(want)
}

func TestRun_JunctionsAndLoopsSettle(t *testing.T) {
	g := newFakeGrid()
	g.source(at(0, 0), 15)
	want := map[Pos]int{
		at(1, 0): 15,
		at(2, 0): 14,
		at(3, 0): 13,
		at(4, 0): 12,
		at(2, 1): 13,
		at(3, 1): 12,
		at(2, 2): 12,
		at(3, 2): 11,
		at(2, -1): 13,
	}
	var roots []Change
	for p := range want {
		g.wire(p, 0)
		roots = append(roots, Change{Pos: p, Kind: ChangePlaced})
	}
	d, conns := newFakeDriver(g, Config{})
	d.Run(roots)

	for p, v := range want {
		if got := g.power(p); got != v {
			t.Fatalf("power at %v: got %d want %d", p, got, v)
		}
		if !settledAt(g, conns, p) {
			t.Fatalf("wire at %v not settled", p)
		}
	}

	// Cutting the trunk reroutes the far side through the loop.
	g.replace(at(3, 0), blockAir, 0)
	d.Run([]Change{{Pos: at(3, 0), Kind: ChangeRemoved}})
	delete(want, at(3, 0))
	want[at(4, 0)] = 0
	for p, v := range want {
		if got := g.power(p); got != v {
			t.Fatalf("after cut, power at %v: got %d want %d", p, got, v)
		}
		if !settledAt(g, conns, p) {
			t.Fatalf("after cut, wire at %v not settled", p)
		}
	}
}

func TestRun_NonWireRootIgnored(t *testing.T) {
	g := newFakeGrid()
	g.replace(at(0, 0), blockStone, 0)
	d, _ := newFakeDriver(g, Config{})

	res := d.Run([]Change{{Pos: at(0, 0), Kind: ChangeRepowered}})
	if res.Nodes != 0 || g.writes != 0 {
		t.Fatalf("non-wire root produced work: nodes=%d writes=%d", res.Nodes, g.writes)
	}
}

func TestRun_CustomRange(t *testing.T) {
	g := newFakeGrid()
	line(g, 5, 15)
	d, _ := newFakeDriver(g, Config{Range: Range{Min: 0, Max: 3}})

	d.Run([]Change{{Pos: at(1, 0), Kind: ChangePlaced}})

	if got, want := powers(g, 5), []int{3, 2, 1, 0, 0}; !equalInts(got, want) {
		t.Fatalf("powers: got %v want %v", got, want)
	}
}
