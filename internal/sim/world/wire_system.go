package world

import (
	"voxelwire.ai/internal/sim/world/logic/wirepower"
)

// wireSystem queues wire changes produced by block edits and drains them
// through the propagation driver once per tick.
type wireSystem struct {
	driver *wirepower.Driver

	pending []wirepower.Change
	queued  map[wirepower.Change]struct{}

	passTotal  uint64
	staleTotal uint64

	last wireTickStats
}

type wireTickStats struct {
	Passes    int
	Nodes     int
	Offers    int
	Changed   int
	Broken    int
	Stale     int
	Truncated bool
}

func newWireSystem(d *wirepower.Driver) *wireSystem {
	return &wireSystem{
		driver: d,
		queued: map[wirepower.Change]struct{}{},
	}
}

func (s *wireSystem) enqueue(c wirepower.Change) {
	if _, ok := s.queued[c]; ok {
		return
	}
	s.queued[c] = struct{}{}
	s.pending = append(s.pending, c)
}

func (s *wireSystem) take() []wirepower.Change {
	batch := s.pending
	s.pending = nil
	s.queued = map[wirepower.Change]struct{}{}
	return batch
}

// notifyBlockChange schedules the wire updates implied by replacing from
// with to at pos.
func (w *World) notifyBlockChange(pos Vec3i, from, to uint16) {
	wire := w.blocks.wire
	switch {
	case from == wire && to != wire:
		w.wires.enqueue(wirepower.Change{Pos: pos, Kind: wirepower.ChangeRemoved})
	case to == wire && from != wire:
		w.wires.enqueue(wirepower.Change{Pos: pos, Kind: wirepower.ChangePlaced})
	}
	w.repowerWiresAround(pos)
}

// repowerWiresAround queues every wire whose inputs, links or support may
// depend on the cell at pos.
func (w *World) repowerWiresAround(pos Vec3i) {
	wire := w.blocks.wire
	add := func(p Vec3i) {
		if w.chunks.GetBlock(p) == wire {
			w.wires.enqueue(wirepower.Change{Pos: p, Kind: wirepower.ChangeRepowered})
		}
	}
	for _, o := range wirepower.Neighbors6 {
		add(pos.Add(o))
	}
	for _, d := range wirepower.Horizontal {
		side := pos.Add(d.Offset())
		add(side.Up())
		add(side.Down())
	}
}

// systemWires runs propagation rounds until the queue is empty or the
// per-tick pass budget is spent. Leftovers carry over to the next tick.
func (w *World) systemWires(nowTick uint64) {
	s := w.wires
	s.last = wireTickStats{}
	for round := 0; round < w.cfg.MaxWirePassesPerTick && len(s.pending) > 0; round++ {
		batch := s.take()
		res := s.driver.Run(batch)
		s.passTotal++
		w.recordWirePass(nowTick, batch, res)
	}
	if len(s.pending) > 0 {
		w.logger.Printf("tick=%d deferring %d wire changes to next tick", nowTick, len(s.pending))
	}
	w.wireObsThisTick = mergeWireObs(w.wireObsThisTick)
}

func (w *World) recordWirePass(nowTick uint64, batch []wirepower.Change, res wirepower.Result) {
	s := w.wires
	s.last.Passes++
	s.last.Nodes += res.Nodes
	s.last.Offers += res.Offers
	s.last.Changed += len(res.Changed)
	s.last.Broken += len(res.Broken)
	s.last.Stale += len(res.Stale)
	s.last.Truncated = s.last.Truncated || res.Truncated

	for _, c := range res.Changed {
		w.wireObsThisTick = append(w.wireObsThisTick, wireObs(c))
	}
	if res.Truncated {
		w.logger.Printf("tick=%d pass=%d truncated at %d nodes", nowTick, s.passTotal, res.Nodes)
		// Carry the drain past the cut. A pass that changed nothing leaves
		// the region beyond it settled.
		if len(res.Changed) > 0 {
			for _, p := range res.Frontier {
				s.enqueue(wirepower.Change{Pos: p, Kind: wirepower.ChangeRepowered})
			}
		}
	}
	for _, p := range res.Stale {
		s.staleTotal++
		w.logger.Printf("tick=%d pass=%d stale wire at %v, requeued", nowTick, s.passTotal, p.ToArray())
		if w.chunks.GetBlock(p) == w.blocks.wire {
			s.enqueue(wirepower.Change{Pos: p, Kind: wirepower.ChangeRepowered})
		}
	}
	for _, f := range res.Failed {
		w.logger.Printf("tick=%d pass=%d commit failed at %v: %v", nowTick, s.passTotal, f.Pos.ToArray(), f.Err)
	}

	if w.wirePassLogger == nil {
		return
	}
	entry := WirePassEntry{
		Tick:      nowTick,
		Pass:      s.passTotal,
		Roots:     len(batch),
		Nodes:     res.Nodes,
		Offers:    res.Offers,
		Truncated: res.Truncated,
		Changed:   len(res.Changed),
		Failed:    len(res.Failed),
	}
	for _, p := range res.Broken {
		entry.Broken = append(entry.Broken, p.ToArray())
	}
	for _, p := range res.Stale {
		entry.Stale = append(entry.Stale, p.ToArray())
	}
	_ = w.wirePassLogger.WriteWirePass(entry)
}
