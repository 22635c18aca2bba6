package world

import (
	"voxelwire.ai/internal/sim/catalogs"
	"voxelwire.ai/internal/sim/world/logic/wirepower"
)

// wireGrid exposes the chunk store and block rules to the propagation driver.
type wireGrid struct{ w *World }

var (
	_ wirepower.Grid        = wireGrid{}
	_ wirepower.Connections = wireGrid{}
)

func (g wireGrid) Cell(pos Vec3i) wirepower.CellState { return g.w.chunks.Cell(pos) }

func (g wireGrid) IsWire(s wirepower.CellState) bool { return s.Block == g.w.blocks.wire }

func (g wireGrid) SetCell(pos Vec3i, s wirepower.CellState) error {
	return g.w.chunks.SetCell(pos, s)
}

// Break pops an unsupported wire: the cell becomes air and the wire drops as
// an item. Follow-up changes are queued for the next round.
func (g wireGrid) Break(pos Vec3i) error {
	w := g.w
	if !w.chunks.inBounds(pos) {
		return errOutOfBounds
	}
	nowTick := w.tick.Load()
	from := w.chunks.GetBlock(pos)
	w.setBlock(nowTick, "WORLD", pos, w.blocks.air, "WIRE_UNSUPPORTED")
	if w.blocks.wireDrop != "" {
		w.spawnItemEntity(nowTick, "WORLD", pos, w.blocks.wireDrop, 1, "WIRE_BREAK")
	}
	w.broadcast(map[string]interface{}{
		"t":    nowTick,
		"type": "WIRE_BROKEN",
		"pos":  pos.ToArray(),
		"from": w.blockName(from),
	})
	return nil
}

// Links connects a wire to horizontal neighbours and to wires one step up or
// down. Climbing needs the cell above pos open; descending needs the side
// cell open.
func (g wireGrid) Links(pos Vec3i) []wirepower.Link {
	w := g.w
	out := make([]wirepower.Link, 0, 4)
	aboveOpen := !w.blockSolid(w.chunks.GetBlock(pos.Up()))
	for _, d := range wirepower.Horizontal {
		side := pos.Add(d.Offset())
		sideBlock := w.chunks.GetBlock(side)
		if sideBlock == w.blocks.wire {
			out = append(out, wirepower.Link{Pos: side, Dir: d})
			continue
		}
		if aboveOpen {
			if up := side.Up(); w.chunks.GetBlock(up) == w.blocks.wire {
				out = append(out, wirepower.Link{Pos: up, Dir: d})
			}
		}
		if !w.blockSolid(sideBlock) {
			if down := side.Down(); w.chunks.GetBlock(down) == w.blocks.wire {
				out = append(out, wirepower.Link{Pos: down, Dir: d})
			}
		}
	}
	return out
}

func (g wireGrid) Emits(src *wirepower.Node, to Vec3i) int {
	w := g.w
	d, ok := w.blockDef(src.State.Block)
	if !ok {
		return 0
	}
	switch d.Signal {
	case catalogs.SignalSource:
		return d.Power
	case catalogs.SignalSwitch:
		if w.switches[src.Pos] {
			return w.cfg.SignalMax
		}
	case catalogs.SignalSensor:
		if w.sensors[src.Pos] {
			return w.cfg.SignalMax
		}
	}
	return 0
}

// Supported implements the resting rule: the bottom layer always holds a
// wire, anything above needs a solid block underneath.
func (g wireGrid) Supported(pos Vec3i) bool {
	if pos.Y <= 0 {
		return true
	}
	return g.w.blockSolid(g.w.chunks.GetBlock(pos.Down()))
}
