package world

// systemConveyors moves dropped item entities along conveyor blocks.
//
// One move per tick per item entity. Items only move onto conveyors and
// other non-solid blocks, and only off belts the wire network enables.
func (w *World) systemConveyors(nowTick uint64) {
	if len(w.conveyors) == 0 || len(w.items) == 0 {
		return
	}

	enabled := map[Vec3i]bool{}
	isEnabled := func(p Vec3i) bool {
		v, ok := enabled[p]
		if !ok {
			v = w.conveyorEnabled(p)
			enabled[p] = v
		}
		return v
	}

	for _, id := range w.sortedItemIDs() {
		e := w.items[id]
		if !e.live() {
			continue
		}
		if w.chunks.GetBlock(e.Pos) != w.blocks.conveyor {
			continue
		}
		meta, ok := w.conveyors[e.Pos]
		if !ok || (meta.DX == 0 && meta.DZ == 0) {
			continue
		}
		if !isEnabled(e.Pos) {
			continue
		}

		to := Vec3i{X: e.Pos.X + int(meta.DX), Y: e.Pos.Y, Z: e.Pos.Z + int(meta.DZ)}
		if !w.chunks.inBounds(to) {
			continue
		}
		if w.blockSolid(w.chunks.GetBlock(to)) {
			continue
		}
		w.moveItemEntity(nowTick, "WORLD", id, to, "CONVEYOR_MOVE")
	}
}
