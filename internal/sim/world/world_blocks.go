package world

// setBlock writes a block, keeps per-block metadata in sync and schedules
// wire updates. It reports whether the cell changed.
func (w *World) setBlock(nowTick uint64, actor string, pos Vec3i, to uint16, reason string) bool {
	from := w.chunks.GetBlock(pos)
	if !w.chunks.SetBlock(pos, to) {
		return false
	}
	w.auditSetBlock(nowTick, actor, pos, from, to, reason)
	w.dropBlockMeta(nowTick, actor, pos, from, reason)
	w.addBlockMeta(pos, to)
	w.notifyBlockChange(pos, from, to)
	return true
}

func (w *World) dropBlockMeta(nowTick uint64, actor string, pos Vec3i, from uint16, reason string) {
	ids := w.blocks
	switch {
	case ids.hasSwitch && from == ids.switchID:
		w.removeSwitch(nowTick, actor, pos, reason)
	case ids.hasSensor && from == ids.sensor:
		delete(w.sensors, pos)
	case ids.hasConveyor && from == ids.conveyor:
		w.removeConveyor(nowTick, actor, pos, reason)
	case ids.hasLamp && from == ids.lamp:
		delete(w.lamps, pos)
	}
}

func (w *World) addBlockMeta(pos Vec3i, to uint16) {
	ids := w.blocks
	switch {
	case ids.hasSwitch && to == ids.switchID:
		w.ensureSwitch(pos, false)
	case ids.hasSensor && to == ids.sensor:
		w.sensors[pos] = false
	case ids.hasConveyor && to == ids.conveyor:
		w.ensureConveyor(pos, 1, 0)
	case ids.hasLamp && to == ids.lamp:
		w.lamps[pos] = false
	}
}
