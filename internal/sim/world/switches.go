package world

import "voxelwire.ai/internal/sim/world/logic/ids"

func switchIDAt(pos Vec3i) string { return ids.SwitchIDAt(pos.X, pos.Y, pos.Z) }

func (w *World) ensureSwitch(pos Vec3i, on bool) {
	if w.switches == nil {
		w.switches = map[Vec3i]bool{}
	}
	w.switches[pos] = on
}

func (w *World) removeSwitch(nowTick uint64, actor string, pos Vec3i, reason string) {
	if _, ok := w.switches[pos]; !ok {
		return
	}
	delete(w.switches, pos)
	w.auditEvent(nowTick, actor, "SWITCH_REMOVE", pos, reason, map[string]any{
		"switch_id": switchIDAt(pos),
	})
}

// toggleSwitch flips the switch at pos and repowers the wires around it.
func (w *World) toggleSwitch(nowTick uint64, actor string, pos Vec3i) bool {
	on, ok := w.switches[pos]
	if !ok {
		return false
	}
	on = !on
	w.switches[pos] = on
	w.auditEvent(nowTick, actor, "SWITCH_TOGGLE", pos, "TOGGLE", map[string]any{
		"switch_id": switchIDAt(pos),
		"on":        on,
	})
	w.broadcast(map[string]interface{}{
		"t":         nowTick,
		"type":      "SWITCH",
		"switch_id": switchIDAt(pos),
		"on":        on,
	})
	w.repowerWiresAround(pos)
	return true
}

// sortedKeys returns the keys of a position-keyed map in coordinate order.
func sortedKeys[V any](m map[Vec3i]V) []Vec3i {
	out := make([]Vec3i, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sortPositions(out)
	return out
}
