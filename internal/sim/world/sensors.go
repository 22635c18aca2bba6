package world

import (
	"voxelwire.ai/internal/sim/world/logic/ids"
	"voxelwire.ai/internal/sim/world/logic/wirepower"
)

// sensorActive reports whether a live dropped item sits on the sensor block
// or on one of its face neighbours.
func (w *World) sensorActive(pos Vec3i) bool {
	if w.hasLiveItemAt(pos) {
		return true
	}
	for _, o := range wirepower.Neighbors6 {
		if w.hasLiveItemAt(pos.Add(o)) {
			return true
		}
	}
	return false
}

// systemSensors re-samples every sensor and repowers the wires next to the
// ones that flipped.
func (w *World) systemSensors(nowTick uint64) {
	if len(w.sensors) == 0 {
		return
	}
	for _, p := range sortedKeys(w.sensors) {
		on := w.sensorActive(p)
		if on == w.sensors[p] {
			continue
		}
		w.sensors[p] = on
		w.auditEvent(nowTick, "WORLD", "SENSOR", p, "ITEMS", map[string]any{
			"sensor_id": ids.SensorIDAt(p.X, p.Y, p.Z),
			"on":        on,
		})
		w.repowerWiresAround(p)
	}
}
