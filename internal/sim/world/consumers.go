package world

import (
	"voxelwire.ai/internal/protocol"
	"voxelwire.ai/internal/sim/catalogs"
	"voxelwire.ai/internal/sim/world/logic/consumerpower"
)

// consumerEnv lets conveyors and lamps read committed wire state.
type consumerEnv struct{ w *World }

func (e consumerEnv) Role(p Vec3i) string {
	d, ok := e.w.blockDef(e.w.chunks.GetBlock(p))
	if !ok {
		return ""
	}
	return d.Signal
}

func (e consumerEnv) WirePower(p Vec3i) int {
	if e.w.chunks.GetBlock(p) != e.w.blocks.wire {
		return 0
	}
	return e.w.chunks.GetPower(p)
}

func (e consumerEnv) SourceOn(p Vec3i) bool {
	d, ok := e.w.blockDef(e.w.chunks.GetBlock(p))
	if !ok {
		return false
	}
	switch d.Signal {
	case catalogs.SignalSource:
		return d.Power > 0
	case catalogs.SignalSwitch:
		return e.w.switches[p]
	case catalogs.SignalSensor:
		return e.w.sensors[p]
	}
	return false
}

func (w *World) conveyorEnabled(pos Vec3i) bool {
	return consumerpower.ConveyorEnabled(consumerEnv{w: w}, pos, w.cfg.SignalMax)
}

// systemLamps refreshes lamp states after the wires settled and reports the
// lamps that changed.
func (w *World) systemLamps(nowTick uint64) {
	if len(w.lamps) == 0 {
		return
	}
	env := consumerEnv{w: w}
	for _, p := range sortedKeys(w.lamps) {
		lit := consumerpower.LampLit(env, p, w.cfg.SignalMax)
		if lit == w.lamps[p] {
			continue
		}
		w.lamps[p] = lit
		w.lampObsThisTick = append(w.lampObsThisTick, protocol.LampObs{Pos: p.ToArray(), Lit: lit})
		w.broadcast(map[string]interface{}{
			"t":    nowTick,
			"type": "LAMP",
			"pos":  p.ToArray(),
			"lit":  lit,
		})
	}
}
