// Package consumerpower decides whether blocks that read the wire network
// (conveyors, lamps) are active.
package consumerpower

import "voxelwire.ai/internal/sim/world/logic/wirepower"

type Pos = wirepower.Pos

// Env is the read-only view of the world a consumer samples.
type Env interface {
	// Role is the signal role of the block at p ("WIRE", "SOURCE", "SWITCH",
	// "SENSOR", "CONSUMER" or "").
	Role(Pos) string
	// WirePower is the committed power of the wire at p, or 0.
	WirePower(Pos) int
	// SourceOn reports whether the non-wire emitter at p is active.
	SourceOn(Pos) bool
}

// Signal returns the strongest input reaching pos from its face neighbours
// and whether any wire or emitter is adjacent at all.
func Signal(env Env, pos Pos, sourceMax int) (level int, wired bool) {
	for _, o := range wirepower.Neighbors6 {
		p := pos.Add(o)
		switch env.Role(p) {
		case "WIRE":
			wired = true
			if v := env.WirePower(p); v > level {
				level = v
			}
		case "SOURCE", "SWITCH", "SENSOR":
			wired = true
			if env.SourceOn(p) && sourceMax > level {
				level = sourceMax
			}
		}
	}
	return level, wired
}

// ConveyorEnabled reports whether the belt at pos moves this tick. A belt
// with no adjacent wire or emitter runs freely.
func ConveyorEnabled(env Env, pos Pos, sourceMax int) bool {
	level, wired := Signal(env, pos, sourceMax)
	if !wired {
		return true
	}
	return level > 0
}

// LampLit reports whether the lamp at pos is on.
func LampLit(env Env, pos Pos, sourceMax int) bool {
	level, _ := Signal(env, pos, sourceMax)
	return level > 0
}
