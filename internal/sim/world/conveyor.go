package world

import (
	"voxelwire.ai/internal/sim/world/logic/ids"
)

// ConveyorMeta stores minimal runtime metadata for a conveyor block.
// We keep it intentionally small and deterministic: a single cardinal direction.
type ConveyorMeta struct {
	DX int8 // -1,0,1
	DZ int8 // -1,0,1
}

func conveyorIDAt(pos Vec3i) string { return ids.ConveyorIDAt(pos.X, pos.Y, pos.Z) }

func (w *World) ensureConveyor(pos Vec3i, dx, dz int) {
	if dx > 1 {
		dx = 1
	} else if dx < -1 {
		dx = -1
	}
	if dz > 1 {
		dz = 1
	} else if dz < -1 {
		dz = -1
	}
	// Enforce cardinal direction (deterministic tie-break).
	if dx != 0 && dz != 0 {
		dz = 0
	}
	w.conveyors[pos] = ConveyorMeta{DX: int8(dx), DZ: int8(dz)}
}

func (w *World) removeConveyor(nowTick uint64, actor string, pos Vec3i, reason string) {
	if _, ok := w.conveyors[pos]; !ok {
		return
	}
	delete(w.conveyors, pos)
	w.auditEvent(nowTick, actor, "CONVEYOR_REMOVE", pos, reason, map[string]any{
		"conveyor_id": conveyorIDAt(pos),
	})
}

func conveyorDirTag(m ConveyorMeta) string {
	switch {
	case m.DX == 1 && m.DZ == 0:
		return "+X"
	case m.DX == -1 && m.DZ == 0:
		return "-X"
	case m.DX == 0 && m.DZ == 1:
		return "+Z"
	case m.DX == 0 && m.DZ == -1:
		return "-Z"
	default:
		return "?"
	}
}

// parseConveyorDir accepts the tags produced by conveyorDirTag. An empty tag
// means +X.
func parseConveyorDir(tag string) (dx, dz int, ok bool) {
	switch tag {
	case "", "+X":
		return 1, 0, true
	case "-X":
		return -1, 0, true
	case "+Z":
		return 0, 1, true
	case "-Z":
		return 0, -1, true
	default:
		return 0, 0, false
	}
}
