package world

import (
	"voxelwire.ai/internal/protocol"
	"voxelwire.ai/internal/sim/catalogs"
	"voxelwire.ai/internal/sim/world/logic/wirepower"
)

func actionResult(tick uint64, ref string, ok bool, code string, message string) protocol.Event {
	e := protocol.Event{
		"t":    tick,
		"type": "ACTION_RESULT",
		"ref":  ref,
		"ok":   ok,
	}
	if code != "" {
		e["code"] = code
	}
	if message != "" {
		e["message"] = message
	}
	return e
}

func (w *World) applyAct(a *Agent, act protocol.ActMsg, nowTick uint64) {
	stale := act.Tick > 0 && act.Tick+uint64(w.cfg.ActStaleTicks) < nowTick
	for _, ed := range act.Edits {
		if stale {
			a.AddEvent(actionResult(nowTick, ed.ID, false, protocol.ErrStale, "act tick too old"))
			continue
		}
		if ok, _ := a.edits.Allow(nowTick, uint64(w.cfg.EditWindowTicks), w.cfg.EditMax); !ok {
			a.AddEvent(actionResult(nowTick, ed.ID, false, protocol.ErrRateLimit, "too many edits"))
			continue
		}
		code, msg := w.applyEdit(a, ed, nowTick)
		a.AddEvent(actionResult(nowTick, ed.ID, code == "", code, msg))
	}
}

// applyEdit returns an empty code on success.
func (w *World) applyEdit(a *Agent, ed protocol.EditReq, nowTick uint64) (code string, message string) {
	pos := wirepower.PosFromArray(ed.Pos)
	switch ed.Type {
	case protocol.EditPlace:
		return w.editPlace(a, pos, ed, nowTick)
	case protocol.EditBreak:
		return w.editBreak(a, pos, nowTick)
	case protocol.EditToggle:
		if !w.chunks.inBounds(pos) {
			return protocol.ErrInvalidTarget, "out of bounds"
		}
		if !w.blocks.hasSwitch || w.chunks.GetBlock(pos) != w.blocks.switchID {
			return protocol.ErrInvalidTarget, "not a switch"
		}
		if !w.toggleSwitch(nowTick, a.ID, pos) {
			return protocol.ErrInternal, "switch state missing"
		}
		return "", ""
	default:
		return protocol.ErrBadRequest, "unknown edit type"
	}
}

func (w *World) editPlace(a *Agent, pos Vec3i, ed protocol.EditReq, nowTick uint64) (string, string) {
	if ed.Block == "" {
		return protocol.ErrBadRequest, "missing block"
	}
	id, ok := w.catalogs.Blocks.Index[ed.Block]
	if !ok || id == w.blocks.air {
		return protocol.ErrBadRequest, "unknown block"
	}
	if !w.chunks.inBounds(pos) {
		return protocol.ErrInvalidTarget, "out of bounds"
	}
	if w.chunks.GetBlock(pos) != w.blocks.air {
		return protocol.ErrBlocked, "cell occupied"
	}
	def := w.catalogs.Blocks.Defs[ed.Block]
	if def.Signal == catalogs.SignalWire && !(wireGrid{w: w}).Supported(pos) {
		return protocol.ErrBlocked, "wire needs a solid block below"
	}
	dx, dz := 1, 0
	if w.blocks.hasConveyor && id == w.blocks.conveyor {
		if dx, dz, ok = parseConveyorDir(ed.Dir); !ok {
			return protocol.ErrBadRequest, "bad conveyor dir"
		}
	}
	if !w.setBlock(nowTick, a.ID, pos, id, "PLACE") {
		return protocol.ErrConflict, "cell unchanged"
	}
	if w.blocks.hasConveyor && id == w.blocks.conveyor {
		w.ensureConveyor(pos, dx, dz)
	}
	return "", ""
}

func (w *World) editBreak(a *Agent, pos Vec3i, nowTick uint64) (string, string) {
	if !w.chunks.inBounds(pos) {
		return protocol.ErrInvalidTarget, "out of bounds"
	}
	from := w.chunks.GetBlock(pos)
	if from == w.blocks.air {
		return protocol.ErrInvalidTarget, "nothing to break"
	}
	def, _ := w.blockDef(from)
	if !def.Breakable {
		return protocol.ErrBlocked, "unbreakable"
	}
	if !w.setBlock(nowTick, a.ID, pos, w.blocks.air, "BREAK") {
		return protocol.ErrConflict, "cell unchanged"
	}
	if def.DropsItem != "" {
		w.spawnItemEntity(nowTick, a.ID, pos, def.DropsItem, 1, "BREAK")
	}
	return "", ""
}
