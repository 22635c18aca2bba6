package world

import (
	"fmt"
	"strconv"
	"strings"

	"voxelwire.ai/internal/persistence/snapshot"
	"voxelwire.ai/internal/sim/world/logic/consumerpower"
	"voxelwire.ai/internal/sim/world/logic/wirepower"
)

// ImportSnapshot replaces the current in-memory world state with the snapshot.
// It sets the world's tick to snapshotTick+1 (the next tick to simulate).
//
// This must be called only when the world is stopped or from the world loop goroutine.
func (w *World) ImportSnapshot(s snapshot.SnapshotV1) error {
	if err := w.validateSnapshotImport(s); err != nil {
		return err
	}

	// Operational parameters: snapshot is authoritative when present.
	if s.SnapshotEveryTicks > 0 {
		w.cfg.SnapshotEveryTicks = s.SnapshotEveryTicks
	}
	if s.ItemTTLTicks > 0 {
		w.cfg.ItemTTLTicks = s.ItemTTLTicks
	}
	if s.MaxWirePasses > 0 {
		w.cfg.MaxWirePassesPerTick = s.MaxWirePasses
	}

	if err := w.importChunkSnapshots(s.Chunks); err != nil {
		return err
	}

	w.agents = map[string]*Agent{}
	w.clients = map[string]*clientState{}
	var maxAgent uint64
	for _, a := range s.Agents {
		if a.ID == "" {
			continue
		}
		w.agents[a.ID] = &Agent{ID: a.ID, Name: a.Name}
		if n, ok := parseUintAfterPrefix("A", a.ID); ok && n > maxAgent {
			maxAgent = n
		}
	}

	w.items = map[string]*ItemEntity{}
	w.itemsAt = map[Vec3i][]string{}
	var maxItem uint64
	for _, it := range s.Items {
		if it.EntityID == "" || it.Item == "" || it.Count <= 0 {
			continue
		}
		pos := wirepower.PosFromArray(it.Pos)
		w.items[it.EntityID] = &ItemEntity{
			EntityID:    it.EntityID,
			Pos:         pos,
			Item:        it.Item,
			Count:       it.Count,
			CreatedTick: it.CreatedTick,
			ExpiresTick: it.ExpiresTick,
		}
		w.itemsAt[pos] = append(w.itemsAt[pos], it.EntityID)
		if n, ok := parseUintAfterPrefix("IT", it.EntityID); ok && n > maxItem {
			maxItem = n
		}
	}

	w.conveyors = map[Vec3i]ConveyorMeta{}
	for _, c := range s.Conveyors {
		w.conveyors[wirepower.PosFromArray(c.Pos)] = ConveyorMeta{DX: c.DX, DZ: c.DZ}
	}
	w.switches = map[Vec3i]bool{}
	for _, sw := range s.Switches {
		w.switches[wirepower.PosFromArray(sw.Pos)] = sw.On
	}
	w.sensors = map[Vec3i]bool{}
	for _, se := range s.Sensors {
		w.sensors[wirepower.PosFromArray(se.Pos)] = se.On
	}
	w.rebuildLamps()

	w.wires.take()
	for _, c := range s.PendingWires {
		w.wires.enqueue(wirepower.Change{Pos: wirepower.PosFromArray(c.Pos), Kind: wirepower.ChangeKind(c.Kind)})
	}
	w.wires.passTotal = s.Counters.WirePass

	w.nextAgentNum.Store(maxU64(s.Counters.NextAgent, maxAgent))
	w.nextItemNum.Store(maxU64(s.Counters.NextItem, maxItem))
	w.tick.Store(s.Header.Tick + 1)
	return nil
}

func (w *World) validateSnapshotImport(s snapshot.SnapshotV1) error {
	if s.Header.Version != 1 {
		return fmt.Errorf("unsupported snapshot version: %d", s.Header.Version)
	}
	if w.cfg.Seed != s.Seed {
		return fmt.Errorf("snapshot seed mismatch: cfg=%d snap=%d", w.cfg.Seed, s.Seed)
	}
	if w.cfg.Height != s.Height {
		return fmt.Errorf("snapshot height mismatch: cfg=%d snap=%d", w.cfg.Height, s.Height)
	}
	if w.cfg.BoundaryR != s.BoundaryR {
		return fmt.Errorf("snapshot boundary_r mismatch: cfg=%d snap=%d", w.cfg.BoundaryR, s.BoundaryR)
	}
	if w.cfg.SignalMin != s.SignalMin || w.cfg.SignalMax != s.SignalMax {
		return fmt.Errorf("snapshot signal range mismatch: cfg=[%d,%d] snap=[%d,%d]",
			w.cfg.SignalMin, w.cfg.SignalMax, s.SignalMin, s.SignalMax)
	}
	return nil
}

func (w *World) importChunkSnapshots(chunks []snapshot.ChunkV1) error {
	store := NewChunkStore(w.chunks.gen)
	want := chunkSize * chunkSize * w.cfg.Height
	for _, ch := range chunks {
		if ch.Height != w.cfg.Height {
			return fmt.Errorf("snapshot chunk height mismatch: got %d want %d", ch.Height, w.cfg.Height)
		}
		if len(ch.Blocks) != want || len(ch.Power) != want {
			return fmt.Errorf("snapshot chunk %d,%d size mismatch: blocks=%d power=%d want %d",
				ch.CX, ch.CZ, len(ch.Blocks), len(ch.Power), want)
		}
		c := newChunk(ch.CX, ch.CZ, ch.Height)
		copy(c.Blocks, ch.Blocks)
		copy(c.Power, ch.Power)
		store.putChunk(c)
	}
	w.chunks = store
	return nil
}

// rebuildLamps re-registers lamps from the loaded chunks with their current
// lit state.
func (w *World) rebuildLamps() {
	w.lamps = map[Vec3i]bool{}
	if !w.blocks.hasLamp {
		return
	}
	env := consumerEnv{w: w}
	for _, k := range w.chunks.LoadedChunkKeys() {
		ch := w.chunks.chunks[k]
		for i, b := range ch.Blocks {
			if b != w.blocks.lamp {
				continue
			}
			y := i / (chunkSize * chunkSize)
			r := i % (chunkSize * chunkSize)
			p := Vec3i{X: k.CX*chunkSize + r%chunkSize, Y: y, Z: k.CZ*chunkSize + r/chunkSize}
			w.lamps[p] = consumerpower.LampLit(env, p, w.cfg.SignalMax)
		}
	}
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func parseUintAfterPrefix(prefix, id string) (uint64, bool) {
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(id, prefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
