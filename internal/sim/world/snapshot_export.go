package world

import (
	"sort"

	"voxelwire.ai/internal/persistence/snapshot"
)

func (w *World) ExportSnapshot(nowTick uint64) snapshot.SnapshotV1 {
	keys := w.chunks.LoadedChunkKeys()
	chunks := make([]snapshot.ChunkV1, 0, len(keys))
	for _, k := range keys {
		ch := w.chunks.chunks[k]
		blocks := make([]uint16, len(ch.Blocks))
		copy(blocks, ch.Blocks)
		power := make([]uint8, len(ch.Power))
		copy(power, ch.Power)
		chunks = append(chunks, snapshot.ChunkV1{
			CX:     k.CX,
			CZ:     k.CZ,
			Height: ch.Height,
			Blocks: blocks,
			Power:  power,
		})
	}

	agentIDs := make([]string, 0, len(w.agents))
	for id := range w.agents {
		agentIDs = append(agentIDs, id)
	}
	sort.Strings(agentIDs)
	agents := make([]snapshot.AgentV1, 0, len(agentIDs))
	for _, id := range agentIDs {
		a := w.agents[id]
		agents = append(agents, snapshot.AgentV1{ID: a.ID, Name: a.Name})
	}

	items := make([]snapshot.ItemEntityV1, 0, len(w.items))
	for _, id := range w.sortedItemIDs() {
		e := w.items[id]
		if !e.live() {
			continue
		}
		items = append(items, snapshot.ItemEntityV1{
			EntityID:    e.EntityID,
			Pos:         e.Pos.ToArray(),
			Item:        e.Item,
			Count:       e.Count,
			CreatedTick: e.CreatedTick,
			ExpiresTick: e.ExpiresTick,
		})
	}

	conveyors := make([]snapshot.ConveyorV1, 0, len(w.conveyors))
	for _, p := range sortedKeys(w.conveyors) {
		m := w.conveyors[p]
		conveyors = append(conveyors, snapshot.ConveyorV1{Pos: p.ToArray(), DX: m.DX, DZ: m.DZ})
	}
	switches := make([]snapshot.SwitchV1, 0, len(w.switches))
	for _, p := range sortedKeys(w.switches) {
		switches = append(switches, snapshot.SwitchV1{Pos: p.ToArray(), On: w.switches[p]})
	}
	sensors := make([]snapshot.SensorV1, 0, len(w.sensors))
	for _, p := range sortedKeys(w.sensors) {
		sensors = append(sensors, snapshot.SensorV1{Pos: p.ToArray(), On: w.sensors[p]})
	}
	pending := make([]snapshot.WireChangeV1, 0, len(w.wires.pending))
	for _, c := range w.wires.pending {
		pending = append(pending, snapshot.WireChangeV1{Pos: c.Pos.ToArray(), Kind: uint8(c.Kind)})
	}

	return snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: 1,
			WorldID: w.cfg.ID,
			Tick:    nowTick,
		},
		Seed:               w.cfg.Seed,
		TickRate:           w.cfg.TickRateHz,
		Height:             w.cfg.Height,
		BoundaryR:          w.cfg.BoundaryR,
		SnapshotEveryTicks: w.cfg.SnapshotEveryTicks,
		ItemTTLTicks:       w.cfg.ItemTTLTicks,
		SignalMin:          w.cfg.SignalMin,
		SignalMax:          w.cfg.SignalMax,
		MaxWireNodes:       w.cfg.MaxWireNodes,
		MaxWirePasses:      w.cfg.MaxWirePassesPerTick,
		Chunks:             chunks,
		Agents:             agents,
		Items:              items,
		Conveyors:          conveyors,
		Switches:           switches,
		Sensors:            sensors,
		PendingWires:       pending,
		Counters: snapshot.CountersV1{
			NextAgent: w.nextAgentNum.Load(),
			NextItem:  w.nextItemNum.Load(),
			WirePass:  w.wires.passTotal,
		},
	}
}
