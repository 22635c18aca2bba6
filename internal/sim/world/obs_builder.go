package world

import "voxelwire.ai/internal/protocol"

const maxObsItems = 256

func (w *World) buildObs(a *Agent, nowTick uint64) protocol.ObsMsg {
	events := append(a.TakeEvents(), w.eventsThisTick...)
	if events == nil {
		events = []protocol.Event{}
	}
	wires := w.wireObsThisTick
	if wires == nil {
		wires = []protocol.WireObs{}
	}

	items := make([]protocol.ItemObs, 0, len(w.items))
	for _, id := range w.sortedItemIDs() {
		if len(items) >= maxObsItems {
			break
		}
		e := w.items[id]
		if !e.live() {
			continue
		}
		items = append(items, protocol.ItemObs{ID: e.EntityID, Pos: e.Pos.ToArray(), Item: e.Item, Count: e.Count})
	}

	return protocol.ObsMsg{
		Type:            protocol.TypeObs,
		ProtocolVersion: protocol.Version,
		Tick:            nowTick,
		AgentID:         a.ID,
		WorldID:         w.cfg.ID,
		Wires:           wires,
		Lamps:           w.lampObsThisTick,
		Items:           items,
		Events:          events,
	}
}
