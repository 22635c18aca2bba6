package world

import (
	"encoding/json"
	"time"
)

func (w *World) step(joins []JoinRequest, leaves []string, actions []ActionEnvelope) {
	stepStart := time.Now()
	nowTick := w.tick.Load()

	w.wireObsThisTick = w.wireObsThisTick[:0]
	w.lampObsThisTick = w.lampObsThisTick[:0]
	w.eventsThisTick = w.eventsThisTick[:0]

	// Apply leaves and joins deterministically at tick boundary.
	recordedLeaves := make([]string, 0, len(leaves))
	for _, id := range leaves {
		if _, ok := w.agents[id]; ok {
			w.handleLeave(id)
			recordedLeaves = append(recordedLeaves, id)
		}
	}
	recordedJoins := make([]RecordedJoin, 0, len(joins))
	for _, req := range joins {
		resp := w.joinAgent(req.Name, req.Out)
		if req.Resp != nil {
			req.Resp <- resp
		}
		recordedJoins = append(recordedJoins, RecordedJoin{AgentID: resp.Welcome.AgentID, Name: req.Name})
	}

	// Apply actions in server_receive_order (the inbox order).
	recorded := make([]RecordedAction, 0, len(actions))
	for _, env := range actions {
		a := w.agents[env.AgentID]
		if a == nil {
			continue
		}
		env.Act.AgentID = env.AgentID // trust session identity
		recorded = append(recorded, RecordedAction{AgentID: env.AgentID, Act: env.Act})
		w.applyAct(a, env.Act, nowTick)
	}

	// Systems: sensors -> wires -> lamps -> conveyors -> item expiry.
	w.systemSensors(nowTick)
	w.systemWires(nowTick)
	w.systemLamps(nowTick)
	w.systemConveyors(nowTick)
	w.cleanupExpiredItemEntities(nowTick)

	// Build + send OBS for each agent.
	for id, a := range w.agents {
		cl := w.clients[id]
		if cl == nil {
			continue
		}
		obs := w.buildObs(a, nowTick)
		b, err := json.Marshal(obs)
		if err != nil {
			continue
		}
		sendLatest(cl.Out, b)
	}

	digest := w.stateDigest(nowTick)
	if w.tickLogger != nil {
		_ = w.tickLogger.WriteTick(TickLogEntry{Tick: nowTick, Joins: recordedJoins, Leaves: recordedLeaves, Actions: recorded, Digest: digest})
	}

	// Snapshot every N ticks (default 3000), starting after tick 0.
	if w.snapshotSink != nil && nowTick != 0 && w.cfg.SnapshotEveryTicks > 0 {
		every := uint64(w.cfg.SnapshotEveryTicks)
		if nowTick%every == 0 {
			snap := w.ExportSnapshot(nowTick)
			select {
			case w.snapshotSink <- snap:
			default:
				// Drop snapshot if sink is backed up.
			}
		}
	}

	stepMS := float64(time.Since(stepStart).Microseconds()) / 1000.0
	nextTick := w.tick.Add(1)

	ws := w.wires.last
	w.metrics.Store(WorldMetrics{
		Tick:         nextTick,
		Agents:       len(w.agents),
		Clients:      len(w.clients),
		LoadedChunks: len(w.chunks.chunks),
		Items:        len(w.items),
		QueueDepths: QueueDepths{
			Inbox: len(w.inbox),
			Join:  len(w.join),
			Leave: len(w.leave),
		},
		StepMS: stepMS,
		Wire: WireMetrics{
			Passes:     ws.Passes,
			Nodes:      ws.Nodes,
			Offers:     ws.Offers,
			Changed:    ws.Changed,
			Broken:     ws.Broken,
			Stale:      ws.Stale,
			Truncated:  ws.Truncated,
			Pending:    len(w.wires.pending),
			PassTotal:  w.wires.passTotal,
			StaleTotal: w.wires.staleTotal,
		},
	})
}
