package world

import (
	"fmt"

	"voxelwire.ai/internal/protocol"
	"voxelwire.ai/internal/sim/world/logic/rates"
)

const maxAgentEvents = 256

// Agent is a connected editor. Agents have no body in the world; they only
// submit edits and receive observations.
type Agent struct {
	ID   string
	Name string

	Events []protocol.Event

	edits rates.Window
}

func (a *Agent) AddEvent(e protocol.Event) {
	if len(a.Events) >= maxAgentEvents {
		// Drop the oldest.
		copy(a.Events, a.Events[1:])
		a.Events = a.Events[:len(a.Events)-1]
	}
	a.Events = append(a.Events, e)
}

func (a *Agent) TakeEvents() []protocol.Event {
	out := a.Events
	a.Events = nil
	return out
}

func (w *World) joinAgent(name string, out chan []byte) JoinResponse {
	n := w.nextAgentNum.Add(1)
	id := fmt.Sprintf("A%d", n)
	if name == "" {
		name = id
	}
	w.agents[id] = &Agent{ID: id, Name: name}
	if out != nil {
		w.clients[id] = &clientState{Out: out}
	}
	return JoinResponse{Welcome: w.welcome(id)}
}

func (w *World) handleLeave(agentID string) {
	delete(w.agents, agentID)
	delete(w.clients, agentID)
}

func (w *World) welcome(agentID string) protocol.WelcomeMsg {
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		AgentID:         agentID,
		WorldID:         w.cfg.ID,
		WorldParams: protocol.WorldParams{
			TickRateHz: w.cfg.TickRateHz,
			ChunkSize:  [3]int{chunkSize, chunkSize, w.cfg.Height},
			Height:     w.cfg.Height,
			Seed:       w.cfg.Seed,
			SignalMin:  w.cfg.SignalMin,
			SignalMax:  w.cfg.SignalMax,
		},
		Catalogs: protocol.CatalogDigests{
			BlockPalette: protocol.DigestRef{Digest: w.catalogs.Blocks.PaletteDigest, Count: len(w.catalogs.Blocks.Palette)},
			ItemPalette:  protocol.DigestRef{Digest: w.catalogs.Items.PaletteDigest, Count: len(w.catalogs.Items.Palette)},
		},
	}
}

// broadcast queues e for every agent this tick.
func (w *World) broadcast(e protocol.Event) {
	w.eventsThisTick = append(w.eventsThisTick, e)
}
