package worldtest

import (
	"encoding/json"
	"testing"

	"voxelwire.ai/internal/persistence/snapshot"
	"voxelwire.ai/internal/protocol"
	"voxelwire.ai/internal/sim/catalogs"
	world "voxelwire.ai/internal/sim/world"
)

// Harness drives a world through its exported API only: joins and ACTs go
// through StepOnce and every agent's OBS stream is read from its Out channel.
type Harness struct {
	T    *testing.T
	Cats *catalogs.Catalogs
	W    *world.World

	DefaultAgentID string
	LastDigest     string

	sessions map[string]*session
}

type session struct {
	AgentID string
	Out     chan []byte
	lastObs protocol.ObsMsg
}

func NewHarness(t *testing.T, cfg world.WorldConfig, cats *catalogs.Catalogs, agentName string) *Harness {
	t.Helper()
	w, err := world.New(cfg, cats)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return NewHarnessWithWorld(t, w, cats, agentName)
}

// NewHarnessWithWorld wraps an existing world, e.g. one that just imported a
// snapshot. An empty agentName skips the initial join.
func NewHarnessWithWorld(t *testing.T, w *world.World, cats *catalogs.Catalogs, agentName string) *Harness {
	t.Helper()
	if w == nil {
		t.Fatalf("NewHarnessWithWorld: nil world")
	}
	h := &Harness{
		T:        t,
		Cats:     cats,
		W:        w,
		sessions: map[string]*session{},
	}
	if agentName != "" {
		h.DefaultAgentID = h.Join(agentName)
	}
	return h
}

func (h *Harness) Join(agentName string) string {
	h.T.Helper()
	out := make(chan []byte, 16)
	resp := make(chan world.JoinResponse, 1)
	_, h.LastDigest = h.W.StepOnce([]world.JoinRequest{{Name: agentName, Out: out, Resp: resp}}, nil, nil)
	jr := <-resp
	if jr.Welcome.AgentID == "" {
		h.T.Fatalf("join returned empty agent id")
	}
	s := &session{AgentID: jr.Welcome.AgentID, Out: out}
	h.sessions[s.AgentID] = s
	h.drainAllObs()
	return s.AgentID
}

func (h *Harness) LastObs() protocol.ObsMsg {
	return h.LastObsFor(h.DefaultAgentID)
}

func (h *Harness) LastObsFor(agentID string) protocol.ObsMsg {
	h.T.Helper()
	s := h.sessions[agentID]
	if s == nil {
		h.T.Fatalf("unknown agent id: %q", agentID)
	}
	return s.lastObs
}

func (h *Harness) Edit(edits ...protocol.EditReq) protocol.ObsMsg {
	return h.EditFor(h.DefaultAgentID, edits...)
}

func (h *Harness) EditFor(agentID string, edits ...protocol.EditReq) protocol.ObsMsg {
	h.T.Helper()
	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Tick:            h.W.CurrentTick(),
		AgentID:         agentID,
		Edits:           edits,
	}
	_, h.LastDigest = h.W.StepOnce(nil, nil, []world.ActionEnvelope{{AgentID: agentID, Act: act}})
	h.drainAllObs()
	return h.LastObsFor(agentID)
}

func (h *Harness) StepNoop() protocol.ObsMsg {
	h.T.Helper()
	_, h.LastDigest = h.W.StepOnce(nil, nil, nil)
	h.drainAllObs()
	return h.LastObs()
}

// Snapshot exports at the last completed tick so an import resumes at the
// world's current tick.
func (h *Harness) Snapshot() (tick uint64, snap snapshot.SnapshotV1) {
	h.T.Helper()
	cur := h.W.CurrentTick()
	if cur == 0 {
		return 0, h.W.ExportSnapshot(0)
	}
	tick = cur - 1
	return tick, h.W.ExportSnapshot(tick)
}

func (h *Harness) drainAllObs() {
	h.T.Helper()
	for _, s := range h.sessions {
		h.drainOneObs(s)
	}
}

func (h *Harness) drainOneObs(s *session) {
	h.T.Helper()
	var last []byte
	for {
		select {
		case b := <-s.Out:
			last = b
			continue
		default:
		}
		break
	}
	if len(last) == 0 {
		return
	}
	var obs protocol.ObsMsg
	if err := json.Unmarshal(last, &obs); err != nil {
		h.T.Fatalf("unmarshal OBS: %v", err)
	}
	s.lastObs = obs
}

func Place(ref, block string, x, y, z int) protocol.EditReq {
	return protocol.EditReq{ID: ref, Type: protocol.EditPlace, Block: block, Pos: [3]int{x, y, z}}
}

func Break(ref string, x, y, z int) protocol.EditReq {
	return protocol.EditReq{ID: ref, Type: protocol.EditBreak, Pos: [3]int{x, y, z}}
}

func Toggle(ref string, x, y, z int) protocol.EditReq {
	return protocol.EditReq{ID: ref, Type: protocol.EditToggle, Pos: [3]int{x, y, z}}
}

// Result returns the ACTION_RESULT for ref in obs, or nil.
func Result(obs protocol.ObsMsg, ref string) protocol.Event {
	for _, e := range obs.Events {
		if e["type"] == "ACTION_RESULT" && e["ref"] == ref {
			return e
		}
	}
	return nil
}

// WirePower returns the power reported for pos in obs and whether it changed.
func WirePower(obs protocol.ObsMsg, pos [3]int) (int, bool) {
	for _, w := range obs.Wires {
		if w.Pos == pos {
			return w.Power, true
		}
	}
	return 0, false
}

// LampLit returns the lamp state reported for pos in obs and whether it changed.
func LampLit(obs protocol.ObsMsg, pos [3]int) (bool, bool) {
	for _, l := range obs.Lamps {
		if l.Pos == pos {
			return l.Lit, true
		}
	}
	return false, false
}
