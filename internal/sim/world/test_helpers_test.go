package world

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"testing"

	"voxelwire.ai/internal/protocol"
	"voxelwire.ai/internal/sim/catalogs"
)

func testCatalogs(t *testing.T) *catalogs.Catalogs {
	t.Helper()
	cats, err := catalogs.Load(filepath.Join("..", "..", "..", "configs"))
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return cats
}

func newTestWorld(t *testing.T, cfg WorldConfig) *World {
	t.Helper()
	if cfg.ID == "" {
		cfg.ID = "test"
	}
	w, err := New(cfg, testCatalogs(t))
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	w.SetLogger(log.New(io.Discard, "", 0))
	return w
}

// joinTester adds one agent without a client connection and returns its id.
func joinTester(t *testing.T, w *World) string {
	t.Helper()
	before := len(w.agents)
	w.StepOnce([]JoinRequest{{Name: "tester"}}, nil, nil)
	if len(w.agents) != before+1 {
		t.Fatalf("join did not register an agent")
	}
	return fmt.Sprintf("A%d", w.nextAgentNum.Load())
}

func place(ref string, block string, x, y, z int) protocol.EditReq {
	return protocol.EditReq{ID: ref, Type: protocol.EditPlace, Block: block, Pos: [3]int{x, y, z}}
}

func breakAt(ref string, x, y, z int) protocol.EditReq {
	return protocol.EditReq{ID: ref, Type: protocol.EditBreak, Pos: [3]int{x, y, z}}
}

func toggle(ref string, x, y, z int) protocol.EditReq {
	return protocol.EditReq{ID: ref, Type: protocol.EditToggle, Pos: [3]int{x, y, z}}
}

// edit submits one ACT from agentID and steps a tick.
func edit(w *World, agentID string, edits ...protocol.EditReq) string {
	_, digest := w.StepOnce(nil, nil, []ActionEnvelope{{
		AgentID: agentID,
		Act: protocol.ActMsg{
			Type:            protocol.TypeAct,
			ProtocolVersion: protocol.Version,
			Tick:            w.CurrentTick(),
			Edits:           edits,
		},
	}})
	return digest
}

func resultFor(t *testing.T, w *World, agentID, ref string) protocol.Event {
	t.Helper()
	a := w.agents[agentID]
	if a == nil {
		t.Fatalf("agent %s missing", agentID)
	}
	for i := len(a.Events) - 1; i >= 0; i-- {
		e := a.Events[i]
		if e["type"] == "ACTION_RESULT" && e["ref"] == ref {
			return e
		}
	}
	t.Fatalf("no ACTION_RESULT for %s", ref)
	return nil
}

func requireOK(t *testing.T, w *World, agentID string, refs ...string) {
	t.Helper()
	for _, ref := range refs {
		if e := resultFor(t, w, agentID, ref); e["ok"] != true {
			t.Fatalf("%s failed: %v", ref, e)
		}
	}
}

func powerAt(w *World, x, y, z int) int {
	return w.chunks.GetPower(Vec3i{X: x, Y: y, Z: z})
}

func blockAt(w *World, x, y, z int) string {
	return w.blockName(w.chunks.GetBlock(Vec3i{X: x, Y: y, Z: z}))
}
