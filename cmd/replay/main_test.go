package main

import (
	"io"
	"log"
	"path/filepath"
	"testing"

	persistlog "voxelwire.ai/internal/persistence/log"
	"voxelwire.ai/internal/protocol"
	"voxelwire.ai/internal/sim/catalogs"
	"voxelwire.ai/internal/sim/world"
)

func TestReplay_VerifiesLoggedTicks(t *testing.T) {
	cats, err := catalogs.Load(filepath.Join("..", "..", "configs"))
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	dir := t.TempDir()

	w, err := world.New(world.WorldConfig{ID: "replay", Height: 2, Seed: 5}, cats)
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	w.SetLogger(log.New(io.Discard, "", 0))
	tickLog := persistlog.NewTickLogger(dir)
	w.SetTickLogger(tickLog)

	first, _ := w.StepOnce(nil, nil, nil)
	snap := w.ExportSnapshot(first)

	w.StepOnce([]world.JoinRequest{{Name: "builder"}}, nil, nil)
	act := func(edits ...protocol.EditReq) []world.ActionEnvelope {
		return []world.ActionEnvelope{{AgentID: "A1", Act: protocol.ActMsg{
			Type:            protocol.TypeAct,
			ProtocolVersion: protocol.Version,
			Tick:            w.CurrentTick(),
			Edits:           edits,
		}}}
	}
	w.StepOnce(nil, nil, act(
		protocol.EditReq{ID: "s", Type: protocol.EditPlace, Block: "SWITCH", Pos: [3]int{0, 1, 0}},
		protocol.EditReq{ID: "a", Type: protocol.EditPlace, Block: "WIRE", Pos: [3]int{1, 1, 0}},
		protocol.EditReq{ID: "b", Type: protocol.EditPlace, Block: "WIRE", Pos: [3]int{2, 1, 0}},
	))
	w.StepOnce(nil, nil, act(protocol.EditReq{ID: "t", Type: protocol.EditToggle, Pos: [3]int{0, 1, 0}}))
	w.StepOnce(nil, nil, act(protocol.EditReq{ID: "x", Type: protocol.EditBreak, Pos: [3]int{1, 0, 0}}))
	w.StepOnce(nil, []string{"A1"}, nil)
	if err := tickLog.Close(); err != nil {
		t.Fatalf("close log: %v", err)
	}

	checked, err := replay(snap, cats, filepath.Join(dir, "events"), 0, 0)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if checked != 5 {
		t.Fatalf("checked=%d want 5", checked)
	}

	checked, err = replay(snap, cats, filepath.Join(dir, "events"), 0, 3)
	if err != nil {
		t.Fatalf("bounded replay: %v", err)
	}
	if checked != 3 {
		t.Fatalf("bounded checked=%d want 3", checked)
	}
}
