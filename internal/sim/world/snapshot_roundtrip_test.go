package world

import (
	"path/filepath"
	"testing"

	"voxelwire.ai/internal/persistence/snapshot"
	"voxelwire.ai/internal/protocol"
)

func buildCircuit(t *testing.T, w *World) string {
	t.Helper()
	id := joinTester(t, w)
	edit(w, id,
		place("sw", "SWITCH", 0, 0, 0),
		place("w1", "WIRE", 1, 0, 0),
		place("w2", "WIRE", 2, 0, 0),
		place("lamp", "LAMP", 3, 0, 0),
		place("belt", "CONVEYOR", 2, 0, 1),
	)
	edit(w, id, toggle("on", 0, 0, 0))
	requireOK(t, w, id, "sw", "w1", "w2", "lamp", "belt", "on")
	w.spawnItemEntity(w.CurrentTick(), "TEST", Vec3i{X: 2, Y: 0, Z: 1}, "STONE", 1, "TEST")
	return id
}

func TestSnapshot_RoundTripKeepsDigest(t *testing.T) {
	cfg := WorldConfig{Height: 1, Seed: 7}
	a := newTestWorld(t, cfg)
	id := buildCircuit(t, a)
	_, want := a.StepOnce(nil, nil, nil)

	last := a.CurrentTick() - 1
	path := filepath.Join(t.TempDir(), "snap.zst")
	if err := snapshot.WriteSnapshot(path, a.ExportSnapshot(last)); err != nil {
		t.Fatalf("write: %v", err)
	}
	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	b := newTestWorld(t, cfg)
	if err := b.ImportSnapshot(snap); err != nil {
		t.Fatalf("import: %v", err)
	}
	if b.CurrentTick() != a.CurrentTick() {
		t.Fatalf("tick after import: got %d want %d", b.CurrentTick(), a.CurrentTick())
	}
	if got := b.stateDigest(last); got != want {
		t.Fatalf("digest after import: got %s want %s", got, want)
	}
	if !b.lamps[Vec3i{X: 3}] {
		t.Fatalf("lamp lit state should be rebuilt")
	}

	// Both worlds must evolve identically from here.
	next := []protocol.EditReq{toggle("off", 0, 0, 0), place("w3", "WIRE", 1, 0, 1)}
	for i := 0; i < 3; i++ {
		var edits []protocol.EditReq
		if i == 0 {
			edits = next
		}
		da := edit(a, id, edits...)
		db := edit(b, id, edits...)
		if da != db {
			t.Fatalf("tick %d diverged: %s vs %s", i, da, db)
		}
	}
	if powerAt(b, 1, 0, 0) != 0 || b.lamps[Vec3i{X: 3}] {
		t.Fatalf("switch off should drain the line")
	}
}

func TestSnapshot_ImportRejectsMismatch(t *testing.T) {
	a := newTestWorld(t, WorldConfig{Height: 1, Seed: 1})
	snap := a.ExportSnapshot(0)

	b := newTestWorld(t, WorldConfig{Height: 1, Seed: 2})
	if err := b.ImportSnapshot(snap); err == nil {
		t.Fatalf("expected seed mismatch")
	}
	c := newTestWorld(t, WorldConfig{Height: 2, Seed: 1})
	if err := c.ImportSnapshot(snap); err == nil {
		t.Fatalf("expected height mismatch")
	}
	snap.Header.Version = 9
	if err := a.ImportSnapshot(snap); err == nil {
		t.Fatalf("expected version error")
	}
}

func TestDeterminism_SameInputsSameDigests(t *testing.T) {
	run := func() []string {
		w := newTestWorld(t, WorldConfig{Height: 2, Seed: 42})
		id := joinTester(t, w)
		var out []string
		out = append(out, edit(w, id,
			place("p", "POWER_BLOCK", 0, 1, 0),
			place("a", "WIRE", 1, 1, 0),
			place("b", "WIRE", 1, 1, 1),
			place("c", "WIRE", 2, 1, 1),
		))
		out = append(out, edit(w, id, breakAt("x", 1, 1, 1)))
		for i := 0; i < 3; i++ {
			_, d := w.StepOnce(nil, nil, nil)
			out = append(out, d)
		}
		return out
	}
	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("tick %d digest differs", i)
		}
	}
}
