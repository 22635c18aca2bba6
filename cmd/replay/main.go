package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	persistlog "voxelwire.ai/internal/persistence/log"
	"voxelwire.ai/internal/persistence/snapshot"
	"voxelwire.ai/internal/sim/catalogs"
	"voxelwire.ai/internal/sim/world"
)

// errDone stops a scan once -to_tick has been reached.
var errDone = errors.New("done")

func main() {
	var (
		snapPath  = flag.String("snapshot", "", "path to .snap.zst")
		eventsDir = flag.String("events", "", "events dir containing events-*.jsonl.zst (optional)")
		configDir = flag.String("configs", "./configs", "config directory")
		fromTick  = flag.Uint64("from_tick", 0, "start verifying from tick (inclusive, optional)")
		toTick    = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
	)
	flag.Parse()

	if *snapPath == "" {
		fmt.Fprintln(os.Stderr, "missing -snapshot")
		os.Exit(2)
	}

	snap, err := snapshot.ReadSnapshot(*snapPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}

	fmt.Printf("snapshot v%d world=%s tick=%d seed=%d height=%d chunks=%d agents=%d items=%d switches=%d pending_wires=%d\n",
		snap.Header.Version, snap.Header.WorldID, snap.Header.Tick, snap.Seed, snap.Height,
		len(snap.Chunks), len(snap.Agents), len(snap.Items), len(snap.Switches), len(snap.PendingWires))

	if *eventsDir == "" {
		return
	}

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load catalogs:", err)
		os.Exit(1)
	}

	checked, err := replay(snap, cats, *eventsDir, *fromTick, *toTick)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	fmt.Printf("replay ok: checked=%d ticks (from snapshot tick=%d)\n", checked, snap.Header.Tick)
}

// replay resumes snap and re-steps every logged tick after it, comparing
// state digests from verifyFrom on. It returns the number of ticks checked.
func replay(snap snapshot.SnapshotV1, cats *catalogs.Catalogs, eventsDir string, verifyFrom, toTick uint64) (uint64, error) {
	w, err := world.New(world.WorldConfig{
		ID:                   snap.Header.WorldID,
		TickRateHz:           snap.TickRate,
		Height:               snap.Height,
		Seed:                 snap.Seed,
		BoundaryR:            snap.BoundaryR,
		SignalMin:            snap.SignalMin,
		SignalMax:            snap.SignalMax,
		MaxWireNodes:         snap.MaxWireNodes,
		MaxWirePassesPerTick: snap.MaxWirePasses,
		ItemTTLTicks:         snap.ItemTTLTicks,
		SnapshotEveryTicks:   snap.SnapshotEveryTicks,
	}, cats)
	if err != nil {
		return 0, fmt.Errorf("world: %w", err)
	}
	if err := w.ImportSnapshot(snap); err != nil {
		return 0, fmt.Errorf("import snapshot: %w", err)
	}

	startTick := w.CurrentTick()
	if verifyFrom == 0 {
		verifyFrom = startTick
	}

	files, err := persistlog.ListSegments(eventsDir, "events")
	if err != nil {
		return 0, fmt.Errorf("list events: %w", err)
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no events files found in %s", eventsDir)
	}

	var checked uint64
	step := func(entry world.TickLogEntry) error {
		if entry.Tick < startTick {
			return nil
		}
		if toTick != 0 && entry.Tick > toTick {
			return errDone
		}
		if entry.Tick != w.CurrentTick() {
			return fmt.Errorf("tick mismatch: want=%d got=%d", w.CurrentTick(), entry.Tick)
		}

		joins := make([]world.JoinRequest, 0, len(entry.Joins))
		for _, j := range entry.Joins {
			joins = append(joins, world.JoinRequest{Name: j.Name})
		}
		acts := make([]world.ActionEnvelope, 0, len(entry.Actions))
		for _, ra := range entry.Actions {
			acts = append(acts, world.ActionEnvelope{AgentID: ra.AgentID, Act: ra.Act})
		}

		tick, got := w.StepOnce(joins, entry.Leaves, acts)
		if tick != entry.Tick {
			return fmt.Errorf("internal tick mismatch: stepped=%d entry=%d", tick, entry.Tick)
		}
		if tick >= verifyFrom {
			checked++
			if got != entry.Digest {
				return fmt.Errorf("digest mismatch at tick %d: got=%s want=%s", tick, got, entry.Digest)
			}
		}
		return nil
	}

	for _, path := range files {
		err := persistlog.ScanSegment(path, step)
		if errors.Is(err, errDone) {
			break
		}
		if err != nil {
			return checked, err
		}
	}
	return checked, nil
}
