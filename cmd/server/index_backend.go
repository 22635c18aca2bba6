package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"voxelwire.ai/internal/persistence/indexdb"
	"voxelwire.ai/internal/persistence/snapshot"
	"voxelwire.ai/internal/sim/catalogs"
	"voxelwire.ai/internal/sim/tuning"
	"voxelwire.ai/internal/sim/world"
)

type runtimeIndex interface {
	world.TickLogger
	world.AuditLogger
	world.WirePassLogger
	Close() error
	UpsertCatalogs(configDir string, cats *catalogs.Catalogs, tune tuning.Tuning) error
	RecordSnapshot(path string, snap snapshot.SnapshotV1)
	Stats() indexdb.Stats
}

func openRuntimeIndex(worldDir string, disableDB bool) (runtimeIndex, error) {
	if disableDB {
		return nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("VW_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		return indexdb.OpenSQLite(filepath.Join(worldDir, "index", "world.sqlite"))
	default:
		return nil, fmt.Errorf("unsupported VW_INDEX_BACKEND: %s", backend)
	}
}
