package world

type WorldConfig struct {
	ID         string
	TickRateHz int
	Height     int
	Seed       int64
	BoundaryR  int

	// Signal bounds and per-tick propagation budget.
	SignalMin            int
	SignalMax            int
	MaxWireNodes         int
	MaxWirePassesPerTick int

	ItemTTLTicks int

	// Per-agent edit rate limit.
	EditWindowTicks int
	EditMax         int
	// ACTs older than this many ticks are rejected with E_STALE.
	ActStaleTicks int

	// Operational parameters. These are included in snapshots for deterministic replay/resume.
	SnapshotEveryTicks int
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 5
	}
	if c.Height <= 0 {
		c.Height = 1
	}
	if c.BoundaryR <= 0 {
		c.BoundaryR = 4000
	}
	if c.SignalMin < 0 {
		c.SignalMin = 0
	}
	if c.SignalMax <= c.SignalMin {
		c.SignalMax = c.SignalMin + 15
	}
	if c.MaxWireNodes <= 0 {
		c.MaxWireNodes = 4096
	}
	if c.MaxWirePassesPerTick <= 0 {
		c.MaxWirePassesPerTick = 8
	}
	if c.ItemTTLTicks <= 0 {
		c.ItemTTLTicks = 6000
	}
	if c.EditWindowTicks <= 0 {
		c.EditWindowTicks = 10
	}
	if c.EditMax <= 0 {
		c.EditMax = 64
	}
	if c.ActStaleTicks <= 0 {
		c.ActStaleTicks = 50
	}
	if c.SnapshotEveryTicks <= 0 {
		c.SnapshotEveryTicks = 3000
	}
}
