package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version" json:"protocol_version"`

	TickRateHz         int `yaml:"tick_rate_hz" json:"tick_rate_hz"`
	Height             int `yaml:"height" json:"height"`
	WorldBoundaryR     int `yaml:"world_boundary_r" json:"world_boundary_r"`
	SnapshotEveryTicks int `yaml:"snapshot_every_ticks" json:"snapshot_every_ticks"`
	ItemTTLTicks       int `yaml:"item_ttl_ticks" json:"item_ttl_ticks"`

	Wire Wire `yaml:"wire" json:"wire"`
}

// Wire bounds the propagation engine.
type Wire struct {
	SignalMin        int `yaml:"signal_min" json:"signal_min"`
	SignalMax        int `yaml:"signal_max" json:"signal_max"`
	MaxNodesPerPass  int `yaml:"max_nodes_per_pass" json:"max_nodes_per_pass"`
	MaxPassesPerTick int `yaml:"max_passes_per_tick" json:"max_passes_per_tick"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:    "1.0",
		TickRateHz:         5,
		Height:             1,
		WorldBoundaryR:     4000,
		SnapshotEveryTicks: 3000,
		ItemTTLTicks:       6000,
		Wire: Wire{
			SignalMin:        0,
			SignalMax:        15,
			MaxNodesPerPass:  4096,
			MaxPassesPerTick: 8,
		},
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 {
		return fmt.Errorf("tick_rate_hz must be > 0")
	}
	if t.Height <= 0 {
		return fmt.Errorf("height must be > 0")
	}
	if t.Wire.SignalMin < 0 || t.Wire.SignalMax <= t.Wire.SignalMin {
		return fmt.Errorf("wire: bad signal range [%d,%d]", t.Wire.SignalMin, t.Wire.SignalMax)
	}
	if t.Wire.SignalMax > 255 {
		return fmt.Errorf("wire: signal_max %d does not fit a cell", t.Wire.SignalMax)
	}
	if t.Wire.MaxNodesPerPass <= 0 || t.Wire.MaxPassesPerTick <= 0 {
		return fmt.Errorf("wire: budgets must be > 0")
	}
	return nil
}
