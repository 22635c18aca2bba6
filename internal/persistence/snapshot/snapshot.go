package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Tick    uint64 `json:"tick"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed      int64 `json:"seed"`
	TickRate  int   `json:"tick_rate_hz"`
	Height    int   `json:"height"`
	BoundaryR int   `json:"boundary_r"`

	// Operational parameters (captured for deterministic replay/resume).
	SnapshotEveryTicks int `json:"snapshot_every_ticks,omitempty"`
	ItemTTLTicks       int `json:"item_ttl_ticks,omitempty"`
	SignalMin          int `json:"signal_min"`
	SignalMax          int `json:"signal_max"`
	MaxWireNodes       int `json:"max_wire_nodes,omitempty"`
	MaxWirePasses      int `json:"max_wire_passes,omitempty"`

	Chunks    []ChunkV1      `json:"chunks"`
	Agents    []AgentV1      `json:"agents"`
	Items     []ItemEntityV1 `json:"items,omitempty"`
	Conveyors []ConveyorV1   `json:"conveyors,omitempty"`
	Switches  []SwitchV1     `json:"switches,omitempty"`
	Sensors   []SensorV1     `json:"sensors,omitempty"`

	// Wire changes queued but not yet drained at the snapshot tick.
	PendingWires []WireChangeV1 `json:"pending_wires,omitempty"`

	Counters CountersV1 `json:"counters"`
}

type CountersV1 struct {
	NextAgent uint64 `json:"next_agent"`
	NextItem  uint64 `json:"next_item"`
	WirePass  uint64 `json:"wire_pass"`
}

type ChunkV1 struct {
	CX     int      `json:"cx"`
	CZ     int      `json:"cz"`
	Height int      `json:"height"`
	Blocks []uint16 `json:"blocks"`
	Power  []uint8  `json:"power"`
}

type AgentV1 struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ItemEntityV1 struct {
	EntityID    string `json:"entity_id"`
	Pos         [3]int `json:"pos"`
	Item        string `json:"item"`
	Count       int    `json:"count"`
	CreatedTick uint64 `json:"created_tick"`
	ExpiresTick uint64 `json:"expires_tick"`
}

type ConveyorV1 struct {
	Pos [3]int `json:"pos"`
	DX  int8   `json:"dx"`
	DZ  int8   `json:"dz"`
}

type SwitchV1 struct {
	Pos [3]int `json:"pos"`
	On  bool   `json:"on"`
}

type SensorV1 struct {
	Pos [3]int `json:"pos"`
	On  bool   `json:"on"`
}

type WireChangeV1 struct {
	Pos  [3]int `json:"pos"`
	Kind uint8  `json:"kind"`
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		_ = enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		_ = enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// ReadHeader decodes only the JSON header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// The header is repeated inside the gob body.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}
