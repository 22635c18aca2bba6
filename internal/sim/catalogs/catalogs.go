package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

type Catalogs struct {
	Blocks BlockCatalog
	Items  ItemCatalog
}

type BlockCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]BlockDef
	PaletteDigest string
	DefsDigest    string
}

// Signal roles a block can play in the wire network.
const (
	SignalWire     = "WIRE"
	SignalSource   = "SOURCE"   // constant emitter (Power)
	SignalSwitch   = "SWITCH"   // emits SignalMax while toggled on
	SignalSensor   = "SENSOR"   // emits SignalMax while items are nearby
	SignalConsumer = "CONSUMER" // reads adjacent wire power
)

type BlockDef struct {
	ID        string `json:"id"`
	Solid     bool   `json:"solid"`
	Breakable bool   `json:"breakable"`
	DropsItem string `json:"drops_item,omitempty"`
	Signal    string `json:"signal,omitempty"`
	Power     int    `json:"power,omitempty"`
}

type ItemCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]ItemDef
	PaletteDigest string
	DefsDigest    string
}

type ItemDef struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"` // "BLOCK","MATERIAL","MECH"
	PlaceAs string `json:"place_as,omitempty"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadBlocks(filepath.Join(configDir, "blocks.json"), &c.Blocks); err != nil {
		return nil, err
	}
	if err := loadItems(filepath.Join(configDir, "items.json"), &c.Items); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadBlocks(path string, out *BlockCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)

	var defs []BlockDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}
	out.Defs = map[string]BlockDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("blocks.json: empty id")
		}
		switch d.Signal {
		case "", SignalWire, SignalSource, SignalSwitch, SignalSensor, SignalConsumer:
		default:
			return fmt.Errorf("blocks.json: %s: unknown signal role %q", d.ID, d.Signal)
		}
		if d.Signal == SignalWire && d.Solid {
			return fmt.Errorf("blocks.json: %s: wires cannot be solid", d.ID)
		}
		out.Defs[d.ID] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// Ensure AIR exists and is palette id 0.
	if _, ok := out.Defs["AIR"]; !ok {
		return fmt.Errorf("blocks.json: missing AIR")
	}
	ids = append([]string{"AIR"}, filterOut(ids, "AIR")...)

	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func loadItems(path string, out *ItemCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)

	var defs []ItemDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("items.json: %w", err)
	}
	out.Defs = map[string]ItemDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("items.json: empty id")
		}
		out.Defs[d.ID] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

// validate cross-checks blocks and items.
func (c *Catalogs) validate() error {
	wires := 0
	for _, id := range c.Blocks.Palette {
		d := c.Blocks.Defs[id]
		if d.Signal == SignalWire {
			wires++
		}
		if d.DropsItem != "" {
			if _, ok := c.Items.Defs[d.DropsItem]; !ok {
				return fmt.Errorf("blocks.json: %s drops unknown item %s", d.ID, d.DropsItem)
			}
		}
	}
	if wires != 1 {
		return fmt.Errorf("blocks.json: want exactly one wire block, got %d", wires)
	}
	for _, id := range c.Items.Palette {
		d := c.Items.Defs[id]
		if d.PlaceAs == "" {
			continue
		}
		if _, ok := c.Blocks.Defs[d.PlaceAs]; !ok {
			return fmt.Errorf("items.json: %s places unknown block %s", d.ID, d.PlaceAs)
		}
	}
	return nil
}

// WireBlock returns the id of the block with the WIRE signal role.
func (c *Catalogs) WireBlock() string {
	for _, id := range c.Blocks.Palette {
		if c.Blocks.Defs[id].Signal == SignalWire {
			return id
		}
	}
	return ""
}

func filterOut(in []string, remove string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == remove {
			continue
		}
		out = append(out, s)
	}
	return out
}
