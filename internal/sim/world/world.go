package world

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"

	"voxelwire.ai/internal/persistence/snapshot"
	"voxelwire.ai/internal/protocol"
	"voxelwire.ai/internal/sim/catalogs"
	"voxelwire.ai/internal/sim/world/logic/wirepower"
)

type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
}

type ActionEnvelope struct {
	AgentID string
	Act     protocol.ActMsg
}

type RecordedJoin struct {
	AgentID string `json:"agent_id"`
	Name    string `json:"name"`
}

type RecordedAction struct {
	AgentID string          `json:"agent_id"`
	Act     protocol.ActMsg `json:"act"`
}

// World is a single-threaded authoritative simulation.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg      WorldConfig
	catalogs *catalogs.Catalogs
	logger   *log.Logger

	tick    atomic.Uint64
	metrics atomic.Value

	chunks *ChunkStore
	blocks blockIDs

	agents  map[string]*Agent
	clients map[string]*clientState

	items     map[string]*ItemEntity
	itemsAt   map[Vec3i][]string // pos -> item entity ids (in insertion order)
	conveyors map[Vec3i]ConveyorMeta
	switches  map[Vec3i]bool
	sensors   map[Vec3i]bool
	lamps     map[Vec3i]bool

	wires *wireSystem

	inbox chan ActionEnvelope
	join  chan JoinRequest
	leave chan string
	stop  chan struct{}

	nextAgentNum atomic.Uint64
	nextItemNum  atomic.Uint64

	// Optional loggers (may be nil). Implemented in internal/persistence/*.
	tickLogger     TickLogger
	auditLogger    AuditLogger
	wirePassLogger WirePassLogger

	// Optional snapshot sink (may be nil). Snapshot writing should be off-thread.
	snapshotSink chan<- snapshot.SnapshotV1

	// Per-tick outputs gathered for OBS.
	wireObsThisTick []protocol.WireObs
	lampObsThisTick []protocol.LampObs
	eventsThisTick  []protocol.Event
}

type clientState struct {
	Out chan []byte
}

// blockIDs caches palette ids the systems look up every tick.
type blockIDs struct {
	air         uint16
	wire        uint16
	switchID    uint16
	sensor      uint16
	conveyor    uint16
	lamp        uint16
	hasSensor   bool
	hasLamp     bool
	hasConveyor bool
	hasSwitch   bool
	wireDrop    string
}

func New(cfg WorldConfig, cats *catalogs.Catalogs) (*World, error) {
	if cats == nil {
		return nil, fmt.Errorf("world: nil catalogs")
	}
	cfg.applyDefaults()

	b := func(id string) (uint16, bool) {
		v, ok := cats.Blocks.Index[id]
		return v, ok
	}
	wireName := cats.WireBlock()
	wire, ok := b(wireName)
	if !ok {
		return nil, fmt.Errorf("world: catalog has no wire block")
	}
	air, _ := b("AIR")
	stone, ok := b("STONE")
	if !ok {
		stone = air
	}
	dirt, ok := b("DIRT")
	if !ok {
		dirt = stone
	}

	ids := blockIDs{air: air, wire: wire, wireDrop: cats.Blocks.Defs[wireName].DropsItem}
	ids.switchID, ids.hasSwitch = b("SWITCH")
	ids.sensor, ids.hasSensor = b("SENSOR")
	ids.conveyor, ids.hasConveyor = b("CONVEYOR")
	ids.lamp, ids.hasLamp = b("LAMP")

	gen := WorldGen{
		Seed:      cfg.Seed,
		Height:    cfg.Height,
		BoundaryR: cfg.BoundaryR,
		Air:       air,
		Stone:     stone,
		Dirt:      dirt,
	}

	w := &World{
		cfg:       cfg,
		catalogs:  cats,
		logger:    log.New(os.Stdout, "[wire] ", log.LstdFlags|log.Lmicroseconds),
		chunks:    NewChunkStore(gen),
		blocks:    ids,
		agents:    map[string]*Agent{},
		clients:   map[string]*clientState{},
		items:     map[string]*ItemEntity{},
		itemsAt:   map[Vec3i][]string{},
		conveyors: map[Vec3i]ConveyorMeta{},
		switches:  map[Vec3i]bool{},
		sensors:   map[Vec3i]bool{},
		lamps:     map[Vec3i]bool{},
		inbox:     make(chan ActionEnvelope, 1024),
		join:      make(chan JoinRequest, 64),
		leave:     make(chan string, 64),
		stop:      make(chan struct{}),
	}
	grid := wireGrid{w: w}
	w.wires = newWireSystem(wirepower.NewDriver(grid, grid, wirepower.Config{
		Range:    wirepower.Range{Min: cfg.SignalMin, Max: cfg.SignalMax},
		MaxNodes: cfg.MaxWireNodes,
	}))
	w.metrics.Store(WorldMetrics{})
	return w, nil
}

func (w *World) Inbox() chan<- ActionEnvelope { return w.inbox }
func (w *World) Join() chan<- JoinRequest     { return w.join }
func (w *World) Leave() chan<- string         { return w.leave }

func (w *World) Config() WorldConfig { return w.cfg }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) SetLogger(l *log.Logger) {
	if l != nil {
		w.logger = l
	}
}

func (w *World) SetTickLogger(l TickLogger)         { w.tickLogger = l }
func (w *World) SetAuditLogger(l AuditLogger)       { w.auditLogger = l }
func (w *World) SetWirePassLogger(l WirePassLogger) { w.wirePassLogger = l }

func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }

func (w *World) blockName(id uint16) string {
	if int(id) < len(w.catalogs.Blocks.Palette) {
		return w.catalogs.Blocks.Palette[id]
	}
	return ""
}

func (w *World) blockDef(id uint16) (catalogs.BlockDef, bool) {
	name := w.blockName(id)
	if name == "" {
		return catalogs.BlockDef{}, false
	}
	d, ok := w.catalogs.Blocks.Defs[name]
	return d, ok
}

func (w *World) blockSolid(id uint16) bool {
	d, ok := w.blockDef(id)
	return ok && d.Solid
}
