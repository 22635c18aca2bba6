package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"voxelwire.ai/internal/persistence/snapshot"
	"voxelwire.ai/internal/sim/catalogs"
	"voxelwire.ai/internal/sim/tuning"
	"voxelwire.ai/internal/sim/world"
)

// SQLiteIndex is a queryable secondary index over the tick, audit and wire
// logs. Writes are queued and applied by one goroutine in batched
// transactions; when the queue is full entries are dropped and counted.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropTick     atomic.Uint64
	dropAudit    atomic.Uint64
	dropWirePass atomic.Uint64
	dropSnapshot atomic.Uint64
}

type Stats struct {
	QueueDepth        int    `json:"queue_depth"`
	DropTickTotal     uint64 `json:"drop_tick_total"`
	DropAuditTotal    uint64 `json:"drop_audit_total"`
	DropWirePassTotal uint64 `json:"drop_wire_pass_total"`
	DropSnapshotTotal uint64 `json:"drop_snapshot_total"`
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqAudit
	reqWirePass
	reqSnapshot
)

type req struct {
	kind reqKind

	tick     world.TickLogEntry
	audit    world.AuditEntry
	wirePass world.WirePassEntry
	snapshot snapshotRow
}

type snapshotRow struct {
	Tick         uint64
	Path         string
	Seed         int64
	Height       int
	Chunks       int
	Agents       int
	Items        int
	Switches     int
	PendingWires int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// Wire passes and audits can burst when a large circuit settles.
		ch: make(chan req, 262144),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			digest TEXT NOT NULL,
			joins INTEGER NOT NULL,
			leaves INTEGER NOT NULL,
			actions INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS joins (
			tick INTEGER NOT NULL,
			agent_id TEXT NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (tick, agent_id)
		);`,
		`CREATE TABLE IF NOT EXISTS leaves (
			tick INTEGER NOT NULL,
			agent_id TEXT NOT NULL,
			PRIMARY KEY (tick, agent_id)
		);`,
		`CREATE TABLE IF NOT EXISTS actions (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			agent_id TEXT NOT NULL,
			edits INTEGER NOT NULL,
			act_json TEXT NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_actions_agent_tick ON actions(agent_id, tick);`,
		`CREATE TABLE IF NOT EXISTS audits (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			actor TEXT NOT NULL,
			action TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			from_block INTEGER NOT NULL,
			to_block INTEGER NOT NULL,
			reason TEXT,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_audits_actor_tick ON audits(actor, tick);`,
		`CREATE INDEX IF NOT EXISTS idx_audits_pos_tick ON audits(x, z, y, tick);`,
		`CREATE TABLE IF NOT EXISTS wire_passes (
			pass INTEGER PRIMARY KEY,
			tick INTEGER NOT NULL,
			roots INTEGER NOT NULL,
			nodes INTEGER NOT NULL,
			offers INTEGER NOT NULL,
			changed INTEGER NOT NULL,
			broken INTEGER NOT NULL,
			stale INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			truncated INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_wire_passes_tick ON wire_passes(tick);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			tick INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			seed INTEGER NOT NULL,
			height INTEGER NOT NULL,
			chunks INTEGER NOT NULL,
			agents INTEGER NOT NULL,
			items INTEGER NOT NULL,
			switches INTEGER NOT NULL,
			pending_wires INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		if s.db != nil {
			err = s.db.Close()
		}
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:        len(s.ch),
		DropTickTotal:     s.dropTick.Load(),
		DropAuditTotal:    s.dropAudit.Load(),
		DropWirePassTotal: s.dropWirePass.Load(),
		DropSnapshotTotal: s.dropSnapshot.Load(),
	}
}

// enqueue drops r when the writer falls behind; the JSONL logs remain the
// source of truth.
func (s *SQLiteIndex) enqueue(r req, drops *atomic.Uint64) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- r:
	default:
		drops.Add(1)
	}
}

func (s *SQLiteIndex) WriteTick(entry world.TickLogEntry) error {
	if s == nil {
		return nil
	}
	s.enqueue(req{kind: reqTick, tick: entry}, &s.dropTick)
	return nil
}

func (s *SQLiteIndex) WriteAudit(entry world.AuditEntry) error {
	if s == nil {
		return nil
	}
	s.enqueue(req{kind: reqAudit, audit: entry}, &s.dropAudit)
	return nil
}

func (s *SQLiteIndex) WriteWirePass(entry world.WirePassEntry) error {
	if s == nil {
		return nil
	}
	s.enqueue(req{kind: reqWirePass, wirePass: entry}, &s.dropWirePass)
	return nil
}

func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	if s == nil {
		return
	}
	r := snapshotRow{
		Tick:         snap.Header.Tick,
		Path:         path,
		Seed:         snap.Seed,
		Height:       snap.Height,
		Chunks:       len(snap.Chunks),
		Agents:       len(snap.Agents),
		Items:        len(snap.Items),
		Switches:     len(snap.Switches),
		PendingWires: len(snap.PendingWires),
	}
	s.enqueue(req{kind: reqSnapshot, snapshot: r}, &s.dropSnapshot)
}

// UpsertCatalogs stores the block/item definitions and the applied tuning so
// an index can be interpreted without the config directory.
func (s *SQLiteIndex) UpsertCatalogs(configDir string, cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)

	raw := map[string][]byte{}
	read := func(name, path string) {
		b, err := os.ReadFile(path)
		if err != nil {
			return
		}
		raw[name] = b
	}
	if configDir != "" {
		read("blocks_defs", filepath.Join(configDir, "blocks.json"))
		read("items_defs", filepath.Join(configDir, "items.json"))
	}

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	if b := raw["blocks_defs"]; len(b) > 0 {
		rows = append(rows, kv{name: "blocks_defs", digest: cats.Blocks.DefsDigest, json: b})
	}
	if b, _ := json.Marshal(cats.Blocks.Palette); len(b) > 0 {
		rows = append(rows, kv{name: "blocks_palette", digest: cats.Blocks.PaletteDigest, json: b})
	}
	if b := raw["items_defs"]; len(b) > 0 {
		rows = append(rows, kv{name: "items_defs", digest: cats.Items.DefsDigest, json: b})
	}
	if b, _ := json.Marshal(cats.Items.Palette); len(b) > 0 {
		rows = append(rows, kv{name: "items_palette", digest: cats.Items.PaletteDigest, json: b})
	}
	{
		b, _ := json.Marshal(tune)
		sum := sha256.Sum256(b)
		rows = append(rows, kv{name: "tuning", digest: hex.EncodeToString(sum[:]), json: b})
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if r.name == "" || r.digest == "" || len(r.json) == 0 {
			continue
		}
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type writer struct {
	tx       *sql.Tx
	stmts    map[reqKind][]*sql.Stmt
	ops      int
	lastAt   time.Time
	auditAt  uint64
	auditSeq int
}

var statements = map[reqKind][]string{
	reqTick: {
		`INSERT OR REPLACE INTO ticks(tick,digest,joins,leaves,actions,raw_json) VALUES(?,?,?,?,?,?)`,
		`INSERT OR REPLACE INTO joins(tick,agent_id,name) VALUES(?,?,?)`,
		`INSERT OR REPLACE INTO leaves(tick,agent_id) VALUES(?,?)`,
		`INSERT OR REPLACE INTO actions(tick,seq,agent_id,edits,act_json) VALUES(?,?,?,?,?)`,
	},
	reqAudit: {
		`INSERT OR REPLACE INTO audits(tick,seq,actor,action,x,y,z,from_block,to_block,reason,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
	},
	reqWirePass: {
		`INSERT OR REPLACE INTO wire_passes(pass,tick,roots,nodes,offers,changed,broken,stale,failed,truncated,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
	},
	reqSnapshot: {
		`INSERT OR REPLACE INTO snapshots(tick,path,seed,height,chunks,agents,items,switches,pending_wires) VALUES(?,?,?,?,?,?,?,?,?)`,
	},
}

func (s *SQLiteIndex) loop() {
	const (
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)
	ctx := context.Background()

	wr := &writer{stmts: map[reqKind][]*sql.Stmt{}, lastAt: time.Now()}
	for kind, qs := range statements {
		for _, q := range qs {
			// A statement that fails to prepare is skipped for the lifetime of the writer.
			st, _ := s.db.Prepare(q)
			wr.stmts[kind] = append(wr.stmts[kind], st)
		}
	}
	defer func() {
		for _, sts := range wr.stmts {
			for _, st := range sts {
				if st != nil {
					_ = st.Close()
				}
			}
		}
	}()

	for r := range s.ch {
		if wr.tx == nil {
			tx, err := s.db.BeginTx(ctx, nil)
			if err != nil {
				time.Sleep(50 * time.Millisecond)
				continue
			}
			wr.tx = tx
			wr.ops = 0
			wr.lastAt = time.Now()
		}
		if err := wr.apply(r); err != nil {
			_ = wr.tx.Rollback()
			wr.tx = nil
			continue
		}
		if wr.ops >= commitEvery || time.Since(wr.lastAt) >= commitMaxWait {
			wr.commit()
		}
	}
	wr.commit()
}

func (wr *writer) commit() {
	if wr.tx == nil {
		return
	}
	_ = wr.tx.Commit()
	wr.tx = nil
	wr.ops = 0
	wr.lastAt = time.Now()
}

func (wr *writer) exec(kind reqKind, i int, args ...any) error {
	st := wr.stmts[kind][i]
	if st == nil {
		return nil
	}
	if _, err := wr.tx.Stmt(st).Exec(args...); err != nil {
		return err
	}
	wr.ops++
	return nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func (wr *writer) apply(r req) error {
	switch r.kind {
	case reqTick:
		t := r.tick
		b, _ := json.Marshal(t)
		tick := int64(t.Tick)
		if err := wr.exec(reqTick, 0, tick, t.Digest, len(t.Joins), len(t.Leaves), len(t.Actions), string(b)); err != nil {
			return err
		}
		for _, j := range t.Joins {
			if err := wr.exec(reqTick, 1, tick, j.AgentID, j.Name); err != nil {
				return err
			}
		}
		for _, id := range t.Leaves {
			if err := wr.exec(reqTick, 2, tick, id); err != nil {
				return err
			}
		}
		for i, a := range t.Actions {
			actJSON, _ := json.Marshal(a.Act)
			if err := wr.exec(reqTick, 3, tick, i, a.AgentID, len(a.Act.Edits), string(actJSON)); err != nil {
				return err
			}
		}

	case reqAudit:
		a := r.audit
		if a.Tick != wr.auditAt {
			wr.auditAt = a.Tick
			wr.auditSeq = 0
		}
		seq := wr.auditSeq
		wr.auditSeq++
		raw, _ := json.Marshal(a)
		return wr.exec(reqAudit, 0,
			int64(a.Tick), seq, a.Actor, a.Action,
			a.Pos[0], a.Pos[1], a.Pos[2],
			int64(a.From), int64(a.To), a.Reason, string(raw))

	case reqWirePass:
		p := r.wirePass
		raw, _ := json.Marshal(p)
		return wr.exec(reqWirePass, 0,
			int64(p.Pass), int64(p.Tick), p.Roots, p.Nodes, p.Offers, p.Changed,
			len(p.Broken), len(p.Stale), p.Failed, boolInt(p.Truncated), string(raw))

	case reqSnapshot:
		sn := r.snapshot
		return wr.exec(reqSnapshot, 0,
			int64(sn.Tick), sn.Path, sn.Seed, sn.Height, sn.Chunks, sn.Agents,
			sn.Items, sn.Switches, sn.PendingWires)
	}
	return nil
}
