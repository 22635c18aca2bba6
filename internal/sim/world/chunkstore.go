package world

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"sort"

	"voxelwire.ai/internal/sim/world/logic/mathx"
	"voxelwire.ai/internal/sim/world/logic/wirepower"
)

const chunkSize = 16

var errOutOfBounds = errors.New("position out of bounds")

type ChunkKey struct {
	CX int
	CZ int
}

// Chunk is a 16x16 column of Height cells. Blocks and Power are persisted;
// epochs only live for the process.
type Chunk struct {
	CX, CZ int
	Height int
	Blocks []uint16
	Power  []uint8

	epochs []uint32
	dirty  bool
	hash   [32]byte
}

func newChunk(cx, cz, height int) *Chunk {
	n := chunkSize * chunkSize * height
	return &Chunk{
		CX:     cx,
		CZ:     cz,
		Height: height,
		Blocks: make([]uint16, n),
		Power:  make([]uint8, n),
		epochs: make([]uint32, n),
	}
}

func (c *Chunk) index(x, y, z int) int {
	// x fastest, then z, then y
	return x + z*chunkSize + y*chunkSize*chunkSize
}

func (c *Chunk) Get(x, y, z int) uint16 {
	return c.Blocks[c.index(x, y, z)]
}

func (c *Chunk) cell(x, y, z int) wirepower.CellState {
	i := c.index(x, y, z)
	return wirepower.CellState{Block: c.Blocks[i], Power: c.Power[i], Epoch: c.epochs[i]}
}

// write stores block and power and reports whether anything changed. A
// changed cell gets a fresh epoch.
func (c *Chunk) write(x, y, z int, b uint16, p uint8) bool {
	i := c.index(x, y, z)
	if c.Blocks[i] == b && c.Power[i] == p {
		return false
	}
	c.Blocks[i] = b
	c.Power[i] = p
	c.epochs[i]++
	c.dirty = true
	return true
}

func (c *Chunk) Digest() [32]byte {
	if c.dirty || c.hash == ([32]byte{}) {
		h := sha256.New()
		var tmp [2]byte
		for _, v := range c.Blocks {
			binary.LittleEndian.PutUint16(tmp[:], v)
			h.Write(tmp[:])
		}
		h.Write(c.Power)
		copy(c.hash[:], h.Sum(nil))
		c.dirty = false
	}
	return c.hash
}

type WorldGen struct {
	Seed      int64
	Height    int
	BoundaryR int // blocks

	// Palette ids for core blocks.
	Air   uint16
	Stone uint16
	Dirt  uint16
}

type ChunkStore struct {
	gen WorldGen
	// Accessed only from the world loop goroutine.
	chunks map[ChunkKey]*Chunk
}

func NewChunkStore(gen WorldGen) *ChunkStore {
	if gen.Height <= 0 {
		gen.Height = 1
	}
	return &ChunkStore{
		gen:    gen,
		chunks: map[ChunkKey]*Chunk{},
	}
}

func (s *ChunkStore) inBounds(pos Vec3i) bool {
	if pos.Y < 0 || pos.Y >= s.gen.Height {
		return false
	}
	if s.gen.BoundaryR > 0 {
		if pos.X < -s.gen.BoundaryR || pos.X > s.gen.BoundaryR || pos.Z < -s.gen.BoundaryR || pos.Z > s.gen.BoundaryR {
			return false
		}
	}
	return true
}

func (s *ChunkStore) LoadedChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(s.chunks))
	for k := range s.chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CX != keys[j].CX {
			return keys[i].CX < keys[j].CX
		}
		return keys[i].CZ < keys[j].CZ
	})
	return keys
}

func (s *ChunkStore) locate(pos Vec3i) (*Chunk, int, int) {
	cx := mathx.FloorDiv(pos.X, chunkSize)
	cz := mathx.FloorDiv(pos.Z, chunkSize)
	return s.getOrGenChunk(cx, cz), mathx.Mod(pos.X, chunkSize), mathx.Mod(pos.Z, chunkSize)
}

func (s *ChunkStore) GetBlock(pos Vec3i) uint16 {
	if !s.inBounds(pos) {
		return s.gen.Air
	}
	ch, lx, lz := s.locate(pos)
	return ch.Get(lx, pos.Y, lz)
}

// SetBlock replaces the block at pos. The cell's power resets to 0.
func (s *ChunkStore) SetBlock(pos Vec3i, b uint16) bool {
	if !s.inBounds(pos) {
		return false
	}
	ch, lx, lz := s.locate(pos)
	if ch.Get(lx, pos.Y, lz) == b {
		return false
	}
	return ch.write(lx, pos.Y, lz, b, 0)
}

func (s *ChunkStore) GetPower(pos Vec3i) int {
	if !s.inBounds(pos) {
		return 0
	}
	ch, lx, lz := s.locate(pos)
	return int(ch.Power[ch.index(lx, pos.Y, lz)])
}

func (s *ChunkStore) Cell(pos Vec3i) wirepower.CellState {
	if !s.inBounds(pos) {
		return wirepower.CellState{Block: s.gen.Air}
	}
	ch, lx, lz := s.locate(pos)
	return ch.cell(lx, pos.Y, lz)
}

// SetCell writes block and power. Writing the current values is a no-op and
// keeps the epoch.
func (s *ChunkStore) SetCell(pos Vec3i, st wirepower.CellState) error {
	if !s.inBounds(pos) {
		return errOutOfBounds
	}
	ch, lx, lz := s.locate(pos)
	ch.write(lx, pos.Y, lz, st.Block, st.Power)
	return nil
}

func (s *ChunkStore) getOrGenChunk(cx, cz int) *Chunk {
	k := ChunkKey{CX: cx, CZ: cz}
	if ch, ok := s.chunks[k]; ok {
		return ch
	}
	ch := newChunk(cx, cz, s.gen.Height)
	s.generateChunk(ch)
	ch.dirty = true
	_ = ch.Digest() // initialize digest
	s.chunks[k] = ch
	return ch
}

// generateChunk lays a floor at y=0 when the world has room above it. A
// single-layer world starts empty.
func (s *ChunkStore) generateChunk(ch *Chunk) {
	if ch.Height <= 1 {
		return
	}
	for z := 0; z < chunkSize; z++ {
		for x := 0; x < chunkSize; x++ {
			wx := ch.CX*chunkSize + x
			wz := ch.CZ*chunkSize + z
			b := s.gen.Stone
			if mathx.Hash2(s.gen.Seed, wx, wz)%8 == 0 {
				b = s.gen.Dirt
			}
			ch.Blocks[ch.index(x, 0, z)] = b
		}
	}
}

// putChunk installs a chunk restored from a snapshot.
func (s *ChunkStore) putChunk(ch *Chunk) {
	if ch.epochs == nil {
		ch.epochs = make([]uint32, len(ch.Blocks))
	}
	ch.dirty = true
	_ = ch.Digest()
	s.chunks[ChunkKey{CX: ch.CX, CZ: ch.CZ}] = ch
}
