package wirepower

const (
	blockAir uint16 = iota
	blockWire
	blockStone
	blockSource
)

type fakeGrid struct {
	cells map[Pos]CellState

	writes  int
	broken  []Pos
	onWrite func(pos Pos)
}

func newFakeGrid() *fakeGrid {
	return &fakeGrid{cells: map[Pos]CellState{}}
}

func (g *fakeGrid) Cell(pos Pos) CellState { return g.cells[pos] }

func (g *fakeGrid) IsWire(s CellState) bool { return s.Block == blockWire }

func (g *fakeGrid) SetCell(pos Pos, s CellState) error {
	cur := g.cells[pos]
	if cur.Block == s.Block && cur.Power == s.Power {
		return nil
	}
	s.Epoch = cur.Epoch + 1
	g.cells[pos] = s
	g.writes++
	if g.onWrite != nil {
		g.onWrite(pos)
	}
	return nil
}

func (g *fakeGrid) Break(pos Pos) error {
	cur := g.cells[pos]
	g.cells[pos] = CellState{Block: blockAir, Epoch: cur.Epoch + 1}
	g.broken = append(g.broken, pos)
	return nil
}

// replace mutates a cell the way an unrelated host edit would.
func (g *fakeGrid) replace(pos Pos, block uint16, power int) {
	cur := g.cells[pos]
	g.cells[pos] = CellState{Block: block, Power: uint8(power), Epoch: cur.Epoch + 1}
}

func (g *fakeGrid) wire(pos Pos, power int) { g.replace(pos, blockWire, power) }

func (g *fakeGrid) source(pos Pos, power int) { g.replace(pos, blockSource, power) }

func (g *fakeGrid) power(pos Pos) int { return int(g.cells[pos].Power) }

// fakeConns connects horizontally adjacent wires on one layer.
type fakeConns struct {
	g           *fakeGrid
	unsupported map[Pos]bool
}

func (c *fakeConns) Links(pos Pos) []Link {
	var out []Link
	for _, d := range Horizontal {
		np := pos.Add(d.Offset())
		if c.g.IsWire(c.g.Cell(np)) {
			out = append(out, Link{Pos: np, Dir: d})
		}
	}
	return out
}

func (c *fakeConns) Emits(src *Node, to Pos) int {
	if src.State.Block != blockSource {
		return 0
	}
	return int(src.State.Power)
}

func (c *fakeConns) Supported(pos Pos) bool { return !c.unsupported[pos] }

func newFakeDriver(g *fakeGrid, cfg Config) (*Driver, *fakeConns) {
	conns := &fakeConns{g: g, unsupported: map[Pos]bool{}}
	return NewDriver(g, conns, cfg), conns
}

func at(x, z int) Pos { return Pos{X: x, Y: 0, Z: z} }
