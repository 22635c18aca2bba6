package wirepower

// CellState is a snapshot of one persisted grid cell.
type CellState struct {
	Block uint16
	Power uint8
	// Epoch is bumped by the grid on every write to the cell.
	Epoch uint32
}

func (s CellState) WithPower(p int) CellState {
	if p < 0 {
		p = 0
	}
	if p > 255 {
		p = 255
	}
	s.Power = uint8(p)
	return s
}

// Grid is the persisted world as seen by a pass.
type Grid interface {
	Cell(pos Pos) CellState
	IsWire(s CellState) bool
	// SetCell persists s (block and power) at pos.
	SetCell(pos Pos, s CellState) error
	// Break clears pos to empty and drops the cell's item.
	Break(pos Pos) error
}

// Link is one connection from a wire cell to a neighbouring wire cell.
type Link struct {
	Pos Pos
	Dir Dir // horizontal direction from the wire to Pos
}

// Connections owns the adjacency policy of the host world.
type Connections interface {
	// Links lists the wire cells a wire at pos connects to. It must not
	// require pos itself to hold a wire (removed cells are still expanded).
	Links(pos Pos) []Link
	// Emits reports the power the non-wire cell observed by src sends into
	// the wire at to.
	Emits(src *Node, to Pos) int
	// Supported reports whether a wire at pos still rests on something.
	Supported(pos Pos) bool
}

// Node is a cached view of one grid cell. Plain nodes are read-only
// observers reused by the driver when sampling external sources.
type Node struct {
	Pos      Pos
	State    CellState
	Priority int
}

// Set rebinds a plain node to another cell.
func (n *Node) Set(pos Pos, state CellState) *Node {
	n.Pos = pos
	n.State = state
	n.Priority = 0
	return n
}
