package wirepower

// Pos is a grid coordinate.
type Pos struct {
	X int
	Y int
	Z int
}

func (p Pos) Add(o Pos) Pos { return Pos{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z} }

func (p Pos) Up() Pos   { return Pos{X: p.X, Y: p.Y + 1, Z: p.Z} }
func (p Pos) Down() Pos { return Pos{X: p.X, Y: p.Y - 1, Z: p.Z} }

func (p Pos) ToArray() [3]int { return [3]int{p.X, p.Y, p.Z} }

func PosFromArray(a [3]int) Pos { return Pos{X: a[0], Y: a[1], Z: a[2]} }

// Dir is one of the four horizontal adjacency directions.
// Its value indexes the FlowIn mask of a WireNode.
type Dir int8

const (
	West Dir = iota
	North
	East
	South

	NoDir Dir = -1
)

// Horizontal lists the directions in index order.
var Horizontal = [4]Dir{West, North, East, South}

var dirOffsets = [4]Pos{
	{X: -1, Y: 0, Z: 0},
	{X: 0, Y: 0, Z: -1},
	{X: 1, Y: 0, Z: 0},
	{X: 0, Y: 0, Z: 1},
}

// Neighbors6 are the offsets of the six face-adjacent cells.
var Neighbors6 = [6]Pos{
	{X: -1, Y: 0, Z: 0},
	{X: 0, Y: 0, Z: -1},
	{X: 1, Y: 0, Z: 0},
	{X: 0, Y: 0, Z: 1},
	{X: 0, Y: 1, Z: 0},
	{X: 0, Y: -1, Z: 0},
}

func (d Dir) Valid() bool { return d >= West && d <= South }

func (d Dir) Offset() Pos {
	if !d.Valid() {
		return Pos{}
	}
	return dirOffsets[d]
}

func (d Dir) Opposite() Dir {
	if !d.Valid() {
		return NoDir
	}
	return (d + 2) & 3
}

// Clockwise and CounterClockwise rotate around the vertical axis.
func (d Dir) Clockwise() Dir {
	if !d.Valid() {
		return NoDir
	}
	return (d + 1) & 3
}

func (d Dir) CounterClockwise() Dir {
	if !d.Valid() {
		return NoDir
	}
	return (d + 3) & 3
}

func (d Dir) bit() uint8 { return 1 << uint(d) }

func (d Dir) String() string {
	switch d {
	case West:
		return "WEST"
	case North:
		return "NORTH"
	case East:
		return "EAST"
	case South:
		return "SOUTH"
	default:
		return "NONE"
	}
}

// DirTo returns the horizontal direction from a to b, ignoring Y.
// It returns NoDir when the two cells are not horizontally adjacent.
func DirTo(a, b Pos) Dir {
	dx := b.X - a.X
	dz := b.Z - a.Z
	for _, d := range Horizontal {
		o := dirOffsets[d]
		if o.X == dx && o.Z == dz {
			return d
		}
	}
	return NoDir
}

// Range holds the legal signal bounds.
type Range struct {
	Min int
	Max int
}

// DefaultRange is the classic 16-level signal domain.
var DefaultRange = Range{Min: 0, Max: 15}

func (r Range) Clamp(v int) int {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

func (r Range) Levels() int {
	if r.Max < r.Min {
		return 0
	}
	return r.Max - r.Min + 1
}
