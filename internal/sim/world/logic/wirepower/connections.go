package wirepower

type edge struct {
	to  int32
	dir Dir
}

// ConnectionSet is the resolved adjacency of one WireNode inside a pass,
// grouped by the direction each neighbour lies in.
type ConnectionSet struct {
	byDir [4][]edge
	total int
}

func (c *ConnectionSet) add(to int32, dir Dir) {
	if !dir.Valid() {
		return
	}
	for _, e := range c.byDir[dir] {
		if e.to == to {
			return
		}
	}
	c.byDir[dir] = append(c.byDir[dir], edge{to: to, dir: dir})
	c.total++
}

func (c *ConnectionSet) Len() int { return c.total }

// In reports how many neighbours lie in dir.
func (c *ConnectionSet) In(dir Dir) int {
	if !dir.Valid() {
		return 0
	}
	return len(c.byDir[dir])
}

// each visits the edges starting with the flow direction: forward, the two
// sides, then backward. NoDir visits in index order. With skipBack a lone
// backward edge, which leads back to the supplier, is dropped.
func (c *ConnectionSet) each(flow Dir, skipBack bool, fn func(e edge)) {
	if c.total == 0 {
		return
	}
	order := Horizontal
	if flow.Valid() {
		order = [4]Dir{flow, flow.Clockwise(), flow.CounterClockwise(), flow.Opposite()}
	}
	for i, d := range order {
		if skipBack && flow.Valid() && i == 3 && len(c.byDir[d]) == 1 {
			break
		}
		for _, e := range c.byDir[d] {
			fn(e)
		}
	}
}

// flowTable maps a 4-bit FlowIn mask to the canonical inbound direction.
// Opposed bits cancel; when two perpendicular directions remain the lower
// index wins so the choice is stable across runs.
var flowTable = func() [16]Dir {
	var t [16]Dir
	for mask := 0; mask < 16; mask++ {
		dx, dz := 0, 0
		for _, d := range Horizontal {
			if mask&int(d.bit()) != 0 {
				dx += dirOffsets[d].X
				dz += dirOffsets[d].Z
			}
		}
		out := NoDir
		for _, d := range Horizontal {
			o := dirOffsets[d]
			if (o.X != 0 && o.X == dx) || (o.Z != 0 && o.Z == dz) {
				out = d
				break
			}
		}
		t[mask] = out
	}
	return t
}()

// FlowDir derives the inbound direction from a FlowIn mask. fallback is
// returned when the mask carries no net direction.
func FlowDir(flowIn uint8, fallback Dir) Dir {
	if d := flowTable[flowIn&0x0f]; d != NoDir {
		return d
	}
	return fallback
}
