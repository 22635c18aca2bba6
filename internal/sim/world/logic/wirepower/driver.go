package wirepower

import "errors"

// ChangeKind says what happened to a cell that starts a pass.
type ChangeKind uint8

const (
	ChangePlaced ChangeKind = iota + 1
	ChangeRemoved
	ChangeRepowered
)

func (k ChangeKind) String() string {
	switch k {
	case ChangePlaced:
		return "PLACED"
	case ChangeRemoved:
		return "REMOVED"
	case ChangeRepowered:
		return "REPOWERED"
	default:
		return "UNKNOWN"
	}
}

// Change names a root of a pass.
type Change struct {
	Pos  Pos
	Kind ChangeKind
}

// Config bounds one pass.
type Config struct {
	Range Range
	// MaxNodes caps the discovered subgraph. A node whose neighbours were cut
	// off takes their committed power, less one, as a floor.
	MaxNodes int
}

func (c *Config) applyDefaults() {
	if c.Range == (Range{}) {
		c.Range = DefaultRange
	}
	if c.MaxNodes <= 0 {
		c.MaxNodes = 4096
	}
}

// PowerChange is a committed level change of one wire.
type PowerChange struct {
	Pos  Pos
	From int
	To   int
}

// NodeFailure is a node whose commit did not go through.
type NodeFailure struct {
	Pos Pos
	Err error
}

// Result summarizes one pass.
type Result struct {
	Nodes     int
	Offers    int
	Truncated bool

	Changed []PowerChange
	Broken  []Pos
	Stale   []Pos
	Failed  []NodeFailure
	// Frontier lists the wires just past the MaxNodes cut, in discovery order.
	Frontier []Pos
}

// Driver runs propagation passes against one grid.
type Driver struct {
	grid  Grid
	conns Connections
	cfg   Config
}

func NewDriver(g Grid, conns Connections, cfg Config) *Driver {
	cfg.applyDefaults()
	return &Driver{grid: g, conns: conns, cfg: cfg}
}

func (d *Driver) Range() Range { return d.cfg.Range }

// Run discovers the wires affected by changes, relaxes their power and
// commits every node before returning.
func (d *Driver) Run(changes []Change) Result {
	return d.run(changes).res
}

func (d *Driver) run(changes []Change) *pass {
	p := d.newPass()
	p.discover(changes)
	if len(p.arena) == 0 {
		return p
	}
	p.seed()
	p.relax()
	p.commit()
	return p
}

type pass struct {
	d *Driver

	arena []WireNode
	byPos map[Pos]int32

	// Discovery FIFO threaded through WireNode.nextWire.
	head int32
	tail int32

	queue   *bucketQueue
	scratch Node
	cut     map[Pos]struct{}

	res Result
}

func (d *Driver) newPass() *pass {
	return &pass{
		d:     d,
		arena: make([]WireNode, 0, 64),
		byPos: make(map[Pos]int32, 64),
		head:  -1,
		tail:  -1,
	}
}

func (p *pass) add(n WireNode, origin Origin) int32 {
	idx := int32(len(p.arena))
	n.index = idx
	n.Origin = origin
	n.advance(StatusDiscovered)
	p.arena = append(p.arena, n)
	p.byPos[n.Pos] = idx
	p.enqueue(idx)
	return idx
}

func (p *pass) enqueue(idx int32) {
	if p.tail < 0 {
		p.head = idx
	} else {
		p.arena[p.tail].nextWire = idx
	}
	p.tail = idx
}

func (p *pass) dequeue() int32 {
	idx := p.head
	if idx < 0 {
		return -1
	}
	n := &p.arena[idx]
	p.head = n.nextWire
	n.nextWire = -1
	if p.head < 0 {
		p.tail = -1
	}
	return idx
}

func (p *pass) addRoot(c Change) {
	g := p.d.grid
	if idx, ok := p.byPos[c.Pos]; ok {
		n := &p.arena[idx]
		if c.Kind == ChangePlaced && n.Origin != OriginAdded {
			n.Origin = OriginAdded
		}
		return
	}
	state := g.Cell(c.Pos)
	isWire := g.IsWire(state)

	switch c.Kind {
	case ChangeRemoved:
		if isWire {
			// Replaced within the same tick: treat as a repower.
			p.addWire(c.Pos, state, OriginRoot)
			return
		}
		n := newWireNode(c.Pos, state, p.d.cfg.Range)
		n.CurrentPower = p.d.cfg.Range.Min
		idx := p.add(n, OriginRoot)
		p.arena[idx].MarkRemoved()
	case ChangePlaced:
		if isWire {
			p.addWire(c.Pos, state, OriginAdded)
		}
	default:
		if isWire {
			p.addWire(c.Pos, state, OriginRoot)
		}
	}
}

func (p *pass) addWire(pos Pos, state CellState, origin Origin) int32 {
	idx := p.add(newWireNode(pos, state, p.d.cfg.Range), origin)
	if !p.d.conns.Supported(pos) {
		p.arena[idx].MarkBroken()
	}
	return idx
}

// discover walks the connected wires breadth-first from the roots.
func (p *pass) discover(changes []Change) {
	for _, c := range changes {
		p.addRoot(c)
	}
	g := p.d.grid
	for idx := p.dequeue(); idx >= 0; idx = p.dequeue() {
		n := &p.arena[idx]
		if n.Status == StatusDiscovered {
			n.advance(StatusSearched)
		}
		pos := n.Pos
		retired := n.Status.Retired()

		for _, l := range p.d.conns.Links(pos) {
			j, ok := p.byPos[l.Pos]
			if !ok {
				if len(p.arena) >= p.d.cfg.MaxNodes {
					p.cutOff(idx, l.Pos)
					continue
				}
				state := g.Cell(l.Pos)
				if !g.IsWire(state) {
					continue
				}
				j = p.addWire(l.Pos, state, OriginNetwork)
			}
			if !retired {
				p.arena[idx].Connections.add(j, l.Dir)
			}
		}
	}
	p.res.Nodes = len(p.arena)
}

// cutOff records a wire the budget kept out of the pass. The node linking to
// it is floored at what that wire could still offer.
func (p *pass) cutOff(idx int32, pos Pos) {
	g := p.d.grid
	state := g.Cell(pos)
	if !g.IsWire(state) {
		return
	}
	p.res.Truncated = true
	n := &p.arena[idx]
	if v := int(state.Power) - 1; v > n.cutFloor {
		n.cutFloor = v
	}
	if p.cut == nil {
		p.cut = map[Pos]struct{}{}
	}
	if _, ok := p.cut[pos]; ok {
		return
	}
	p.cut[pos] = struct{}{}
	p.res.Frontier = append(p.res.Frontier, pos)
}

func (p *pass) externalPower(pos Pos) int {
	g := p.d.grid
	best := p.d.cfg.Range.Min
	for _, o := range Neighbors6 {
		np := pos.Add(o)
		state := g.Cell(np)
		if g.IsWire(state) {
			continue
		}
		if v := p.d.conns.Emits(p.scratch.Set(np, state), pos); v > best {
			best = v
		}
	}
	return p.d.cfg.Range.Clamp(best)
}

// seed resets every live node to its external floor and queues it.
func (p *pass) seed() {
	rng := p.d.cfg.Range
	p.queue = newBucketQueue(rng)
	for i := range p.arena {
		n := &p.arena[i]
		if n.Status.Retired() {
			continue
		}
		n.ExternalPower = p.externalPower(n.Pos)
		n.VirtualPower = n.ExternalPower
		if f := rng.Clamp(n.cutFloor); f > n.VirtualPower {
			n.VirtualPower = f
		}
		n.FlowIn = 0
		n.IFlowDir = NoDir
		n.Priority = n.priority()
		n.advance(StatusSeeded)
		p.queue.push(n.index, n.Priority)
	}
}

// relax settles nodes from the highest level down. A node leaves the queue
// for good the first time it is popped; later entries for it are stale.
func (p *pass) relax() {
	floor := p.d.cfg.Range.Min
	for {
		idx, ok := p.queue.pop()
		if !ok {
			return
		}
		n := &p.arena[idx]
		if n.Status != StatusSeeded {
			continue
		}
		n.advance(StatusSettled)
		n.IFlowDir = FlowDir(n.FlowIn, n.IFlowDir)

		offer := n.VirtualPower - 1
		if offer <= floor {
			continue
		}
		n.Connections.each(n.IFlowDir, n.Inflows() == 1, func(e edge) {
			nb := &p.arena[e.to]
			p.res.Offers++
			if nb.OfferPower(offer, e.dir) && nb.Status == StatusSeeded {
				p.queue.push(nb.index, nb.Priority)
			}
		})
	}
}

// commit writes every node back. A failed node never blocks its siblings.
func (p *pass) commit() {
	for i := range p.arena {
		n := &p.arena[i]
		from := n.CurrentPower
		err := n.SetPower(p.d.grid)
		switch {
		case errors.Is(err, ErrStaleNode):
			p.res.Stale = append(p.res.Stale, n.Pos)
		case err != nil:
			p.res.Failed = append(p.res.Failed, NodeFailure{Pos: n.Pos, Err: err})
		case n.Status == StatusBroken:
			p.res.Broken = append(p.res.Broken, n.Pos)
		case n.Status == StatusCommitted && n.CurrentPower != from:
			p.res.Changed = append(p.res.Changed, PowerChange{Pos: n.Pos, From: from, To: n.CurrentPower})
		}
	}
}
