package wirepower

import "math/bits"

// WireNode is a Node holding one wire segment and its propagation state.
type WireNode struct {
	Node

	Connections ConnectionSet

	// CurrentPower is the level last committed to the grid.
	CurrentPower int
	// VirtualPower is the candidate level while the pass relaxes.
	VirtualPower int
	// ExternalPower is what adjacent non-wire sources provide.
	ExternalPower int
	// FlowIn has a bit per direction that supplies the current VirtualPower.
	FlowIn uint8
	// IFlowDir is the canonical inbound direction derived from FlowIn.
	IFlowDir Dir

	Status Status
	Origin Origin

	rng      Range
	epoch    uint32
	index    int32
	nextWire int32
	// cutFloor is the best offer from wires left out of the pass by MaxNodes.
	cutFloor int
}

func newWireNode(pos Pos, state CellState, rng Range) WireNode {
	n := WireNode{
		Node:     Node{Pos: pos, State: state},
		rng:      rng,
		epoch:    state.Epoch,
		IFlowDir: NoDir,
		index:    -1,
		nextWire: -1,
	}
	n.CurrentPower = int(state.Power)
	n.VirtualPower = n.CurrentPower
	n.Priority = n.priority()
	return n
}

// NewWireNode builds a standalone node from a grid read.
func NewWireNode(pos Pos, state CellState, rng Range) *WireNode {
	n := newWireNode(pos, state, rng)
	return &n
}

// Set always panics: a wire node is bound to one cell for its lifetime.
func (n *WireNode) Set(Pos, CellState) *Node {
	panic(ErrUnsupportedMutation)
}

func (n *WireNode) priority() int { return n.rng.Clamp(n.VirtualPower) }

func (n *WireNode) advance(to Status) {
	if !n.Status.canMove(to) {
		panic("wirepower: illegal node transition " + n.Status.String() + " -> " + to.String())
	}
	n.Status = to
}

// MarkRemoved retires a node whose wire is gone from the grid.
func (n *WireNode) MarkRemoved() {
	n.advance(StatusRemoved)
	n.VirtualPower = n.rng.Min
	n.FlowIn = 0
	n.Priority = n.priority()
}

// MarkBroken retires a node whose wire must be converted to a dropped item.
func (n *WireNode) MarkBroken() {
	n.advance(StatusBroken)
	n.VirtualPower = n.rng.Min
	n.FlowIn = 0
	n.Priority = n.priority()
}

// OfferPower proposes power arriving from direction dir. It reports true
// when VirtualPower increased and the node must be (re)queued.
func (n *WireNode) OfferPower(power int, dir Dir) bool {
	if n.Status.Retired() {
		return false
	}
	if power == n.VirtualPower {
		if dir.Valid() {
			n.FlowIn |= dir.bit()
		}
		return false
	}
	if power > n.VirtualPower {
		n.VirtualPower = power
		n.FlowIn = 0
		if dir.Valid() {
			n.FlowIn = dir.bit()
		}
		n.Priority = n.priority()
		return true
	}
	return false
}

// Inflows counts the directions currently recorded in FlowIn.
func (n *WireNode) Inflows() int { return bits.OnesCount8(n.FlowIn) }

// FlowsFrom reports whether dir is recorded in FlowIn.
func (n *WireNode) FlowsFrom(dir Dir) bool {
	return dir.Valid() && n.FlowIn&dir.bit() != 0
}

// SetPower commits the settled value. Removed nodes are already consistent
// and never touch the grid.
func (n *WireNode) SetPower(g Grid) error {
	if n.Status == StatusRemoved {
		return nil
	}

	state := g.Cell(n.Pos)
	if !g.IsWire(state) || state.Epoch != n.epoch {
		return ErrStaleNode
	}
	n.State = state

	if n.Status == StatusBroken {
		return g.Break(n.Pos)
	}

	n.CurrentPower = n.rng.Clamp(n.VirtualPower)
	n.State = n.State.WithPower(n.CurrentPower)
	if err := g.SetCell(n.Pos, n.State); err != nil {
		return err
	}
	if n.Status == StatusSettled {
		n.advance(StatusCommitted)
	}
	return nil
}
