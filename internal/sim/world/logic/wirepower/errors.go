package wirepower

import "errors"

var (
	// ErrStaleNode means the cell no longer holds the wire the node was built from.
	ErrStaleNode = errors.New("wirepower: stale node")
	// ErrUnsupportedMutation is raised (as a panic) when code tries to rebind a WireNode.
	ErrUnsupportedMutation = errors.New("wirepower: cannot update a wire node")
)
