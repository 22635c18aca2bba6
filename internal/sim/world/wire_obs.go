package world

import (
	"sort"

	"voxelwire.ai/internal/protocol"
	"voxelwire.ai/internal/sim/world/logic/wirepower"
)

func wireObs(c wirepower.PowerChange) protocol.WireObs {
	return protocol.WireObs{Pos: c.Pos.ToArray(), Power: c.To, From: c.From}
}

// mergeWireObs folds repeated changes of one wire into a single entry that
// keeps the first From and the last Power, dropping wires that ended where
// they started.
func mergeWireObs(in []protocol.WireObs) []protocol.WireObs {
	if len(in) < 2 {
		return in
	}
	byPos := make(map[[3]int]int, len(in))
	out := make([]protocol.WireObs, 0, len(in))
	for _, o := range in {
		if i, ok := byPos[o.Pos]; ok {
			out[i].Power = o.Power
			continue
		}
		byPos[o.Pos] = len(out)
		out = append(out, o)
	}
	kept := out[:0]
	for _, o := range out {
		if o.Power != o.From {
			kept = append(kept, o)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		return posLess(wirepower.PosFromArray(kept[i].Pos), wirepower.PosFromArray(kept[j].Pos))
	})
	return kept
}
