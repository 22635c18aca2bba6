package world

import (
	"sort"

	"voxelwire.ai/internal/sim/world/logic/mathx"
	"voxelwire.ai/internal/sim/world/logic/wirepower"
)

type Vec3i = wirepower.Pos

func Manhattan(a, b Vec3i) int {
	return mathx.AbsInt(a.X-b.X) + mathx.AbsInt(a.Y-b.Y) + mathx.AbsInt(a.Z-b.Z)
}

func sortPositions(ps []Vec3i) {
	sort.Slice(ps, func(i, j int) bool { return posLess(ps[i], ps[j]) })
}

func posLess(a, b Vec3i) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}
