package ids

import (
	"fmt"
	"strconv"
	"strings"
)

// CellID names a block-backed object by kind and position, e.g. "SWITCH@3,0,-2".
func CellID(kind string, x, y, z int) string {
	return fmt.Sprintf("%s@%d,%d,%d", kind, x, y, z)
}

func ParseCellID(id string) (kind string, x, y, z int, ok bool) {
	parts := strings.SplitN(id, "@", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", 0, 0, 0, false
	}
	kind = parts[0]
	coord := strings.Split(parts[1], ",")
	if len(coord) != 3 {
		return "", 0, 0, 0, false
	}
	x, err1 := strconv.Atoi(coord[0])
	y, err2 := strconv.Atoi(coord[1])
	z, err3 := strconv.Atoi(coord[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return "", 0, 0, 0, false
	}
	return kind, x, y, z, true
}

func SwitchIDAt(x, y, z int) string   { return CellID("SWITCH", x, y, z) }
func SensorIDAt(x, y, z int) string   { return CellID("SENSOR", x, y, z) }
func ConveyorIDAt(x, y, z int) string { return CellID("CONVEYOR", x, y, z) }
func WireIDAt(x, y, z int) string     { return CellID("WIRE", x, y, z) }
