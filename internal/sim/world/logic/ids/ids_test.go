package ids

import "testing"

func TestCellIDRoundTrip(t *testing.T) {
	id := SwitchIDAt(12, 0, -9)
	if id != "SWITCH@12,0,-9" {
		t.Fatalf("id: %q", id)
	}
	kind, x, y, z, ok := ParseCellID(id)
	if !ok {
		t.Fatalf("ParseCellID failed for %q", id)
	}
	if kind != "SWITCH" || x != 12 || y != 0 || z != -9 {
		t.Fatalf("unexpected parse result: kind=%q x=%d y=%d z=%d", kind, x, y, z)
	}
}

func TestParseCellIDRejectsInvalid(t *testing.T) {
	tests := []string{
		"",
		"WIRE",
		"@1,2,3",
		"WIRE@1,2",
		"WIRE@1,2,x",
	}
	for _, tc := range tests {
		if _, _, _, _, ok := ParseCellID(tc); ok {
			t.Fatalf("expected parse failure for %q", tc)
		}
	}
}
