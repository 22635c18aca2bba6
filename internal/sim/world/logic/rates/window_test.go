package rates

import "testing"

func TestWindowAllow(t *testing.T) {
	var w Window
	for i := 0; i < 3; i++ {
		if ok, _ := w.Allow(10, 5, 3); !ok {
			t.Fatalf("event %d rejected", i)
		}
	}
	ok, cd := w.Allow(12, 5, 3)
	if ok {
		t.Fatalf("expected 4th event in window to be rejected")
	}
	if cd != 3 {
		t.Fatalf("cooldown: got %d want 3", cd)
	}
	if ok, _ := w.Allow(15, 5, 3); !ok {
		t.Fatalf("expected window to reopen")
	}
	if w.Start != 15 || w.Count != 1 {
		t.Fatalf("window not reset: %+v", w)
	}
}

func TestWindowDisabled(t *testing.T) {
	var w Window
	for i := 0; i < 100; i++ {
		if ok, _ := w.Allow(1, 0, 0); !ok {
			t.Fatalf("disabled window rejected")
		}
	}
}
