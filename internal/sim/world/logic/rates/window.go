package rates

// Window is a fixed-window counter keyed by tick.
type Window struct {
	Start uint64
	Count int
}

// Allow counts one event at nowTick. When the window is full it reports the
// ticks left until the window reopens.
func (w *Window) Allow(nowTick uint64, window uint64, max int) (ok bool, cooldownTicks uint64) {
	if window == 0 || max <= 0 {
		return true, 0
	}
	if nowTick < w.Start || nowTick-w.Start >= window {
		w.Start = nowTick
		w.Count = 0
	}
	w.Count++
	if w.Count <= max {
		return true, 0
	}
	return false, (w.Start + window) - nowTick
}
