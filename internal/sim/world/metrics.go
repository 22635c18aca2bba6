package world

// WorldMetrics is a thread-safe read-only view of key world runtime signals.
// It is updated from the world loop goroutine and read from HTTP handlers/tests.
type WorldMetrics struct {
	Tick uint64 `json:"tick"`

	Agents       int `json:"agents"`
	Clients      int `json:"clients"`
	LoadedChunks int `json:"loaded_chunks"`
	Items        int `json:"items"`

	QueueDepths QueueDepths `json:"queue_depths"`

	StepMS float64 `json:"step_ms"`

	Wire WireMetrics `json:"wire"`
}

type QueueDepths struct {
	Inbox int `json:"inbox"`
	Join  int `json:"join"`
	Leave int `json:"leave"`
}

// WireMetrics covers the passes of the last tick plus running totals.
type WireMetrics struct {
	Passes    int  `json:"passes"`
	Nodes     int  `json:"nodes"`
	Offers    int  `json:"offers"`
	Changed   int  `json:"changed"`
	Broken    int  `json:"broken"`
	Stale     int  `json:"stale"`
	Truncated bool `json:"truncated"`
	Pending   int  `json:"pending"`

	PassTotal  uint64 `json:"pass_total"`
	StaleTotal uint64 `json:"stale_total"`
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	v := w.metrics.Load()
	if v == nil {
		return WorldMetrics{}
	}
	m, ok := v.(WorldMetrics)
	if !ok {
		return WorldMetrics{}
	}
	return m
}
