package world

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

// WirePassLogger receives one entry per propagation pass.
type WirePassLogger interface {
	WriteWirePass(entry WirePassEntry) error
}

type TickLogEntry struct {
	Tick    uint64           `json:"tick"`
	Joins   []RecordedJoin   `json:"joins,omitempty"`
	Leaves  []string         `json:"leaves,omitempty"`
	Actions []RecordedAction `json:"actions,omitempty"`
	Digest  string           `json:"digest"`
}

type AuditEntry struct {
	Tick    uint64         `json:"tick"`
	Actor   string         `json:"actor"`
	Action  string         `json:"action"` // e.g. "SET_BLOCK"
	Pos     [3]int         `json:"pos"`
	From    uint16         `json:"from"`
	To      uint16         `json:"to"`
	Reason  string         `json:"reason,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type WirePassEntry struct {
	Tick      uint64   `json:"tick"`
	Pass      uint64   `json:"pass"`
	Roots     int      `json:"roots"`
	Nodes     int      `json:"nodes"`
	Offers    int      `json:"offers"`
	Truncated bool     `json:"truncated,omitempty"`
	Changed   int      `json:"changed"`
	Broken    [][3]int `json:"broken,omitempty"`
	Stale     [][3]int `json:"stale,omitempty"`
	Failed    int      `json:"failed,omitempty"`
}

func (w *World) auditSetBlock(nowTick uint64, actor string, pos Vec3i, from, to uint16, reason string) {
	if w.auditLogger == nil {
		return
	}
	_ = w.auditLogger.WriteAudit(AuditEntry{
		Tick:   nowTick,
		Actor:  actor,
		Action: "SET_BLOCK",
		Pos:    pos.ToArray(),
		From:   from,
		To:     to,
		Reason: reason,
	})
}

func (w *World) auditEvent(nowTick uint64, actor string, action string, pos Vec3i, reason string, details map[string]any) {
	if w.auditLogger == nil {
		return
	}
	_ = w.auditLogger.WriteAudit(AuditEntry{
		Tick:    nowTick,
		Actor:   actor,
		Action:  action,
		Pos:     pos.ToArray(),
		Reason:  reason,
		Details: details,
	})
}
