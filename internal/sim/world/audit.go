package world

import "machinecraft.ai/internal/protocol"

// PassEntry is one JSONL record per reconciliation pass that reached its
// resume point. Code is empty for a clean pass, a protocol error code for a
// fatal abort, "ABANDONED" when the entity vanished mid-call.
type PassEntry struct {
	Tick     uint64            `json:"tick"`
	EntityID string            `json:"entity_id"`
	Machine  string            `json:"machine"`
	Pos      protocol.BlockPos `json:"pos"`
	Init     bool              `json:"init,omitempty"`
	Elements int               `json:"elements,omitempty"`
	Code     string            `json:"code,omitempty"`
	Message  string            `json:"message,omitempty"`
}

type AuditEntry struct {
	Tick     uint64 `json:"tick"`
	Action   string `json:"action"` // e.g. "SESSION_REGISTER"
	EntityID string `json:"entity_id,omitempty"`
	PlayerID string `json:"player_id,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type PassLogger interface {
	WritePass(entry PassEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

func (w *World) auditEvent(action, entityID, playerID, reason string) {
	if w.auditLogger == nil {
		return
	}
	_ = w.auditLogger.WriteAudit(AuditEntry{
		Tick:     w.tick.Load(),
		Action:   action,
		EntityID: entityID,
		PlayerID: playerID,
		Reason:   reason,
	})
}

func (w *World) logPass(entry PassEntry) {
	if w.passLogger == nil {
		return
	}
	entry.Tick = w.tick.Load()
	_ = w.passLogger.WritePass(entry)
}
