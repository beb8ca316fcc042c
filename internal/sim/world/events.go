package world

import "machinecraft.ai/internal/protocol"

func (w *World) handleEvent(ev WorldEvent) {
	switch ev.Kind {
	case protocol.EventInteract:
		w.handleInteract(ev.EntityID, ev.PlayerID)
	case protocol.EventItemSpawn:
		w.handleItemSpawn(ev)
	}
}

// handleInteract registers (or refreshes) the session for a machine entity
// and runs an immediate forced pass.
func (w *World) handleInteract(entityID, playerID string) {
	e := w.entities[entityID]
	if e == nil || !e.Valid {
		return
	}
	if e.Machine == "" {
		// Not a machine entity; nothing to render.
		return
	}
	def, ok := w.machineDef(e)
	if !ok {
		// Machine-tagged entity with no backing definition: inconsistent
		// registration.
		w.logPass(PassEntry{
			EntityID: entityID,
			Machine:  e.Machine,
			Pos:      e.BlockPos(),
			Code:     protocol.ErrUnknownMachine,
			Message:  "machine entity has no registered definition",
		})
		return
	}

	w.sessions.register(entityID, playerID)
	w.auditEvent("SESSION_REGISTER", entityID, playerID, "")
	w.startPass(Session{EntityID: entityID, PlayerID: playerID}, def, true)
}

// handleItemSpawn destroys UI-tagged drops on sight; widget items must never
// persist as ordinary world items. Anything else is tracked.
func (w *World) handleItemSpawn(ev WorldEvent) {
	if ev.Stack == nil || ev.Stack.Count <= 0 {
		return
	}
	if ev.Stack.UITag {
		delete(w.items, ev.EntityID)
		w.auditEvent("UI_DROP_DESTROYED", ev.EntityID, ev.PlayerID, ev.Stack.Item)
		return
	}
	pos := Vec3{}
	dim := ""
	if e := w.entities[ev.EntityID]; e != nil {
		pos, dim = e.Pos, e.Dimension
	}
	w.items[ev.EntityID] = &ItemEntity{
		ID:        ev.EntityID,
		Pos:       pos,
		Dimension: dim,
		Stack:     *ev.Stack,
	}
}

func (w *World) evictSession(entityID, reason string) {
	if w.sessions.evict(entityID) {
		w.auditEvent("SESSION_EVICT", entityID, "", reason)
	}
}
