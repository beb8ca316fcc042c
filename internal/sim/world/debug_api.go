package world

import "sort"

// Debug accessors for tests and admin tooling. They run on the caller's
// goroutine; use them only when the world loop is not running (StepOnce
// driving) or from the loop itself.

func (w *World) DebugAddMachine(entityID, machine string, pos Vec3, dim string) bool {
	if entityID == "" || machine == "" {
		return false
	}
	w.entities[entityID] = &Entity{ID: entityID, Machine: machine, Pos: pos, Dimension: dim, Valid: true}
	return true
}

// DebugInvalidateEntity marks an entity removed from the host world.
func (w *World) DebugInvalidateEntity(entityID string) bool {
	e := w.entities[entityID]
	if e == nil {
		return false
	}
	e.Valid = false
	return true
}

func (w *World) DebugAddPlayer(playerID string, pos Vec3, dim string) bool {
	if playerID == "" {
		return false
	}
	w.players[playerID] = &Player{ID: playerID, Pos: pos, Dimension: dim, Inventory: make([]*ItemStack, 36)}
	return true
}

func (w *World) DebugSetPlayerPos(playerID string, pos Vec3) bool {
	p := w.players[playerID]
	if p == nil {
		return false
	}
	p.Pos = pos
	return true
}

func (w *World) DebugSetCursor(playerID string, s *ItemStack) bool {
	p := w.players[playerID]
	if p == nil {
		return false
	}
	p.Cursor = s.clone()
	return true
}

func (w *World) DebugCursor(playerID string) *ItemStack {
	p := w.players[playerID]
	if p == nil {
		return nil
	}
	return p.Cursor.clone()
}

func (w *World) DebugSetInventorySlot(playerID string, i int, s *ItemStack) bool {
	p := w.players[playerID]
	if p == nil || i < 0 || i >= len(p.Inventory) {
		return false
	}
	p.Inventory[i] = s.clone()
	return true
}

func (w *World) DebugInventorySlot(playerID string, i int) *ItemStack {
	p := w.players[playerID]
	if p == nil || i < 0 || i >= len(p.Inventory) {
		return nil
	}
	return p.Inventory[i].clone()
}

// DebugSetSlot simulates a player mutating a rendered container slot.
func (w *World) DebugSetSlot(entityID string, i int, s *ItemStack) bool {
	if w.entities[entityID] == nil {
		return false
	}
	w.containerFor(entityID).Set(i, s.clone())
	return true
}

func (w *World) DebugSlot(entityID string, i int) *ItemStack {
	c := w.containers[entityID]
	if c == nil {
		return nil
	}
	return c.Get(i).clone()
}

func (w *World) DebugSessionCount() int { return w.sessions.len() }

func (w *World) DebugHasSession(entityID string) bool {
	_, ok := w.sessions.get(entityID)
	return ok
}

func (w *World) DebugMarkDirty(entityID, slotID string) bool {
	e := w.entities[entityID]
	if e == nil {
		return false
	}
	w.dirty.mark(e.BlockPos(), slotID)
	return true
}

// DebugItemEntities returns dropped stacks in deterministic order.
func (w *World) DebugItemEntities() []ItemEntity {
	ids := make([]string, 0, len(w.items))
	for id := range w.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]ItemEntity, 0, len(ids))
	for _, id := range ids {
		out = append(out, *w.items[id])
	}
	return out
}
