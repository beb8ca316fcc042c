package world

import "fmt"

// driftCleanup scrubs every UI-tagged stack from the player's cursor and
// primary inventory. Widget items are disposable and fully reconstructible;
// clearing them is safe by construction. Returns whether anything was
// cleared. Drift is steady state, not an error: nothing is logged here.
func (w *World) driftCleanup(p *Player) bool {
	if p == nil {
		return false
	}
	changed := false
	if p.Cursor != nil && p.Cursor.UITag {
		p.Cursor = nil
		changed = true
	}
	for i, s := range p.Inventory {
		if s != nil && s.UITag {
			p.Inventory[i] = nil
			changed = true
		}
	}
	return changed
}

// ejectStack drops a foreign stack into the world at the player's position
// (falling back to the entity when no player is attached). Illegal items are
// always returned to the world, never destroyed.
func (w *World) ejectStack(p *Player, e *Entity, s ItemStack) {
	pos, dim := e.Pos, e.Dimension
	if p != nil {
		pos, dim = p.Pos, p.Dimension
	}
	w.spawnItemEntity(pos, dim, s)
}

// spawnItemEntity materializes a dropped stack. UI-tagged stacks are
// destroyed instead of spawned; placeholders never live in the world.
func (w *World) spawnItemEntity(pos Vec3, dim string, s ItemStack) string {
	if s.Count <= 0 {
		return ""
	}
	if s.UITag {
		w.auditEvent("UI_DROP_DESTROYED", "", "", s.Item)
		return ""
	}
	id := fmt.Sprintf("I%d", w.nextItemNum.Add(1))
	w.items[id] = &ItemEntity{ID: id, Pos: pos, Dimension: dim, Stack: s}
	return id
}
