package world

import "machinecraft.ai/internal/protocol"

// renderContext carries one pass's per-element rendering state. dirty is the
// snapshot of the entity's dirty marks taken at resume.
type renderContext struct {
	w      *World
	entity *Entity
	pos    protocol.BlockPos
	c      *Container
	player *Player
	dirty  map[string]struct{}
	init   bool
}

func (rc *renderContext) forced(logicalSlot string) bool {
	if rc.init {
		return true
	}
	_, ok := rc.dirty[logicalSlot]
	return ok
}

// ejectForeign removes a foreign (non-UI) occupant from a widget slot: drift
// cleanup on the observing player, then the item is dropped into the world
// at the player's position. Foreign items are never destroyed.
func (rc *renderContext) ejectForeign(slot int, s *ItemStack) {
	rc.w.driftCleanup(rc.player)
	rc.w.ejectStack(rc.player, rc.entity, *s)
	rc.c.Set(slot, nil)
}
