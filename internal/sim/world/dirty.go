package world

import "machinecraft.ai/internal/protocol"

// dirtyTracker holds logical slots that must be force-rendered on the next
// pass for their block. Marks are scoped per block position: a pass consumes
// only its own entity's marks (snapshot-and-clear), never another's.
type dirtyTracker struct {
	marks map[protocol.BlockPos]map[string]struct{}
}

func newDirtyTracker() *dirtyTracker {
	return &dirtyTracker{marks: map[protocol.BlockPos]map[string]struct{}{}}
}

func (t *dirtyTracker) mark(pos protocol.BlockPos, slotID string) {
	set := t.marks[pos]
	if set == nil {
		set = map[string]struct{}{}
		t.marks[pos] = set
	}
	set[slotID] = struct{}{}
}

// take removes and returns the block's marks. Returns nil when clean.
func (t *dirtyTracker) take(pos protocol.BlockPos) map[string]struct{} {
	set := t.marks[pos]
	if set != nil {
		delete(t.marks, pos)
	}
	return set
}

func (t *dirtyTracker) has(pos protocol.BlockPos, slotID string) bool {
	set := t.marks[pos]
	if set == nil {
		return false
	}
	_, ok := set[slotID]
	return ok
}
