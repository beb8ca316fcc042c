package world

import "sort"

// Session associates a machine entity with the player currently viewing its
// UI. At most one session per entity; the most recent interactor wins.
type Session struct {
	EntityID string
	PlayerID string
}

type sessionTracker struct {
	byEntity map[string]Session
}

func newSessionTracker() *sessionTracker {
	return &sessionTracker{byEntity: map[string]Session{}}
}

func (t *sessionTracker) register(entityID, playerID string) {
	t.byEntity[entityID] = Session{EntityID: entityID, PlayerID: playerID}
}

func (t *sessionTracker) evict(entityID string) bool {
	if _, ok := t.byEntity[entityID]; !ok {
		return false
	}
	delete(t.byEntity, entityID)
	return true
}

func (t *sessionTracker) get(entityID string) (Session, bool) {
	s, ok := t.byEntity[entityID]
	return s, ok
}

func (t *sessionTracker) len() int { return len(t.byEntity) }

// forEach visits sessions in sorted entity order over a snapshot, so
// callbacks may evict while iterating.
func (t *sessionTracker) forEach(fn func(Session)) {
	ids := make([]string, 0, len(t.byEntity))
	for id := range t.byEntity {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if s, ok := t.byEntity[id]; ok {
			fn(s)
		}
	}
}
