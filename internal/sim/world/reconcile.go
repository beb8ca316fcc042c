package world

import (
	"fmt"

	"machinecraft.ai/internal/bus"
	"machinecraft.ai/internal/protocol"
	"machinecraft.ai/internal/sim/catalogs"
)

// pendingPass is the continuation of a pass suspended on its handler call.
type pendingPass struct {
	token    string
	entityID string
	playerID string
	init     bool
}

// runScheduler starts one pass per tracked session. Passes are
// fire-and-forget at the granularity of the handler call, but single-flight
// per entity: a session whose previous pass has not resumed is skipped.
func (w *World) runScheduler(now uint64) {
	_ = now
	w.sessions.forEach(func(s Session) {
		e := w.entities[s.EntityID]
		if e == nil || !e.Valid {
			w.evictSession(s.EntityID, "entity_invalid")
			return
		}
		def, ok := w.machineDef(e)
		if !ok {
			w.evictSession(s.EntityID, "definition_missing")
			return
		}
		if def.PersistentEntity && !w.playerWithin(e, w.cfg.EvictRadius) {
			w.evictSession(s.EntityID, "no_observer")
			return
		}
		w.startPass(s, def, false)
	})
}

// startPass runs the synchronous prologue of a reconciliation pass and
// issues the asynchronous handler call. A forced (init) pass supersedes an
// in-flight one: the stale continuation is dropped so its late reply is
// ignored.
func (w *World) startPass(s Session, def catalogs.MachineDef, init bool) {
	e := w.entities[s.EntityID]
	if e == nil || !e.Valid {
		return
	}
	pos := e.BlockPos()

	// Inconsistent registration is fatal for the pass, not the scheduler.
	if !def.HasUI() {
		w.logPass(PassEntry{
			EntityID: s.EntityID, Machine: e.Machine, Pos: pos, Init: init,
			Code:    protocol.ErrNoUILayout,
			Message: "machine definition has no ui layout",
		})
		return
	}
	if def.UpdateChannel == "" {
		w.logPass(PassEntry{
			EntityID: s.EntityID, Machine: e.Machine, Pos: pos, Init: init,
			Code:    protocol.ErrNoHandlerChannel,
			Message: "machine definition has no update handler channel",
		})
		return
	}

	if prev, busy := w.inflight[s.EntityID]; busy {
		if !init {
			return
		}
		delete(w.pending, prev)
	}

	token := fmt.Sprintf("pass-%d", w.nextPassNum.Add(1))
	w.inflight[s.EntityID] = token
	w.pending[token] = &pendingPass{
		token:    token,
		entityID: s.EntityID,
		playerID: s.PlayerID,
		init:     init,
	}

	w.bus.Invoke(def.UpdateChannel, token, protocol.UpdateRequest{
		Type:            protocol.TypeUpdateReq,
		ProtocolVersion: protocol.Version,
		ID:              token,
		Channel:         def.UpdateChannel,
		Pos:             pos,
	}, w.replies)
}

// resumePass is the continuation after the handler call: re-validate the
// entity, merge directives, render every declared element in order, consume
// the entity's dirty marks.
func (w *World) resumePass(r bus.Result) {
	p := w.pending[r.Token]
	if p == nil {
		// Superseded or unknown; a forced pass already replaced this one.
		return
	}
	delete(w.pending, r.Token)
	if w.inflight[p.entityID] == r.Token {
		delete(w.inflight, p.entityID)
	}

	e := w.entities[p.entityID]
	if e == nil || !e.Valid {
		// Entity removed while the call was pending: abandon with no side
		// effects. This is expected, not an error.
		w.logPass(PassEntry{EntityID: p.entityID, Code: "ABANDONED"})
		return
	}
	def, ok := w.machineDef(e)
	if !ok {
		w.logPass(PassEntry{EntityID: p.entityID, Machine: e.Machine, Code: protocol.ErrUnknownMachine})
		return
	}
	pos := e.BlockPos()

	if r.Err != nil {
		w.logPass(PassEntry{
			EntityID: p.entityID, Machine: e.Machine, Pos: pos, Init: p.init,
			Code:    protocol.ErrHandlerFailed,
			Message: r.Err.Error(),
		})
		return
	}

	bars, progress := mergeDirectives(r.Resp)

	// Snapshot-and-clear this entity's dirty marks: each mark is consumed by
	// exactly one pass, and only by the pass for its owning entity.
	dirty := w.dirty.take(pos)

	rc := &renderContext{
		w:      w,
		entity: e,
		pos:    pos,
		c:      w.containerFor(e.ID),
		player: w.players[p.playerID],
		dirty:  dirty,
		init:   p.init,
	}

	rendered := 0
	for _, el := range def.UI {
		var err error
		switch el := el.(type) {
		case catalogs.StorageBar:
			d, active := bars[el.Element]
			err = rc.renderStorageBar(el, d, active)
		case catalogs.ItemSlot:
			err = rc.renderItemSlot(el)
		case catalogs.ProgressIndicator:
			err = rc.renderProgress(el, progress[el.Element])
		}
		if err != nil {
			// Fatal: abort the whole pass, remaining elements untouched.
			w.logPass(PassEntry{
				EntityID: p.entityID, Machine: e.Machine, Pos: pos, Init: p.init,
				Elements: rendered,
				Code:     errCode(err),
				Message:  err.Error(),
			})
			return
		}
		rendered++
	}

	w.logPass(PassEntry{
		EntityID: p.entityID, Machine: e.Machine, Pos: pos, Init: p.init,
		Elements: rendered,
	})
}

type barDirective struct {
	Type   string
	Change float64
}

// mergeDirectives folds a handler response: storage-bar changes for the
// same element sum, progress values overwrite by element.
func mergeDirectives(resp protocol.UpdateResponse) (map[string]barDirective, map[string]float64) {
	bars := map[string]barDirective{}
	for _, d := range resp.StorageBars {
		if d.Element == "" {
			continue
		}
		cur := bars[d.Element]
		cur.Change += d.Change
		if d.StorageType != "" {
			cur.Type = d.StorageType
		}
		bars[d.Element] = cur
	}

	progress := map[string]float64{}
	for el, v := range resp.Progress {
		progress[el] = v
	}
	return bars, progress
}

// passError tags a fatal pass error with its protocol code.
type passError struct {
	code string
	err  error
}

func (e *passError) Error() string { return e.code + ": " + e.err.Error() }
func (e *passError) Unwrap() error { return e.err }

func fatalf(code, format string, args ...any) error {
	return &passError{code: code, err: fmt.Errorf(format, args...)}
}

func errCode(err error) string {
	if pe, ok := err.(*passError); ok {
		return pe.code
	}
	return protocol.ErrInternal
}
