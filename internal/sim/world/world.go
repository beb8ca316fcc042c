package world

import (
	"context"
	"sync/atomic"
	"time"

	"machinecraft.ai/internal/bus"
	"machinecraft.ai/internal/ledger"
	"machinecraft.ai/internal/protocol"
	"machinecraft.ai/internal/sim/catalogs"
)

type WorldConfig struct {
	ID                  string
	TickRateHz          int
	ReconcileEveryTicks int
	EvictRadius         float64
}

// MessageBus is the slice of the messaging channel the world needs.
type MessageBus interface {
	Invoke(channel, token string, req protocol.UpdateRequest, reply chan<- bus.Result)
}

// WorldEvent is a host-game event the reconciler subscribes to.
type WorldEvent struct {
	Kind     string // protocol.EventInteract or protocol.EventItemSpawn
	EntityID string
	PlayerID string
	Stack    *ItemStack
}

// World owns every piece of mutable reconciler state: entities, players,
// containers, sessions, dirty marks, in-flight passes. All of it is accessed
// only from the world loop goroutine; external input arrives over channels.
type World struct {
	cfg      WorldConfig
	catalogs *catalogs.Catalogs
	ledger   ledger.Ledger
	bus      MessageBus

	tick atomic.Uint64

	entities   map[string]*Entity
	players    map[string]*Player
	containers map[string]*Container
	items      map[string]*ItemEntity

	sessions *sessionTracker
	dirty    *dirtyTracker

	// token per entity while a pass is between invoke and resume.
	inflight map[string]string
	pending  map[string]*pendingPass

	events  chan WorldEvent
	replies chan bus.Result
	stop    chan struct{}

	nextItemNum atomic.Uint64
	nextPassNum atomic.Uint64

	// Optional loggers (may be nil). Implemented in internal/persistence/log.
	passLogger  PassLogger
	auditLogger AuditLogger
}

func New(cfg WorldConfig, cats *catalogs.Catalogs, led ledger.Ledger, mb MessageBus) *World {
	if cfg.TickRateHz <= 0 {
		cfg.TickRateHz = 20
	}
	if cfg.ReconcileEveryTicks <= 0 {
		cfg.ReconcileEveryTicks = 5
	}
	if cfg.EvictRadius <= 0 {
		cfg.EvictRadius = 10.0
	}

	w := &World{
		cfg:        cfg,
		catalogs:   cats,
		ledger:     led,
		bus:        mb,
		entities:   map[string]*Entity{},
		players:    map[string]*Player{},
		containers: map[string]*Container{},
		items:      map[string]*ItemEntity{},
		sessions:   newSessionTracker(),
		dirty:      newDirtyTracker(),
		inflight:   map[string]string{},
		pending:    map[string]*pendingPass{},
		events:     make(chan WorldEvent, 256),
		replies:    make(chan bus.Result, 256),
		stop:       make(chan struct{}),
	}

	// Authoritative (notifying) ledger writes become dirty marks, forcing a
	// re-render on the owning entity's next pass.
	led.Subscribe(func(pos protocol.BlockPos, slotID string) {
		w.dirty.mark(pos, slotID)
	})
	return w
}

func (w *World) SetPassLogger(l PassLogger)   { w.passLogger = l }
func (w *World) SetAuditLogger(l AuditLogger) { w.auditLogger = l }

// Events is the channel the transport feeds world events into.
func (w *World) Events() chan<- WorldEvent { return w.events }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case ev := <-w.events:
			w.handleEvent(ev)
		case r := <-w.replies:
			w.resumePass(r)
		case <-ticker.C:
			w.step()
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// StepOnce drives one tick synchronously: queued events first, then the
// tick (scheduler included), then any replies already available. With a
// synchronous bus this makes a full pass deterministic; tests are built on
// it the same way the host embeds Run.
func (w *World) StepOnce(events ...WorldEvent) uint64 {
	for _, ev := range events {
		w.handleEvent(ev)
	}
	w.drainEvents()
	w.step()
	w.DrainReplies()
	return w.tick.Load()
}

// DrainReplies resumes every pass whose handler reply has already arrived.
func (w *World) DrainReplies() {
	for {
		select {
		case r := <-w.replies:
			w.resumePass(r)
		default:
			return
		}
	}
}

func (w *World) drainEvents() {
	for {
		select {
		case ev := <-w.events:
			w.handleEvent(ev)
		default:
			return
		}
	}
}

func (w *World) step() {
	now := w.tick.Add(1)
	if now%uint64(w.cfg.ReconcileEveryTicks) == 0 {
		w.runScheduler(now)
	}
}

// playerWithin reports whether any player in the entity's dimension is
// inside radius of it.
func (w *World) playerWithin(e *Entity, radius float64) bool {
	for _, p := range w.players {
		if p.Dimension != e.Dimension {
			continue
		}
		if p.Pos.DistanceTo(e.Pos) <= radius {
			return true
		}
	}
	return false
}

func (w *World) machineDef(e *Entity) (catalogs.MachineDef, bool) {
	if e == nil || e.Machine == "" {
		return catalogs.MachineDef{}, false
	}
	def, ok := w.catalogs.Machines.ByID[e.Machine]
	return def, ok
}
