package worldtest

import (
	"sync"
	"testing"

	"machinecraft.ai/internal/bus"
	"machinecraft.ai/internal/ledger"
	"machinecraft.ai/internal/protocol"
	"machinecraft.ai/internal/sim/catalogs"
	world "machinecraft.ai/internal/sim/world"
)

// GeneratorChannel is the update channel of the fixture machine.
const GeneratorChannel = "machine.generator.update"

// FixtureCatalogs returns the catalog set the harness worlds run on: one
// GENERATOR machine with a 4-slot energy bar, a fuel slot and a flame
// progress indicator.
func FixtureCatalogs() *catalogs.Catalogs {
	return &catalogs.Catalogs{
		Machines: catalogs.MachineCatalog{
			ByID: map[string]catalogs.MachineDef{
				"GENERATOR": {
					ID:               "GENERATOR",
					PersistentEntity: true,
					UpdateChannel:    GeneratorChannel,
					UI: []catalogs.UIElement{
						catalogs.StorageBar{Element: "energy", StartSlot: 0},
						catalogs.ItemSlot{Element: "fuel", Slot: 4, LogicalSlot: "fuel", AllowedItems: []string{"COAL", "PLANK"}},
						catalogs.ProgressIndicator{Element: "burn", Slot: 5, Indicator: catalogs.IndicatorFlame},
					},
				},
			},
		},
		Storage: catalogs.StorageTypeCatalog{
			ByID: map[string]catalogs.StorageTypeDef{
				"energy": {ID: "energy", Color: "red", DisplayName: "Energy"},
			},
		},
		Items: catalogs.ItemCatalog{
			Index: map[string]uint16{"COAL": 0, "PLANK": 1, "IRON_INGOT": 2},
		},
	}
}

// ScriptedBus is a synchronous in-process stand-in for the messaging
// channel. Invoke runs the registered handler on the calling goroutine and
// delivers the result straight into the world's reply channel, so one
// StepOnce covers a whole pass. Hold buffers deliveries instead, which lets
// tests keep a pass suspended across ticks.
type ScriptedBus struct {
	mu       sync.Mutex
	handlers map[string]bus.Handler
	calls    map[string]int
	holding  bool
	held     []heldReply
}

type heldReply struct {
	reply chan<- bus.Result
	r     bus.Result
}

func NewScriptedBus() *ScriptedBus {
	return &ScriptedBus{
		handlers: map[string]bus.Handler{},
		calls:    map[string]int{},
	}
}

// Handle installs (or replaces) the handler for a channel.
func (b *ScriptedBus) Handle(channel string, h bus.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[channel] = h
}

// Calls returns how many times a channel's handler was invoked.
func (b *ScriptedBus) Calls(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[channel]
}

// Hold suspends delivery: subsequent handler results are buffered until
// Release.
func (b *ScriptedBus) Hold() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.holding = true
}

// Release delivers every buffered result in invocation order and resumes
// synchronous delivery.
func (b *ScriptedBus) Release() {
	b.mu.Lock()
	held := b.held
	b.held = nil
	b.holding = false
	b.mu.Unlock()
	for _, h := range held {
		h.reply <- h.r
	}
}

func (b *ScriptedBus) Invoke(channel, token string, req protocol.UpdateRequest, reply chan<- bus.Result) {
	b.mu.Lock()
	b.calls[channel]++
	h := b.handlers[channel]
	holding := b.holding
	b.mu.Unlock()

	r := bus.Result{Token: token}
	if h == nil {
		r.Err = bus.ErrNoHandler(channel)
	} else {
		r.Resp, r.Err = h(req)
	}

	if holding {
		b.mu.Lock()
		b.held = append(b.held, heldReply{reply: reply, r: r})
		b.mu.Unlock()
		return
	}
	reply <- r
}

// Harness drives a world through its exported surface only: events via
// StepOnce, state inspection via Debug accessors, handler behavior via the
// scripted bus. It reconciles every tick so each StepOnce runs a full pass.
type Harness struct {
	T    *testing.T
	Cats *catalogs.Catalogs
	Led  *ledger.Memory
	Bus  *ScriptedBus
	W    *world.World
}

func NewHarness(t *testing.T) *Harness {
	t.Helper()
	return NewHarnessWithConfig(t, world.WorldConfig{
		ID:                  "test",
		TickRateHz:          20,
		ReconcileEveryTicks: 1,
		EvictRadius:         10,
	})
}

// NewHarnessWithConfig is NewHarness with an explicit world config, for
// tests that exercise the real scheduling cadence.
func NewHarnessWithConfig(t *testing.T, cfg world.WorldConfig) *Harness {
	t.Helper()

	cats := FixtureCatalogs()
	led := ledger.NewMemory([]string{"energy"})
	sb := NewScriptedBus()
	w := world.New(cfg, cats, led, sb)

	h := &Harness{T: t, Cats: cats, Led: led, Bus: sb, W: w}
	if !w.DebugAddMachine("E1", "GENERATOR", world.Vec3{X: 1.5, Y: 64.2, Z: -0.5}, "overworld") {
		t.Fatal("DebugAddMachine")
	}
	if !w.DebugAddPlayer("P1", world.Vec3{X: 2, Y: 64, Z: 0}, "overworld") {
		t.Fatal("DebugAddPlayer")
	}
	return h
}

// Pos is the fixture machine's ledger key.
func (h *Harness) Pos() protocol.BlockPos {
	return protocol.BlockPos{X: 1, Y: 64, Z: -1, Dimension: "overworld"}
}

// Interact delivers an interact event and runs one tick.
func (h *Harness) Interact(entityID, playerID string) {
	h.T.Helper()
	h.W.StepOnce(world.WorldEvent{
		Kind:     protocol.EventInteract,
		EntityID: entityID,
		PlayerID: playerID,
	})
}

// Reconcile runs n ticks; with the harness cadence every tick schedules.
func (h *Harness) Reconcile(n int) {
	h.T.Helper()
	for i := 0; i < n; i++ {
		h.W.StepOnce()
	}
}

// HandleGenerator installs a handler returning a fixed set of energy-bar
// changes and an optional burn progress value.
func (h *Harness) HandleGenerator(changes []float64, burn float64) {
	h.Bus.Handle(GeneratorChannel, func(req protocol.UpdateRequest) (protocol.UpdateResponse, error) {
		resp := protocol.UpdateResponse{
			Type:            protocol.TypeUpdateResp,
			ProtocolVersion: protocol.Version,
			ID:              req.ID,
			Progress:        map[string]float64{"burn": burn},
		}
		for _, c := range changes {
			resp.StorageBars = append(resp.StorageBars, protocol.StorageBarDirective{
				Element: "energy", StorageType: "energy", Change: c,
			})
		}
		return resp, nil
	})
}
