package world

import (
	"testing"

	"machinecraft.ai/internal/bus"
	"machinecraft.ai/internal/ledger"
	"machinecraft.ai/internal/protocol"
	"machinecraft.ai/internal/sim/catalogs"
)

// nopBus satisfies MessageBus for tests that drive renderers directly.
type nopBus struct{}

func (nopBus) Invoke(channel, token string, req protocol.UpdateRequest, reply chan<- bus.Result) {
}

func testCatalogs() *catalogs.Catalogs {
	return &catalogs.Catalogs{
		Machines: catalogs.MachineCatalog{
			ByID: map[string]catalogs.MachineDef{
				"GENERATOR": {
					ID:               "GENERATOR",
					PersistentEntity: true,
					UpdateChannel:    "machine.generator.update",
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

func newTestWorld(t *testing.T) (*World, *ledger.Memory) {
	t.Helper()
	led := ledger.NewMemory([]string{"energy"})
	w := New(WorldConfig{ID: "test", TickRateHz: 20, ReconcileEveryTicks: 5, EvictRadius: 10},
		testCatalogs(), led, nopBus{})
	if !w.DebugAddMachine("E1", "GENERATOR", Vec3{X: 1.5, Y: 64.2, Z: -0.5}, "overworld") {
		t.Fatal("DebugAddMachine")
	}
	if !w.DebugAddPlayer("P1", Vec3{X: 2, Y: 64, Z: 0}, "overworld") {
		t.Fatal("DebugAddPlayer")
	}
	return w, led
}

func testRenderContext(t *testing.T, w *World) *renderContext {
	t.Helper()
	e := w.entities["E1"]
	return &renderContext{
		w:      w,
		entity: e,
		pos:    e.BlockPos(),
		c:      w.containerFor("E1"),
		player: w.players["P1"],
	}
}
