package worldtest

import (
	"testing"

	world "machinecraft.ai/internal/sim/world"
)

// Interacting with a machine registers a session and immediately runs a
// forced pass: the full widget layout appears without waiting for the
// scheduler.
func TestInteractRegistersSessionAndRendersInit(t *testing.T) {
	h := NewHarness(t)
	if err := h.Led.SetStorage(h.Pos(), "energy", 250); err != nil {
		t.Fatal(err)
	}
	// Two directives for the same element merge: +5 and -2 display as +3/t.
	h.HandleGenerator([]float64{5, -2}, 3)

	h.Interact("E1", "P1")

	if !h.W.DebugHasSession("E1") {
		t.Fatal("no session after interact")
	}
	if n := h.Bus.Calls(GeneratorChannel); n != 1 {
		t.Fatalf("handler calls = %d, want 1", n)
	}

	// 250 stored = 2 segments, most-significant slot first.
	for i, want := range []int{0, 0, 0, 2} {
		s := h.W.DebugSlot("E1", i)
		if s == nil || s.Item != world.ItemUIBar || s.Variant != want {
			t.Fatalf("bar slot %d = %+v", i, s)
		}
		if s.Display != "250/6400 Energy (+3/t)" {
			t.Fatalf("bar label = %q", s.Display)
		}
	}
	if s := h.W.DebugSlot("E1", 4); s == nil || s.Item != world.ItemUISlotEmpty {
		t.Fatalf("fuel slot = %+v", s)
	}
	if s := h.W.DebugSlot("E1", 5); s == nil || s.Item != world.ItemUIProgressFlame || s.Variant != 3 {
		t.Fatalf("burn slot = %+v", s)
	}
}

func TestInteractUnknownEntityIgnored(t *testing.T) {
	h := NewHarness(t)
	h.HandleGenerator(nil, 0)

	h.Interact("NOPE", "P1")
	if h.W.DebugSessionCount() != 0 {
		t.Fatal("session for unknown entity")
	}
	if n := h.Bus.Calls(GeneratorChannel); n != 0 {
		t.Fatalf("handler calls = %d", n)
	}
}

func TestSessionLastInteractorWins(t *testing.T) {
	h := NewHarness(t)
	h.HandleGenerator(nil, 0)
	if !h.W.DebugAddPlayer("P2", world.Vec3{X: 3, Y: 64, Z: 0}, "overworld") {
		t.Fatal("DebugAddPlayer")
	}

	h.Interact("E1", "P1")
	h.Interact("E1", "P2")
	if h.W.DebugSessionCount() != 1 {
		t.Fatalf("sessions = %d, want 1", h.W.DebugSessionCount())
	}
}
