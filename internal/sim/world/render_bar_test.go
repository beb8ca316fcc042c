package world

import (
	"testing"

	"machinecraft.ai/internal/sim/catalogs"
)

func barElement() catalogs.StorageBar {
	return catalogs.StorageBar{Element: "energy", StartSlot: 0}
}

func TestStorageBar_Disabled(t *testing.T) {
	w, _ := newTestWorld(t)
	rc := testRenderContext(t, w)

	if err := rc.renderStorageBar(barElement(), barDirective{}, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	for i := 0; i < catalogs.BarSlots; i++ {
		s := rc.c.Get(i)
		if s == nil || s.Item != ItemUIBarDisabled || s.Display != "Disabled" || !s.UITag {
			t.Fatalf("slot %d = %+v", i, s)
		}
	}
}

func TestStorageBar_SegmentDistribution(t *testing.T) {
	w, led := newTestWorld(t)
	rc := testRenderContext(t, w)

	// For every legal amount the four slots must encode exactly
	// floor(a/100) segments, monotonically non-increasing from the top slot
	// down, each capped at 16.
	for a := 0; a <= 6400; a += 7 {
		if err := led.SetStorage(rc.pos, "energy", a); err != nil {
			t.Fatal(err)
		}
		if err := rc.renderStorageBar(barElement(), barDirective{Type: "energy"}, true); err != nil {
			t.Fatalf("a=%d: %v", a, err)
		}
		total := 0
		prev := SegmentsPerSlot
		for i := catalogs.BarSlots - 1; i >= 0; i-- {
			s := rc.c.Get(i)
			if s == nil || s.Item != ItemUIBar {
				t.Fatalf("a=%d slot %d = %+v", a, i, s)
			}
			if s.Variant < 0 || s.Variant > SegmentsPerSlot {
				t.Fatalf("a=%d slot %d variant %d", a, i, s.Variant)
			}
			if s.Variant > prev {
				t.Fatalf("a=%d: segments increase toward low slots", a)
			}
			prev = s.Variant
			total += s.Variant
		}
		if total != a/SegmentAmount {
			t.Fatalf("a=%d: total segments %d, want %d", a, total, a/SegmentAmount)
		}
	}
	// Boundary amounts exactly.
	for _, a := range []int{0, 99, 100, 1600, 1601, 3200, 6399, 6400} {
		if err := led.SetStorage(rc.pos, "energy", a); err != nil {
			t.Fatal(err)
		}
		if err := rc.renderStorageBar(barElement(), barDirective{Type: "energy"}, true); err != nil {
			t.Fatal(err)
		}
		total := 0
		for i := 0; i < catalogs.BarSlots; i++ {
			total += rc.c.Get(i).Variant
		}
		if total != a/SegmentAmount {
			t.Fatalf("a=%d: total %d", a, total)
		}
	}
}

func TestStorageBar_EndToEnd250(t *testing.T) {
	w, led := newTestWorld(t)
	rc := testRenderContext(t, w)
	if err := led.SetStorage(rc.pos, "energy", 250); err != nil {
		t.Fatal(err)
	}
	if err := rc.renderStorageBar(barElement(), barDirective{Type: "energy"}, true); err != nil {
		t.Fatal(err)
	}
	// floor(250/100)=2 segments, most significant slot first: [0,0,0,2].
	for i, want := range []int{0, 0, 0, 2} {
		s := rc.c.Get(i)
		if s.Variant != want {
			t.Fatalf("slot %d variant = %d, want %d", i, s.Variant, want)
		}
		if s.Display != "250/6400 Energy" {
			t.Fatalf("slot %d label = %q", i, s.Display)
		}
		if s.Tint != "red" {
			t.Fatalf("slot %d tint = %q", i, s.Tint)
		}
	}
}

func TestStorageBar_UnknownTypeFatal(t *testing.T) {
	w, _ := newTestWorld(t)
	rc := testRenderContext(t, w)
	err := rc.renderStorageBar(barElement(), barDirective{Type: "plasma"}, true)
	if err == nil || errCode(err) != "E_UNKNOWN_STORAGE_TYPE" {
		t.Fatalf("err = %v", err)
	}
}

func TestStorageBar_EjectsForeignCover(t *testing.T) {
	w, led := newTestWorld(t)
	rc := testRenderContext(t, w)
	if err := led.SetStorage(rc.pos, "energy", 100); err != nil {
		t.Fatal(err)
	}
	// A player dropped iron over the widget.
	rc.c.Set(2, &ItemStack{Item: "IRON_INGOT", Count: 3})

	if err := rc.renderStorageBar(barElement(), barDirective{Type: "energy"}, true); err != nil {
		t.Fatal(err)
	}
	if s := rc.c.Get(2); s == nil || s.Item != ItemUIBar {
		t.Fatalf("slot 2 not refilled: %+v", s)
	}
	drops := w.DebugItemEntities()
	if len(drops) != 1 || drops[0].Stack.Item != "IRON_INGOT" || drops[0].Stack.Count != 3 {
		t.Fatalf("drops = %+v", drops)
	}
	// Ejected at the player's position, not destroyed.
	if drops[0].Pos != w.players["P1"].Pos {
		t.Fatalf("drop pos = %+v", drops[0].Pos)
	}
}
