package world

import (
	"testing"

	"machinecraft.ai/internal/sim/catalogs"
)

func TestProgress_RendersValue(t *testing.T) {
	w, _ := newTestWorld(t)
	rc := testRenderContext(t, w)
	el := catalogs.ProgressIndicator{Element: "burn", Slot: 5, Indicator: catalogs.IndicatorFlame}

	if err := rc.renderProgress(el, 7); err != nil {
		t.Fatal(err)
	}
	s := rc.c.Get(5)
	if s == nil || s.Item != ItemUIProgressFlame || s.Variant != 7 || !s.UITag {
		t.Fatalf("slot = %+v", s)
	}

	// Default value renders zero.
	if err := rc.renderProgress(el, 0); err != nil {
		t.Fatal(err)
	}
	if rc.c.Get(5).Variant != 0 {
		t.Fatalf("slot = %+v", rc.c.Get(5))
	}
}

func TestProgress_OutOfRangeFatalNoWrite(t *testing.T) {
	w, _ := newTestWorld(t)
	rc := testRenderContext(t, w)
	el := catalogs.ProgressIndicator{Element: "work", Slot: 6, Indicator: catalogs.IndicatorArrow}

	// Arrow max is 16; 17 must abort before any slot write.
	err := rc.renderProgress(el, 17)
	if err == nil || errCode(err) != "E_PROGRESS_RANGE" {
		t.Fatalf("err = %v", err)
	}
	if rc.c.Get(6) != nil {
		t.Fatalf("slot written despite fatal error: %+v", rc.c.Get(6))
	}

	if err := rc.renderProgress(el, -1); err == nil {
		t.Fatalf("negative accepted")
	}
	if err := rc.renderProgress(el, 8.5); err == nil {
		t.Fatalf("fractional accepted")
	}
	if err := rc.renderProgress(el, 16); err != nil {
		t.Fatalf("max is inclusive: %v", err)
	}
}

func TestProgress_EjectsForeignOccupant(t *testing.T) {
	w, _ := newTestWorld(t)
	rc := testRenderContext(t, w)
	el := catalogs.ProgressIndicator{Element: "burn", Slot: 5, Indicator: catalogs.IndicatorFlame}
	rc.c.Set(5, &ItemStack{Item: "COAL", Count: 2})

	if err := rc.renderProgress(el, 3); err != nil {
		t.Fatal(err)
	}
	if s := rc.c.Get(5); s == nil || s.Item != ItemUIProgressFlame {
		t.Fatalf("slot = %+v", s)
	}
	drops := w.DebugItemEntities()
	if len(drops) != 1 || drops[0].Stack.Item != "COAL" {
		t.Fatalf("drops = %+v", drops)
	}
}
