package world

import (
	"math"

	"machinecraft.ai/internal/protocol"
	"machinecraft.ai/internal/sim/catalogs"
)

// renderProgress draws a single indicator stack whose variant encodes the
// value. The value must be an integer in [0, kind max]; anything else aborts
// the whole pass before any slot write.
func (rc *renderContext) renderProgress(el catalogs.ProgressIndicator, value float64) error {
	max := el.Indicator.Max()
	if value != math.Trunc(value) || value < 0 || value > float64(max) {
		return fatalf(protocol.ErrProgressRange,
			"progress %q: value %v outside integer range [0,%d]", el.Element, value, max)
	}

	if s := rc.c.Get(el.Slot); s != nil && !s.UITag {
		rc.ejectForeign(el.Slot, s)
	}
	rc.c.Set(el.Slot, progressStack(el.Indicator, int(value)))
	return nil
}
