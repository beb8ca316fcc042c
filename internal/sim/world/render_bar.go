package world

import (
	"machinecraft.ai/internal/protocol"
	"machinecraft.ai/internal/sim/catalogs"
)

// renderStorageBar fills the bar's four contiguous slots. Without a
// directive the bar renders disabled. With one, the stored amount is split
// into 100-unit segments laid out most-significant-first from the top slot
// down, 16 sub-segments per slot, every slot carrying the same label.
func (rc *renderContext) renderStorageBar(el catalogs.StorageBar, d barDirective, active bool) error {
	// A foreign item covering any part of the widget is ejected before the
	// fill overwrites the slots.
	for i := el.StartSlot; i < el.StartSlot+catalogs.BarSlots; i++ {
		if s := rc.c.Get(i); s != nil && !s.UITag {
			rc.ejectForeign(i, s)
		}
	}

	if !active {
		for i := el.StartSlot; i < el.StartSlot+catalogs.BarSlots; i++ {
			rc.c.Set(i, barDisabledStack())
		}
		return nil
	}

	stype, ok := rc.w.catalogs.Storage.ByID[d.Type]
	if !ok {
		return fatalf(protocol.ErrUnknownStorageType, "storage bar %q: unknown storage type %q", el.Element, d.Type)
	}
	stored, err := rc.w.ledger.GetStorage(rc.pos, d.Type)
	if err != nil {
		return fatalf(protocol.ErrInternal, "storage bar %q: %v", el.Element, err)
	}

	label := barLabel(stored, stype.DisplayName, d.Change)
	remaining := stored / SegmentAmount
	for i := el.StartSlot + catalogs.BarSlots - 1; i >= el.StartSlot; i-- {
		seg := remaining
		if seg > SegmentsPerSlot {
			seg = SegmentsPerSlot
		}
		remaining -= seg
		rc.c.Set(i, barStack(stype, seg, label))
	}
	return nil
}
