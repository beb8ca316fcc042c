package world

import (
	"machinecraft.ai/internal/ledger"
	"machinecraft.ai/internal/protocol"
	"machinecraft.ai/internal/sim/catalogs"
)

// renderItemSlot reconciles one container slot against its logical ledger
// slot. Cases evaluate in strict priority order:
//
//  1. forced (dirty mark or initial pass): overwrite unconditionally;
//  2. slot empty: player removed the widget item, the ledger follows;
//  3. stackable with the expected item: player count is authoritative;
//  4. anything else: accept as a type change when legal, otherwise eject.
//
// Ledger writes here are always Silent: they record what the player did,
// they are not authoritative changes downstream listeners should act on.
func (rc *renderContext) renderItemSlot(el catalogs.ItemSlot) error {
	logical, err := rc.w.ledger.GetSlotItem(rc.pos, el.LogicalSlot)
	if err != nil {
		return fatalf(protocol.ErrInternal, "item slot %q: %v", el.Element, err)
	}
	if logical != nil && (logical.TypeIndex < 0 || logical.TypeIndex >= len(el.AllowedItems)) {
		// Ledger content predates a layout change; treat the slot as empty.
		if err := rc.w.ledger.SetSlotItem(rc.pos, el.LogicalSlot, nil, ledger.Silent); err != nil {
			return fatalf(protocol.ErrInternal, "item slot %q: %v", el.Element, err)
		}
		logical = nil
	}

	expected := rc.slotStack(el, logical)
	cur := rc.c.Get(el.Slot)

	// 1. Forced render overrides any drift state.
	if rc.forced(el.LogicalSlot) {
		rc.c.Set(el.Slot, expected)
		return nil
	}

	// 2. Player cleared the slot entirely. Cleanup scrubs stray UI-tagged
	// items from the player; nothing foreign is present to eject.
	if cur == nil {
		rc.w.driftCleanup(rc.player)
		if err := rc.w.ledger.SetSlotItem(rc.pos, el.LogicalSlot, nil, ledger.Silent); err != nil {
			return fatalf(protocol.ErrInternal, "item slot %q: %v", el.Element, err)
		}
		rc.c.Set(el.Slot, emptySlotStack())
		return nil
	}

	// Our own widget occupies the slot. Re-draw it if it no longer matches
	// what the logical content renders to; the ledger is untouched.
	if cur.UITag {
		if !cur.StackableWith(expected) {
			rc.c.Set(el.Slot, expected)
		}
		return nil
	}

	// 3. Same kind as the logical item: the visible count wins.
	if logical != nil && cur.StackableWith(expected) {
		if cur.Count != logical.Count {
			upd := &ledger.SlotItem{TypeIndex: logical.TypeIndex, Count: cur.Count}
			if err := rc.w.ledger.SetSlotItem(rc.pos, el.LogicalSlot, upd, ledger.Silent); err != nil {
				return fatalf(protocol.ErrInternal, "item slot %q: %v", el.Element, err)
			}
		}
		return nil
	}

	// 4. Different kind. A clean stack of an allowed item is a legitimate
	// type change; anything else gets ejected and the slot resets.
	if idx := indexOf(el.AllowedItems, cur.Item); idx >= 0 && cur.StackableWith(cleanInstance(cur.Item)) {
		upd := &ledger.SlotItem{TypeIndex: idx, Count: cur.Count}
		if err := rc.w.ledger.SetSlotItem(rc.pos, el.LogicalSlot, upd, ledger.Silent); err != nil {
			return fatalf(protocol.ErrInternal, "item slot %q: %v", el.Element, err)
		}
		return nil
	}

	rc.ejectForeign(el.Slot, cur)
	if err := rc.w.ledger.SetSlotItem(rc.pos, el.LogicalSlot, nil, ledger.Silent); err != nil {
		return fatalf(protocol.ErrInternal, "item slot %q: %v", el.Element, err)
	}
	rc.c.Set(el.Slot, emptySlotStack())
	return nil
}

// slotStack renders the logical content: a plain stack of the allowed item,
// or the empty-state placeholder.
func (rc *renderContext) slotStack(el catalogs.ItemSlot, logical *ledger.SlotItem) *ItemStack {
	if logical == nil {
		return emptySlotStack()
	}
	return &ItemStack{Item: el.AllowedItems[logical.TypeIndex], Count: logical.Count}
}

func indexOf(items []string, item string) int {
	for i, it := range items {
		if it == item {
			return i
		}
	}
	return -1
}
