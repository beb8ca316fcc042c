package world

import (
	"fmt"
	"math"
	"strconv"

	"machinecraft.ai/internal/ledger"
	"machinecraft.ai/internal/sim/catalogs"
)

// One bar segment is worth this much stored amount.
const SegmentAmount = 100

// Sub-segments one bar slot can display (texture variants 0..16).
const SegmentsPerSlot = 16

// Catalog ids of the widget items.
const (
	ItemUIBar           = "UI_BAR"
	ItemUIBarDisabled   = "UI_BAR_DISABLED"
	ItemUISlotEmpty     = "UI_SLOT_EMPTY"
	ItemUIProgressArrow = "UI_PROGRESS_ARROW"
	ItemUIProgressFlame = "UI_PROGRESS_FLAME"
)

func barDisabledStack() *ItemStack {
	return &ItemStack{Item: ItemUIBarDisabled, Count: 1, Display: "Disabled", UITag: true}
}

func barStack(stype catalogs.StorageTypeDef, segments int, label string) *ItemStack {
	return &ItemStack{
		Item:    ItemUIBar,
		Count:   1,
		Variant: segments,
		Display: label,
		Tint:    stype.Color,
		UITag:   true,
	}
}

func emptySlotStack() *ItemStack {
	return &ItemStack{Item: ItemUISlotEmpty, Count: 1, UITag: true}
}

func progressStack(kind catalogs.IndicatorKind, value int) *ItemStack {
	item := ItemUIProgressArrow
	if kind == catalogs.IndicatorFlame {
		item = ItemUIProgressFlame
	}
	return &ItemStack{Item: item, Count: 1, Variant: value, UITag: true}
}

// barLabel formats "<amount>/<max> <name>", plus "(+X/t)" or "(-X/t)" when a
// change rate is active. X is truncated toward zero to two decimals.
func barLabel(stored int, displayName string, change float64) string {
	s := fmt.Sprintf("%d/%d %s", stored, ledger.MaxMachineStorage, displayName)
	if change == 0 {
		return s
	}
	sign := "+"
	if change < 0 {
		sign = "-"
	}
	t := math.Trunc(math.Abs(change)*100) / 100
	return s + fmt.Sprintf(" (%s%s/t)", sign, strconv.FormatFloat(t, 'f', -1, 64))
}
