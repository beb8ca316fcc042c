package catalogs

import "fmt"

// UIElement is a closed variant: exactly StorageBar, ItemSlot or
// ProgressIndicator. Catalog loading rejects anything else, so renderer
// dispatch can type-switch exhaustively.
type UIElement interface {
	ElementID() string
	sealedUIElement()
}

// StorageBar occupies BarSlots contiguous slots starting at StartSlot.
type StorageBar struct {
	Element   string
	StartSlot int
}

func (e StorageBar) ElementID() string { return e.Element }
func (StorageBar) sealedUIElement()    {}

// ItemSlot binds one container slot to a logical ledger slot. AllowedItems
// lists the catalog items a player may legally place; the logical slot's
// TypeIndex indexes this list.
type ItemSlot struct {
	Element      string
	Slot         int
	LogicalSlot  string
	AllowedItems []string
}

func (e ItemSlot) ElementID() string { return e.Element }
func (ItemSlot) sealedUIElement()    {}

type ProgressIndicator struct {
	Element   string
	Slot      int
	Indicator IndicatorKind
}

func (e ProgressIndicator) ElementID() string { return e.Element }
func (ProgressIndicator) sealedUIElement()    {}

type IndicatorKind string

const (
	IndicatorArrow IndicatorKind = "arrow"
	IndicatorFlame IndicatorKind = "flame"
)

// Max is the inclusive upper bound for the indicator's rendered value.
func (k IndicatorKind) Max() int {
	switch k {
	case IndicatorArrow:
		return 16
	case IndicatorFlame:
		return 13
	}
	return 0
}

// BarSlots is the fixed width of a storage bar.
const BarSlots = 4

type machineDefJSON struct {
	ID               string          `json:"id"`
	PersistentEntity bool            `json:"persistent_entity"`
	UpdateChannel    string          `json:"update_channel,omitempty"`
	UI               []uiElementJSON `json:"ui,omitempty"`
}

type uiElementJSON struct {
	Element      string   `json:"element"`
	Kind         string   `json:"kind"`
	StartSlot    int      `json:"start_slot,omitempty"`
	Slot         int      `json:"slot,omitempty"`
	LogicalSlot  string   `json:"logical_slot,omitempty"`
	AllowedItems []string `json:"allowed_items,omitempty"`
	Indicator    string   `json:"indicator,omitempty"`
}

func (d machineDefJSON) resolve(items *ItemCatalog) (MachineDef, error) {
	md := MachineDef{
		ID:               d.ID,
		PersistentEntity: d.PersistentEntity,
		UpdateChannel:    d.UpdateChannel,
	}
	if len(d.UI) > 0 && d.UpdateChannel == "" {
		return md, fmt.Errorf("ui layout without update_channel")
	}

	seen := map[string]bool{}
	for _, e := range d.UI {
		if e.Element == "" {
			return md, fmt.Errorf("ui element with empty id")
		}
		if seen[e.Element] {
			return md, fmt.Errorf("duplicate ui element %q", e.Element)
		}
		seen[e.Element] = true

		switch e.Kind {
		case "storage_bar":
			if e.StartSlot < 0 {
				return md, fmt.Errorf("%s: negative start_slot", e.Element)
			}
			md.UI = append(md.UI, StorageBar{Element: e.Element, StartSlot: e.StartSlot})
		case "item_slot":
			if e.Slot < 0 {
				return md, fmt.Errorf("%s: negative slot", e.Element)
			}
			if e.LogicalSlot == "" {
				return md, fmt.Errorf("%s: missing logical_slot", e.Element)
			}
			if len(e.AllowedItems) == 0 {
				return md, fmt.Errorf("%s: empty allowed_items", e.Element)
			}
			for _, it := range e.AllowedItems {
				if _, ok := items.Index[it]; !ok {
					return md, fmt.Errorf("%s: unknown item %q", e.Element, it)
				}
			}
			md.UI = append(md.UI, ItemSlot{
				Element:      e.Element,
				Slot:         e.Slot,
				LogicalSlot:  e.LogicalSlot,
				AllowedItems: e.AllowedItems,
			})
		case "progress":
			if e.Slot < 0 {
				return md, fmt.Errorf("%s: negative slot", e.Element)
			}
			kind := IndicatorKind(e.Indicator)
			if kind.Max() == 0 {
				return md, fmt.Errorf("%s: unknown indicator %q", e.Element, e.Indicator)
			}
			md.UI = append(md.UI, ProgressIndicator{Element: e.Element, Slot: e.Slot, Indicator: kind})
		default:
			return md, fmt.Errorf("%s: unknown ui element kind %q", e.Element, e.Kind)
		}
	}
	return md, nil
}
