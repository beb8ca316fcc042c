// Package ledger is the authoritative store of numeric machine storage
// levels and logical slot contents, keyed by block position. The reconciler
// reads it to compute expected renderings and writes back corrections it
// discovers via drift.
package ledger

import (
	"errors"

	"machinecraft.ai/internal/protocol"
)

// MaxMachineStorage is the inclusive upper bound for any stored amount.
const MaxMachineStorage = 6400

var (
	ErrUnknownStorageType = errors.New("unknown storage type")
	ErrStorageOutOfRange  = errors.New("storage amount out of range")
)

// SlotItem is the logical content of a machine's item slot. TypeIndex
// indexes the owning UI element's allowed-items list.
type SlotItem struct {
	TypeIndex int
	Count     int
}

// WriteMode distinguishes corrective slot writes (player is authoritative,
// downstream observers must not react) from authoritative ones.
type WriteMode int

const (
	// Silent records the value without notifying observers. Used for
	// drift corrections driven by player edits.
	Silent WriteMode = iota
	// Notify additionally fans out to subscribed observers.
	Notify
)

func (m WriteMode) String() string {
	if m == Notify {
		return "notify"
	}
	return "silent"
}

// Observer receives slot-change notifications for Notify writes.
type Observer func(pos protocol.BlockPos, slotID string)

type Ledger interface {
	// GetStorage returns the stored amount, zero when absent.
	GetStorage(pos protocol.BlockPos, typeID string) (int, error)
	// SetStorage fails with ErrUnknownStorageType or ErrStorageOutOfRange.
	SetStorage(pos protocol.BlockPos, typeID string, amount int) error

	// GetSlotItem returns nil when the logical slot is empty.
	GetSlotItem(pos protocol.BlockPos, slotID string) (*SlotItem, error)
	SetSlotItem(pos protocol.BlockPos, slotID string, item *SlotItem, mode WriteMode) error

	// Subscribe registers an observer for Notify slot writes. Not safe to
	// call concurrently with writes; wire observers during startup.
	Subscribe(Observer)
}

type observers struct {
	subs []Observer
}

func (o *observers) Subscribe(fn Observer) {
	if fn != nil {
		o.subs = append(o.subs, fn)
	}
}

func (o *observers) notify(pos protocol.BlockPos, slotID string) {
	for _, fn := range o.subs {
		fn(pos, slotID)
	}
}

func validTypeSet(types []string) map[string]struct{} {
	m := make(map[string]struct{}, len(types))
	for _, t := range types {
		m[t] = struct{}{}
	}
	return m
}
