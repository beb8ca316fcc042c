package ledger

import "machinecraft.ai/internal/protocol"

// Memory is the in-process implementation. All access happens on the world
// goroutine, so no locking.
type Memory struct {
	observers

	types   map[string]struct{}
	storage map[storageKey]int
	slots   map[slotKey]SlotItem
}

type storageKey struct {
	pos    protocol.BlockPos
	typeID string
}

type slotKey struct {
	pos    protocol.BlockPos
	slotID string
}

func NewMemory(storageTypes []string) *Memory {
	return &Memory{
		types:   validTypeSet(storageTypes),
		storage: map[storageKey]int{},
		slots:   map[slotKey]SlotItem{},
	}
}

func (m *Memory) GetStorage(pos protocol.BlockPos, typeID string) (int, error) {
	return m.storage[storageKey{pos, typeID}], nil
}

func (m *Memory) SetStorage(pos protocol.BlockPos, typeID string, amount int) error {
	if _, ok := m.types[typeID]; !ok {
		return ErrUnknownStorageType
	}
	if amount < 0 || amount > MaxMachineStorage {
		return ErrStorageOutOfRange
	}
	m.storage[storageKey{pos, typeID}] = amount
	return nil
}

func (m *Memory) GetSlotItem(pos protocol.BlockPos, slotID string) (*SlotItem, error) {
	it, ok := m.slots[slotKey{pos, slotID}]
	if !ok {
		return nil, nil
	}
	out := it
	return &out, nil
}

func (m *Memory) SetSlotItem(pos protocol.BlockPos, slotID string, item *SlotItem, mode WriteMode) error {
	k := slotKey{pos, slotID}
	if item == nil {
		delete(m.slots, k)
	} else {
		m.slots[k] = *item
	}
	if mode == Notify {
		m.notify(pos, slotID)
	}
	return nil
}
