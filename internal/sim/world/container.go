package world

// Container is a machine's render surface: an addressable slot array the UI
// is drawn into. Players mutate the same slots freely, which is what the
// drift resolver exists for.
type Container struct {
	EntityID string
	Slots    []*ItemStack
}

func (c *Container) Get(i int) *ItemStack {
	if i < 0 || i >= len(c.Slots) {
		return nil
	}
	return c.Slots[i]
}

func (c *Container) Set(i int, s *ItemStack) {
	if i < 0 {
		return
	}
	for len(c.Slots) <= i {
		c.Slots = append(c.Slots, nil)
	}
	c.Slots[i] = s
}

func (w *World) containerFor(entityID string) *Container {
	c := w.containers[entityID]
	if c == nil {
		c = &Container{EntityID: entityID}
		w.containers[entityID] = c
	}
	return c
}
