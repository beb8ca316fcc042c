package world

import (
	"math"

	"machinecraft.ai/internal/protocol"
)

// Vec3 is a continuous world position.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

func (v Vec3) DistanceTo(o Vec3) float64 {
	dx, dy, dz := v.X-o.X, v.Y-o.Y, v.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Entity is a machine block entity tracked by the reconciler. Valid flips to
// false when the host world removes it; resumed passes check it and abort.
type Entity struct {
	ID        string
	Machine   string
	Pos       Vec3
	Dimension string
	Valid     bool
}

// BlockPos floors each continuous axis; this is the ledger/registry key.
func (e *Entity) BlockPos() protocol.BlockPos {
	return protocol.BlockPos{
		X:         int(math.Floor(e.Pos.X)),
		Y:         int(math.Floor(e.Pos.Y)),
		Z:         int(math.Floor(e.Pos.Z)),
		Dimension: e.Dimension,
	}
}

// Player is an observer with a cursor stack and a primary inventory, both of
// which the drift resolver may scrub.
type Player struct {
	ID        string
	Pos       Vec3
	Dimension string
	Cursor    *ItemStack
	Inventory []*ItemStack
}

// ItemStack occupies one container or inventory slot. UITag marks disposable
// widget items; they are never persisted and are destroyed on world drop.
type ItemStack struct {
	Item    string
	Count   int
	Display string
	Variant int
	Tint    string
	UITag   bool
}

// StackableWith reports whether two stacks would merge: same catalog item
// and no distinguishing properties. Count is irrelevant.
func (s *ItemStack) StackableWith(o *ItemStack) bool {
	if s == nil || o == nil {
		return false
	}
	return s.Item == o.Item &&
		s.Display == o.Display &&
		s.Variant == o.Variant &&
		s.Tint == o.Tint &&
		s.UITag == o.UITag
}

func (s *ItemStack) clone() *ItemStack {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// cleanInstance is a bare stack of the item's base kind, used to detect
// extra properties on a player-placed stack.
func cleanInstance(item string) *ItemStack {
	return &ItemStack{Item: item, Count: 1}
}

// ItemEntity is a dropped stack in the world, produced by drift ejection or
// injected by the host game.
type ItemEntity struct {
	ID        string
	Pos       Vec3
	Dimension string
	Stack     ItemStack
}
