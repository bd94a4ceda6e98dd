package component

import "fmt"

// BulletSlots is the number of bullet chambers of a cylinder.
const BulletSlots = 6

// Unequipped marks an empty equipment slot.
const Unequipped = -1

// Slot names one equipment slot.
type Slot int

const (
	SlotRevolver Slot = iota
	SlotCylinder
	SlotBullet0
)

// BulletSlot returns the slot of bullet chamber i.
func BulletSlot(i int) Slot { return SlotBullet0 + Slot(i) }

// Valid reports whether s names an existing slot.
func (s Slot) Valid() bool {
	return s >= SlotRevolver && s < SlotBullet0+BulletSlots
}

// AffectsStats reports whether equipping s changes combat stats.
func (s Slot) AffectsStats() bool { return s == SlotRevolver }

// Key is the persistence key of s.
func (s Slot) Key() string {
	switch {
	case s == SlotRevolver:
		return "equipment.revolver"
	case s == SlotCylinder:
		return "equipment.cylinder"
	case s.Valid():
		return fmt.Sprintf("equipment.bullet%d", int(s-SlotBullet0))
	}
	return fmt.Sprintf("equipment.invalid%d", int(s))
}

func (s Slot) String() string {
	switch {
	case s == SlotRevolver:
		return "revolver"
	case s == SlotCylinder:
		return "cylinder"
	case s.Valid():
		return fmt.Sprintf("bullet%d", int(s-SlotBullet0))
	}
	return "invalid"
}

// Slots lists every slot in persistence order.
func Slots() []Slot {
	out := make([]Slot, 0, BulletSlots+2)
	for s := SlotRevolver; s.Valid(); s++ {
		out = append(out, s)
	}
	return out
}

// Selection is the equipped item index of every slot.
type Selection struct {
	Revolver int
	Cylinder int
	Bullets  [BulletSlots]int
}

// Get returns the index equipped in s.
func (sel Selection) Get(s Slot) int {
	switch {
	case s == SlotRevolver:
		return sel.Revolver
	case s == SlotCylinder:
		return sel.Cylinder
	case s.Valid():
		return sel.Bullets[s-SlotBullet0]
	}
	return Unequipped
}

// With returns a copy of sel with index equipped in s.
func (sel Selection) With(s Slot, index int) Selection {
	switch {
	case s == SlotRevolver:
		sel.Revolver = index
	case s == SlotCylinder:
		sel.Cylinder = index
	case s.Valid():
		sel.Bullets[s-SlotBullet0] = index
	}
	return sel
}
