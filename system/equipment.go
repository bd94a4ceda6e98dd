package system

import (
	"log"
	"strconv"

	"github.com/Kuewon/Cliunt-sub000/component"
	"github.com/Kuewon/Cliunt-sub000/ecs"
	"github.com/Kuewon/Cliunt-sub000/save"
	"github.com/Kuewon/Cliunt-sub000/tables"
)

// EquipmentStore owns the equipment selection. It is loaded once and
// persisted on every change.
type EquipmentStore struct {
	store  save.Store
	bus    *ecs.Bus
	tables *tables.Store
	sel    component.Selection
}

// NewEquipmentStore loads the saved selection; absent slots are zero.
func NewEquipmentStore(store save.Store, bus *ecs.Bus, tbl *tables.Store) *EquipmentStore {
	es := &EquipmentStore{store: store, bus: bus, tables: tbl}
	for _, slot := range component.Slots() {
		es.sel = es.sel.With(slot, save.LoadInt(store, slot.Key(), 0))
	}
	return es
}

// Selection returns the current selection.
func (es *EquipmentStore) Selection() component.Selection { return es.sel }

// Equip puts item index into slot. component.Unequipped empties the slot.
// It returns true when the selection changed; repeating the current choice
// is a no-op.
func (es *EquipmentStore) Equip(slot component.Slot, index int) bool {
	if !slot.Valid() || index < component.Unequipped {
		log.Printf("equipment: invalid %s index %d", slot, index)
		return false
	}
	if !es.available(slot, index) {
		return false
	}
	if es.sel.Get(slot) == index {
		return false
	}

	es.sel = es.sel.With(slot, index)
	if err := es.store.Save(slot.Key(), strconv.Itoa(index)); err != nil {
		log.Printf("equipment: persist %s: %v", slot, err)
	}
	es.bus.Publish(ecs.Event{Type: EventEquipmentChanged, Data: EquipmentChanged{
		Slot:      slot,
		Index:     index,
		Selection: es.sel,
	}})
	return true
}

// available rejects indices past the end of a loaded item table.
func (es *EquipmentStore) available(slot component.Slot, index int) bool {
	if index == component.Unequipped || es.tables == nil {
		return true
	}
	name := tables.Bullet
	switch slot {
	case component.SlotRevolver:
		name = tables.Revolver
	case component.SlotCylinder:
		name = tables.Cylinder
	}
	t, err := es.tables.Table(name)
	if err != nil {
		return true
	}
	if index >= t.Len() {
		log.Printf("equipment: %s %d does not exist (%d rows)", slot, index, t.Len())
		return false
	}
	return true
}

// ParseSlot maps a slot name such as "revolver" or "bullet3" to a Slot.
func ParseSlot(name string) (component.Slot, bool) {
	for _, s := range component.Slots() {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}
