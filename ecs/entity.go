package ecs

import "strconv"

// Entity is a generational handle. The low 32 bits hold the slot id and the
// high 32 bits hold the generation the slot had when the handle was issued.
type Entity uint64

// NoEntity is the zero handle; it is never alive.
const NoEntity Entity = 0

type entityID uint32
type generation uint32

const entityIDBits = 32

func makeEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<entityIDBits | uint64(id))
}

func (e Entity) id() entityID {
	return entityID(uint32(e))
}

func (e Entity) generation() generation {
	return generation(uint32(uint64(e) >> entityIDBits))
}

// Index returns the slot id, stable for the lifetime of the handle.
func (e Entity) Index() int {
	return int(e.id())
}

func (e Entity) String() string {
	return strconv.Itoa(int(e.id())) + "v" + strconv.FormatUint(uint64(e.generation()), 10)
}

func (e Entity) Valid() bool {
	return e.id() > 0 && e.generation() > 0
}
