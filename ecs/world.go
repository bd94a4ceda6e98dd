package ecs

// World owns entity handles, the simulated clock, the event bus, the
// spatial index and system order. It is driven by a single goroutine.
type World struct {
	entities  entityStore
	scheduler *Scheduler
	timers    *Timers
	bus       *Bus
	physics   *PhysicsWorld

	delta float64
	ticks uint64
}

// NewWorld creates an empty world with its own clock, bus and physics space.
func NewWorld() *World {
	return &World{
		scheduler: NewScheduler(),
		timers:    NewTimers(),
		bus:       NewBus(),
		physics:   NewPhysicsWorld(),
	}
}

// CreateEntity allocates a new entity.
func (w *World) CreateEntity() Entity {
	return w.entities.create()
}

// DestroyEntity invalidates e and drops its physics body. It returns false
// when e was not alive.
func (w *World) DestroyEntity(e Entity) bool {
	if w == nil || !w.entities.destroy(e) {
		return false
	}
	w.physics.Remove(e)
	return true
}

// IsAlive reports whether an entity handle is valid.
func (w *World) IsAlive(e Entity) bool {
	return w != nil && w.entities.isAlive(e)
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	if w == nil {
		return 0
	}
	return w.entities.alive
}

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	if w == nil {
		return
	}
	w.scheduler.Add(s)
}

// Update advances the clock by dt, firing due timers, then runs every
// system once and flushes deferred events.
func (w *World) Update(dt float64) {
	if w == nil {
		return
	}
	if dt < 0 {
		dt = 0
	}
	w.delta = dt
	w.ticks++
	w.timers.Advance(dt)
	w.scheduler.Update(w)
	w.bus.Flush()
}

// Delta returns the duration of the tick in progress.
func (w *World) Delta() float64 {
	if w == nil {
		return 0
	}
	return w.delta
}

// Now returns the simulated time.
func (w *World) Now() float64 {
	if w == nil {
		return 0
	}
	return w.timers.Now()
}

// Ticks returns the number of completed Update calls.
func (w *World) Ticks() uint64 {
	if w == nil {
		return 0
	}
	return w.ticks
}

func (w *World) Timers() *Timers {
	if w == nil {
		return nil
	}
	return w.timers
}

func (w *World) Bus() *Bus {
	if w == nil {
		return nil
	}
	return w.bus
}

func (w *World) Physics() *PhysicsWorld {
	if w == nil {
		return nil
	}
	return w.physics
}
