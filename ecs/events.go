package ecs

// EventType names a bus topic.
type EventType string

// Event is a generic bus payload.
type Event struct {
	Type EventType
	Data any
}

// Handler receives published events.
type Handler func(evt Event)

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Subscription is a handle returned by Bus.Subscribe. Cancelling it stops
// delivery immediately, even mid-publish.
type Subscription struct {
	bus    *Bus
	typ    EventType
	fn     Handler
	active bool
}

// Cancel revokes the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s == nil || !s.active {
		return
	}
	s.active = false
	if s.bus != nil {
		s.bus.remove(s)
	}
}

// Active reports whether the subscription still receives events.
func (s *Subscription) Active() bool {
	return s != nil && s.active
}

// Bus is a synchronous publish/subscribe dispatcher. Publish delivers in
// subscription order on the calling goroutine; Defer queues an event until
// the next Flush.
type Bus struct {
	listeners map[EventType][]*Subscription
	deferred  EventQueue
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[EventType][]*Subscription)}
}

// Subscribe registers fn for events of type t.
func (b *Bus) Subscribe(t EventType, fn Handler) *Subscription {
	if b == nil || fn == nil {
		return nil
	}
	if b.listeners == nil {
		b.listeners = make(map[EventType][]*Subscription)
	}
	sub := &Subscription{bus: b, typ: t, fn: fn, active: true}
	b.listeners[t] = append(b.listeners[t], sub)
	return sub
}

func (b *Bus) remove(sub *Subscription) {
	list := b.listeners[sub.typ]
	for i, s := range list {
		if s == sub {
			out := make([]*Subscription, 0, len(list)-1)
			out = append(out, list[:i]...)
			out = append(out, list[i+1:]...)
			b.listeners[sub.typ] = out
			return
		}
	}
}

// Publish delivers evt to the current subscribers of its type.
func (b *Bus) Publish(evt Event) {
	if b == nil {
		return
	}
	// the slice is replaced, never mutated, on removal, so ranging over the
	// snapshot is safe while handlers subscribe or cancel
	for _, sub := range b.listeners[evt.Type] {
		if sub.active {
			sub.fn(evt)
		}
	}
}

// Defer queues evt for the next Flush.
func (b *Bus) Defer(evt Event) {
	if b == nil {
		return
	}
	b.deferred.Push(evt)
}

// Flush publishes deferred events, including ones deferred while flushing.
func (b *Bus) Flush() {
	if b == nil {
		return
	}
	for b.deferred.Len() > 0 {
		for _, evt := range b.deferred.Drain() {
			b.Publish(evt)
		}
	}
}

// Scope groups subscriptions that share a lifetime, typically an actor's.
type Scope struct {
	bus  *Bus
	subs []*Subscription
}

// NewScope creates a scope bound to b.
func NewScope(b *Bus) *Scope {
	return &Scope{bus: b}
}

// Subscribe registers fn and ties it to the scope.
func (s *Scope) Subscribe(t EventType, fn Handler) *Subscription {
	if s == nil {
		return nil
	}
	sub := s.bus.Subscribe(t, fn)
	if sub != nil {
		s.subs = append(s.subs, sub)
	}
	return sub
}

// Close cancels every subscription in the scope.
func (s *Scope) Close() {
	if s == nil {
		return
	}
	for _, sub := range s.subs {
		sub.Cancel()
	}
	s.subs = nil
}
