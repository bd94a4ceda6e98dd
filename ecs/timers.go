package ecs

import "container/heap"

// Token cancels every callback scheduled with it. A nil token never
// cancels.
type Token struct {
	cancelled bool
}

// NewToken returns a live token.
func NewToken() *Token {
	return &Token{}
}

// Cancel marks the token; callbacks holding it are dropped when they come due.
func (t *Token) Cancel() {
	if t == nil {
		return
	}
	t.cancelled = true
}

// Cancelled reports whether Cancel was called.
func (t *Token) Cancelled() bool {
	return t != nil && t.cancelled
}

type timer struct {
	due   float64
	seq   uint64
	token *Token
	fn    func()
}

type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}

func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) { *h = append(*h, x.(*timer)) }

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// Timers is a simulated clock with delayed callbacks. Callbacks run on the
// goroutine calling Advance, in (due time, scheduling order) order, and the
// clock reads exactly the callback's due time while it runs.
type Timers struct {
	now     float64
	seq     uint64
	pending timerHeap
}

// NewTimers creates a clock starting at zero.
func NewTimers() *Timers {
	return &Timers{}
}

// Now returns the simulated time in seconds.
func (t *Timers) Now() float64 {
	if t == nil {
		return 0
	}
	return t.now
}

// After schedules fn to run delay seconds from now. Negative delays run on
// the next Advance.
func (t *Timers) After(delay float64, token *Token, fn func()) {
	if t == nil || fn == nil {
		return
	}
	if delay < 0 {
		delay = 0
	}
	t.seq++
	heap.Push(&t.pending, &timer{due: t.now + delay, seq: t.seq, token: token, fn: fn})
}

// Advance moves the clock forward by dt and runs every callback that came
// due, including callbacks scheduled by callbacks within the window. It
// returns the number of callbacks that ran.
func (t *Timers) Advance(dt float64) int {
	if t == nil {
		return 0
	}
	if dt < 0 {
		dt = 0
	}
	target := t.now + dt
	ran := 0
	for len(t.pending) > 0 && t.pending[0].due <= target {
		next := heap.Pop(&t.pending).(*timer)
		if next.due > t.now {
			t.now = next.due
		}
		if next.token.Cancelled() {
			continue
		}
		next.fn()
		ran++
	}
	t.now = target
	return ran
}

// Pending returns the number of scheduled callbacks, cancelled ones included.
func (t *Timers) Pending() int {
	if t == nil {
		return 0
	}
	return len(t.pending)
}
