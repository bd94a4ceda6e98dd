package component

import (
	"context"
	"log"
	"math"

	"github.com/looplab/fsm"
)

// Health lifecycle states.
const (
	HealthUninitialized = "uninitialized"
	HealthActive        = "active"
	HealthDead          = "dead"
)

const (
	healthInitialize = "initialize"
	healthDie        = "die"
)

// Health tracks hit points and the uninitialized → active → dead lifecycle
// of a combat actor. Dead is terminal.
type Health struct {
	Max     float64
	Current float64

	// Gold dropped on death is ceil(DropGoldBase * DropGoldMultiplier).
	DropGoldBase       int
	DropGoldMultiplier float64

	OnDamage func(h *Health, evt CombatEvent)
	OnDeath  func(h *Health, evt CombatEvent)

	state  *fsm.FSM
	reward int
}

// NewHealth creates an uninitialized Health component.
func NewHealth() *Health {
	return &Health{
		DropGoldMultiplier: 1,
		state: fsm.NewFSM(
			HealthUninitialized,
			fsm.Events{
				{Name: healthInitialize, Src: []string{HealthUninitialized}, Dst: HealthActive},
				{Name: healthDie, Src: []string{HealthActive}, Dst: HealthDead},
			},
			fsm.Callbacks{},
		),
	}
}

// Initialize activates the component with max health. Only the first call
// has an effect; it reports whether this call initialized.
func (h *Health) Initialize(max float64) bool {
	if h == nil || !h.state.Can(healthInitialize) {
		return false
	}
	if !(max > 0) {
		log.Printf("health: max health %v is not positive, using 1", max)
		max = 1
	}
	if err := h.state.Event(context.Background(), healthInitialize); err != nil {
		log.Printf("health: initialize: %v", err)
		return false
	}
	h.Max = max
	h.Current = max
	return true
}

// State returns the lifecycle state name.
func (h *Health) State() string {
	if h == nil {
		return HealthUninitialized
	}
	return h.state.Current()
}

// IsActive reports whether the actor can take damage and attack.
func (h *Health) IsActive() bool {
	return h != nil && h.state.Is(HealthActive)
}

// IsDead reports whether the actor died.
func (h *Health) IsDead() bool {
	return h != nil && h.state.Is(HealthDead)
}

// IsAlive reports whether the entity is alive.
func (h *Health) IsAlive() bool {
	return h.IsActive() && h.Current > 0
}

// TakeDamage applies amount of damage. See ApplyDamage.
func (h *Health) TakeDamage(amount float64, critical bool) bool {
	return h.ApplyDamage(CombatEvent{Damage: amount, Critical: critical})
}

// ApplyDamage subtracts evt.Damage from current health. Negative amounts
// count as zero. Damage outside the active state is ignored. Reaching zero
// moves the component to dead exactly once and fires OnDeath with the gold
// reward. Returns true if damage was applied.
func (h *Health) ApplyDamage(evt CombatEvent) bool {
	if h == nil {
		return false
	}
	if !h.IsActive() {
		log.Printf("health: damage %.2f to %s ignored while %s", evt.Damage, evt.Target, h.State())
		return false
	}

	amount := evt.Damage
	if !(amount > 0) {
		amount = 0
	}
	h.Current = math.Max(0, h.Current-amount)

	evt.Type = EventDamageApplied
	evt.Damage = amount
	evt.Remaining = h.Current
	if h.OnDamage != nil {
		h.OnDamage(h, evt)
	}

	if h.Current > 0 || !h.state.Can(healthDie) {
		return true
	}
	if err := h.state.Event(context.Background(), healthDie); err != nil {
		log.Printf("health: die: %v", err)
		return true
	}
	h.reward = GoldReward(h.DropGoldBase, h.DropGoldMultiplier)
	evt.Type = EventDeath
	evt.Reward = h.reward
	if h.OnDeath != nil {
		h.OnDeath(h, evt)
	}
	return true
}

// SetMaxHealth replaces max health and refills current health. Dead
// components are left untouched.
func (h *Health) SetMaxHealth(v float64) {
	if h == nil || h.IsDead() {
		return
	}
	if !(v > 0) {
		log.Printf("health: max health %v is not positive, using 1", v)
		v = 1
	}
	h.Max = v
	h.Current = v
}

// Reward returns the gold granted on death, zero while alive.
func (h *Health) Reward() int {
	if h == nil {
		return 0
	}
	return h.reward
}

// Fraction returns current/max in [0, 1].
func (h *Health) Fraction() float64 {
	if h == nil || h.Max <= 0 {
		return 0
	}
	return h.Current / h.Max
}

// GoldReward computes ceil(base * multiplier). Non-positive inputs yield 0.
func GoldReward(base int, multiplier float64) int {
	if base <= 0 || !(multiplier > 0) {
		return 0
	}
	// 1e-9 keeps products like 3*1.1 from rounding up an extra coin
	return int(math.Ceil(float64(base)*multiplier - 1e-9))
}
