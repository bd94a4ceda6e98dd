package system

import (
	"log"
	"math"

	"github.com/Kuewon/Cliunt-sub000/component"
	"github.com/Kuewon/Cliunt-sub000/ecs"
)

// DefaultAttackAnimation is the swing length used when an actor has no
// attack animation.
const DefaultAttackAnimation = 0.5

// timeEpsilon absorbs float drift from summing tick deltas.
const timeEpsilon = 1e-9

type attackLoop struct {
	actor *component.Actor

	elapsed   float64
	busyUntil float64
	swing     *ecs.Token // in-flight auto swing
	manual    *ecs.Token // in-flight manual swing
	suspended bool
}

// AttackScheduler runs every actor's attack loop. Auto attacks fire each
// AttackInterval; manual attacks preempt them and are never queued. Damage
// lands at the midpoint of the swing animation.
type AttackScheduler struct {
	world    *World
	loops    *ecs.Storage[*attackLoop]
	resolver *component.CombatResolver
}

func NewAttackScheduler(w *World, rng component.Roller) *AttackScheduler {
	resolver := component.NewCombatResolver(rng)
	resolver.Emitter = &component.CombatEventEmitter{Handlers: []component.CombatEventHandler{
		func(evt component.CombatEvent) {
			w.ECS.Bus().Publish(ecs.Event{Type: EventAttackHit, Data: AttackHit{
				Attacker: evt.Attacker,
				Target:   evt.Target,
				Damage:   evt.Damage,
				Critical: evt.Critical,
			}})
		},
	}}
	return &AttackScheduler{
		world:    w,
		loops:    ecs.NewStorage[*attackLoop](),
		resolver: resolver,
	}
}

// Start begins actor's attack loop. A running loop is restarted.
func (s *AttackScheduler) Start(actor *component.Actor) {
	if s == nil || actor == nil {
		return
	}
	s.Stop(actor.Entity)
	s.loops.Set(actor.Entity, &attackLoop{actor: actor})
}

// Stop ends e's loop and cancels any pending damage.
func (s *AttackScheduler) Stop(e ecs.Entity) {
	if s == nil {
		return
	}
	l, ok := s.loops.Get(e)
	if !ok {
		return
	}
	l.cancel()
	s.loops.Remove(e)
}

// Suspend pauses e's loop, dropping any swing in flight, until Resume.
func (s *AttackScheduler) Suspend(e ecs.Entity) {
	if l, ok := s.loops.Get(e); ok {
		l.cancel()
		l.elapsed = 0
		l.busyUntil = 0
		l.suspended = true
	}
}

// Resume restarts a suspended loop.
func (s *AttackScheduler) Resume(e ecs.Entity) {
	if l, ok := s.loops.Get(e); ok {
		l.suspended = false
	}
}

// Suspended reports whether e's loop is paused.
func (s *AttackScheduler) Suspended(e ecs.Entity) bool {
	l, ok := s.loops.Get(e)
	return ok && l.suspended
}

// InFlight reports which kinds of swing e has in progress.
func (s *AttackScheduler) InFlight(e ecs.Entity) (auto, manual bool) {
	l, ok := s.loops.Get(e)
	if !ok {
		return false, false
	}
	return l.swing != nil, l.manual != nil
}

// Running reports whether e has an attack loop.
func (s *AttackScheduler) Running(e ecs.Entity) bool {
	return s.loops.Has(e)
}

func (l *attackLoop) cancel() {
	l.swing.Cancel()
	l.manual.Cancel()
	l.swing = nil
	l.manual = nil
}

// Update advances auto attack timers by the tick delta.
func (s *AttackScheduler) Update(w *ecs.World) {
	dt, now := w.Delta(), w.Now()
	for _, e := range s.loops.Entities() {
		l, ok := s.loops.Get(e)
		if !ok {
			continue
		}
		s.tick(l, dt, now)
	}
}

func (s *AttackScheduler) tick(l *attackLoop, dt, now float64) {
	if !l.actor.IsActive() || l.suspended || l.manual != nil {
		return
	}
	l.elapsed += dt
	if now+timeEpsilon < l.busyUntil {
		return
	}
	interval := l.actor.Stats.AttackInterval
	if l.elapsed+timeEpsilon < interval {
		return
	}

	l.elapsed = 0
	anim := s.animationLength(l.actor)
	l.busyUntil = now + math.Max(anim, interval)
	token := ecs.NewToken()
	l.swing = token
	s.startSwing(l, token, false, anim)
}

// RequestManual starts a manual attack for e. It is rejected while another
// manual attack is in flight, while the loop is suspended and while the
// actor is not active. An auto swing in flight is cancelled.
func (s *AttackScheduler) RequestManual(e ecs.Entity) bool {
	if s == nil {
		return false
	}
	l, ok := s.loops.Get(e)
	if !ok || !l.actor.IsActive() || l.suspended {
		return false
	}
	if l.manual != nil {
		log.Printf("attack: %s manual attack rejected, one is in flight", e)
		return false
	}
	if l.swing != nil {
		l.swing.Cancel()
		l.swing = nil
		l.busyUntil = 0
	}

	token := ecs.NewToken()
	l.manual = token
	s.startSwing(l, token, true, s.animationLength(l.actor))
	return true
}

func (s *AttackScheduler) startSwing(l *attackLoop, token *ecs.Token, manual bool, anim float64) {
	bus := s.world.ECS.Bus()
	timers := s.world.ECS.Timers()
	e := l.actor.Entity

	bus.Publish(ecs.Event{Type: EventAttackTriggered, Data: AttackTriggered{Entity: e, Manual: manual}})
	timers.After(anim*0.5, token, func() {
		s.performAttack(l.actor)
		timers.After(anim*0.5, token, func() {
			if manual && l.manual == token {
				l.manual = nil
			}
			if !manual && l.swing == token {
				l.swing = nil
			}
			bus.Publish(ecs.Event{Type: EventAttackFinished, Data: AttackFinished{Entity: e, Manual: manual}})
		})
	})
}

// performAttack resolves one hit of attacker against the opponents in
// range: the player hits the nearest, enemies hit all of them.
func (s *AttackScheduler) performAttack(attacker *component.Actor) int {
	if !attacker.IsActive() {
		return 0
	}
	w := s.world
	hits := w.ECS.Physics().QueryRadius(
		attacker.Position.X, attacker.Position.Y,
		attacker.Stats.AttackRange+attacker.Radius,
		categoryOf(attacker.Faction.Opponent()),
	)
	live := hits[:0]
	for _, h := range hits {
		if a, ok := w.actors.Get(h.Entity); ok && a.IsActive() {
			live = append(live, h)
		}
	}

	selected := component.TargetingFor(attacker.Faction).Select(live)
	targets := make([]*component.Actor, 0, len(selected))
	for _, h := range selected {
		a, _ := w.actors.Get(h.Entity)
		targets = append(targets, a)
	}
	if len(targets) == 0 {
		return 0
	}
	return s.resolver.Resolve(attacker, targets)
}

func (s *AttackScheduler) animationLength(a *component.Actor) float64 {
	if a.AttackAnimation > 0 {
		return a.AttackAnimation
	}
	s.world.Tables.WarnOnce("attack:anim:"+string(a.Kind), "attack: %s has no attack animation, waiting %.2fs", a.Kind, DefaultAttackAnimation)
	return DefaultAttackAnimation
}

// Attacks returns how many attacks were rolled and how many were critical.
func (s *AttackScheduler) Attacks() (total, critical int) {
	return s.resolver.Attacks()
}
