package component

import (
	"log"

	"github.com/Kuewon/Cliunt-sub000/ecs"
)

// Targeting decides which in-range hits one attack lands on.
type Targeting int

const (
	// TargetNearest hits only the closest opponent.
	TargetNearest Targeting = iota
	// TargetAll cleaves every opponent in range.
	TargetAll
)

// TargetingFor returns the targeting rule of a faction: the player hits the
// nearest enemy, enemies cleave.
func TargetingFor(f Faction) Targeting {
	if f == FactionPlayer {
		return TargetNearest
	}
	return TargetAll
}

// Select filters hits, which must be ordered nearest first.
func (t Targeting) Select(hits []ecs.Hit) []ecs.Hit {
	if len(hits) == 0 {
		return nil
	}
	if t == TargetNearest {
		return hits[:1]
	}
	return hits
}

// CombatResolver rolls attacks and applies their damage to targets.
type CombatResolver struct {
	Emitter *CombatEventEmitter

	rng      Roller
	attacks  int
	critical int
}

// NewCombatResolver creates a resolver drawing critical rolls from rng.
func NewCombatResolver(rng Roller) *CombatResolver {
	if rng == nil {
		rng = FixedRoll(1)
	}
	return &CombatResolver{rng: rng}
}

// Resolve performs one attack of attacker against targets, in order. The
// critical roll is shared by every target of the attack. Returns the number
// of targets damaged.
func (r *CombatResolver) Resolve(attacker *Actor, targets []*Actor) int {
	if r == nil || attacker == nil || !attacker.IsActive() {
		return 0
	}
	damage, critical := attacker.Stats.Roll(r.rng.Float64())
	r.attacks++
	if critical {
		r.critical++
	}

	applied := 0
	for _, t := range targets {
		if t == nil || t == attacker || !t.IsActive() {
			continue
		}
		if !factionCanHit(attacker.Faction, t.Faction) {
			continue
		}
		evt := CombatEvent{
			Type:     EventHit,
			Attacker: attacker.Entity,
			Target:   t.Entity,
			Damage:   damage,
			Critical: critical,
		}
		r.Emitter.Emit(evt)
		if t.Health.ApplyDamage(evt) {
			applied++
		}
	}
	if applied == 0 && len(targets) > 0 {
		log.Printf("combat: %s attack hit nothing (%d candidates)", attacker.Entity, len(targets))
	}
	return applied
}

// Attacks returns how many attacks were rolled and how many were critical.
func (r *CombatResolver) Attacks() (total, critical int) {
	if r == nil {
		return 0, 0
	}
	return r.attacks, r.critical
}

func factionCanHit(attacker Faction, target Faction) bool {
	if attacker == FactionNeutral || target == FactionNeutral {
		return true
	}
	return attacker != target
}
