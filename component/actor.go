package component

import (
	"github.com/Kuewon/Cliunt-sub000/common"
	"github.com/Kuewon/Cliunt-sub000/ecs"
)

// ActorKind selects the prefab used to instantiate an actor.
type ActorKind string

const (
	KindPlayer ActorKind = "player"
	KindEnemy  ActorKind = "enemy"
)

// Actor is a combat participant: one entity with health, stats and a side.
type Actor struct {
	Entity     ecs.Entity
	Kind       ActorKind
	Faction    Faction
	Name       string
	EnemyIndex int
	Position   common.Vec2
	Radius     float64
	Stats      StatBlock
	Health     *Health

	// AttackAnimation is the length of one attack swing in seconds.
	AttackAnimation float64
}

// IsActive reports whether the actor is alive and initialized.
func (a *Actor) IsActive() bool {
	return a != nil && a.Health.IsActive()
}
