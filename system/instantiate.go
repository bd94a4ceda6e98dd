package system

import (
	"fmt"

	"github.com/Kuewon/Cliunt-sub000/common"
	"github.com/Kuewon/Cliunt-sub000/component"
	"github.com/Kuewon/Cliunt-sub000/ecs"
)

// Instantiator creates the presentation side of an actor. The world owns
// everything else: missing Health, entity, radius and animation are filled in
// from the actor specs, then the actor gets its physics body and registry
// entry before stats are applied.
type Instantiator interface {
	SpawnActor(kind component.ActorKind, pos common.Vec2, stats component.StatBlock) (*component.Actor, error)
}

// InstantiatorFunc adapts a function to Instantiator.
type InstantiatorFunc func(kind component.ActorKind, pos common.Vec2, stats component.StatBlock) (*component.Actor, error)

func (f InstantiatorFunc) SpawnActor(kind component.ActorKind, pos common.Vec2, stats component.StatBlock) (*component.Actor, error) {
	return f(kind, pos, stats)
}

// ActorFactory instantiates bare actor records from the world's actor specs.
type ActorFactory struct {
	World *World
}

func (f *ActorFactory) SpawnActor(kind component.ActorKind, pos common.Vec2, block component.StatBlock) (*component.Actor, error) {
	if f == nil || f.World == nil {
		return nil, fmt.Errorf("%w: no world", ErrUnavailable)
	}
	w := f.World
	spec, ok := w.specs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no prefab for %q", ErrUnavailable, kind)
	}
	anim, _ := spec.Animation.Length("attack")
	return &component.Actor{
		Entity:          w.ECS.CreateEntity(),
		Kind:            kind,
		Name:            spec.Name,
		EnemyIndex:      -1,
		Position:        pos,
		Radius:          spec.Collider.Radius,
		Stats:           block,
		Health:          component.NewHealth(),
		AttackAnimation: anim,
	}, nil
}

// register completes an instantiated actor and makes it targetable.
func (w *World) register(actor *component.Actor, faction component.Faction, pos common.Vec2) {
	actor.Faction = faction
	if !actor.Entity.Valid() {
		actor.Entity = w.ECS.CreateEntity()
	}
	if actor.Health == nil {
		actor.Health = component.NewHealth()
	}
	// an instantiator may place the actor itself
	if actor.Position == (common.Vec2{}) {
		actor.Position = pos
	}
	if spec, ok := w.specs[actor.Kind]; ok {
		if actor.Radius <= 0 {
			actor.Radius = spec.Collider.Radius
		}
		if actor.AttackAnimation <= 0 {
			actor.AttackAnimation, _ = spec.Animation.Length("attack")
		}
	}
	w.ECS.Physics().Add(actor.Entity, actor.Position.X, actor.Position.Y, actor.Radius, categoryOf(faction))
	w.actors.Set(actor.Entity, actor)
}

func categoryOf(f component.Faction) ecs.Category {
	if f == component.FactionPlayer {
		return ecs.CategoryPlayer
	}
	return ecs.CategoryEnemy
}
