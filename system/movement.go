package system

import (
	"math"
	"sort"

	"github.com/Kuewon/Cliunt-sub000/common"
	"github.com/Kuewon/Cliunt-sub000/component"
	"github.com/Kuewon/Cliunt-sub000/ecs"
)

// approachFactor keeps enemies slightly inside their attack range.
const approachFactor = 0.9

type scroll struct {
	actor    *component.Actor
	from     common.Vec2
	distance float64
	duration float64
	elapsed  float64
	done     func()
}

// MovementSystem walks enemies toward the player and scrolls the player
// between stages.
type MovementSystem struct {
	world   *World
	scrolls map[ecs.Entity]*scroll
}

func NewMovementSystem(w *World) *MovementSystem {
	return &MovementSystem{world: w, scrolls: make(map[ecs.Entity]*scroll)}
}

// Scroll moves actor forward by distance over duration and then calls done.
// A new scroll of the same actor replaces the previous one without calling
// its done.
func (m *MovementSystem) Scroll(actor *component.Actor, distance, duration float64, done func()) {
	if actor == nil {
		return
	}
	if duration <= 0 {
		m.world.moveActor(actor, actor.Position.Add(common.Vec2{X: distance}))
		if done != nil {
			done()
		}
		return
	}
	m.scrolls[actor.Entity] = &scroll{
		actor:    actor,
		from:     actor.Position,
		distance: distance,
		duration: duration,
		done:     done,
	}
}

// Scrolling reports whether e is mid-scroll.
func (m *MovementSystem) Scrolling(e ecs.Entity) bool {
	_, ok := m.scrolls[e]
	return ok
}

func (m *MovementSystem) Update(w *ecs.World) {
	dt := w.Delta()
	m.updateScrolls(dt)

	player := m.world.Player()
	if !player.IsActive() {
		return
	}
	for _, enemy := range m.world.Actors(component.FactionEnemy) {
		if !enemy.IsActive() || enemy.Stats.MoveSpeed <= 0 {
			continue
		}
		gap := player.Position.Sub(enemy.Position).Len() - player.Radius - enemy.Radius
		stop := enemy.Stats.AttackRange * approachFactor
		if gap <= stop {
			continue
		}
		step := math.Min(enemy.Stats.MoveSpeed*dt, gap-stop)
		m.world.moveActor(enemy, enemy.Position.MoveTowards(player.Position, step))
	}
}

func (m *MovementSystem) updateScrolls(dt float64) {
	if len(m.scrolls) == 0 {
		return
	}
	order := make([]ecs.Entity, 0, len(m.scrolls))
	for e := range m.scrolls {
		order = append(order, e)
	}
	sort.Slice(order, func(i, j int) bool { return order[i].Index() < order[j].Index() })

	for _, e := range order {
		s, ok := m.scrolls[e]
		if !ok {
			continue
		}
		if !s.actor.IsActive() {
			delete(m.scrolls, e)
			continue
		}
		s.elapsed += dt
		finished := s.elapsed+timeEpsilon >= s.duration
		t := common.Clamp(s.elapsed/s.duration, 0, 1)
		if finished {
			t = 1
		}
		m.world.moveActor(s.actor, common.Vec2{X: common.Lerp(s.from.X, s.from.X+s.distance, t), Y: s.from.Y})
		if finished {
			delete(m.scrolls, e)
			if s.done != nil {
				s.done()
			}
		}
	}
}
