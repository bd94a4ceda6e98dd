package system

import (
	"testing"

	"github.com/Kuewon/Cliunt-sub000/component"
	"github.com/Kuewon/Cliunt-sub000/ecs"
)

func TestManualAttackDamageAtMidpoint(t *testing.T) {
	w := newTestWorld(t, gameTables(t, nil), nil)
	enemy := spawnAt(t, w, 1, 2)
	finished := record[AttackFinished](w, EventAttackFinished)

	if !w.RequestManualAttack() {
		t.Fatalf("manual attack rejected")
	}
	w.Update(0.125)
	if enemy.Health.Current != 100 {
		t.Fatalf("damage landed before the midpoint")
	}
	w.Update(0.125)
	if enemy.Health.Current != 90 {
		t.Fatalf("health at midpoint = %v, want 90", enemy.Health.Current)
	}
	step(w, 0.125, 2)
	if len(*finished) != 1 || !(*finished)[0].Manual {
		t.Fatalf("finished events = %+v", *finished)
	}
}

func TestManualAttackExclusive(t *testing.T) {
	w := newTestWorld(t, gameTables(t, nil), nil)
	spawnAt(t, w, 1, 2)
	triggered := record[AttackTriggered](w, EventAttackTriggered)

	if !w.RequestManualAttack() {
		t.Fatalf("first manual attack rejected")
	}
	if w.RequestManualAttack() {
		t.Fatalf("second manual attack accepted while one is in flight")
	}
	step(w, 0.125, 4)
	if !w.RequestManualAttack() {
		t.Fatalf("manual attack rejected after the previous one finished")
	}
	if len(*triggered) != 2 {
		t.Fatalf("triggered = %d, want 2", len(*triggered))
	}
}

func TestManualAttackPreemptsAutoSwing(t *testing.T) {
	w := newTestWorld(t, gameTables(t, nil), nil)
	enemy := spawnAt(t, w, 1, 2)
	p := w.Player().Entity

	step(w, 0.25, 8)
	if auto, _ := w.Attacks.InFlight(p); !auto {
		t.Fatalf("auto swing not started at the attack interval")
	}
	if !w.RequestManualAttack() {
		t.Fatalf("manual attack rejected during an auto swing")
	}
	if auto, manual := w.Attacks.InFlight(p); auto || !manual {
		t.Fatalf("in flight auto=%v manual=%v, want the manual swing only", auto, manual)
	}
	step(w, 0.25, 3)
	if enemy.Health.Current != 90 {
		t.Fatalf("health = %v, want a single hit", enemy.Health.Current)
	}
}

func TestAutoAttackInterval(t *testing.T) {
	w := newTestWorld(t, gameTables(t, nil), nil)
	enemy := spawnAt(t, w, 1, 2)

	// swings start at t=2, 4, 6; damage lands 0.25s later
	step(w, 0.25, 9)
	if enemy.Health.Current != 90 {
		t.Fatalf("health at 2.25s = %v, want 90", enemy.Health.Current)
	}
	step(w, 0.25, 16)
	if enemy.Health.Current != 70 {
		t.Fatalf("health at 6.25s = %v, want 70", enemy.Health.Current)
	}
	if total, critical := w.Attacks.Attacks(); critical != 0 || total < 3 {
		t.Fatalf("attacks = %d (%d critical)", total, critical)
	}
}

func TestStopCancelsPendingDamage(t *testing.T) {
	w := newTestWorld(t, gameTables(t, nil), nil)
	enemy := spawnAt(t, w, 1, 2)

	w.RequestManualAttack()
	w.Update(0.125)
	w.Attacks.Stop(w.Player().Entity)
	step(w, 0.125, 8)
	if enemy.Health.Current != 100 {
		t.Fatalf("cancelled swing dealt damage: %v", enemy.Health.Current)
	}
	if w.Attacks.Running(w.Player().Entity) {
		t.Fatalf("loop still running after Stop")
	}
}

func TestPlayerHitsNearestEnemiesHitAll(t *testing.T) {
	w := newTestWorld(t, gameTables(t, nil), nil)
	near := spawnAt(t, w, 1, 1.5)
	far := spawnAt(t, w, 1, 2)

	w.RequestManualAttack()
	step(w, 0.125, 2)
	if near.Health.Current != 90 || far.Health.Current != 100 {
		t.Fatalf("near %v far %v, want only the nearest hit", near.Health.Current, far.Health.Current)
	}

	if got := component.TargetingFor(component.FactionEnemy); got != component.TargetAll {
		t.Fatalf("enemy targeting = %v, want all", got)
	}
}

func TestOutOfRangeNoDamage(t *testing.T) {
	w := newTestWorld(t, gameTables(t, nil), nil)
	enemy := spawnAt(t, w, 1, 10)
	if w.EnemiesInRange() != 0 {
		t.Fatalf("enemy at 10 counted in range")
	}
	w.RequestManualAttack()
	step(w, 0.125, 4)
	if enemy.Health.Current != 100 {
		t.Fatalf("out of range enemy took damage")
	}
}

func TestEnemiesWalkIntoRange(t *testing.T) {
	w := newTestWorld(t, gameTables(t, nil), nil)
	wolf := spawnAt(t, w, 2, 10)
	p := w.Player()

	step(w, 0.25, 40)
	gap := wolf.Position.X - p.Position.X - p.Radius - wolf.Radius
	if gap > wolf.Stats.AttackRange || gap < wolf.Stats.AttackRange*approachFactor-timeEpsilon {
		t.Fatalf("wolf stopped at gap %v", gap)
	}
	if x, _, _ := w.ECS.Physics().Position(wolf.Entity); x != wolf.Position.X {
		t.Fatalf("physics body at %v, actor at %v", x, wolf.Position.X)
	}
}

func TestAttackHitPublishedBeforeDamage(t *testing.T) {
	w := newTestWorld(t, gameTables(t, nil), nil)
	enemy := spawnAt(t, w, 1, 2)
	var hits []AttackHit
	var healthAtHit []float64
	w.Subscribe(EventAttackHit, func(evt ecs.Event) {
		if h, ok := evt.Data.(AttackHit); ok {
			hits = append(hits, h)
			healthAtHit = append(healthAtHit, enemy.Health.Current)
		}
	})

	if !w.RequestManualAttack() {
		t.Fatalf("manual attack rejected")
	}
	step(w, 0.125, 2)
	if len(hits) != 1 {
		t.Fatalf("hits = %+v, want one", hits)
	}
	h := hits[0]
	if h.Attacker != w.Player().Entity || h.Target != enemy.Entity || h.Damage != 10 || h.Critical {
		t.Fatalf("hit = %+v", h)
	}
	if healthAtHit[0] != 100 || enemy.Health.Current != 90 {
		t.Fatalf("health at hit %v, after %v", healthAtHit[0], enemy.Health.Current)
	}
}

func TestScrollsFinishInEntityOrder(t *testing.T) {
	w := newTestWorld(t, gameTables(t, nil), nil)
	var enemies []*component.Actor
	for i := 0; i < 4; i++ {
		enemies = append(enemies, spawnAt(t, w, 1, float64(10+i)))
	}

	for round := 0; round < 5; round++ {
		var finished []ecs.Entity
		for i := len(enemies) - 1; i >= 0; i-- {
			e := enemies[i]
			w.Movement.Scroll(e, 1, 0.5, func() { finished = append(finished, e.Entity) })
		}
		step(w, 0.25, 2)
		if len(finished) != len(enemies) {
			t.Fatalf("round %d: %d scrolls finished, want %d", round, len(finished), len(enemies))
		}
		for i, e := range enemies {
			if finished[i] != e.Entity {
				t.Fatalf("round %d: finish order %v", round, finished)
			}
		}
	}
	if x := enemies[0].Position.X; x < 14.99 || x > 15.01 {
		t.Fatalf("first enemy at x=%v after five scrolls, want 15", x)
	}
}
