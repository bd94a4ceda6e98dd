package system

import (
	"errors"
	"testing"

	"github.com/Kuewon/Cliunt-sub000/common"
	"github.com/Kuewon/Cliunt-sub000/component"
	"github.com/Kuewon/Cliunt-sub000/prefabs"
	"github.com/Kuewon/Cliunt-sub000/stats"
)

type spawnCall struct {
	at    float64
	index int
}

type recordingSpawner struct {
	w     *World
	calls []spawnCall
	fail  map[int]bool // call numbers that fail
}

func (r *recordingSpawner) SpawnEnemy(index int, _ stats.Multipliers) (*component.Actor, error) {
	r.calls = append(r.calls, spawnCall{at: r.w.Now(), index: index})
	if r.fail[len(r.calls)] {
		return nil, ErrUnavailable
	}
	return nil, nil
}

func TestWaveSpawnsOnInterval(t *testing.T) {
	w := newTestWorld(t, gameTables(t, []waveRow{{stage: 0, seq: []int64{1, 1, 2}, interval: 5}}), nil)
	rec := &recordingSpawner{w: w}
	w.Waves.SetSpawner(rec)

	if !w.Waves.StartNextWave() {
		t.Fatalf("StartNextWave rejected the first wave")
	}
	if w.Waves.Phase() != WaveSpawning || w.Waves.IsCurrentWaveComplete() {
		t.Fatalf("phase = %s, want spawning", w.Waves.Phase())
	}

	step(w, 0.5, 19)
	if len(rec.calls) != 2 || w.Waves.IsCurrentWaveComplete() {
		t.Fatalf("at t=9.5: %d spawns, complete=%v", len(rec.calls), w.Waves.IsCurrentWaveComplete())
	}
	step(w, 0.5, 1)

	want := []spawnCall{{0, 1}, {5, 1}, {10, 2}}
	if len(rec.calls) != len(want) {
		t.Fatalf("spawns = %+v, want %+v", rec.calls, want)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Fatalf("spawn %d = %+v, want %+v", i, rec.calls[i], want[i])
		}
	}
	if !w.Waves.IsCurrentWaveComplete() || w.Waves.Phase() != WaveComplete {
		t.Fatalf("wave not complete right after its last spawn")
	}
	if got := w.Waves.State().SpawnedCount; got != 3 {
		t.Fatalf("spawned count = %d, want 3", got)
	}
}

func TestStartNextWaveSequence(t *testing.T) {
	w := newTestWorld(t, gameTables(t, []waveRow{
		{stage: 0, seq: []int64{0}},
		{stage: 0, seq: []int64{0}},
	}), nil)
	w.Waves.SetSpawner(&recordingSpawner{w: w})
	done := record[AllWavesComplete](w, EventAllWavesComplete)

	for k := 1; k <= 2; k++ {
		if !w.Waves.StartNextWave() {
			t.Fatalf("call %d rejected", k)
		}
		if got := w.Waves.State().CurrentWaveIndex; got != k-1 {
			t.Fatalf("after %d calls wave index = %d, want %d", k, got, k-1)
		}
	}
	if w.Waves.StartNextWave() {
		t.Fatalf("started a wave past the end")
	}
	if w.Waves.State().CurrentWaveIndex != 1 || w.Waves.Phase() != WaveAllWavesComplete {
		t.Fatalf("state after exhaustion = %+v, phase %s", w.Waves.State(), w.Waves.Phase())
	}
	if w.Waves.StartNextWave() || len(*done) != 1 {
		t.Fatalf("all-waves-complete published %d times, want 1", len(*done))
	}
}

func TestStartNextWaveRejectedWhileSpawning(t *testing.T) {
	w := newTestWorld(t, gameTables(t, []waveRow{
		{stage: 0, seq: []int64{0, 0}, interval: 5},
		{stage: 0, seq: []int64{0}},
	}), nil)
	rec := &recordingSpawner{w: w}
	w.Waves.SetSpawner(rec)

	w.Waves.StartNextWave()
	if w.Waves.StartNextWave() {
		t.Fatalf("second wave started while the first was spawning")
	}
	if got := w.Waves.State().CurrentWaveIndex; got != 0 {
		t.Fatalf("wave index = %d, want 0", got)
	}
	step(w, 0.5, 10)
	if !w.Waves.StartNextWave() || len(rec.calls) != 3 {
		t.Fatalf("next wave after completion: %d spawns", len(rec.calls))
	}
}

// Back-to-back calls only advance when the previous wave issued all of its
// spawns synchronously; a wave with a spawn interval holds the index until
// its last spawn, and calls in between are rejected rather than queued.
func TestBackToBackStartNextWave(t *testing.T) {
	tests := []struct {
		name      string
		seq       []int64
		want      []bool
		wantIndex int
	}{
		{"single_enemy_waves", []int64{0}, []bool{true, true, true}, 2},
		{"spawning_waves", []int64{0, 0}, []bool{true, false, false}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := newTestWorld(t, gameTables(t, []waveRow{
				{stage: 0, seq: tc.seq, interval: 1},
				{stage: 0, seq: tc.seq, interval: 1},
				{stage: 0, seq: tc.seq, interval: 1},
			}), nil)
			w.Waves.SetSpawner(&recordingSpawner{w: w})
			for i, want := range tc.want {
				if got := w.Waves.StartNextWave(); got != want {
					t.Fatalf("call %d = %v, want %v", i+1, got, want)
				}
			}
			if got := w.Waves.State().CurrentWaveIndex; got != tc.wantIndex {
				t.Fatalf("wave index = %d, want %d", got, tc.wantIndex)
			}
		})
	}
}

func TestWaveContinuesAfterSpawnFailure(t *testing.T) {
	w := newTestWorld(t, gameTables(t, []waveRow{{stage: 0, seq: []int64{0, 0, 0}, interval: 1}}), nil)
	rec := &recordingSpawner{w: w, fail: map[int]bool{2: true}}
	w.Waves.SetSpawner(rec)

	w.Waves.StartNextWave()
	step(w, 0.5, 4)
	if len(rec.calls) != 3 || !w.Waves.IsCurrentWaveComplete() {
		t.Fatalf("spawns = %d, complete = %v", len(rec.calls), w.Waves.IsCurrentWaveComplete())
	}
}

func TestWaveStopCancelsSpawns(t *testing.T) {
	w := newTestWorld(t, gameTables(t, []waveRow{{stage: 0, seq: []int64{0, 0, 0}, interval: 1}}), nil)
	rec := &recordingSpawner{w: w}
	w.Waves.SetSpawner(rec)

	w.Waves.StartNextWave()
	w.Waves.Stop()
	step(w, 0.5, 10)
	if len(rec.calls) != 1 {
		t.Fatalf("spawns after Stop = %d, want 1", len(rec.calls))
	}
}

func TestEmptyWaveCompletesImmediately(t *testing.T) {
	w := newTestWorld(t, gameTables(t, []waveRow{{stage: 0, seq: nil, reward: 4}}), nil)
	if !w.Waves.StartNextWave() || !w.Waves.IsCurrentWaveComplete() {
		t.Fatalf("empty wave did not complete")
	}
	if w.Wallet.Diamonds() != 4 {
		t.Fatalf("diamonds = %d, want 4", w.Wallet.Diamonds())
	}
}

func TestNoWaveTable(t *testing.T) {
	w := newTestWorld(t, gameTables(t, nil), nil)
	if w.Waves.Len() != 0 || w.Waves.StartNextWave() {
		t.Fatalf("started a wave without a WaveInfo table")
	}
	if w.Waves.Phase() != WaveAllWavesComplete {
		t.Fatalf("phase = %s", w.Waves.Phase())
	}
}

func TestStageTransition(t *testing.T) {
	w := newTestWorld(t, gameTables(t, []waveRow{
		{stage: 0, seq: []int64{1}, reward: 2},
		{stage: 0, seq: []int64{1}, reward: 3},
		{stage: 1, seq: []int64{1, 1}, interval: 1, reward: 5},
	}), nil)
	var spawned []common.Vec2
	w.Spawner.SetInstantiator(InstantiatorFunc(func(kind component.ActorKind, pos common.Vec2, block component.StatBlock) (*component.Actor, error) {
		spawned = append(spawned, pos)
		return (&ActorFactory{World: w}).SpawnActor(kind, pos, block)
	}))
	changed := record[StageChanged](w, EventStageChanged)
	cleared := record[StageCleared](w, EventStageCleared)
	player := w.Player()
	startX := player.Position.X

	w.Waves.StartNextWave()
	w.Waves.StartNextWave()
	if len(*cleared) != 1 || (*cleared)[0] != (StageCleared{Stage: 0, Reward: 3}) {
		t.Fatalf("stage 0 clears = %+v", *cleared)
	}

	w.Waves.StartNextWave()
	st := w.Waves.State()
	if st.CurrentStageIndex != 1 || st.StageEndX != 20 || len(*changed) != 1 {
		t.Fatalf("state after stage change = %+v, %d changes", st, len(*changed))
	}
	if st.IsStageTransitioning {
		t.Fatalf("transition not ended by the first spawn")
	}
	if !w.Attacks.Suspended(player.Entity) || !w.Movement.Scrolling(player.Entity) {
		t.Fatalf("player not suspended while scrolling")
	}
	if w.RequestManualAttack() {
		t.Fatalf("manual attack accepted while scrolling")
	}

	step(w, 0.25, 4)
	if len(spawned) != 4 {
		t.Fatalf("spawns = %d, want 4", len(spawned))
	}
	// waves 0 and 1 spawn at the stage end, the first spawn of stage 1 while
	// transitioning, the second after it.
	wantX := []float64{6, 6, 6, 26}
	for i, x := range wantX {
		if spawned[i].X != x || spawned[i].Y != 0 {
			t.Fatalf("spawn %d at %+v, want x=%v", i, spawned[i], x)
		}
	}
	if w.Attacks.Suspended(player.Entity) || w.Movement.Scrolling(player.Entity) {
		t.Fatalf("player still suspended after the scroll")
	}
	if player.Position.X != startX+20 {
		t.Fatalf("player x = %v, want %v", player.Position.X, startX+20)
	}
	if len(*cleared) != 2 || (*cleared)[1] != (StageCleared{Stage: 1, Reward: 5}) {
		t.Fatalf("clears = %+v", *cleared)
	}
	if w.Wallet.Diamonds() != 8 {
		t.Fatalf("diamonds = %d, want 8", w.Wallet.Diamonds())
	}
}

func TestSpawnX(t *testing.T) {
	stage := prefabs.StageSpec{Width: 20}
	tests := []struct {
		name          string
		endX          float64
		transitioning bool
		want          float64
	}{
		{"first stage", 0, false, 6},
		{"later stage", 40, false, 46},
		{"transitioning ignores stage end", 40, true, 6},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SpawnX(stage, tc.endX, tc.transitioning); got != tc.want {
				t.Fatalf("SpawnX = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSpawnJitterWithinBounds(t *testing.T) {
	w := newTestWorld(t, gameTables(t, nil), nil)
	w.Stage.SpawnY = 2
	w.Stage.JitterMin, w.Stage.JitterMax = -0.5, 0.5
	for i := 0; i < 100; i++ {
		p := w.Spawner.SpawnPosition(0, false)
		if p.Y < 1.5 || p.Y > 2.5 || p.X != 6 {
			t.Fatalf("spawn position %+v out of bounds", p)
		}
	}
}

func TestSpawnEnemyAppliesWaveScaling(t *testing.T) {
	w := newTestWorld(t, gameTables(t, nil), nil)
	a, err := w.Spawner.SpawnEnemy(1, stats.Multipliers{Health: 2, Attack: 1, AttackSpeed: 2})
	if err != nil {
		t.Fatalf("SpawnEnemy: %v", err)
	}
	if a.Name != "Ogre" || a.EnemyIndex != 1 || a.Faction != component.FactionEnemy {
		t.Fatalf("actor = %+v", a)
	}
	if a.Health.Max != 200 || a.Stats.AttackInterval != 1 || !a.Health.IsActive() {
		t.Fatalf("scaled health %v interval %v", a.Health.Max, a.Stats.AttackInterval)
	}
	if w.Waves.LiveEnemies() != 1 || !w.Attacks.Running(a.Entity) {
		t.Fatalf("enemy not registered")
	}
}

func TestSpawnEnemyInstantiatorFailure(t *testing.T) {
	w := newTestWorld(t, gameTables(t, nil), nil)
	w.Spawner.SetInstantiator(InstantiatorFunc(func(component.ActorKind, common.Vec2, component.StatBlock) (*component.Actor, error) {
		return nil, nil
	}))
	if _, err := w.Spawner.SpawnEnemy(0, stats.Unscaled); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if requests, failures := w.Spawner.Counts(); requests != 1 || failures != 1 {
		t.Fatalf("counts = %d/%d", requests, failures)
	}
	if w.Waves.LiveEnemies() != 0 {
		t.Fatalf("failed spawn registered")
	}
}

func TestExternalInstantiatorEnemiesAreRegistered(t *testing.T) {
	tests := []struct {
		name  string
		build func(w *World, kind component.ActorKind) *component.Actor
	}{
		{"entity_and_position", func(w *World, kind component.ActorKind) *component.Actor {
			return &component.Actor{
				Entity:   w.ECS.CreateEntity(),
				Kind:     kind,
				Position: common.Vec2{X: 1, Y: w.Player().Position.Y},
			}
		}},
		{"empty_record", func(*World, component.ActorKind) *component.Actor {
			return &component.Actor{}
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := newTestWorld(t, gameTables(t, nil), nil)
			w.Spawner.SetInstantiator(InstantiatorFunc(func(kind component.ActorKind, _ common.Vec2, _ component.StatBlock) (*component.Actor, error) {
				return tc.build(w, kind), nil
			}))
			a, err := w.Spawner.SpawnEnemy(0, stats.Unscaled)
			if err != nil {
				t.Fatalf("SpawnEnemy: %v", err)
			}
			w.moveActor(a, common.Vec2{X: 1, Y: w.Player().Position.Y})

			if got, ok := w.Actor(a.Entity); !ok || got != a {
				t.Fatalf("enemy missing from the actor registry")
			}
			if _, _, ok := w.ECS.Physics().Position(a.Entity); !ok {
				t.Fatalf("enemy has no physics body")
			}
			if a.Health == nil || a.Health.Current != 10 || a.Radius != 0.5 {
				t.Fatalf("health %+v radius %v", a.Health, a.Radius)
			}
			if w.EnemiesInRange() != 1 {
				t.Fatalf("enemy not targetable")
			}
			if !w.RequestManualAttack() {
				t.Fatalf("manual attack rejected")
			}
			step(w, 0.125, 2)
			if a.Health.IsActive() || w.Waves.LiveEnemies() != 0 {
				t.Fatalf("enemy survived: health %v, live %d", a.Health.Current, w.Waves.LiveEnemies())
			}
		})
	}
}

func TestWaveDriverStartsWavesWhenFieldIsClear(t *testing.T) {
	w, err := NewWorld(Options{
		Stage:     testStage(),
		Player:    actorSpec("gunslinger", 0.5),
		Enemy:     actorSpec("enemy", 0.5),
		Tables:    gameTables(t, []waveRow{{stage: 0, seq: []int64{0}}, {stage: 0, seq: []int64{0}}}),
		AutoWaves: true,
	})
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}

	// the driver schedules on the first tick, the wave starts a second later
	step(w, 0.25, 4)
	if got := w.Waves.State().CurrentWaveIndex; got != -1 {
		t.Fatalf("wave started before the delay, index %d", got)
	}
	step(w, 0.25, 1)
	if got := w.Waves.State().CurrentWaveIndex; got != 0 {
		t.Fatalf("wave index after delay = %d, want 0", got)
	}
	step(w, 0.25, 8)
	if got := w.Waves.State().CurrentWaveIndex; got != 0 {
		t.Fatalf("next wave started with an enemy alive")
	}
	for _, e := range w.Actors(component.FactionEnemy) {
		e.Health.TakeDamage(1000, false)
	}
	step(w, 0.25, 6)
	if got := w.Waves.State().CurrentWaveIndex; got != 1 {
		t.Fatalf("wave index after clearing = %d, want 1", got)
	}
}
