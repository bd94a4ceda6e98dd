package system

import (
	"context"
	"fmt"
	"log"

	"github.com/looplab/fsm"

	"github.com/Kuewon/Cliunt-sub000/component"
	"github.com/Kuewon/Cliunt-sub000/ecs"
	"github.com/Kuewon/Cliunt-sub000/stats"
	"github.com/Kuewon/Cliunt-sub000/tables"
)

// Wave controller states.
const (
	WaveAwaitingStart    = "awaiting_start"
	WaveSpawning         = "spawning"
	WaveComplete         = "wave_complete"
	WaveAllWavesComplete = "all_waves_complete"
)

const (
	waveStart    = "start"
	waveFinish   = "finish"
	waveExhausts = "exhaust"
)

// WaveDefinition is one WaveInfo row.
type WaveDefinition struct {
	StageIndex            int
	EnemyIndexSequence    []int
	HealthMultiplier      float64
	AttackMultiplier      float64
	AttackSpeedMultiplier float64
	SpawnInterval         float64
	ClearReward           int
}

// Multipliers returns the stat scaling of the wave's enemies.
func (d WaveDefinition) Multipliers() stats.Multipliers {
	return stats.Multipliers{
		Health:      d.HealthMultiplier,
		Attack:      d.AttackMultiplier,
		AttackSpeed: d.AttackSpeedMultiplier,
	}
}

// LoadWaves reads every WaveInfo row. Unreadable cells fall back to neutral
// values (multiplier 1, no interval, no reward) and are logged.
func LoadWaves(store *tables.Store) ([]WaveDefinition, error) {
	t, err := store.Table(tables.WaveInfo)
	if err != nil {
		return nil, fmt.Errorf("system: load waves: %w", err)
	}
	waves := make([]WaveDefinition, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		row, _ := t.Row(i)
		d := WaveDefinition{HealthMultiplier: 1, AttackMultiplier: 1, AttackSpeedMultiplier: 1}
		report := func(col string, err error) {
			log.Printf("system: %s[%d].%s: %v", tables.WaveInfo, i, col, err)
		}
		if v, err := row.Int(tables.ColStageIndex); err == nil {
			d.StageIndex = int(v)
		} else {
			report(tables.ColStageIndex, err)
		}
		if seq, err := row.Ints(tables.ColEnemyIndexSequence); err == nil {
			for _, v := range seq {
				d.EnemyIndexSequence = append(d.EnemyIndexSequence, int(v))
			}
		} else {
			report(tables.ColEnemyIndexSequence, err)
		}
		floats := []struct {
			col string
			dst *float64
		}{
			{tables.ColHealthMultiplier, &d.HealthMultiplier},
			{tables.ColAttackMultiplier, &d.AttackMultiplier},
			{tables.ColAttackSpeedMultiplier, &d.AttackSpeedMultiplier},
			{tables.ColSpawnInterval, &d.SpawnInterval},
		}
		for _, f := range floats {
			if v, err := row.Float(f.col); err == nil {
				*f.dst = v
			} else {
				report(f.col, err)
			}
		}
		if v, err := row.Int(tables.ColClearReward); err == nil {
			d.ClearReward = int(v)
		} else {
			report(tables.ColClearReward, err)
		}
		waves = append(waves, d)
	}
	return waves, nil
}

// WaveState is the runtime progress of the wave sequence.
type WaveState struct {
	CurrentStageIndex    int
	CurrentWaveIndex     int
	SpawnedCount         int
	IsSpawning           bool
	IsStageTransitioning bool
	StageEndX            float64
}

// EnemySpawner issues one enemy spawn request.
type EnemySpawner interface {
	SpawnEnemy(enemyIndex int, m stats.Multipliers) (*component.Actor, error)
}

// WaveController sequences the waves of the WaveInfo table. Each wave
// spawns its enemies one at a time, SpawnInterval seconds apart; waves never
// overlap.
type WaveController struct {
	world   *World
	spawner EnemySpawner
	waves   []WaveDefinition
	state   WaveState
	machine *fsm.FSM
	token   *ecs.Token

	live    map[ecs.Entity]struct{}
	cleared map[int]bool
}

// NewWaveController loads the waves once; they are fixed for the session.
func NewWaveController(w *World) *WaveController {
	waves, err := LoadWaves(w.Tables)
	if err != nil {
		w.Tables.WarnOnce("waves", "system: no waves: %v", err)
	}
	wc := &WaveController{
		world: w,
		waves: waves,
		state: WaveState{CurrentWaveIndex: -1, StageEndX: w.Stage.InitialEndX},
		machine: fsm.NewFSM(
			WaveAwaitingStart,
			fsm.Events{
				{Name: waveStart, Src: []string{WaveAwaitingStart, WaveComplete}, Dst: WaveSpawning},
				{Name: waveFinish, Src: []string{WaveSpawning}, Dst: WaveComplete},
				{Name: waveExhausts, Src: []string{WaveAwaitingStart, WaveComplete}, Dst: WaveAllWavesComplete},
			},
			fsm.Callbacks{},
		),
		live:    map[ecs.Entity]struct{}{},
		cleared: map[int]bool{},
	}
	if len(waves) > 0 {
		wc.state.CurrentStageIndex = waves[0].StageIndex
	}
	w.ECS.Bus().Subscribe(EventActorDied, wc.onActorDied)
	return wc
}

// SetSpawner sets the collaborator that spawns enemies.
func (wc *WaveController) SetSpawner(s EnemySpawner) { wc.spawner = s }

// Len returns the number of waves.
func (wc *WaveController) Len() int { return len(wc.waves) }

// Waves returns a copy of the wave list.
func (wc *WaveController) Waves() []WaveDefinition {
	return append([]WaveDefinition(nil), wc.waves...)
}

// State returns a copy of the runtime state.
func (wc *WaveController) State() WaveState { return wc.state }

// Phase returns the controller's state name.
func (wc *WaveController) Phase() string { return wc.machine.Current() }

// IsCurrentWaveComplete reports whether every spawn request of the current
// wave was issued. It does not wait for the enemies to die.
func (wc *WaveController) IsCurrentWaveComplete() bool {
	return wc.state.CurrentWaveIndex >= 0 && !wc.state.IsSpawning
}

// LiveEnemies returns the number of registered enemies still alive.
func (wc *WaveController) LiveEnemies() int { return len(wc.live) }

// StartNextWave advances to the next wave and starts spawning it. It
// returns false while a wave is still spawning and once every wave was
// started.
func (wc *WaveController) StartNextWave() bool {
	if wc.state.IsSpawning {
		log.Printf("system: wave %d still spawning, not starting another", wc.state.CurrentWaveIndex)
		return false
	}
	if wc.machine.Is(WaveAllWavesComplete) {
		return false
	}

	next := wc.state.CurrentWaveIndex + 1
	if next >= len(wc.waves) {
		wc.event(waveExhausts)
		log.Printf("system: all %d waves complete", len(wc.waves))
		wc.publish(EventAllWavesComplete, AllWavesComplete{Waves: len(wc.waves)})
		return false
	}

	def := wc.waves[next]
	wc.state.CurrentWaveIndex = next
	if next > 0 && def.StageIndex != wc.waves[next-1].StageIndex {
		wc.state.CurrentStageIndex++
		wc.state.IsStageTransitioning = true
		wc.state.StageEndX += wc.world.Stage.Width
		log.Printf("system: stage %d begins, stage end %.2f", wc.state.CurrentStageIndex, wc.state.StageEndX)
		wc.publish(EventStageChanged, StageChanged{Stage: wc.state.CurrentStageIndex, StageEndX: wc.state.StageEndX})
	}

	wc.event(waveStart)
	wc.state.SpawnedCount = 0
	wc.state.IsSpawning = true
	wc.token = ecs.NewToken()
	wc.publish(EventWaveStarted, WaveStarted{
		Stage:   wc.state.CurrentStageIndex,
		Wave:    next,
		Enemies: len(def.EnemyIndexSequence),
	})

	if len(def.EnemyIndexSequence) == 0 {
		log.Printf("system: wave %d has no enemies", next)
		wc.finish(next)
		return true
	}
	wc.spawnStep(next, 0, wc.token)
	return true
}

func (wc *WaveController) spawnStep(wave, i int, token *ecs.Token) {
	def := wc.waves[wave]
	index := def.EnemyIndexSequence[i]
	wc.state.SpawnedCount++
	if wc.spawner == nil {
		log.Printf("system: wave %d: %v: no spawner for enemy %d", wave, ErrUnavailable, index)
	} else if _, err := wc.spawner.SpawnEnemy(index, def.Multipliers()); err != nil {
		log.Printf("system: wave %d spawn %d: %v", wave, i, err)
	}

	if i == len(def.EnemyIndexSequence)-1 {
		wc.finish(wave)
		return
	}
	interval := def.SpawnInterval
	if interval < 0 {
		log.Printf("system: wave %d spawn interval %v, using 0", wave, interval)
		interval = 0
	}
	wc.world.ECS.Timers().After(interval, token, func() {
		wc.spawnStep(wave, i+1, token)
	})
}

func (wc *WaveController) finish(wave int) {
	wc.state.IsSpawning = false
	wc.token = nil
	wc.event(waveFinish)
	def := wc.waves[wave]
	wc.publish(EventWaveCompleted, WaveCompleted{
		Stage:   wc.state.CurrentStageIndex,
		Wave:    wave,
		Spawned: wc.state.SpawnedCount,
	})

	lastOfStage := wave == len(wc.waves)-1 || wc.waves[wave+1].StageIndex != def.StageIndex
	stage := wc.state.CurrentStageIndex
	if lastOfStage && !wc.state.IsStageTransitioning && !wc.cleared[stage] {
		wc.cleared[stage] = true
		log.Printf("system: stage %d cleared, reward %d", stage, def.ClearReward)
		wc.publish(EventStageCleared, StageCleared{Stage: stage, Reward: def.ClearReward})
	}
}

// RegisterEnemy adds e to the live enemy set. The first registration after
// a stage change ends the transition.
func (wc *WaveController) RegisterEnemy(e ecs.Entity) {
	wc.live[e] = struct{}{}
	wc.state.IsStageTransitioning = false
}

func (wc *WaveController) onActorDied(evt ecs.Event) {
	if d, ok := evt.Data.(ActorDied); ok {
		delete(wc.live, d.Entity)
	}
}

// Stop cancels pending spawns.
func (wc *WaveController) Stop() {
	wc.token.Cancel()
	wc.token = nil
	if wc.state.IsSpawning {
		wc.state.IsSpawning = false
		wc.event(waveFinish)
	}
}

func (wc *WaveController) event(name string) {
	if err := wc.machine.Event(context.Background(), name); err != nil {
		log.Printf("system: wave %s: %v", name, err)
	}
}

func (wc *WaveController) publish(t ecs.EventType, data any) {
	wc.world.ECS.Bus().Publish(ecs.Event{Type: t, Data: data})
}

// waveDriver starts the next wave delay seconds after the previous one
// finished spawning and its enemies are gone.
type waveDriver struct {
	waves   *WaveController
	delay   float64
	pending bool
}

func newWaveDriver(wc *WaveController, delay float64) *waveDriver {
	return &waveDriver{waves: wc, delay: delay}
}

func (d *waveDriver) Update(w *ecs.World) {
	wc := d.waves
	if d.pending || wc.state.IsSpawning || wc.machine.Is(WaveAllWavesComplete) || wc.LiveEnemies() > 0 {
		return
	}
	if wc.world.PlayerDead() {
		return
	}
	d.pending = true
	w.Timers().After(d.delay, nil, func() {
		d.pending = false
		wc.StartNextWave()
	})
}
