package system

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/Kuewon/Cliunt-sub000/common"
	"github.com/Kuewon/Cliunt-sub000/component"
	"github.com/Kuewon/Cliunt-sub000/prefabs"
	"github.com/Kuewon/Cliunt-sub000/stats"
)

// SpawnCoordinator places and instantiates enemies with wave-scaled stats.
type SpawnCoordinator struct {
	world *World
	inst  Instantiator
	rng   *rand.Rand

	requests int
	failures int
}

func NewSpawnCoordinator(w *World, inst Instantiator, rng *rand.Rand) *SpawnCoordinator {
	return &SpawnCoordinator{world: w, inst: inst, rng: rng}
}

// SetInstantiator replaces the instantiation collaborator.
func (s *SpawnCoordinator) SetInstantiator(inst Instantiator) { s.inst = inst }

// Instantiator returns the current instantiation collaborator.
func (s *SpawnCoordinator) Instantiator() Instantiator { return s.inst }

// SpawnX returns the spawn column. While the stage transitions enemies
// appear relative to the stage origin instead of the stage end.
func SpawnX(stage prefabs.StageSpec, stageEndX float64, transitioning bool) float64 {
	if transitioning {
		return stage.Width*0.8 - stage.Width/2
	}
	return (stageEndX + stage.Width*0.8) - stage.Width/2
}

// SpawnPosition returns the spawn point with a uniform Y jitter.
func (s *SpawnCoordinator) SpawnPosition(stageEndX float64, transitioning bool) common.Vec2 {
	st := s.world.Stage
	jitter := st.JitterMin + s.rng.Float64()*(st.JitterMax-st.JitterMin)
	return common.Vec2{X: SpawnX(st, stageEndX, transitioning), Y: st.SpawnY + jitter}
}

// SpawnEnemy instantiates EnemyStats[enemyIndex] scaled by m and registers it
// with the wave controller. A failed instantiation aborts only this spawn.
func (s *SpawnCoordinator) SpawnEnemy(enemyIndex int, m stats.Multipliers) (*component.Actor, error) {
	s.requests++
	w := s.world
	state := w.Waves.State()
	pos := s.SpawnPosition(state.StageEndX, state.IsStageTransitioning)
	profile := w.Stats.ResolveEnemy(enemyIndex, m)

	if s.inst == nil {
		s.failures++
		return nil, fmt.Errorf("%w: no instantiator", ErrUnavailable)
	}
	actor, err := s.inst.SpawnActor(component.KindEnemy, pos, profile.Stats)
	if err == nil && actor == nil {
		err = fmt.Errorf("%w: instantiator returned no actor", ErrUnavailable)
	}
	if err != nil {
		s.failures++
		log.Printf("spawn: enemy %d at (%.2f, %.2f): %v", enemyIndex, pos.X, pos.Y, err)
		return nil, err
	}

	actor.Kind = component.KindEnemy
	w.register(actor, component.FactionEnemy, pos)
	actor.Name = profile.Name
	actor.EnemyIndex = enemyIndex
	actor.Stats = profile.Stats
	actor.Health.DropGoldBase = profile.DropGoldBase
	actor.Health.DropGoldMultiplier = w.playerBase.DropGoldMultiplier
	actor.Health.Initialize(profile.Stats.MaxHealth)

	w.activate(actor)
	w.Waves.RegisterEnemy(actor.Entity)
	return actor, nil
}

// Counts returns the number of spawn requests and failed requests.
func (s *SpawnCoordinator) Counts() (requests, failures int) {
	return s.requests, s.failures
}
