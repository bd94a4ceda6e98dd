package system

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Kuewon/Cliunt-sub000/common"
	"github.com/Kuewon/Cliunt-sub000/component"
	"github.com/Kuewon/Cliunt-sub000/ecs"
	"github.com/Kuewon/Cliunt-sub000/prefabs"
	"github.com/Kuewon/Cliunt-sub000/save"
	"github.com/Kuewon/Cliunt-sub000/stats"
	"github.com/Kuewon/Cliunt-sub000/tables"
)

// ErrUnavailable reports a collaborator that could not serve a request,
// such as an instantiator without a prefab.
var ErrUnavailable = errors.New("system: resource unavailable")

const keyLastSession = "session.last"

// Options configures a simulation.
type Options struct {
	Stage  prefabs.StageSpec
	Player prefabs.ActorSpec
	Enemy  prefabs.ActorSpec

	Tables *tables.Store
	Save   save.Store

	// Instantiator creates actors; nil uses the built-in factory.
	Instantiator Instantiator

	Seed int64

	// AutoWaves starts the next wave once the field is clear.
	AutoWaves bool
}

// World is the simulation context. It owns the ECS world and every
// gameplay service, and is driven by one goroutine through Update.
type World struct {
	ECS     *ecs.World
	Tables  *tables.Store
	Stats   *stats.Resolver
	Save    save.Store
	Stage   prefabs.StageSpec
	Session uuid.UUID

	Attacks   *AttackScheduler
	Waves     *WaveController
	Spawner   *SpawnCoordinator
	Equipment *EquipmentStore
	Wallet    *Wallet
	Movement  *MovementSystem

	actors *ecs.Storage[*component.Actor]
	scopes *ecs.Storage[*ecs.Scope]

	player     *component.Actor
	playerBase stats.Base
	playerDead bool

	specs map[component.ActorKind]prefabs.ActorSpec

	reloadMu sync.Mutex
	reloaded []string
}

// NewWorld wires the services and spawns the player.
func NewWorld(opts Options) (*World, error) {
	if opts.Tables == nil {
		opts.Tables = tables.NewStore()
	}
	if opts.Save == nil {
		opts.Save = save.NewMemoryStore()
	}

	w := &World{
		ECS:        ecs.NewWorld(),
		Tables:     opts.Tables,
		Stats:      stats.NewResolver(opts.Tables),
		Save:       opts.Save,
		Stage:      opts.Stage.Normalize(),
		Session:    uuid.New(),
		actors:     ecs.NewStorage[*component.Actor](),
		scopes:     ecs.NewStorage[*ecs.Scope](),
		playerBase: stats.NewBase(),
		specs: map[component.ActorKind]prefabs.ActorSpec{
			component.KindPlayer: opts.Player,
			component.KindEnemy:  opts.Enemy,
		},
	}
	if err := w.Save.Save(keyLastSession, w.Session.String()); err != nil {
		log.Printf("system: persist session id: %v", err)
	}

	inst := opts.Instantiator
	if inst == nil {
		inst = &ActorFactory{World: w}
	}

	bus := w.ECS.Bus()
	w.Attacks = NewAttackScheduler(w, rand.New(rand.NewSource(opts.Seed)))
	w.Equipment = NewEquipmentStore(w.Save, bus, w.Tables)
	w.Wallet = NewWallet(w.Save, bus)
	w.Waves = NewWaveController(w)
	w.Spawner = NewSpawnCoordinator(w, inst, rand.New(rand.NewSource(opts.Seed+1)))
	w.Waves.SetSpawner(w.Spawner)
	w.Movement = NewMovementSystem(w)

	bus.Subscribe(EventActorDied, w.onActorDied)
	bus.Subscribe(eventDespawn, w.onDespawn)
	bus.Subscribe(EventStageChanged, w.onStageChanged)

	w.ECS.AddSystem(w.Attacks)
	w.ECS.AddSystem(w.Movement)
	if opts.AutoWaves {
		w.ECS.AddSystem(newWaveDriver(w.Waves, w.Stage.WaveDelay))
	}

	if err := w.spawnPlayer(inst); err != nil {
		return nil, err
	}
	log.Printf("system: session %s started (stage %s, %d waves)", w.Session, w.Stage.Name, w.Waves.Len())
	return w, nil
}

func (w *World) spawnPlayer(inst Instantiator) error {
	spec := w.specs[component.KindPlayer]
	pos := common.Vec2{X: spec.Transform.X, Y: spec.Transform.Y}
	block, base := w.Stats.ResolvePlayer(w.playerBase, w.Equipment.Selection())
	actor, err := inst.SpawnActor(component.KindPlayer, pos, block)
	if err == nil && actor == nil {
		err = fmt.Errorf("%w: instantiator returned no actor", ErrUnavailable)
	}
	if err != nil {
		return fmt.Errorf("system: spawn player: %w", err)
	}
	actor.Kind = component.KindPlayer
	w.register(actor, component.FactionPlayer, pos)
	actor.EnemyIndex = -1
	actor.Name = spec.Name
	actor.Stats = block
	w.playerBase = base
	w.player = actor
	actor.Health.Initialize(block.MaxHealth)

	w.activate(actor)
	scope, _ := w.scopes.Get(actor.Entity)
	scope.Subscribe(EventEquipmentChanged, func(evt ecs.Event) {
		if c, ok := evt.Data.(EquipmentChanged); ok && c.Slot.AffectsStats() {
			w.ResolvePlayerStats()
		}
	})
	scope.Subscribe(EventTablesReloaded, func(ecs.Event) {
		w.ResolvePlayerStats()
	})
	return nil
}

// activate hooks an instantiated actor into the bus and starts its attack
// loop.
func (w *World) activate(actor *component.Actor) {
	bus := w.ECS.Bus()
	scope := ecs.NewScope(bus)
	w.scopes.Set(actor.Entity, scope)

	actor.Health.OnDamage = func(_ *component.Health, evt component.CombatEvent) {
		bus.Publish(ecs.Event{Type: EventDamageApplied, Data: DamageApplied{
			Attacker:  evt.Attacker,
			Target:    actor.Entity,
			Amount:    evt.Damage,
			Critical:  evt.Critical,
			Remaining: evt.Remaining,
		}})
		bus.Publish(ecs.Event{Type: EventHitFlash, Data: HitFlash{Entity: actor.Entity}})
	}
	actor.Health.OnDeath = func(_ *component.Health, evt component.CombatEvent) {
		bus.Publish(ecs.Event{Type: EventActorDied, Data: ActorDied{
			Entity:     actor.Entity,
			Faction:    actor.Faction,
			EnemyIndex: actor.EnemyIndex,
			Reward:     evt.Reward,
		}})
	}

	if actor.Faction == component.FactionEnemy {
		// enemies stand down once the player is gone
		scope.Subscribe(EventActorDied, func(evt ecs.Event) {
			if d, ok := evt.Data.(ActorDied); ok && d.Faction == component.FactionPlayer {
				w.Attacks.Stop(actor.Entity)
			}
		})
	}

	w.Attacks.Start(actor)
	bus.Publish(ecs.Event{Type: EventActorSpawned, Data: ActorSpawned{
		Entity:   actor.Entity,
		Kind:     actor.Kind,
		Name:     actor.Name,
		Position: actor.Position,
	}})
}

// ResolvePlayerStats recomputes the player's stat block from the tables and
// the current equipment. Health is initialized by the first resolution only.
func (w *World) ResolvePlayerStats() component.StatBlock {
	if w.player == nil {
		return component.StatBlock{}
	}
	block, base := w.Stats.ResolvePlayer(w.playerBase, w.Equipment.Selection())
	w.playerBase = base
	w.player.Stats = block
	w.player.Health.Initialize(block.MaxHealth)
	return block
}

func (w *World) onActorDied(evt ecs.Event) {
	d, ok := evt.Data.(ActorDied)
	if !ok {
		return
	}
	w.Attacks.Stop(d.Entity)
	if d.Faction == component.FactionPlayer {
		w.playerDead = true
		w.Waves.Stop()
		log.Printf("system: player %s died at %.2fs", d.Entity, w.Now())
	}
	w.ECS.Bus().Defer(ecs.Event{Type: eventDespawn, Data: despawn{Entity: d.Entity}})
}

func (w *World) onDespawn(evt ecs.Event) {
	d, ok := evt.Data.(despawn)
	if !ok {
		return
	}
	if scope, ok := w.scopes.Get(d.Entity); ok {
		scope.Close()
		w.scopes.Remove(d.Entity)
	}
	w.actors.Remove(d.Entity)
	w.ECS.DestroyEntity(d.Entity)
}

func (w *World) onStageChanged(evt ecs.Event) {
	c, ok := evt.Data.(StageChanged)
	if !ok || w.player == nil || w.playerDead {
		return
	}
	if err := save.SaveInt(w.Save, keyStage, c.Stage); err != nil {
		log.Printf("system: %v", err)
	}
	w.Attacks.Suspend(w.player.Entity)
	w.Movement.Scroll(w.player, w.Stage.Width, w.Stage.ScrollDuration, func() {
		w.Attacks.Resume(w.player.Entity)
	})
}

// NotifyTablesReloaded records reloaded tables. It may be called from any
// goroutine; the notification is published on the next Update.
func (w *World) NotifyTablesReloaded(names ...string) {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()
	w.reloaded = append(w.reloaded, names...)
}

func (w *World) takeReloaded() []string {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()
	out := w.reloaded
	w.reloaded = nil
	return out
}

// Update advances the simulation by dt seconds.
func (w *World) Update(dt float64) {
	if names := w.takeReloaded(); len(names) > 0 {
		sort.Strings(names)
		log.Printf("system: tables reloaded: %v", names)
		w.ECS.Bus().Publish(ecs.Event{Type: EventTablesReloaded, Data: TablesReloaded{Tables: names}})
	}
	w.ECS.Update(dt)
}

// AddSystem runs s after the built-in systems every tick.
func (w *World) AddSystem(s ecs.System) {
	w.ECS.AddSystem(s)
}

// Subscribe registers fn on the world bus.
func (w *World) Subscribe(t ecs.EventType, fn ecs.Handler) *ecs.Subscription {
	return w.ECS.Bus().Subscribe(t, fn)
}

// RequestManualAttack asks the player to attack now.
func (w *World) RequestManualAttack() bool {
	if w.player == nil {
		return false
	}
	return w.Attacks.RequestManual(w.player.Entity)
}

func (w *World) Now() float64 { return w.ECS.Now() }

func (w *World) Player() *component.Actor { return w.player }

// PlayerDead reports whether the player died.
func (w *World) PlayerDead() bool { return w.playerDead }

// Actor returns the live actor of e.
func (w *World) Actor(e ecs.Entity) (*component.Actor, bool) {
	return w.actors.Get(e)
}

// Actors returns the registered actors of faction f ordered by entity.
func (w *World) Actors(f component.Faction) []*component.Actor {
	var out []*component.Actor
	w.actors.ForEach(func(_ ecs.Entity, a *component.Actor) {
		if a.Faction == f {
			out = append(out, a)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Entity < out[j].Entity })
	return out
}

// EnemiesInRange counts active enemies the player can currently hit.
func (w *World) EnemiesInRange() int {
	p := w.player
	if !p.IsActive() {
		return 0
	}
	n := 0
	for _, h := range w.ECS.Physics().QueryRadius(p.Position.X, p.Position.Y, p.Stats.AttackRange+p.Radius, ecs.CategoryEnemy) {
		if a, ok := w.actors.Get(h.Entity); ok && a.IsActive() {
			n++
		}
	}
	return n
}

// moveActor updates an actor's position and its physics body.
func (w *World) moveActor(a *component.Actor, pos common.Vec2) {
	a.Position = pos
	w.ECS.Physics().Move(a.Entity, pos.X, pos.Y)
}
