package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Kuewon/Cliunt-sub000/ecs"
	"github.com/Kuewon/Cliunt-sub000/prefabs"
	"github.com/Kuewon/Cliunt-sub000/save"
	"github.com/Kuewon/Cliunt-sub000/system"
	"github.com/Kuewon/Cliunt-sub000/tables"
)

type Config struct {
	Duration  float64
	Realtime  bool
	SavePath  string
	Seed      int64
	Script    string
	Watch     bool
	TablesDir string
}

// Game runs one headless session: tables and specs are loaded, the world is
// stepped at the stage tick rate and file changes are fed back in.
type Game struct {
	cfg    Config
	store  *tables.Store
	loader *tables.Loader
	world  *system.World

	autoplay *system.Autoplay
	scripts  chan []byte

	frames int
}

func NewGame(cfg Config) (*Game, error) {
	stage, err := prefabs.LoadStageSpec()
	if err != nil {
		log.Printf("game: stage spec: %v, using defaults", err)
	}
	player, err := prefabs.LoadActorSpec("player.yaml")
	if err != nil {
		return nil, fmt.Errorf("game: player spec: %w", err)
	}
	enemy, err := prefabs.LoadActorSpec("enemy.yaml")
	if err != nil {
		return nil, fmt.Errorf("game: enemy spec: %w", err)
	}

	g := &Game{
		cfg:     cfg,
		store:   tables.NewStore(),
		scripts: make(chan []byte, 1),
	}
	g.loader = tables.NewLoader(g.store, tables.GameSchemas())
	g.loadTables()

	var saves save.Store = save.NewMemoryStore()
	if cfg.SavePath != "" {
		fs, err := save.OpenFileStore(cfg.SavePath)
		if err != nil {
			return nil, fmt.Errorf("game: %w", err)
		}
		saves = fs
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = stage.Seed
	}
	g.world, err = system.NewWorld(system.Options{
		Stage:     stage,
		Player:    player,
		Enemy:     enemy,
		Tables:    g.store,
		Save:      saves,
		Seed:      seed,
		AutoWaves: true,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Script != "" {
		src, err := prefabs.LoadScript(cfg.Script)
		if err != nil {
			return nil, fmt.Errorf("game: script %s: %w", cfg.Script, err)
		}
		g.autoplay, err = system.NewAutoplay(g.world, cfg.Script, src)
		if err != nil {
			return nil, err
		}
		g.world.AddSystem(g.autoplay)
	}

	g.logEvents()
	return g, nil
}

// loadTables loads the bundled sheets, then every sheet of TablesDir.
func (g *Game) loadTables() {
	names, err := prefabs.TableFiles()
	if err != nil {
		log.Printf("game: %v", err)
	}
	for _, name := range names {
		data, err := prefabs.Load(name)
		if err != nil {
			log.Printf("game: %v", err)
			continue
		}
		if _, err := g.loader.LoadBytes(name, data); err != nil {
			log.Printf("game: %s: %v", name, err)
		}
	}

	if g.cfg.TablesDir == "" {
		return
	}
	entries, err := os.ReadDir(g.cfg.TablesDir)
	if err != nil {
		log.Printf("game: tables dir: %v", err)
		return
	}
	for _, e := range entries {
		path := filepath.Join(g.cfg.TablesDir, e.Name())
		if e.IsDir() || !g.isTable(path) {
			continue
		}
		if _, err := g.loader.LoadFile(path); err != nil {
			log.Printf("game: %s: %v", path, err)
		}
	}
}

// isTable reports whether path is a sheet: anything the watcher classifies
// as a table, plus every .yaml/.csv file of TablesDir.
func (g *Game) isTable(path string) bool {
	if prefabs.Classify(path) == prefabs.FileTable {
		return true
	}
	if g.cfg.TablesDir == "" || filepath.Clean(filepath.Dir(path)) != filepath.Clean(g.cfg.TablesDir) {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".csv":
		return true
	}
	return false
}

func (g *Game) logEvents() {
	g.world.Subscribe(system.EventWaveStarted, func(evt ecs.Event) {
		if s, ok := evt.Data.(system.WaveStarted); ok {
			log.Printf("game: %6.2fs stage %d wave %d: %d enemies", g.world.Now(), s.Stage, s.Wave, s.Enemies)
		}
	})
	g.world.Subscribe(system.EventStageCleared, func(evt ecs.Event) {
		if c, ok := evt.Data.(system.StageCleared); ok {
			log.Printf("game: %6.2fs stage %d cleared, +%d diamonds", g.world.Now(), c.Stage, c.Reward)
		}
	})
	g.world.Subscribe(system.EventActorDied, func(evt ecs.Event) {
		if d, ok := evt.Data.(system.ActorDied); ok {
			log.Printf("game: %6.2fs %s %s died, +%d gold", g.world.Now(), d.Faction, d.Entity, d.Reward)
		}
	})
	g.world.Subscribe(system.EventEquipmentChanged, func(evt ecs.Event) {
		if c, ok := evt.Data.(system.EquipmentChanged); ok {
			log.Printf("game: %6.2fs equipped %s %d", g.world.Now(), c.Slot, c.Index)
		}
	})
}

// Run steps the simulation until the duration elapses, the run is over or
// ctx is cancelled. With Watch set, changed files are reloaded meanwhile.
func (g *Game) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)

	if g.cfg.Watch {
		w, err := prefabs.NewWatcher(g.watchDirs()...)
		if err != nil {
			return fmt.Errorf("game: watch: %w", err)
		}
		eg.Go(func() error { return g.watch(ctx, w) })
	}
	eg.Go(func() error {
		defer cancel()
		return g.simulate(ctx)
	})
	return eg.Wait()
}

func (g *Game) watchDirs() []string {
	candidates := []string{"prefabs", filepath.Join("prefabs", "tables"), filepath.Join("prefabs", "scripts")}
	if g.cfg.TablesDir != "" {
		candidates = append(candidates, g.cfg.TablesDir)
	}
	var dirs []string
	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func (g *Game) watch(ctx context.Context, w *prefabs.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return w.Close()
		case path, ok := <-w.Events:
			if !ok {
				return nil
			}
			g.reload(path)
		case err, ok := <-w.Errors:
			if ok {
				log.Printf("game: watch: %v", err)
			}
		}
	}
}

// reload runs on the watcher goroutine. Tables are swapped atomically in the
// store; everything else is handed to the simulation goroutine.
func (g *Game) reload(path string) {
	kind := prefabs.Classify(path)
	if g.isTable(path) {
		kind = prefabs.FileTable
	}
	switch kind {
	case prefabs.FileTable:
		name, err := g.loader.LoadFile(path)
		if err != nil {
			log.Printf("game: reload %s: %v", path, err)
			return
		}
		g.world.NotifyTablesReloaded(name)
	case prefabs.FileScript:
		if g.autoplay == nil || filepath.Base(path) != filepath.Base(g.cfg.Script) {
			return
		}
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("game: reload %s: %v", path, err)
			return
		}
		select {
		case g.scripts <- data:
		default:
			log.Printf("game: script reload pending, dropping %s", path)
		}
	case prefabs.FileSpec:
		log.Printf("game: %s changed, restart to apply", path)
	}
}

func (g *Game) simulate(ctx context.Context) error {
	dt := 1 / g.world.Stage.TickRate
	var tick <-chan time.Time
	if g.cfg.Realtime {
		ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
		defer ticker.Stop()
		tick = ticker.C
	}

	defer g.summary()
	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return nil
		}

		select {
		case src := <-g.scripts:
			if err := g.autoplay.Reload(src); err != nil {
				log.Printf("game: %v", err)
			} else {
				log.Printf("game: reloaded %s", g.cfg.Script)
			}
		default:
		}

		g.world.Update(dt)
		g.frames++
		if g.done() {
			return nil
		}
	}
}

func (g *Game) done() bool {
	w := g.world
	if w.PlayerDead() {
		return true
	}
	if g.cfg.Duration > 0 && w.Now() >= g.cfg.Duration {
		return true
	}
	return w.Waves.Phase() == system.WaveAllWavesComplete && w.Waves.LiveEnemies() == 0
}

func (g *Game) summary() {
	w := g.world
	st := w.Waves.State()
	total, critical := w.Attacks.Attacks()
	taps := 0
	if g.autoplay != nil {
		taps = g.autoplay.Taps()
	}
	log.Printf("game: session %s: %.2fs in %d ticks, stage %d wave %d, gold %d, diamonds %d, %d attacks (%d critical), %d taps, player alive %v",
		w.Session, w.Now(), g.frames, st.CurrentStageIndex, st.CurrentWaveIndex,
		w.Wallet.Gold(), w.Wallet.Diamonds(), total, critical, taps, !w.PlayerDead())
}
