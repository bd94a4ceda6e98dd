package system

import (
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/Kuewon/Cliunt-sub000/ecs"
)

const autoplayDispatchScript = `
if __phase == "start" {
	start(__engine, __state)
} else if __phase == "tick" {
	tick(__engine, __state)
}
`

// Autoplay drives the player's input from a tengo script. The script
// defines start(engine, state) and tick(engine, state); state is a map that
// survives between ticks.
type Autoplay struct {
	world    *World
	name     string
	compiled *tengo.Compiled
	state    *tengo.Map
	engine   *tengo.ImmutableMap
	started  bool
	failed   bool

	taps int
}

// NewAutoplay compiles src for w.
func NewAutoplay(w *World, name string, src []byte) (*Autoplay, error) {
	a := &Autoplay{world: w, name: name}
	a.engine = a.buildEngine()
	if err := a.Reload(src); err != nil {
		return nil, err
	}
	return a, nil
}

// Reload replaces the script. State is reset and start runs again on the
// next tick. On error the previous script keeps running.
func (a *Autoplay) Reload(src []byte) error {
	script := tengo.NewScript([]byte(string(src) + "\n" + autoplayDispatchScript))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("autoplay: compile %s: %w", a.name, err)
	}
	a.compiled = compiled
	a.state = &tengo.Map{Value: map[string]tengo.Object{}}
	a.started = false
	a.failed = false
	return nil
}

// Taps returns how many manual attacks the script got accepted.
func (a *Autoplay) Taps() int { return a.taps }

func (a *Autoplay) Update(w *ecs.World) {
	if a == nil || a.compiled == nil || a.failed || a.world.PlayerDead() {
		return
	}
	if !a.started {
		if err := a.run("start"); err != nil {
			a.fail(err)
			return
		}
		a.started = true
	}
	if err := a.run("tick"); err != nil {
		a.fail(err)
	}
}

// fail parks a broken script until the next Reload.
func (a *Autoplay) fail(err error) {
	a.failed = true
	log.Printf("autoplay: %s: %v", a.name, err)
}

func (a *Autoplay) run(phase string) error {
	if err := a.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := a.compiled.Set("__engine", a.engine); err != nil {
		return err
	}
	if err := a.compiled.Set("__state", a.state); err != nil {
		return err
	}
	return a.compiled.Run()
}

func (a *Autoplay) buildEngine() *tengo.ImmutableMap {
	w := a.world
	values := map[string]tengo.Object{}

	values["manual_attack"] = &tengo.UserFunction{Name: "manual_attack", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if !w.RequestManualAttack() {
			return tengo.FalseValue, nil
		}
		a.taps++
		return tengo.TrueValue, nil
	}}

	values["enemies_in_range"] = &tengo.UserFunction{Name: "enemies_in_range", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(w.EnemiesInRange())}, nil
	}}

	values["time"] = &tengo.UserFunction{Name: "time", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: w.Now()}, nil
	}}

	values["stage"] = &tengo.UserFunction{Name: "stage", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(w.Waves.State().CurrentStageIndex)}, nil
	}}

	values["wave"] = &tengo.UserFunction{Name: "wave", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(w.Waves.State().CurrentWaveIndex)}, nil
	}}

	values["gold"] = &tengo.UserFunction{Name: "gold", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(w.Wallet.Gold())}, nil
	}}

	values["diamonds"] = &tengo.UserFunction{Name: "diamonds", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(w.Wallet.Diamonds())}, nil
	}}

	values["player_health"] = &tengo.UserFunction{Name: "player_health", Value: func(args ...tengo.Object) (tengo.Object, error) {
		p := w.Player()
		if p == nil {
			return &tengo.Float{Value: 0}, nil
		}
		return &tengo.Float{Value: p.Health.Current}, nil
	}}

	values["player_health_fraction"] = &tengo.UserFunction{Name: "player_health_fraction", Value: func(args ...tengo.Object) (tengo.Object, error) {
		p := w.Player()
		if p == nil {
			return &tengo.Float{Value: 0}, nil
		}
		return &tengo.Float{Value: p.Health.Fraction()}, nil
	}}

	values["equipped"] = &tengo.UserFunction{Name: "equipped", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.UndefinedValue, nil
		}
		slot, ok := ParseSlot(strings.TrimSpace(objectAsString(args[0])))
		if !ok {
			return tengo.UndefinedValue, nil
		}
		return &tengo.Int{Value: int64(w.Equipment.Selection().Get(slot))}, nil
	}}

	values["equip"] = &tengo.UserFunction{Name: "equip", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		slot, ok := ParseSlot(strings.TrimSpace(objectAsString(args[0])))
		if !ok {
			return tengo.FalseValue, nil
		}
		index, ok := tengo.ToInt(args[1])
		if !ok || !w.Equipment.Equip(slot, index) {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, arg := range args {
			parts = append(parts, objectAsString(arg))
		}
		log.Printf("autoplay: %s: %s", a.name, strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
