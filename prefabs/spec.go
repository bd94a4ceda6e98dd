package prefabs

import (
	"fmt"
	"log"

	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// StageSpec lays out the scrolling stage and paces the simulation.
type StageSpec struct {
	Name           string  `yaml:"name"`
	Width          float64 `yaml:"width"`
	InitialEndX    float64 `yaml:"initial_end_x"`
	SpawnY         float64 `yaml:"spawn_y"`
	JitterMin      float64 `yaml:"jitter_min"`
	JitterMax      float64 `yaml:"jitter_max"`
	ScrollDuration float64 `yaml:"scroll_duration"`
	WaveDelay      float64 `yaml:"wave_delay"`
	TickRate       float64 `yaml:"tick_rate"`
	Seed           int64   `yaml:"seed"`
}

// DefaultStage is used when stage.yaml is missing fields.
func DefaultStage() StageSpec {
	return StageSpec{
		Name:           "stage",
		Width:          20,
		InitialEndX:    0,
		SpawnY:         0,
		JitterMin:      -0.5,
		JitterMax:      0.5,
		ScrollDuration: 1.5,
		WaveDelay:      1,
		TickRate:       60,
		Seed:           1,
	}
}

// Normalize replaces unusable values with defaults and logs each fix.
func (s StageSpec) Normalize() StageSpec {
	def := DefaultStage()
	if !(s.Width > 0) {
		log.Printf("prefabs: stage width %v, using %v", s.Width, def.Width)
		s.Width = def.Width
	}
	if s.JitterMin > s.JitterMax {
		s.JitterMin, s.JitterMax = s.JitterMax, s.JitterMin
	}
	if s.ScrollDuration < 0 {
		s.ScrollDuration = 0
	}
	if s.WaveDelay < 0 {
		s.WaveDelay = 0
	}
	if !(s.TickRate > 0) {
		log.Printf("prefabs: tick rate %v, using %v", s.TickRate, def.TickRate)
		s.TickRate = def.TickRate
	}
	if s.Name == "" {
		s.Name = def.Name
	}
	return s
}

func LoadStageSpec() (StageSpec, error) {
	spec, err := LoadSpec[StageSpec]("stage.yaml")
	if err != nil {
		return DefaultStage(), err
	}
	return spec.Normalize(), nil
}

// ActorSpec describes how an actor kind is instantiated.
type ActorSpec struct {
	Name      string        `yaml:"name"`
	Transform TransformSpec `yaml:"transform"`
	Collider  ColliderSpec  `yaml:"collider"`
	Animation AnimationSpec `yaml:"animation"`
}

func LoadActorSpec(filename string) (ActorSpec, error) {
	return LoadSpec[ActorSpec](filename)
}

type TransformSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type ColliderSpec struct {
	Radius float64 `yaml:"radius"`
}

type AnimationSpec struct {
	Defs map[string]AnimationDefSpec `yaml:"defs"`
}

type AnimationDefSpec struct {
	FrameCount int     `yaml:"frame_count"`
	FPS        float64 `yaml:"fps"`
	Loop       bool    `yaml:"loop"`
}

// Length returns the playback length of the named clip in seconds.
func (a AnimationSpec) Length(name string) (float64, bool) {
	def, ok := a.Defs[name]
	if !ok || def.FrameCount <= 0 || !(def.FPS > 0) {
		return 0, false
	}
	return float64(def.FrameCount) / def.FPS, true
}
