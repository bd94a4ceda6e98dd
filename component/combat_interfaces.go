package component

// Roller yields uniform samples in [0, 1). *rand.Rand satisfies it.
type Roller interface {
	Float64() float64
}

// FixedRoll is a Roller that always returns the same sample.
type FixedRoll float64

func (f FixedRoll) Float64() float64 { return float64(f) }
