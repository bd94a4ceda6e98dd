package component

import (
	"fmt"
	"math"
)

// StatBlock is the resolved set of combat numbers for one actor.
type StatBlock struct {
	AttackDamage       float64
	AttackInterval     float64 // seconds per attack
	AttackRange        float64
	CriticalChance     float64 // [0, 1]
	CriticalMultiplier float64 // >= 1
	MaxHealth          float64
	MoveSpeed          float64
}

// Validate reports the first broken invariant.
func (s StatBlock) Validate() error {
	switch {
	case !(s.AttackInterval > 0) || math.IsInf(s.AttackInterval, 0):
		return fmt.Errorf("attack interval %v must be positive", s.AttackInterval)
	case !(s.CriticalChance >= 0 && s.CriticalChance <= 1):
		return fmt.Errorf("critical chance %v outside [0, 1]", s.CriticalChance)
	case !(s.CriticalMultiplier >= 1):
		return fmt.Errorf("critical multiplier %v below 1", s.CriticalMultiplier)
	case !(s.AttackRange >= 0):
		return fmt.Errorf("attack range %v is negative", s.AttackRange)
	}
	return nil
}

// Clamped returns s with every invariant enforced. fallback supplies the
// attack interval when s has none.
func (s StatBlock) Clamped(fallback StatBlock) StatBlock {
	if !(s.AttackInterval > 0) || math.IsInf(s.AttackInterval, 0) {
		s.AttackInterval = fallback.AttackInterval
	}
	if !(s.CriticalChance >= 0) {
		s.CriticalChance = 0
	}
	if s.CriticalChance > 1 {
		s.CriticalChance = 1
	}
	if !(s.CriticalMultiplier >= 1) {
		s.CriticalMultiplier = 1
	}
	if !(s.AttackRange >= 0) {
		s.AttackRange = 0
	}
	if !(s.AttackDamage >= 0) {
		s.AttackDamage = 0
	}
	if !(s.MoveSpeed >= 0) {
		s.MoveSpeed = 0
	}
	return s
}

// Roll returns the damage of one attack. critical is decided by comparing
// roll, a uniform sample in [0, 1), against CriticalChance.
func (s StatBlock) Roll(roll float64) (damage float64, critical bool) {
	critical = roll < s.CriticalChance
	damage = s.AttackDamage
	if critical {
		damage *= s.CriticalMultiplier
	}
	return damage, critical
}
