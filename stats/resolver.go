// Package stats composes table rows and equipment into combat stat blocks.
package stats

import (
	"errors"
	"fmt"
	"log"

	"github.com/Kuewon/Cliunt-sub000/component"
	"github.com/Kuewon/Cliunt-sub000/tables"
)

// ErrPrecondition reports an input that would break a stat invariant, such
// as a zero attack speed.
var ErrPrecondition = errors.New("stats: precondition violated")

// PlayerDefaults are used until a PlayerStats row is available.
func PlayerDefaults() component.StatBlock {
	return component.StatBlock{
		AttackDamage:       10,
		AttackInterval:     1 / 0.2,
		AttackRange:        1,
		CriticalChance:     0.1,
		CriticalMultiplier: 1.5,
		MaxHealth:          100,
	}
}

// EnemyDefaults are used for enemies whose EnemyStats row is missing.
func EnemyDefaults() component.StatBlock {
	return component.StatBlock{
		AttackDamage:       5,
		AttackInterval:     2,
		AttackRange:        1,
		CriticalChance:     0,
		CriticalMultiplier: 1,
		MaxHealth:          50,
		MoveSpeed:          1,
	}
}

// Base is the table layer of the player's stats, before equipment bonuses.
type Base struct {
	Stats              component.StatBlock
	DropGoldMultiplier float64
}

// NewBase returns the default base layer.
func NewBase() Base {
	return Base{Stats: PlayerDefaults(), DropGoldMultiplier: 1}
}

// ApplyPlayerRow overrides each field of prev that row carries a valid value
// for. Invalid cells and a non-positive attack speed keep the previous value
// and are returned as problems.
func ApplyPlayerRow(prev Base, row tables.Row) (Base, []error) {
	next := prev
	var problems []error
	read := func(col string, dst *float64) {
		v, err := row.Float(col)
		if err != nil {
			problems = append(problems, fmt.Errorf("stats: %s.%s: %w", tables.PlayerStats, col, err))
			return
		}
		*dst = v
	}

	read(tables.ColBaseAttackDamage, &next.Stats.AttackDamage)
	read(tables.ColAttackRange, &next.Stats.AttackRange)
	read(tables.ColCriticalChance, &next.Stats.CriticalChance)
	read(tables.ColCriticalDamageMultiplier, &next.Stats.CriticalMultiplier)
	read(tables.ColBaseHealth, &next.Stats.MaxHealth)
	read(tables.ColDropGoldMultiplier, &next.DropGoldMultiplier)

	if speed, err := row.Float(tables.ColBaseAttackSpeed); err != nil {
		problems = append(problems, fmt.Errorf("stats: %s.%s: %w", tables.PlayerStats, tables.ColBaseAttackSpeed, err))
	} else if interval, err := Interval(speed, 1); err != nil {
		problems = append(problems, err)
	} else {
		next.Stats.AttackInterval = interval
	}

	if !(next.Stats.MaxHealth > 0) {
		problems = append(problems, fmt.Errorf("%w: base health %v", ErrPrecondition, next.Stats.MaxHealth))
		next.Stats.MaxHealth = prev.Stats.MaxHealth
	}
	if !(next.DropGoldMultiplier > 0) {
		next.DropGoldMultiplier = 1
	}
	if err := next.Stats.Validate(); err != nil {
		problems = append(problems, fmt.Errorf("%w: %v", ErrPrecondition, err))
		next.Stats = next.Stats.Clamped(prev.Stats)
	}
	return next, problems
}

// Interval converts attacks per second, scaled by multiplier, into seconds
// per attack.
func Interval(speed, multiplier float64) (float64, error) {
	rate := speed * multiplier
	if !(rate > 0) {
		return 0, fmt.Errorf("%w: attack speed %v x %v", ErrPrecondition, speed, multiplier)
	}
	return 1 / rate, nil
}

// Resolver reads stats from a table store.
type Resolver struct {
	store *tables.Store
}

func NewResolver(store *tables.Store) *Resolver {
	return &Resolver{store: store}
}

// ResolvePlayer recomputes the player's stats. The base layer is rebuilt
// from prev and the PlayerStats row, then the equipped revolver's damage is
// added on top. prev must be a base layer returned by an earlier call (or
// NewBase), never a block with bonuses applied, which keeps resolution
// idempotent.
func (r *Resolver) ResolvePlayer(prev Base, sel component.Selection) (component.StatBlock, Base) {
	base := prev
	row, err := r.store.Row(tables.PlayerStats, 0)
	if err != nil {
		r.store.WarnOnce("stats:"+tables.PlayerStats, "stats: using previous player stats: %v", err)
	} else {
		var problems []error
		base, problems = ApplyPlayerRow(prev, row)
		for _, p := range problems {
			log.Printf("%v", p)
		}
	}

	block := base.Stats
	block.AttackDamage += r.RevolverBonus(sel.Revolver)
	return block, base
}

// RevolverBonus returns the revolverBaseDamage of Revolver[index]. An empty
// slot or a missing row adds nothing.
func (r *Resolver) RevolverBonus(index int) float64 {
	if index == component.Unequipped {
		return 0
	}
	c, err := r.store.Value(tables.Revolver, index, tables.ColRevolverBaseDamage)
	if err != nil {
		r.store.WarnOnce(fmt.Sprintf("stats:revolver:%d", index), "stats: revolver %d adds no damage: %v", index, err)
		return 0
	}
	v, err := c.Float()
	if err != nil {
		log.Printf("stats: revolver %d damage: %v", index, err)
		return 0
	}
	return v
}
