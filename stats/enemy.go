package stats

import (
	"fmt"
	"log"

	"github.com/Kuewon/Cliunt-sub000/component"
	"github.com/Kuewon/Cliunt-sub000/tables"
)

// Multipliers scale an enemy's table stats for one wave.
type Multipliers struct {
	Health      float64
	Attack      float64
	AttackSpeed float64
}

// Unscaled multiplies by one.
var Unscaled = Multipliers{Health: 1, Attack: 1, AttackSpeed: 1}

// EnemyProfile is the resolved spawn data of one enemy.
type EnemyProfile struct {
	Index        int
	Name         string
	Stats        component.StatBlock
	DropGoldBase int
}

// ResolveEnemy reads EnemyStats[index] and applies m. Health and attack
// damage are multiplied; the attack interval is 1/(speed*m.AttackSpeed);
// move speed, range and gold drop are copied unscaled. A missing row yields
// EnemyDefaults scaled the same way.
func (r *Resolver) ResolveEnemy(index int, m Multipliers) EnemyProfile {
	p := EnemyProfile{Index: index, Name: fmt.Sprintf("enemy%d", index), Stats: EnemyDefaults()}
	speed := 1 / p.Stats.AttackInterval

	row, err := r.store.Row(tables.EnemyStats, index)
	if err != nil {
		r.store.WarnOnce(fmt.Sprintf("stats:enemy:%d", index), "stats: enemy %d uses defaults: %v", index, err)
	} else {
		var problems []error
		read := func(col string, dst *float64) {
			v, err := row.Float(col)
			if err != nil {
				problems = append(problems, fmt.Errorf("stats: %s[%d].%s: %w", tables.EnemyStats, index, col, err))
				return
			}
			*dst = v
		}
		if name, err := row.String(tables.ColName); err == nil && name != "" {
			p.Name = name
		}
		read(tables.ColBaseHealth, &p.Stats.MaxHealth)
		read(tables.ColBaseAttackDamage, &p.Stats.AttackDamage)
		read(tables.ColBaseAttackSpeed, &speed)
		read(tables.ColMoveSpeed, &p.Stats.MoveSpeed)
		read(tables.ColAttackRange, &p.Stats.AttackRange)
		read(tables.ColCriticalChance, &p.Stats.CriticalChance)
		read(tables.ColCriticalDamageMultiplier, &p.Stats.CriticalMultiplier)
		if gold, err := row.Int(tables.ColDropGoldBase); err == nil {
			p.DropGoldBase = int(gold)
		} else {
			problems = append(problems, fmt.Errorf("stats: %s[%d].%s: %w", tables.EnemyStats, index, tables.ColDropGoldBase, err))
		}
		for _, e := range problems {
			log.Printf("%v", e)
		}
	}

	fallback := EnemyDefaults()
	p.Stats.MaxHealth *= m.Health
	p.Stats.AttackDamage *= m.Attack
	if interval, err := Interval(speed, m.AttackSpeed); err != nil {
		log.Printf("stats: enemy %d: %v, keeping %.2fs", index, err, fallback.AttackInterval)
		p.Stats.AttackInterval = fallback.AttackInterval
	} else {
		p.Stats.AttackInterval = interval
	}
	// enemies without a critical column never crit
	if p.Stats.CriticalMultiplier == 0 {
		p.Stats.CriticalMultiplier = 1
	}
	if err := p.Stats.Validate(); err != nil {
		log.Printf("stats: enemy %d: %v", index, err)
		p.Stats = p.Stats.Clamped(fallback)
	}
	if !(p.Stats.MaxHealth > 0) {
		log.Printf("stats: enemy %d health %v, using 1", index, p.Stats.MaxHealth)
		p.Stats.MaxHealth = 1
	}
	return p
}
