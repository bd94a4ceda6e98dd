package system

import (
	"github.com/Kuewon/Cliunt-sub000/common"
	"github.com/Kuewon/Cliunt-sub000/component"
	"github.com/Kuewon/Cliunt-sub000/ecs"
)

// Notifications published on the world bus.
const (
	EventDamageApplied    ecs.EventType = "damage_applied"
	EventHitFlash         ecs.EventType = "hit_flash"
	EventActorDied        ecs.EventType = "actor_died"
	EventActorSpawned     ecs.EventType = "actor_spawned"
	EventAttackTriggered  ecs.EventType = "attack_triggered"
	EventAttackFinished   ecs.EventType = "attack_finished"
	EventAttackHit        ecs.EventType = "attack_hit"
	EventWaveStarted      ecs.EventType = "wave_started"
	EventWaveCompleted    ecs.EventType = "wave_completed"
	EventStageChanged     ecs.EventType = "stage_changed"
	EventStageCleared     ecs.EventType = "stage_cleared"
	EventAllWavesComplete ecs.EventType = "all_waves_complete"
	EventRewardGranted    ecs.EventType = "reward_granted"
	EventEquipmentChanged ecs.EventType = "equipment_changed"
	EventTablesReloaded   ecs.EventType = "tables_reloaded"

	eventDespawn ecs.EventType = "despawn"
)

type DamageApplied struct {
	Attacker  ecs.Entity
	Target    ecs.Entity
	Amount    float64
	Critical  bool
	Remaining float64
}

type HitFlash struct {
	Entity ecs.Entity
}

type ActorDied struct {
	Entity     ecs.Entity
	Faction    component.Faction
	EnemyIndex int
	Reward     int
}

type ActorSpawned struct {
	Entity   ecs.Entity
	Kind     component.ActorKind
	Name     string
	Position common.Vec2
}

// AttackHit is published for every target an attack reaches, before its
// damage is applied.
type AttackHit struct {
	Attacker ecs.Entity
	Target   ecs.Entity
	Damage   float64
	Critical bool
}

type AttackTriggered struct {
	Entity ecs.Entity
	Manual bool
}

type AttackFinished struct {
	Entity ecs.Entity
	Manual bool
}

type WaveStarted struct {
	Stage   int
	Wave    int
	Enemies int
}

type WaveCompleted struct {
	Stage   int
	Wave    int
	Spawned int
}

type StageChanged struct {
	Stage     int
	StageEndX float64
}

type StageCleared struct {
	Stage  int
	Reward int
}

type AllWavesComplete struct {
	Waves int
}

// Currency names a wallet balance.
type Currency string

const (
	Gold     Currency = "gold"
	Diamonds Currency = "diamonds"
)

type RewardGranted struct {
	Currency Currency
	Amount   int
	Total    int
}

type EquipmentChanged struct {
	Slot      component.Slot
	Index     int
	Selection component.Selection
}

type TablesReloaded struct {
	Tables []string
}

type despawn struct {
	Entity ecs.Entity
}
