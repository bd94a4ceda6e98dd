package tables

// Table names of the game data sheets.
const (
	PlayerStats = "PlayerStats"
	EnemyStats  = "EnemyStats"
	WaveInfo    = "WaveInfo"
	Revolver    = "Revolver"
	Cylinder    = "Cylinder"
	Bullet      = "Bullet"
)

// Column names shared by the game sheets.
const (
	ColName                     = "name"
	ColBaseHealth               = "baseHealth"
	ColBaseAttackDamage         = "baseAttackDamage"
	ColBaseAttackSpeed          = "baseAttackSpeed"
	ColAttackRange              = "attackRange"
	ColCriticalChance           = "criticalChance"
	ColCriticalDamageMultiplier = "criticalDamageMultiplier"
	ColDropGoldMultiplier       = "dropGoldMultiplier"
	ColMoveSpeed                = "moveSpeed"
	ColDropGoldBase             = "dropGoldBase"

	ColStageIndex            = "stageIndex"
	ColEnemyIndexSequence    = "enemyIndexSequence"
	ColHealthMultiplier      = "healthMultiplier"
	ColAttackMultiplier      = "attackMultiplier"
	ColAttackSpeedMultiplier = "attackSpeedMultiplier"
	ColSpawnInterval         = "spawnInterval"
	ColClearReward           = "clearReward"

	ColRevolverBaseDamage = "revolverBaseDamage"
	ColCapacity           = "capacity"
	ColBulletDamage       = "bulletDamage"
)

// GameSchemas returns the schemas of every sheet the simulation reads.
func GameSchemas() *Registry {
	return NewRegistry(
		NewSchema(PlayerStats,
			Column{ColBaseHealth, KindFloat},
			Column{ColBaseAttackDamage, KindFloat},
			Column{ColBaseAttackSpeed, KindFloat},
			Column{ColAttackRange, KindFloat},
			Column{ColCriticalChance, KindFloat},
			Column{ColCriticalDamageMultiplier, KindFloat},
			Column{ColDropGoldMultiplier, KindFloat},
		),
		NewSchema(EnemyStats,
			Column{ColName, KindString},
			Column{ColBaseHealth, KindFloat},
			Column{ColBaseAttackDamage, KindFloat},
			Column{ColBaseAttackSpeed, KindFloat},
			Column{ColMoveSpeed, KindFloat},
			Column{ColAttackRange, KindFloat},
			Column{ColCriticalChance, KindFloat},
			Column{ColCriticalDamageMultiplier, KindFloat},
			Column{ColDropGoldBase, KindInt},
		),
		NewSchema(WaveInfo,
			Column{ColStageIndex, KindInt},
			Column{ColEnemyIndexSequence, KindIntArray},
			Column{ColHealthMultiplier, KindFloat},
			Column{ColAttackMultiplier, KindFloat},
			Column{ColAttackSpeedMultiplier, KindFloat},
			Column{ColSpawnInterval, KindFloat},
			Column{ColClearReward, KindInt},
		),
		NewSchema(Revolver,
			Column{ColName, KindString},
			Column{ColRevolverBaseDamage, KindFloat},
		),
		NewSchema(Cylinder,
			Column{ColName, KindString},
			Column{ColCapacity, KindInt},
		),
		NewSchema(Bullet,
			Column{ColName, KindString},
			Column{ColBulletDamage, KindFloat},
		),
	)
}
