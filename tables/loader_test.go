package tables

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const waveSheet = `
table: WaveInfo
rows:
  - stageIndex: 0
    enemyIndexSequence: [0, 0, 1]
    healthMultiplier: 1.5
    attackMultiplier: 1
    attackSpeedMultiplier: 1
    spawnInterval: 0.5
    clearReward: 100
  - stageIndex: 0
    enemyIndexSequence: "1,1"
    healthMultiplier: lots
    spawnInterval: 1
`

func TestLoadYAML(t *testing.T) {
	store := NewStore()
	l := NewLoader(store, GameSchemas())

	name, err := l.LoadYAML([]byte(waveSheet))
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if name != WaveInfo {
		t.Fatalf("name = %q", name)
	}

	r, err := store.Row(WaveInfo, 0)
	if err != nil {
		t.Fatalf("Row: %v", err)
	}
	seq, _ := r.Ints(ColEnemyIndexSequence)
	if len(seq) != 3 || seq[2] != 1 {
		t.Fatalf("sequence = %v", seq)
	}
	if reward, _ := r.Int(ColClearReward); reward != 100 {
		t.Fatalf("reward = %d", reward)
	}

	r, _ = store.Row(WaveInfo, 1)
	if _, err := r.Float(ColHealthMultiplier); !errors.Is(err, ErrInvalidNumeric) {
		t.Fatalf("bad cell err = %v", err)
	}
	if v, err := r.Float(ColSpawnInterval); err != nil || v != 1 {
		t.Fatalf("good cell in bad row = %v, %v", v, err)
	}
}

func TestLoadYAMLErrors(t *testing.T) {
	l := NewLoader(NewStore(), GameSchemas())
	tests := []struct {
		name string
		data string
	}{
		{"not yaml", "table: [unterminated"},
		{"no table", "rows: []"},
		{"unknown table", "table: Nope\nrows:\n  - a: 1\n"},
		{"no rows", "table: Bullet\nrows: []\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := l.LoadYAML([]byte(tc.data)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadCSV(t *testing.T) {
	store := NewStore()
	l := NewLoader(store, GameSchemas())
	data := "name,baseHealth,baseAttackDamage,baseAttackSpeed,moveSpeed,attackRange,dropGoldBase\n" +
		"Slime,50,5,0.5,40,30,3\n" +
		"Orc,abc,9,1,30,35,8\n"
	if err := l.LoadCSV(EnemyStats, strings.NewReader(data)); err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	r, _ := store.Row(EnemyStats, 0)
	if name, _ := r.String(ColName); name != "Slime" {
		t.Fatalf("name = %q", name)
	}
	if gold, _ := r.Int(ColDropGoldBase); gold != 3 {
		t.Fatalf("gold = %d", gold)
	}
	r, _ = store.Row(EnemyStats, 1)
	if _, err := r.Float(ColBaseHealth); !errors.Is(err, ErrInvalidNumeric) {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Revolver.csv")
	if err := os.WriteFile(path, []byte("name,revolverBaseDamage\nPeacemaker,5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewStore()
	l := NewLoader(store, GameSchemas())
	name, err := l.LoadFile(path)
	if err != nil || name != Revolver {
		t.Fatalf("LoadFile = %q, %v", name, err)
	}
	if _, err := l.LoadFile(filepath.Join(dir, "x.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := l.LoadBytes("x.json", []byte("{}")); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}
