package tables

import (
	"errors"
	"sync"
	"testing"
)

func playerRows(t *testing.T, damage float64) []Row {
	t.Helper()
	s, _ := GameSchemas().Schema(PlayerStats)
	return []Row{s.MustRow(map[string]Cell{
		ColBaseAttackDamage: FloatCell(damage),
		ColBaseAttackSpeed:  FloatCell(1),
	})}
}

func TestStoreLookup(t *testing.T) {
	s := NewStore()
	if !s.SetTable(PlayerStats, playerRows(t, 10)) {
		t.Fatalf("SetTable rejected valid rows")
	}

	c, err := s.Value(PlayerStats, 0, ColBaseAttackDamage)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v, _ := c.Float(); v != 10 {
		t.Fatalf("damage = %v, want 10", v)
	}
	if c, _ := s.Value(PlayerStats, 0, ColCriticalChance); c.String() != "0" {
		t.Fatalf("missing column should read zero, got %s", c)
	}

	tests := []struct {
		name  string
		table string
		index int
		key   string
	}{
		{"missing table", EnemyStats, 0, ColName},
		{"index past end", PlayerStats, 1, ColBaseHealth},
		{"negative index", PlayerStats, -1, ColBaseHealth},
		{"missing column", PlayerStats, 0, "nope"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Value(tc.table, tc.index, tc.key); !errors.Is(err, ErrNotFound) {
				t.Fatalf("err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStoreRejectsBadTables(t *testing.T) {
	s := NewStore()
	if s.SetTable(PlayerStats, nil) {
		t.Fatalf("empty table accepted")
	}
	if s.SetTable(EnemyStats, playerRows(t, 1)) {
		t.Fatalf("rows of another schema accepted")
	}
	if s.Has(EnemyStats) || s.Has(PlayerStats) {
		t.Fatalf("rejected tables must not be stored")
	}

	s.SetTable(PlayerStats, playerRows(t, 5))
	s.SetTable(PlayerStats, nil)
	if v, _ := s.Value(PlayerStats, 0, ColBaseAttackDamage); v.String() != "5" {
		t.Fatalf("previous table lost after rejected update")
	}
}

func TestStoreReplaceIsAtomic(t *testing.T) {
	s := NewStore()
	s.SetTable(PlayerStats, playerRows(t, 1))
	before, _ := s.Table(PlayerStats)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			s.SetTable(PlayerStats, playerRows(t, float64(i+2)))
		}
	}()
	for i := 0; i < 100; i++ {
		tbl, err := s.Table(PlayerStats)
		if err != nil || tbl.Len() != 1 {
			t.Fatalf("reader saw incomplete table: %v", err)
		}
	}
	wg.Wait()

	if before.Len() != 1 {
		t.Fatalf("old snapshot mutated")
	}
	if v, _ := before.rows[0].Float(ColBaseAttackDamage); v != 1 {
		t.Fatalf("old snapshot value = %v, want 1", v)
	}
	if got := s.Names(); len(got) != 1 || got[0] != PlayerStats {
		t.Fatalf("Names = %v", got)
	}
}

func TestWarnOncePerStore(t *testing.T) {
	a, b := NewStore(), NewStore()
	tests := []struct {
		name  string
		store *Store
		key   string
		want  bool
	}{
		{"first_a", a, "stats:enemy:3", true},
		{"repeat_a", a, "stats:enemy:3", false},
		{"other_key_a", a, "waves", true},
		{"first_b", b, "stats:enemy:3", true},
		{"repeat_b", b, "stats:enemy:3", false},
		{"nil_store_always_logs", nil, "waves", true},
		{"nil_store_again", nil, "waves", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.store.WarnOnce(tc.key, "tables: test warning %s", tc.key); got != tc.want {
				t.Fatalf("WarnOnce(%q) = %v, want %v", tc.key, got, tc.want)
			}
		})
	}

	a.ResetWarnings()
	if !a.WarnOnce("waves", "tables: test warning") {
		t.Fatalf("warning suppressed after reset")
	}
	if b.WarnOnce("stats:enemy:3", "tables: test warning") {
		t.Fatalf("reset of one store leaked into another")
	}
}
