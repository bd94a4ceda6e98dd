package prefabs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadBundledSpecs(t *testing.T) {
	stage, err := LoadStageSpec()
	if err != nil {
		t.Fatalf("LoadStageSpec: %v", err)
	}
	if stage.Width != 20 || stage.TickRate != 60 || stage.JitterMin > stage.JitterMax {
		t.Fatalf("stage = %+v", stage)
	}

	for _, name := range []string{"player.yaml", "enemy.yaml"} {
		spec, err := LoadActorSpec(name)
		if err != nil {
			t.Fatalf("LoadActorSpec(%s): %v", name, err)
		}
		if got, ok := spec.Animation.Length("attack"); !ok || got != 0.5 {
			t.Fatalf("%s attack length = %v, %v", name, got, ok)
		}
		if spec.Collider.Radius <= 0 {
			t.Fatalf("%s radius = %v", name, spec.Collider.Radius)
		}
	}

	if _, err := LoadScript("autoplay.tengo"); err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	if _, err := LoadActorSpec("missing.yaml"); err == nil {
		t.Fatalf("expected error for missing spec")
	}
}

func TestTableFiles(t *testing.T) {
	files, err := TableFiles()
	if err != nil {
		t.Fatalf("TableFiles: %v", err)
	}
	if len(files) != 6 {
		t.Fatalf("files = %v", files)
	}
	for _, f := range files {
		if _, err := Load(f); err != nil {
			t.Fatalf("Load(%s): %v", f, err)
		}
	}
}

func TestAnimationLength(t *testing.T) {
	a := AnimationSpec{Defs: map[string]AnimationDefSpec{
		"attack": {FrameCount: 10, FPS: 20},
		"broken": {FrameCount: 4},
	}}
	if got, ok := a.Length("attack"); !ok || got != 0.5 {
		t.Fatalf("attack = %v, %v", got, ok)
	}
	if _, ok := a.Length("broken"); ok {
		t.Fatalf("zero fps clip reported a length")
	}
	if _, ok := a.Length("none"); ok {
		t.Fatalf("missing clip reported a length")
	}
}

func TestStageNormalize(t *testing.T) {
	s := StageSpec{Width: -1, JitterMin: 1, JitterMax: -1, WaveDelay: -3}.Normalize()
	if s.Width != DefaultStage().Width || s.JitterMin != -1 || s.JitterMax != 1 || s.WaveDelay != 0 || s.TickRate != 60 {
		t.Fatalf("normalized = %+v", s)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want FileKind
	}{
		{"prefabs/stage.yaml", FileSpec},
		{"prefabs/tables/WaveInfo.yaml", FileTable},
		{"data/EnemyStats.CSV", FileTable},
		{"prefabs/scripts/autoplay.tengo", FileScript},
		{"README.md", FileOther},
	}
	for _, tc := range tests {
		if got := Classify(tc.path); got != tc.want {
			t.Fatalf("Classify(%s) = %d, want %d", tc.path, got, tc.want)
		}
	}
}

func TestWatcherReportsTableWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	path := filepath.Join(dir, "Revolver.csv")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("name,revolverBaseDamage\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Events:
		if got != path {
			t.Fatalf("event for %s, want %s", got, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no event for %s", path)
	}
}
