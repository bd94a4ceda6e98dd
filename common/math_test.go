package common

import "testing"

func TestClamp(t *testing.T) {
	cases := []struct {
		name      string
		v, lo, hi float64
		want      float64
	}{
		{"below", -1, 0, 1, 0},
		{"inside", 0.25, 0, 1, 0.25},
		{"above", 7, 0, 1, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Clamp(c.v, c.lo, c.hi); got != c.want {
				t.Fatalf("Clamp(%v) = %v, want %v", c.v, got, c.want)
			}
		})
	}
}

func TestMoveTowards(t *testing.T) {
	start := Vec2{X: 10}
	got := start.MoveTowards(Vec2{}, 4)
	if got.X != 6 || got.Y != 0 {
		t.Fatalf("expected (6,0), got %+v", got)
	}
	if got := start.MoveTowards(Vec2{X: 9}, 4); got.X != 9 {
		t.Fatalf("overshoot must snap to target, got %+v", got)
	}
}
