package rng

import (
	"math"
	"testing"
)

func TestRNG_Deterministic(t *testing.T) {
	rng1 := New(42)
	rng2 := New(42)

	for i := 0; i < 20; i++ {
		a := rng1.Roll(6)
		b := rng2.Roll(6)
		if a != b {
			t.Fatalf("roll %d: got %d and %d from same seed", i, a, b)
		}
	}
}

func TestRNG_Roll_Range(t *testing.T) {
	g := New(99)

	for i := 0; i < 1000; i++ {
		r := g.Roll(6)
		if r < 1 || r > 6 {
			t.Fatalf("roll out of range [1,6]: got %d", r)
		}
	}
}

func TestRNG_Roll_NonPositiveDoesNotDraw(t *testing.T) {
	g := New(1)
	if r := g.Roll(0); r != 0 {
		t.Fatalf("Roll(0) = %d, want 0", r)
	}
	if g.Position() != 0 {
		t.Fatalf("Roll(0) advanced the stream to %d", g.Position())
	}
}

func TestRNG_Range_Inclusive(t *testing.T) {
	g := New(7)
	seen := map[int64]bool{}
	for i := 0; i < 500; i++ {
		v := g.Range(3, 5)
		if v < 3 || v > 5 {
			t.Fatalf("Range(3,5) out of bounds: %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected all of 3..5, saw %v", seen)
	}
	if v := g.Range(9, 9); v != 9 {
		t.Errorf("Range(9,9) = %d", v)
	}
	if v := g.Range(5, 3); v < 3 || v > 5 {
		t.Errorf("reversed Range out of bounds: %d", v)
	}
}

func TestRNG_WeightedSelect_Deterministic(t *testing.T) {
	rng1 := New(42)
	rng2 := New(42)
	weights := []int{70, 20, 10}

	for i := 0; i < 20; i++ {
		a := rng1.WeightedSelect(weights)
		b := rng2.WeightedSelect(weights)
		if a != b {
			t.Fatalf("selection %d: got %d and %d from same seed", i, a, b)
		}
	}
}

func TestRNG_WeightedSelect_Distribution(t *testing.T) {
	g := New(12345)
	weights := []int{70, 20, 10}
	counts := [3]int{}

	const trials = 10000
	for i := 0; i < trials; i++ {
		idx := g.WeightedSelect(weights)
		if idx < 0 || idx > 2 {
			t.Fatalf("index out of range: %d", idx)
		}
		counts[idx]++
	}

	if counts[0] < 6000 || counts[0] > 8000 {
		t.Errorf("expected ~7000 for weight 70, got %d", counts[0])
	}
	if counts[1] < 1000 || counts[1] > 3000 {
		t.Errorf("expected ~2000 for weight 20, got %d", counts[1])
	}
	if counts[2] < 200 || counts[2] > 1800 {
		t.Errorf("expected ~1000 for weight 10, got %d", counts[2])
	}
}

func TestRNG_WeightedSelect_SkipsZeroWeights(t *testing.T) {
	g := New(3)
	for i := 0; i < 200; i++ {
		if idx := g.WeightedSelect([]int{0, 5, 0}); idx != 1 {
			t.Fatalf("expected index 1, got %d", idx)
		}
	}
	if idx := g.WeightedSelect([]int{0, 0}); idx != -1 {
		t.Fatalf("all-zero weights should return -1, got %d", idx)
	}
}

func TestRNG_Restore_ContinuesStream(t *testing.T) {
	orig := New(2024)
	orig.Roll(6)
	orig.WeightedSelect([]int{1, 2, 3})
	orig.Shuffle(10, func(i, j int) {})
	orig.Range(1, 100)

	restored := Restore(2024, orig.Position())
	if restored.Position() != orig.Position() {
		t.Fatalf("position %d, want %d", restored.Position(), orig.Position())
	}
	for i := 0; i < 50; i++ {
		a := orig.Roll(1000)
		b := restored.Roll(1000)
		if a != b {
			t.Fatalf("draw %d diverged after restore: %d vs %d", i, a, b)
		}
	}
}

func TestRNG_Position_CountsDraws(t *testing.T) {
	g := New(5)
	if g.Position() != 0 {
		t.Fatalf("fresh RNG position %d", g.Position())
	}
	g.Roll(4)
	if g.Position() != 1 {
		t.Errorf("after one roll position %d, want 1", g.Position())
	}
	if g.Seed() != 5 {
		t.Errorf("seed %d", g.Seed())
	}
}

func TestRNG_Range_ExtremeBounds(t *testing.T) {
	g := New(11)
	cases := []struct{ lo, hi int64 }{
		{math.MinInt64, math.MaxInt64},
		{-5e18, 5e18},
		{math.MaxInt64, -1},
		{0, math.MaxInt64},
	}
	for _, c := range cases {
		for i := 0; i < 100; i++ {
			v := g.Range(c.lo, c.hi)
			lo, hi := min(c.lo, c.hi), max(c.lo, c.hi)
			if v < lo || v > hi {
				t.Fatalf("Range(%d, %d) = %d out of bounds", c.lo, c.hi, v)
			}
		}
	}
	if g.Position() != 400 {
		t.Errorf("position %d, want one draw per call", g.Position())
	}
}
