package rules

import (
	"math"
	"testing"
)

func TestGeneratorCost_StrictlyIncreasing(t *testing.T) {
	cases := []struct {
		base, growth float64
	}{
		{10, 1.15},
		{100, 1.15},
		{1100, 1.14},
		{12000, 1.13},
	}

	for _, c := range cases {
		prev := GeneratorCost(c.base, c.growth, 0)
		for owned := 1; owned < 200; owned++ {
			cost := GeneratorCost(c.base, c.growth, owned)
			if cost <= prev {
				t.Fatalf("base=%v growth=%v: cost(%d)=%v not greater than cost(%d)=%v", c.base, c.growth, owned, cost, owned-1, prev)
			}
			want := math.Floor(c.base * math.Pow(c.growth, float64(owned)))
			if cost != want {
				t.Fatalf("cost(%d)=%v, want %v", owned, cost, want)
			}
			prev = cost
		}
	}
}

func TestGeneratorCost_FirstSteps(t *testing.T) {
	if got := GeneratorCost(10, 1.15, 0); got != 10 {
		t.Errorf("expected 10, got %v", got)
	}
	if got := GeneratorCost(10, 1.15, 1); got != 11 {
		t.Errorf("expected 11, got %v", got)
	}
}

func TestPrestigeCurves(t *testing.T) {
	if PrestigeThreshold(0) != 1000 {
		t.Errorf("level 0 threshold should be 1000, got %v", PrestigeThreshold(0))
	}
	if PrestigeThreshold(1) != 10000 {
		t.Errorf("level 1 threshold should be 10000, got %v", PrestigeThreshold(1))
	}
	if PrestigeMultiplier(0) != 1 {
		t.Errorf("level 0 multiplier should be 1, got %v", PrestigeMultiplier(0))
	}
	if math.Abs(PrestigeMultiplier(2)-1.5625) > 1e-12 {
		t.Errorf("level 2 multiplier should be 1.5625, got %v", PrestigeMultiplier(2))
	}
}

func TestClampStability(t *testing.T) {
	if ClampStability(-5) != 0 || ClampStability(120) != 100 || ClampStability(42) != 42 {
		t.Error("stability must clamp to [0,100]")
	}
}
