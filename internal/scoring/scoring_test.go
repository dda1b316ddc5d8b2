package scoring

import (
	"testing"
	"time"
)

func TestComputeScorePinnedValues(t *testing.T) {
	s := ComputeScore(10000, 4, 1)
	if s.Base != 140 || s.SpeedBonus != 0 || s.Total != 140 {
		t.Fatalf("unexpected score: %+v", s)
	}
	if got := ComputeScore(0, 4, 1).SpeedBonus; got != 150 {
		t.Fatalf("expected max speed bonus 150, got %d", got)
	}
}

func TestComputeScoreMultiplierScales(t *testing.T) {
	single := ComputeScore(1000, 4, 1)
	double := ComputeScore(1000, 4, 2)
	if double.Total != 2*single.Total {
		t.Fatalf("expected %d, got %d", 2*single.Total, double.Total)
	}
}

func TestStreakMultiplierSteps(t *testing.T) {
	prev := 0
	for streak := 0; streak <= 30; streak++ {
		m := StreakMultiplier(streak)
		if m < 1 || m > 4 {
			t.Fatalf("multiplier out of range at streak %d: %d", streak, m)
		}
		if m < prev {
			t.Fatalf("multiplier decreased at streak %d: %d -> %d", streak, prev, m)
		}
		prev = m
	}
	cases := map[int]int{0: 1, 3: 1, 4: 2, 7: 2, 8: 3, 11: 3, 12: 4, 100: 4}
	for streak, want := range cases {
		if got := StreakMultiplier(streak); got != want {
			t.Fatalf("streak %d: expected %d, got %d", streak, want, got)
		}
	}
}

func TestAccuracy(t *testing.T) {
	if got := Accuracy(0, 0); got != 100 {
		t.Fatalf("empty sample: expected 100, got %v", got)
	}
	if got := Accuracy(7, 10); got != 70 {
		t.Fatalf("7/10: expected 70, got %v", got)
	}
	if got := Accuracy(1, 3); got != 33.3 {
		t.Fatalf("1/3: expected 33.3, got %v", got)
	}
}

func TestDailySeedStableWithinDay(t *testing.T) {
	morning := time.Date(2025, 6, 14, 0, 0, 1, 0, time.UTC)
	night := time.Date(2025, 6, 14, 23, 59, 59, 0, time.UTC)
	next := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	if DailySeed(morning) != DailySeed(night) {
		t.Fatalf("seed changed within the same UTC day")
	}
	if DailySeed(morning) == DailySeed(next) {
		t.Fatalf("seed did not change across the day boundary")
	}
	if DailySeed(morning) < 0 {
		t.Fatalf("seed must be non-negative")
	}
}

func TestDailySeedUsesUTC(t *testing.T) {
	east := time.FixedZone("E10", 10*3600)
	// 01:00 on the 15th in E10 is still the 14th in UTC.
	local := time.Date(2025, 6, 15, 1, 0, 0, 0, east)
	utc := time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)
	if DailySeed(local) != DailySeed(utc) {
		t.Fatalf("seed must depend on the UTC date only")
	}
}

func TestSeededRandDeterministic(t *testing.T) {
	a := NewSeededRand(1234)
	b := NewSeededRand(1234)
	for i := 0; i < 20; i++ {
		av, bv := a.Float64(), b.Float64()
		if av != bv {
			t.Fatalf("draw %d diverged: %v vs %v", i, av, bv)
		}
		if av < 0 || av >= 1 {
			t.Fatalf("draw %d out of range: %v", i, av)
		}
	}
}

func TestSeededRandSeedsDiverge(t *testing.T) {
	a := NewSeededRand(1)
	b := NewSeededRand(2)
	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			return
		}
	}
	t.Fatalf("different seeds produced identical prefixes")
}

func TestSeededRandShuffleStable(t *testing.T) {
	perm := func(seed int64) []int {
		vals := []int{0, 1, 2, 3, 4, 5, 6, 7}
		NewSeededRand(seed).Shuffle(len(vals), func(i, j int) {
			vals[i], vals[j] = vals[j], vals[i]
		})
		return vals
	}
	first := perm(42)
	second := perm(42)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed produced different shuffles: %v vs %v", first, second)
		}
	}
}
