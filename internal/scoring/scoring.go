// Package scoring contains score calculations and the daily seed.
package scoring

import (
	"fmt"
	"math"
	"time"
)

// Score breaks down the points for one completed combo.
type Score struct {
	Base       int
	SpeedBonus int
	Multiplier int
	Total      int
}

// ComputeScore scores a completed combo. Rounding is half-up
// (math.Round) for both the speed bonus and the total.
func ComputeScore(elapsedMs int64, seqLen, multiplier int) Score {
	base := 100 + seqLen*10
	window := float64(2000 + seqLen*500)
	ratio := 1 - float64(elapsedMs)/window
	if ratio < 0 {
		ratio = 0
	}
	bonus := int(math.Round(150 * ratio))
	total := int(math.Round(float64(base+bonus) * float64(multiplier)))
	return Score{
		Base:       base,
		SpeedBonus: bonus,
		Multiplier: multiplier,
		Total:      total,
	}
}

// StreakMultiplier maps a streak to its score multiplier.
func StreakMultiplier(streak int) int {
	switch {
	case streak >= 12:
		return 4
	case streak >= 8:
		return 3
	case streak >= 4:
		return 2
	}
	return 1
}

// Accuracy returns the success percentage with one decimal place.
// An empty sample counts as 100.
func Accuracy(successCount, totalCount int) float64 {
	if totalCount == 0 {
		return 100
	}
	return math.Round(float64(successCount)/float64(totalCount)*1000) / 10
}

// DailySeed derives a deterministic seed from the UTC calendar date.
// The "YYYY-M-D" key runs through a 31x string hash masked to a
// non-negative 31-bit value, so any two instants on the same UTC day
// agree and adjacent days diverge.
func DailySeed(t time.Time) int64 {
	u := t.UTC()
	key := fmt.Sprintf("%d-%d-%d", u.Year(), int(u.Month()), u.Day())
	var h int32
	for _, r := range key {
		h = h*31 + int32(r)
	}
	return int64(h) & 0x7FFFFFFF
}
