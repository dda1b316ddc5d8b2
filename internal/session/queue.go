package session

import (
	"time"

	"github.com/verte-zerg/combodash/internal/catalog"
	"github.com/verte-zerg/combodash/internal/model"
	"github.com/verte-zerg/combodash/internal/scoring"
)

const (
	freePracticeRepeats = 10
	tripleShuffleCopies = 3
	dailyQueueLength    = 30
)

func shuffled(seqs []model.SequenceDef, rng *scoring.SeededRand) []model.SequenceDef {
	out := make([]model.SequenceDef, len(seqs))
	copy(out, seqs)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

func sourcePool(cfg model.Config) []model.SequenceDef {
	if cfg.Category != "" {
		if pool := catalog.ByCategory(cfg.Category); len(pool) > 0 {
			return pool
		}
	}
	return catalog.All()
}

// buildFreePractice repeats the selected pool ten times, reshuffling
// each repeat so no two passes present the same order.
func buildFreePractice(cfg model.Config, rng *scoring.SeededRand, _ time.Time) []model.SequenceDef {
	pool := sourcePool(cfg)
	out := make([]model.SequenceDef, 0, len(pool)*freePracticeRepeats)
	for i := 0; i < freePracticeRepeats; i++ {
		out = append(out, shuffled(pool, rng)...)
	}
	return out
}

// buildTripleShuffle is the looping-mode queue: three reshuffled passes
// over the full catalog.
func buildTripleShuffle(_ model.Config, rng *scoring.SeededRand, _ time.Time) []model.SequenceDef {
	all := catalog.All()
	out := make([]model.SequenceDef, 0, len(all)*tripleShuffleCopies)
	for i := 0; i < tripleShuffleCopies; i++ {
		out = append(out, shuffled(all, rng)...)
	}
	return out
}

// buildAccuracy draws a fixed-length queue, cycling reshuffled passes
// if the target exceeds the catalog.
func buildAccuracy(cfg model.Config, rng *scoring.SeededRand, _ time.Time) []model.SequenceDef {
	target := cfg.Target
	if target <= 0 {
		target = defaultAccuracyGoal
	}
	out := make([]model.SequenceDef, 0, target)
	for len(out) < target {
		pass := shuffled(catalog.All(), rng)
		need := target - len(out)
		if need < len(pass) {
			pass = pass[:need]
		}
		out = append(out, pass...)
	}
	return out
}

// buildDaily ignores the session rng: the queue order comes from the
// UTC date seed so every player sees the same thirty combos.
func buildDaily(_ model.Config, _ *scoring.SeededRand, now time.Time) []model.SequenceDef {
	rng := scoring.NewSeededRand(scoring.DailySeed(now))
	out := make([]model.SequenceDef, 0, dailyQueueLength)
	for len(out) < dailyQueueLength {
		pass := shuffled(catalog.All(), rng)
		need := dailyQueueLength - len(out)
		if need < len(pass) {
			pass = pass[:need]
		}
		out = append(out, pass...)
	}
	return out
}

// buildSpeedRun is one shuffled pass over everything, no looping.
func buildSpeedRun(_ model.Config, rng *scoring.SeededRand, _ time.Time) []model.SequenceDef {
	return shuffled(catalog.All(), rng)
}

// buildCategory presents one category; an unset or unknown category
// falls back to the full catalog rather than failing.
func buildCategory(cfg model.Config, rng *scoring.SeededRand, _ time.Time) []model.SequenceDef {
	return shuffled(sourcePool(cfg), rng)
}

// buildCustom honors the configured source, shuffle flag, and length.
// An empty resolved pool falls back to the full catalog.
func buildCustom(cfg model.Config, rng *scoring.SeededRand, _ time.Time) []model.SequenceDef {
	c := cfg.Custom
	var pool []model.SequenceDef
	switch c.Source {
	case model.SourceCategory:
		pool = catalog.ByCategory(c.Category)
	case model.SourceTier:
		for _, s := range catalog.All() {
			if s.Tier == c.Tier {
				pool = append(pool, s)
			}
		}
	}
	if len(pool) == 0 {
		pool = catalog.All()
	}

	length := c.QueueLength
	if length <= 0 {
		length = len(pool)
	}
	out := make([]model.SequenceDef, 0, length)
	for len(out) < length {
		pass := make([]model.SequenceDef, len(pool))
		copy(pass, pool)
		if c.Shuffle {
			pass = shuffled(pool, rng)
		}
		need := length - len(out)
		if need < len(pass) {
			pass = pass[:need]
		}
		out = append(out, pass...)
	}
	return out
}
