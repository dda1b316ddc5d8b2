// Package session runs one play session: queue, timers, lives, score.
package session

import (
	"time"

	"github.com/verte-zerg/combodash/internal/model"
	"github.com/verte-zerg/combodash/internal/scoring"
)

// TimerKind selects how a mode's clock behaves.
type TimerKind int

// Timer kinds.
const (
	// TimerOff means the mode has no clock pressure.
	TimerOff TimerKind = iota
	// TimerGlobal counts one budget down across the whole session.
	TimerGlobal
	// TimerWindow counts down per combo and refills on success.
	TimerWindow
	// TimerElapsed counts up; it never ends the session by itself.
	TimerElapsed
)

// Policy captures one mode's rule set from the mode table. Adding a
// mode means adding a Policy, not another branch in the controller.
type Policy struct {
	TimerKind      TimerKind
	InitialTimerMs int64

	Loop        bool
	Lives       int
	ErrorPolicy model.ErrorPolicy
	// PenaltyMs is the cost of a miss under ErrorTimePenalty: endless
	// subtracts it from the running window, speed-run adds it to the
	// final duration.
	PenaltyMs        int64
	PenaltyToElapsed bool

	// ShrinkEveryFiveMs tightens the window limit each time the streak
	// crosses a multiple of five.
	ShrinkEveryFiveMs int64
	FloorMs           int64

	// BossEvery flags every nth combo for double score; BossShrinkMs
	// tightens the window further when a boss combo is presented.
	BossEvery    int
	BossShrinkMs int64

	ScoreMultiplier float64
	HideSequence    bool
	Competitive     bool

	BuildQueue QueueBuilder
}

// QueueBuilder constructs a mode's combo queue from the catalog.
type QueueBuilder func(cfg model.Config, rng *scoring.SeededRand, now time.Time) []model.SequenceDef

// Mode timing constants from the rule table.
const (
	defaultTimeAttackMs = 60000
	survivalStartMs     = 8000
	survivalShrinkMs    = 300
	survivalFloorMs     = 2000
	endlessWindowMs     = 10000
	endlessPenaltyMs    = 3000
	bossRushStartMs     = 10000
	bossRushShrinkMs    = 200
	bossRushFloorMs     = 3000
	bossRushBossShrink  = 500
	speedRunPenaltyMs   = 2000
	quizLives           = 3
	defaultAccuracyGoal = 20
)

// PolicyFor resolves the rule set for a mode. Custom modes derive
// their policy from the user configuration, falling back to safe
// defaults for anything invalid.
func PolicyFor(cfg model.Config) Policy {
	switch cfg.Mode {
	case model.ModeFreePractice:
		return Policy{
			TimerKind:   TimerOff,
			ErrorPolicy: model.ErrorResetStreak,
			BuildQueue:  buildFreePractice,
		}
	case model.ModeTimeAttack:
		ms := cfg.DurationMs
		if ms <= 0 {
			ms = defaultTimeAttackMs
		}
		return Policy{
			TimerKind:      TimerGlobal,
			InitialTimerMs: ms,
			Loop:           true,
			ErrorPolicy:    model.ErrorResetStreak,
			Competitive:    true,
			BuildQueue:     buildTripleShuffle,
		}
	case model.ModeAccuracy:
		return Policy{
			TimerKind:   TimerOff,
			ErrorPolicy: model.ErrorResetStreak,
			Competitive: true,
			BuildQueue:  buildAccuracy,
		}
	case model.ModeSurvival:
		return Policy{
			TimerKind:         TimerWindow,
			InitialTimerMs:    survivalStartMs,
			Loop:              true,
			ErrorPolicy:       model.ErrorEndGame,
			ShrinkEveryFiveMs: survivalShrinkMs,
			FloorMs:           survivalFloorMs,
			Competitive:       true,
			BuildQueue:        buildTripleShuffle,
		}
	case model.ModeQuiz:
		return Policy{
			TimerKind:    TimerOff,
			Loop:         true,
			Lives:        quizLives,
			ErrorPolicy:  model.ErrorLoseLife,
			HideSequence: true,
			Competitive:  true,
			BuildQueue:   buildTripleShuffle,
		}
	case model.ModeDailyChallenge:
		return Policy{
			TimerKind:   TimerOff,
			ErrorPolicy: model.ErrorResetStreak,
			Competitive: true,
			BuildQueue:  buildDaily,
		}
	case model.ModeSpeedRun:
		return Policy{
			TimerKind:        TimerElapsed,
			ErrorPolicy:      model.ErrorTimePenalty,
			PenaltyMs:        speedRunPenaltyMs,
			PenaltyToElapsed: true,
			Competitive:      true,
			BuildQueue:       buildSpeedRun,
		}
	case model.ModeEndless:
		return Policy{
			TimerKind:      TimerWindow,
			InitialTimerMs: endlessWindowMs,
			Loop:           true,
			ErrorPolicy:    model.ErrorTimePenalty,
			PenaltyMs:      endlessPenaltyMs,
			Competitive:    true,
			BuildQueue:     buildTripleShuffle,
		}
	case model.ModeCategoryChallenge:
		return Policy{
			TimerKind:   TimerOff,
			ErrorPolicy: model.ErrorResetStreak,
			Competitive: true,
			BuildQueue:  buildCategory,
		}
	case model.ModeBossRush:
		return Policy{
			TimerKind:         TimerWindow,
			InitialTimerMs:    bossRushStartMs,
			Loop:              true,
			ErrorPolicy:       model.ErrorEndGame,
			ShrinkEveryFiveMs: bossRushShrinkMs,
			FloorMs:           bossRushFloorMs,
			BossEvery:         10,
			BossShrinkMs:      bossRushBossShrink,
			Competitive:       true,
			BuildQueue:        buildTripleShuffle,
		}
	case model.ModeCustom:
		return customPolicy(cfg.Custom)
	}
	// Unknown mode degrades to free practice rather than failing.
	return Policy{
		TimerKind:   TimerOff,
		ErrorPolicy: model.ErrorResetStreak,
		BuildQueue:  buildFreePractice,
	}
}

func customPolicy(c model.CustomModeConfig) Policy {
	p := Policy{
		ErrorPolicy:     c.ErrorPolicy,
		Lives:           c.Lives,
		PenaltyMs:       c.PenaltyMs,
		ScoreMultiplier: c.ScoreMultiplier,
		BuildQueue:      buildCustom,
	}
	if !model.ValidErrorPolicy(p.ErrorPolicy) {
		p.ErrorPolicy = model.ErrorResetStreak
	}
	if p.Lives <= 0 {
		p.Lives = quizLives
	}
	if p.PenaltyMs <= 0 {
		p.PenaltyMs = endlessPenaltyMs
	}
	if p.ScoreMultiplier <= 0 {
		p.ScoreMultiplier = 1
	}
	timerMs := c.TimerMs
	if timerMs <= 0 {
		timerMs = defaultTimeAttackMs
	}
	switch c.TimerType {
	case model.TimerCountdown:
		p.TimerKind = TimerGlobal
		p.InitialTimerMs = timerMs
		p.Loop = true
	case model.TimerCountup:
		p.TimerKind = TimerElapsed
	case model.TimerSurvival:
		p.TimerKind = TimerWindow
		p.InitialTimerMs = timerMs
		p.Loop = true
		p.ShrinkEveryFiveMs = survivalShrinkMs
		p.FloorMs = survivalFloorMs
	default:
		p.TimerKind = TimerOff
	}
	return p
}
