package session

import (
	"math"
	"time"

	"github.com/verte-zerg/combodash/internal/combo"
	"github.com/verte-zerg/combodash/internal/model"
	"github.com/verte-zerg/combodash/internal/scoring"
)

// Phase is the controller's lifecycle state.
type Phase int

// Controller phases.
const (
	PhaseCountdown Phase = iota
	PhasePlaying
	PhaseGameOver
)

// EndReason explains a transition to PhaseGameOver.
type EndReason string

// End reasons.
const (
	EndTimerExpired  EndReason = "timer-expired"
	EndOutOfLives    EndReason = "out-of-lives"
	EndQueueComplete EndReason = "queue-complete"
	EndMiss          EndReason = "miss"
)

// OutcomeKind discriminates controller outcomes.
type OutcomeKind int

// Outcome kinds.
const (
	OutcomeStep OutcomeKind = iota
	OutcomeComboDone
	OutcomeMiss
	OutcomeLifeLost
	OutcomeGameOver
)

// Outcome is one observable effect of an input or tick, in order.
type Outcome struct {
	Kind       OutcomeKind
	Score      scoring.Score
	ScoreDelta int
	Boss       bool
	ElapsedMs  int64
	Expected   model.Direction
	Reason     EndReason
}

const countdownMs = 3000

// Controller owns SessionState for one run. It is single-writer: the
// host loop delivers inputs and ticks serially.
type Controller struct {
	cfg    model.Config
	policy Policy
	rng    *scoring.SeededRand
	clock  func() time.Time

	phase      Phase
	queue      []model.SequenceDef
	queueIndex int
	matcher    combo.Matcher
	boss       bool

	score      int
	streak     int
	bestStreak int
	multiplier int
	lives      int

	attempts      []model.AttemptResult
	attemptErrors int
	attemptTrace  []model.Direction
	attemptStart  time.Time

	startedAt       time.Time
	endedAt         time.Time
	endReason       EndReason
	countdownLeftMs int64
	windowLimitMs   int64
	timerLeftMs     int64
	elapsedMs       int64
	penaltyMs       int64
	successSumMs    int64
	completed       int
	lastTick        time.Time
}

// New builds a controller for the configured mode. The clock must be
// monotonic for delta computation; tests inject a fake.
func New(cfg model.Config, clock func() time.Time) *Controller {
	if clock == nil {
		clock = time.Now
	}
	c := &Controller{
		cfg:    cfg,
		policy: PolicyFor(cfg),
		rng:    scoring.NewSeededRand(clock().UnixNano()),
		clock:  clock,
	}
	c.reset()
	return c
}

func newWithRand(cfg model.Config, clock func() time.Time, rng *scoring.SeededRand) *Controller {
	c := &Controller{
		cfg:    cfg,
		policy: PolicyFor(cfg),
		rng:    rng,
		clock:  clock,
	}
	c.reset()
	return c
}

func (c *Controller) reset() {
	now := c.clock()
	c.phase = PhaseCountdown
	c.queue = c.policy.BuildQueue(c.cfg, c.rng, now)
	c.queueIndex = 0
	c.matcher = combo.Matcher{}
	c.boss = false
	c.score = 0
	c.streak = 0
	c.bestStreak = 0
	c.multiplier = scoring.StreakMultiplier(0)
	c.lives = c.policy.Lives
	c.attempts = nil
	c.attemptErrors = 0
	c.attemptTrace = nil
	c.startedAt = time.Time{}
	c.endedAt = time.Time{}
	c.endReason = ""
	c.countdownLeftMs = countdownMs
	c.windowLimitMs = c.policy.InitialTimerMs
	c.timerLeftMs = c.policy.InitialTimerMs
	c.elapsedMs = 0
	c.penaltyMs = 0
	c.successSumMs = 0
	c.completed = 0
	c.lastTick = now
}

// Restart abandons the current run and re-enters the countdown.
func (c *Controller) Restart() {
	c.reset()
}

// Tick advances the clocks. Irregular intervals are fine: everything
// works off the delta since the previous tick. Ticks delivered after
// game over are no-ops, so a stale callback cannot mutate a finished
// session.
func (c *Controller) Tick(now time.Time) []Outcome {
	delta := now.Sub(c.lastTick).Milliseconds()
	c.lastTick = now
	if delta < 0 {
		delta = 0
	}

	switch c.phase {
	case PhaseGameOver:
		return nil
	case PhaseCountdown:
		c.countdownLeftMs -= delta
		if c.countdownLeftMs <= 0 {
			c.enterPlaying(now)
		}
		return nil
	}

	c.elapsedMs += delta
	if c.policy.TimerKind == TimerGlobal || c.policy.TimerKind == TimerWindow {
		c.timerLeftMs -= delta
		// Exactly zero counts as expired, not one more playable moment.
		if c.timerLeftMs <= 0 {
			c.timerLeftMs = 0
			return c.end(now, EndTimerExpired)
		}
	}
	return nil
}

func (c *Controller) enterPlaying(now time.Time) {
	c.phase = PhasePlaying
	c.startedAt = now
	c.countdownLeftMs = 0
	c.presentCurrent(now)
}

// presentCurrent installs the combo at queueIndex as the active
// sequence and resets the attempt state.
func (c *Controller) presentCurrent(now time.Time) {
	seq := c.queue[c.queueIndex]
	c.matcher.SetSequence(seq.Sequence)
	c.attemptStart = now
	c.attemptErrors = 0
	c.attemptTrace = nil
	c.boss = c.policy.BossEvery > 0 && (c.completed+1)%c.policy.BossEvery == 0
	if c.boss && c.policy.BossShrinkMs > 0 {
		c.windowLimitMs -= c.policy.BossShrinkMs
		if c.windowLimitMs < c.policy.FloorMs {
			c.windowLimitMs = c.policy.FloorMs
		}
	}
	if c.policy.TimerKind == TimerWindow {
		c.timerLeftMs = c.windowLimitMs
	}
}

// HandleDirection feeds one direction. Input during the countdown or
// after game over is ignored; the lead-in is not skippable.
func (c *Controller) HandleDirection(dir model.Direction) []Outcome {
	if c.phase != PhasePlaying {
		return nil
	}
	now := c.clock()
	c.attemptTrace = append(c.attemptTrace, dir)
	ev := c.matcher.Feed(dir)
	switch ev.Kind {
	case combo.EventCorrectStep:
		return []Outcome{{Kind: OutcomeStep}}
	case combo.EventComplete:
		return c.handleComplete(now)
	case combo.EventMiss:
		return c.handleMiss(now, ev.Expected)
	}
	return nil
}

func (c *Controller) handleComplete(now time.Time) []Outcome {
	seq := c.queue[c.queueIndex]
	elapsed := now.Sub(c.attemptStart).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}

	c.streak++
	if c.streak > c.bestStreak {
		c.bestStreak = c.streak
	}
	c.multiplier = scoring.StreakMultiplier(c.streak)

	sc := scoring.ComputeScore(elapsed, len(seq.Sequence), c.multiplier)
	delta := sc.Total
	if c.boss {
		delta *= 2
	}
	if c.policy.ScoreMultiplier > 0 && c.policy.ScoreMultiplier != 1 {
		delta = int(math.Round(float64(delta) * c.policy.ScoreMultiplier))
	}
	c.score += delta

	trace := make([]model.Direction, len(c.attemptTrace))
	copy(trace, c.attemptTrace)
	c.attempts = append(c.attempts, model.AttemptResult{
		SequenceID: seq.ID,
		Success:    true,
		ElapsedMs:  elapsed,
		ErrorCount: c.attemptErrors,
		InputTrace: trace,
		Timestamp:  now,
	})
	c.successSumMs += elapsed
	c.completed++

	if c.policy.ShrinkEveryFiveMs > 0 && c.streak%5 == 0 {
		c.windowLimitMs -= c.policy.ShrinkEveryFiveMs
		if c.windowLimitMs < c.policy.FloorMs {
			c.windowLimitMs = c.policy.FloorMs
		}
	}

	done := Outcome{
		Kind:       OutcomeComboDone,
		Score:      sc,
		ScoreDelta: delta,
		Boss:       c.boss,
		ElapsedMs:  elapsed,
	}

	c.queueIndex++
	if c.queueIndex >= len(c.queue) {
		if !c.policy.Loop {
			return append([]Outcome{done}, c.end(now, EndQueueComplete)...)
		}
		c.queueIndex = 0
	}
	c.presentCurrent(now)
	return []Outcome{done}
}

// handleMiss applies the error policy. A miss never produces its own
// AttemptResult: the error count rides on the in-progress attempt and
// lands on the next successful result, or folds into the summary's
// error total if the session ends first.
func (c *Controller) handleMiss(now time.Time, expected model.Direction) []Outcome {
	c.attemptErrors++
	c.streak = 0
	c.multiplier = scoring.StreakMultiplier(0)

	miss := Outcome{Kind: OutcomeMiss, Expected: expected}
	switch c.policy.ErrorPolicy {
	case model.ErrorEndGame:
		return append([]Outcome{miss}, c.end(now, EndMiss)...)
	case model.ErrorLoseLife:
		c.lives--
		out := []Outcome{miss, {Kind: OutcomeLifeLost}}
		if c.lives <= 0 {
			return append(out, c.end(now, EndOutOfLives)...)
		}
		return out
	case model.ErrorTimePenalty:
		if c.policy.PenaltyToElapsed {
			c.penaltyMs += c.policy.PenaltyMs
			return []Outcome{miss}
		}
		c.timerLeftMs -= c.policy.PenaltyMs
		if c.timerLeftMs <= 0 {
			c.timerLeftMs = 0
			return append([]Outcome{miss}, c.end(now, EndTimerExpired)...)
		}
		return []Outcome{miss}
	}
	return []Outcome{miss}
}

func (c *Controller) end(now time.Time, reason EndReason) []Outcome {
	c.phase = PhaseGameOver
	c.endedAt = now
	c.endReason = reason
	return []Outcome{{Kind: OutcomeGameOver, Reason: reason}}
}

// Summary derives the immutable end-of-session digest. Accuracy counts
// every miss as a failed try alongside the successful attempts.
func (c *Controller) Summary() model.SessionSummary {
	successes := len(c.attempts)
	errors := c.attemptErrors
	for _, a := range c.attempts {
		errors += a.ErrorCount
	}
	var avg int64
	if successes > 0 {
		avg = c.successSumMs / int64(successes)
	}
	duration := c.elapsedMs + c.penaltyMs
	return model.SessionSummary{
		Mode:                 c.cfg.Mode,
		StartedAt:            c.startedAt,
		EndedAt:              c.endedAt,
		DurationMs:           duration,
		Attempts:             successes + errors,
		Successes:            successes,
		Errors:               errors,
		TotalScore:           c.score,
		Accuracy:             scoring.Accuracy(successes, successes+errors),
		BestStreak:           c.bestStreak,
		AverageSuccessTimeMs: avg,
	}
}

// Attempts returns the recorded attempt results in order.
func (c *Controller) Attempts() []model.AttemptResult {
	return c.attempts
}

// Accessors for the render layer.

// Phase returns the lifecycle phase.
func (c *Controller) Phase() Phase { return c.phase }

// Mode returns the mode being played.
func (c *Controller) Mode() model.Mode { return c.cfg.Mode }

// EndReason reports why the session ended.
func (c *Controller) EndReason() EndReason { return c.endReason }

// Current returns the active sequence definition.
func (c *Controller) Current() model.SequenceDef {
	if len(c.queue) == 0 {
		return model.SequenceDef{}
	}
	return c.queue[c.queueIndex]
}

// MatchPosition is the matcher's progress into the active sequence.
func (c *Controller) MatchPosition() int { return c.matcher.Position() }

// Score is the accumulated total.
func (c *Controller) Score() int { return c.score }

// Streak is the current run of successes.
func (c *Controller) Streak() int { return c.streak }

// BestStreak is the best run this session.
func (c *Controller) BestStreak() int { return c.bestStreak }

// Multiplier is the streak-derived score multiplier.
func (c *Controller) Multiplier() int { return c.multiplier }

// Lives remaining, zero for modes without lives.
func (c *Controller) Lives() int { return c.lives }

// Boss reports whether the active combo is a boss combo.
func (c *Controller) Boss() bool { return c.boss }

// HideSequence reports whether the active combo shows name-only.
func (c *Controller) HideSequence() bool { return c.policy.HideSequence }

// Competitive reports whether the mode posts to the leaderboard.
func (c *Controller) Competitive() bool { return c.policy.Competitive }

// TimerKind exposes the policy's clock behavior.
func (c *Controller) TimerKind() TimerKind { return c.policy.TimerKind }

// TimerLeftMs is the remaining countdown, zero when not counting down.
func (c *Controller) TimerLeftMs() int64 { return c.timerLeftMs }

// ElapsedMs is the play time so far, excluding the countdown.
func (c *Controller) ElapsedMs() int64 { return c.elapsedMs }

// CountdownLeftMs is the remaining lead-in.
func (c *Controller) CountdownLeftMs() int64 { return c.countdownLeftMs }

// Progress reports the queue position and total length.
func (c *Controller) Progress() (int, int) { return c.queueIndex, len(c.queue) }
