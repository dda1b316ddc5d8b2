package session

import (
	"testing"
	"time"

	"github.com/verte-zerg/combodash/internal/catalog"
	"github.com/verte-zerg/combodash/internal/model"
	"github.com/verte-zerg/combodash/internal/scoring"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func newTestController(t *testing.T, cfg model.Config) (*Controller, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1000, 0)}
	c := newWithRand(cfg, clock.Now, scoring.NewSeededRand(7))
	return c, clock
}

func startPlaying(t *testing.T, c *Controller, clock *fakeClock) {
	t.Helper()
	clock.Advance(3001 * time.Millisecond)
	c.Tick(clock.now)
	if c.Phase() != PhasePlaying {
		t.Fatalf("expected playing after countdown, got phase %d", c.Phase())
	}
}

func completeCurrent(t *testing.T, c *Controller) []Outcome {
	t.Helper()
	seq := c.Current().Sequence
	var last []Outcome
	for _, dir := range seq {
		last = c.HandleDirection(dir)
	}
	return last
}

func missCurrent(t *testing.T, c *Controller) []Outcome {
	t.Helper()
	expected := c.Current().Sequence[0]
	wrong := model.Up
	if expected == model.Up {
		wrong = model.Down
	}
	return c.HandleDirection(wrong)
}

func TestCountdownNotSkippableByInput(t *testing.T) {
	c, _ := newTestController(t, model.Config{Mode: model.ModeFreePractice})
	if c.Phase() != PhaseCountdown {
		t.Fatalf("expected countdown phase")
	}
	if out := c.HandleDirection(model.Up); out != nil {
		t.Fatalf("input during countdown must be ignored, got %v", out)
	}
	if c.Phase() != PhaseCountdown {
		t.Fatalf("input must not advance the countdown")
	}
}

func TestComboCompleteScoresAndStreaks(t *testing.T) {
	c, clock := newTestController(t, model.Config{Mode: model.ModeFreePractice})
	startPlaying(t, c, clock)

	seqLen := len(c.Current().Sequence)
	out := completeCurrent(t, c)
	if len(out) != 1 || out[0].Kind != OutcomeComboDone {
		t.Fatalf("expected a combo-done outcome, got %v", out)
	}
	want := scoring.ComputeScore(0, seqLen, 1).Total
	if out[0].ScoreDelta != want || c.Score() != want {
		t.Fatalf("expected score %d, got delta %d total %d", want, out[0].ScoreDelta, c.Score())
	}
	if c.Streak() != 1 || c.Multiplier() != 1 {
		t.Fatalf("expected streak 1 multiplier 1, got %d/%d", c.Streak(), c.Multiplier())
	}
}

func TestMultiplierKicksInAtFourStreak(t *testing.T) {
	c, clock := newTestController(t, model.Config{Mode: model.ModeFreePractice})
	startPlaying(t, c, clock)

	for i := 0; i < 3; i++ {
		completeCurrent(t, c)
	}
	seqLen := len(c.Current().Sequence)
	out := completeCurrent(t, c)
	if c.Streak() != 4 || c.Multiplier() != 2 {
		t.Fatalf("expected streak 4 multiplier 2, got %d/%d", c.Streak(), c.Multiplier())
	}
	want := scoring.ComputeScore(0, seqLen, 2).Total
	if out[0].ScoreDelta != want {
		t.Fatalf("fourth combo must use multiplier 2: expected %d, got %d", want, out[0].ScoreDelta)
	}
}

func TestMissResetsStreakOnly(t *testing.T) {
	c, clock := newTestController(t, model.Config{Mode: model.ModeFreePractice})
	startPlaying(t, c, clock)

	completeCurrent(t, c)
	out := missCurrent(t, c)
	if len(out) != 1 || out[0].Kind != OutcomeMiss {
		t.Fatalf("expected a miss outcome, got %v", out)
	}
	if c.Streak() != 0 || c.Multiplier() != 1 {
		t.Fatalf("miss must reset streak and multiplier")
	}
	if c.Phase() != PhasePlaying {
		t.Fatalf("free practice must survive a miss")
	}
}

func TestErrorsAttachToNextSuccess(t *testing.T) {
	c, clock := newTestController(t, model.Config{Mode: model.ModeFreePractice})
	startPlaying(t, c, clock)

	missCurrent(t, c)
	missCurrent(t, c)
	completeCurrent(t, c)
	attempts := c.Attempts()
	if len(attempts) != 1 {
		t.Fatalf("misses must not create their own attempt records, got %d", len(attempts))
	}
	if attempts[0].ErrorCount != 2 {
		t.Fatalf("expected 2 errors on the successful attempt, got %d", attempts[0].ErrorCount)
	}
	if !attempts[0].Success {
		t.Fatalf("recorded attempt must be a success")
	}
}

func TestSurvivalMissEndsSessionImmediately(t *testing.T) {
	c, clock := newTestController(t, model.Config{Mode: model.ModeSurvival})
	startPlaying(t, c, clock)

	out := missCurrent(t, c)
	if len(out) != 2 || out[1].Kind != OutcomeGameOver {
		t.Fatalf("expected miss then game over, got %v", out)
	}
	if out[1].Reason != EndMiss {
		t.Fatalf("expected end reason %q, got %q", EndMiss, out[1].Reason)
	}
	if c.Phase() != PhaseGameOver {
		t.Fatalf("survival must end on the first miss")
	}
}

func TestSurvivalWindowShrinksEveryFiveStreak(t *testing.T) {
	c, clock := newTestController(t, model.Config{Mode: model.ModeSurvival})
	startPlaying(t, c, clock)

	if c.TimerLeftMs() != survivalStartMs {
		t.Fatalf("expected initial window %d, got %d", survivalStartMs, c.TimerLeftMs())
	}
	for i := 0; i < 4; i++ {
		completeCurrent(t, c)
		if c.TimerLeftMs() != survivalStartMs {
			t.Fatalf("window must hold %d before a 5-streak, got %d", survivalStartMs, c.TimerLeftMs())
		}
	}
	completeCurrent(t, c)
	want := int64(survivalStartMs - survivalShrinkMs)
	if c.TimerLeftMs() != want {
		t.Fatalf("expected window %d after 5-streak, got %d", want, c.TimerLeftMs())
	}
}

func TestSurvivalWindowFloor(t *testing.T) {
	c, clock := newTestController(t, model.Config{Mode: model.ModeSurvival})
	startPlaying(t, c, clock)

	// Enough 5-streaks to push the limit well past the floor.
	for i := 0; i < 150; i++ {
		completeCurrent(t, c)
	}
	if c.TimerLeftMs() != survivalFloorMs {
		t.Fatalf("window must floor at %d, got %d", survivalFloorMs, c.TimerLeftMs())
	}
}

func TestTimerExpiryEndsTimedSession(t *testing.T) {
	c, clock := newTestController(t, model.Config{Mode: model.ModeTimeAttack, DurationMs: 5000})
	startPlaying(t, c, clock)

	clock.Advance(4999 * time.Millisecond)
	if out := c.Tick(clock.now); len(out) != 0 {
		t.Fatalf("timer must not expire early, got %v", out)
	}
	clock.Advance(1 * time.Millisecond)
	out := c.Tick(clock.now)
	if len(out) != 1 || out[0].Kind != OutcomeGameOver || out[0].Reason != EndTimerExpired {
		t.Fatalf("reaching exactly zero must expire the timer, got %v", out)
	}
}

func TestTickAfterGameOverIsNoOp(t *testing.T) {
	c, clock := newTestController(t, model.Config{Mode: model.ModeTimeAttack, DurationMs: 1000})
	startPlaying(t, c, clock)
	clock.Advance(2 * time.Second)
	c.Tick(clock.now)
	if c.Phase() != PhaseGameOver {
		t.Fatalf("expected game over")
	}
	summary := c.Summary()
	clock.Advance(time.Hour)
	if out := c.Tick(clock.now); out != nil {
		t.Fatalf("stale tick must be a no-op, got %v", out)
	}
	if c.Summary() != summary {
		t.Fatalf("stale tick must not mutate a finished session")
	}
}

func TestEndlessMissDrainsTimer(t *testing.T) {
	c, clock := newTestController(t, model.Config{Mode: model.ModeEndless})
	startPlaying(t, c, clock)

	missCurrent(t, c)
	want := int64(endlessWindowMs - endlessPenaltyMs)
	if c.TimerLeftMs() != want {
		t.Fatalf("expected timer %d after the penalty, got %d", want, c.TimerLeftMs())
	}
	completeCurrent(t, c)
	if c.TimerLeftMs() != endlessWindowMs {
		t.Fatalf("success must refill the window to %d, got %d", endlessWindowMs, c.TimerLeftMs())
	}
}

func TestEndlessPenaltyCanEndSession(t *testing.T) {
	c, clock := newTestController(t, model.Config{Mode: model.ModeEndless})
	startPlaying(t, c, clock)

	clock.Advance(8 * time.Second)
	c.Tick(clock.now)
	out := missCurrent(t, c)
	last := out[len(out)-1]
	if last.Kind != OutcomeGameOver || last.Reason != EndTimerExpired {
		t.Fatalf("penalty past zero must end the session, got %v", out)
	}
}

func TestQuizLosesLivesThenEnds(t *testing.T) {
	c, clock := newTestController(t, model.Config{Mode: model.ModeQuiz})
	startPlaying(t, c, clock)

	if !c.HideSequence() {
		t.Fatalf("quiz must hide the sequence")
	}
	if c.Lives() != quizLives {
		t.Fatalf("expected %d lives, got %d", quizLives, c.Lives())
	}
	missCurrent(t, c)
	missCurrent(t, c)
	if c.Phase() != PhasePlaying || c.Lives() != 1 {
		t.Fatalf("expected 1 life left, got %d (phase %d)", c.Lives(), c.Phase())
	}
	out := missCurrent(t, c)
	last := out[len(out)-1]
	if last.Kind != OutcomeGameOver || last.Reason != EndOutOfLives {
		t.Fatalf("expected out-of-lives game over, got %v", out)
	}
}

func TestSpeedRunPenaltyAddsToDuration(t *testing.T) {
	c, clock := newTestController(t, model.Config{Mode: model.ModeSpeedRun})
	startPlaying(t, c, clock)

	missCurrent(t, c)
	missCurrent(t, c)
	clock.Advance(10 * time.Second)
	c.Tick(clock.now)
	s := c.Summary()
	want := int64(10000 + 2*speedRunPenaltyMs)
	if s.DurationMs != want {
		t.Fatalf("expected duration %d with penalties, got %d", want, s.DurationMs)
	}
}

func TestSpeedRunEndsWhenQueueExhausted(t *testing.T) {
	c, clock := newTestController(t, model.Config{Mode: model.ModeSpeedRun})
	startPlaying(t, c, clock)

	_, total := c.Progress()
	if total != len(catalog.All()) {
		t.Fatalf("speed run must queue the whole catalog, got %d", total)
	}
	var out []Outcome
	for i := 0; i < total; i++ {
		out = completeCurrent(t, c)
	}
	last := out[len(out)-1]
	if last.Kind != OutcomeGameOver || last.Reason != EndQueueComplete {
		t.Fatalf("expected queue-complete game over, got %v", out)
	}
}

func TestBossRushFlagsEveryTenthCombo(t *testing.T) {
	c, clock := newTestController(t, model.Config{Mode: model.ModeBossRush})
	startPlaying(t, c, clock)

	for i := 0; i < 9; i++ {
		if c.Boss() {
			t.Fatalf("combo %d must not be a boss", i+1)
		}
		completeCurrent(t, c)
	}
	if !c.Boss() {
		t.Fatalf("tenth combo must be flagged boss")
	}
	seqLen := len(c.Current().Sequence)
	mult := scoring.StreakMultiplier(10)
	out := completeCurrent(t, c)
	want := 2 * scoring.ComputeScore(0, seqLen, mult).Total
	if !out[0].Boss || out[0].ScoreDelta != want {
		t.Fatalf("boss combo must score double: expected %d, got %+v", want, out[0])
	}
	if c.Boss() {
		t.Fatalf("eleventh combo must not be a boss")
	}
}

func TestBossRushWindowShrinksForBoss(t *testing.T) {
	c, clock := newTestController(t, model.Config{Mode: model.ModeBossRush})
	startPlaying(t, c, clock)

	for i := 0; i < 9; i++ {
		completeCurrent(t, c)
	}
	// Nine completes crossed the 5-streak once; presenting the boss
	// shrinks the window again.
	want := int64(bossRushStartMs - bossRushShrinkMs - bossRushBossShrink)
	if c.TimerLeftMs() != want {
		t.Fatalf("expected boss window %d, got %d", want, c.TimerLeftMs())
	}
}

func TestAccuracyModeEndsAtTarget(t *testing.T) {
	c, clock := newTestController(t, model.Config{Mode: model.ModeAccuracy, Target: 5})
	startPlaying(t, c, clock)

	var out []Outcome
	for i := 0; i < 5; i++ {
		out = completeCurrent(t, c)
	}
	last := out[len(out)-1]
	if last.Kind != OutcomeGameOver || last.Reason != EndQueueComplete {
		t.Fatalf("expected queue-complete after the target count, got %v", out)
	}
	if s := c.Summary(); s.Successes != 5 || s.Accuracy != 100 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestDailyQueueIsDateStable(t *testing.T) {
	day := time.Date(2025, 3, 9, 15, 0, 0, 0, time.UTC)
	build := func(at time.Time, seed int64) []model.SequenceDef {
		clock := &fakeClock{now: at}
		c := newWithRand(model.Config{Mode: model.ModeDailyChallenge}, clock.Now, scoring.NewSeededRand(seed))
		return c.queue
	}
	a := build(day, 1)
	b := build(day.Add(5*time.Hour), 99)
	if len(a) != dailyQueueLength || len(b) != dailyQueueLength {
		t.Fatalf("daily queue must hold %d combos", dailyQueueLength)
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("same-day daily queues diverged at %d: %s vs %s", i, a[i].ID, b[i].ID)
		}
	}
	next := build(day.Add(24*time.Hour), 1)
	samePrefix := true
	for i := range a {
		if a[i].ID != next[i].ID {
			samePrefix = false
			break
		}
	}
	if samePrefix {
		t.Fatalf("daily queue must change across the day boundary")
	}
}

func TestFreePracticeQueueRepeatsPool(t *testing.T) {
	c, _ := newTestController(t, model.Config{Mode: model.ModeFreePractice, Category: model.CategoryBasics})
	pool := catalog.ByCategory(model.CategoryBasics)
	_, total := c.Progress()
	if total != len(pool)*freePracticeRepeats {
		t.Fatalf("expected %d queued combos, got %d", len(pool)*freePracticeRepeats, total)
	}
	counts := map[string]int{}
	for _, s := range c.queue {
		counts[s.ID]++
	}
	for _, s := range pool {
		if counts[s.ID] != freePracticeRepeats {
			t.Fatalf("combo %q queued %d times, expected %d", s.ID, counts[s.ID], freePracticeRepeats)
		}
	}
}

func TestCategoryFallbackOnUnknownCategory(t *testing.T) {
	c, _ := newTestController(t, model.Config{Mode: model.ModeCategoryChallenge, Category: "no-such-category"})
	_, total := c.Progress()
	if total != len(catalog.All()) {
		t.Fatalf("unknown category must fall back to the full catalog, got %d", total)
	}
}

func TestCustomModeAppliesScoreMultiplier(t *testing.T) {
	cfg := model.Config{Mode: model.ModeCustom, Custom: model.CustomModeConfig{
		TimerType:       model.TimerNone,
		Source:          model.SourceAll,
		QueueLength:     5,
		ErrorPolicy:     model.ErrorResetStreak,
		ScoreMultiplier: 2.0,
	}}
	c, clock := newTestController(t, cfg)
	startPlaying(t, c, clock)

	seqLen := len(c.Current().Sequence)
	out := completeCurrent(t, c)
	want := 2 * scoring.ComputeScore(0, seqLen, 1).Total
	if out[0].ScoreDelta != want {
		t.Fatalf("custom multiplier must double the score: expected %d, got %d", want, out[0].ScoreDelta)
	}
}

func TestCustomModeInvalidConfigFallsBack(t *testing.T) {
	cfg := model.Config{Mode: model.ModeCustom, Custom: model.CustomModeConfig{
		TimerType:   model.TimerNone,
		Source:      model.SourceCategory, // no category selected
		ErrorPolicy: "explode",
	}}
	c, clock := newTestController(t, cfg)
	if c.policy.ErrorPolicy != model.ErrorResetStreak {
		t.Fatalf("invalid error policy must fall back to reset-streak")
	}
	startPlaying(t, c, clock)
	_, total := c.Progress()
	if total == 0 {
		t.Fatalf("category source without a category must fall back to the catalog")
	}
	missCurrent(t, c)
	if c.Phase() != PhasePlaying {
		t.Fatalf("fallback policy must not end the session on a miss")
	}
}

func TestCustomModeLoseLife(t *testing.T) {
	cfg := model.Config{Mode: model.ModeCustom, Custom: model.CustomModeConfig{
		TimerType:   model.TimerNone,
		Source:      model.SourceAll,
		ErrorPolicy: model.ErrorLoseLife,
		Lives:       2,
	}}
	c, clock := newTestController(t, cfg)
	startPlaying(t, c, clock)
	missCurrent(t, c)
	if c.Lives() != 1 || c.Phase() != PhasePlaying {
		t.Fatalf("expected one life left, got %d (phase %d)", c.Lives(), c.Phase())
	}
	out := missCurrent(t, c)
	last := out[len(out)-1]
	if last.Kind != OutcomeGameOver || last.Reason != EndOutOfLives {
		t.Fatalf("expected out-of-lives, got %v", out)
	}
}

func TestRestartReentersCountdown(t *testing.T) {
	c, clock := newTestController(t, model.Config{Mode: model.ModeSurvival})
	startPlaying(t, c, clock)
	completeCurrent(t, c)
	missCurrent(t, c)
	if c.Phase() != PhaseGameOver {
		t.Fatalf("expected game over")
	}
	c.Restart()
	if c.Phase() != PhaseCountdown {
		t.Fatalf("restart must re-enter countdown")
	}
	if c.Score() != 0 || c.Streak() != 0 || len(c.Attempts()) != 0 {
		t.Fatalf("restart must clear session state")
	}
}

func TestSummaryAggregates(t *testing.T) {
	c, clock := newTestController(t, model.Config{Mode: model.ModeFreePractice})
	startPlaying(t, c, clock)

	completeCurrent(t, c)
	missCurrent(t, c)
	clock.Advance(2 * time.Second)
	c.Tick(clock.now)
	completeCurrent(t, c)

	s := c.Summary()
	if s.Successes != 2 || s.Errors != 1 || s.Attempts != 3 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.Accuracy != scoring.Accuracy(2, 3) {
		t.Fatalf("expected accuracy %v, got %v", scoring.Accuracy(2, 3), s.Accuracy)
	}
	if s.BestStreak != 1 {
		t.Fatalf("expected best streak 1, got %d", s.BestStreak)
	}
	if s.Mode != model.ModeFreePractice {
		t.Fatalf("summary mode mismatch")
	}
}
