package progress

import (
	"time"

	"github.com/verte-zerg/combodash/internal/model"
)

// AchievementID names one achievement.
type AchievementID string

// Achievement ids.
const (
	AchFirstCombo     AchievementID = "first-combo"
	AchLightningHands AchievementID = "lightning-hands"
	AchHotStreak      AchievementID = "hot-streak"
	AchUntouchable    AchievementID = "untouchable"
	AchHighRoller     AchievementID = "high-roller"
	AchBossSlayer     AchievementID = "boss-slayer"
	AchCleanRun       AchievementID = "clean-run"
	AchCentury        AchievementID = "century"
	AchDedicated      AchievementID = "dedicated"
	AchMarathoner     AchievementID = "marathoner"
	AchCompletionist  AchievementID = "completionist"
	AchModeExplorer   AchievementID = "mode-explorer"
	AchButterfingers  AchievementID = "butterfingers"
)

// Achievement is one catalog entry. MaxProgress > 0 marks a
// progress-tracked achievement that unlocks the moment progress
// reaches it.
type Achievement struct {
	ID          AchievementID
	Name        string
	Description string
	Icon        string
	MaxProgress int
}

// AllAchievements is the compiled catalog.
var AllAchievements = []Achievement{
	{ID: AchFirstCombo, Name: "First Steps", Description: "Complete your first combo", Icon: "step"},
	{ID: AchLightningHands, Name: "Lightning Hands", Description: "Complete a combo in under 300ms", Icon: "bolt"},
	{ID: AchHotStreak, Name: "Hot Streak", Description: "Reach a 12 streak", Icon: "flame"},
	{ID: AchUntouchable, Name: "Untouchable", Description: "Reach a 25 streak", Icon: "shield"},
	{ID: AchHighRoller, Name: "High Roller", Description: "Score 5000 in one session", Icon: "gem"},
	{ID: AchBossSlayer, Name: "Boss Slayer", Description: "Complete a boss combo", Icon: "crown"},
	{ID: AchCleanRun, Name: "Clean Run", Description: "Finish a 10+ combo session without an error", Icon: "spark"},
	{ID: AchCentury, Name: "Century", Description: "Complete 100 combos", Icon: "hundred", MaxProgress: 100},
	{ID: AchDedicated, Name: "Dedicated", Description: "Play 10 sessions", Icon: "medal", MaxProgress: 10},
	{ID: AchMarathoner, Name: "Marathoner", Description: "Accumulate an hour of play", Icon: "clock"},
	{ID: AchCompletionist, Name: "Completionist", Description: "Complete a combo in every category", Icon: "map"},
	{ID: AchModeExplorer, Name: "Mode Explorer", Description: "Play every game mode", Icon: "compass"},
	{ID: AchButterfingers, Name: "Butterfingers", Description: "Make 100 lifetime errors", Icon: "butter", MaxProgress: 100},
}

// AchievementByID looks up one catalog entry.
func AchievementByID(id AchievementID) (Achievement, bool) {
	for _, a := range AllAchievements {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// LiveEvent carries the time-sensitive facts checked on each combo
// completion.
type LiveEvent struct {
	Mode         model.Mode
	ElapsedMs    int64
	Streak       int
	SessionScore int
	Boss         bool
}

// Tracker mutates achievement state. Unlocks are monotonic and
// idempotent: re-satisfying an unlocked achievement is a no-op.
type Tracker struct {
	states map[AchievementID]model.AchievementState
}

// NewTracker wraps loaded state; a nil map starts fresh.
func NewTracker(states map[AchievementID]model.AchievementState) *Tracker {
	if states == nil {
		states = map[AchievementID]model.AchievementState{}
	}
	return &Tracker{states: states}
}

// States exposes the underlying state for persistence.
func (t *Tracker) States() map[AchievementID]model.AchievementState {
	return t.states
}

// Unlocked reports whether an achievement is unlocked.
func (t *Tracker) Unlocked(id AchievementID) bool {
	return t.states[id].Unlocked
}

// unlock marks an achievement unlocked at the given time. It reports
// whether this call performed the unlock.
func (t *Tracker) unlock(id AchievementID, at time.Time) bool {
	st := t.states[id]
	if st.Unlocked {
		return false
	}
	st.Unlocked = true
	ts := at
	st.UnlockedAt = &ts
	if a, ok := AchievementByID(id); ok && a.MaxProgress > 0 && st.Progress < a.MaxProgress {
		st.Progress = a.MaxProgress
	}
	t.states[id] = st
	return true
}

// setProgress raises a progress-tracked achievement toward its max and
// unlocks it on arrival. Progress never decreases.
func (t *Tracker) setProgress(id AchievementID, progress int, at time.Time) bool {
	a, ok := AchievementByID(id)
	if !ok || a.MaxProgress <= 0 {
		return false
	}
	st := t.states[id]
	if progress > st.Progress {
		st.Progress = progress
		t.states[id] = st
	}
	if st.Progress >= a.MaxProgress {
		return t.unlock(id, at)
	}
	return false
}

// CheckLive runs the per-combo checks and returns newly unlocked
// achievements.
func (t *Tracker) CheckLive(ev LiveEvent, now time.Time) []Achievement {
	var unlocked []AchievementID
	if t.unlock(AchFirstCombo, now) {
		unlocked = append(unlocked, AchFirstCombo)
	}
	if ev.ElapsedMs >= 0 && ev.ElapsedMs < 300 && t.unlock(AchLightningHands, now) {
		unlocked = append(unlocked, AchLightningHands)
	}
	if ev.Streak >= 12 && t.unlock(AchHotStreak, now) {
		unlocked = append(unlocked, AchHotStreak)
	}
	if ev.Streak >= 25 && t.unlock(AchUntouchable, now) {
		unlocked = append(unlocked, AchUntouchable)
	}
	if ev.SessionScore >= 5000 && t.unlock(AchHighRoller, now) {
		unlocked = append(unlocked, AchHighRoller)
	}
	if ev.Boss && t.unlock(AchBossSlayer, now) {
		unlocked = append(unlocked, AchBossSlayer)
	}
	return t.resolve(unlocked)
}

// CheckSessionEnd runs the aggregate checks against lifetime stats.
func (t *Tracker) CheckSessionEnd(sum model.SessionSummary, life model.LifetimeStats, now time.Time) []Achievement {
	var unlocked []AchievementID
	if sum.Successes >= 10 && sum.Errors == 0 && t.unlock(AchCleanRun, now) {
		unlocked = append(unlocked, AchCleanRun)
	}
	if t.setProgress(AchCentury, life.Successes, now) {
		unlocked = append(unlocked, AchCentury)
	}
	if t.setProgress(AchDedicated, life.Sessions, now) {
		unlocked = append(unlocked, AchDedicated)
	}
	if t.setProgress(AchButterfingers, life.Errors, now) {
		unlocked = append(unlocked, AchButterfingers)
	}
	if life.PlaytimeMs >= int64(time.Hour/time.Millisecond) && t.unlock(AchMarathoner, now) {
		unlocked = append(unlocked, AchMarathoner)
	}
	if coversAllCategories(life.CompletedByCat) && t.unlock(AchCompletionist, now) {
		unlocked = append(unlocked, AchCompletionist)
	}
	if coversAllModes(life.PlayedModes) && t.unlock(AchModeExplorer, now) {
		unlocked = append(unlocked, AchModeExplorer)
	}
	return t.resolve(unlocked)
}

// PendingToasts returns unlocked achievements not yet notified and
// marks them notified, so each unlock toasts exactly once.
func (t *Tracker) PendingToasts() []Achievement {
	var ids []AchievementID
	for _, a := range AllAchievements {
		st := t.states[a.ID]
		if st.Unlocked && !st.Notified {
			st.Notified = true
			t.states[a.ID] = st
			ids = append(ids, a.ID)
		}
	}
	return t.resolve(ids)
}

func (t *Tracker) resolve(ids []AchievementID) []Achievement {
	var out []Achievement
	for _, id := range ids {
		if a, ok := AchievementByID(id); ok {
			out = append(out, a)
		}
	}
	return out
}

func coversAllCategories(byCat map[model.Category]int) bool {
	if byCat == nil {
		return false
	}
	required := []model.Category{
		model.CategoryBasics,
		model.CategoryQuarters,
		model.CategoryHalves,
		model.CategoryCharges,
		model.CategoryDoubles,
		model.CategoryZigzags,
		model.CategoryMarathons,
		model.CategorySecrets,
	}
	for _, cat := range required {
		if byCat[cat] == 0 {
			return false
		}
	}
	return true
}

func coversAllModes(played map[model.Mode]int) bool {
	if played == nil {
		return false
	}
	for _, m := range model.Modes() {
		if played[m] == 0 {
			return false
		}
	}
	return true
}
