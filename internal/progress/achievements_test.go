package progress

import (
	"testing"
	"time"

	"github.com/verte-zerg/combodash/internal/model"
)

func TestUnlockIsIdempotent(t *testing.T) {
	tr := NewTracker(nil)
	now := time.Unix(1000, 0)
	first := tr.CheckLive(LiveEvent{Streak: 12}, now)
	if !containsAch(first, AchHotStreak) {
		t.Fatalf("expected hot-streak unlock, got %v", first)
	}
	unlockedAt := *tr.States()[AchHotStreak].UnlockedAt

	later := now.Add(time.Hour)
	second := tr.CheckLive(LiveEvent{Streak: 20}, later)
	if containsAch(second, AchHotStreak) {
		t.Fatalf("re-satisfying an unlocked achievement must be a no-op")
	}
	if got := *tr.States()[AchHotStreak].UnlockedAt; !got.Equal(unlockedAt) {
		t.Fatalf("unlockedAt must not change: %v vs %v", got, unlockedAt)
	}
}

func TestToastsFireOnce(t *testing.T) {
	tr := NewTracker(nil)
	tr.CheckLive(LiveEvent{ElapsedMs: 150}, time.Unix(0, 0))
	first := tr.PendingToasts()
	if len(first) == 0 {
		t.Fatalf("expected pending toasts after an unlock")
	}
	if again := tr.PendingToasts(); len(again) != 0 {
		t.Fatalf("toasts must not repeat, got %v", again)
	}
}

func TestSub300msUnlock(t *testing.T) {
	tr := NewTracker(nil)
	tr.CheckLive(LiveEvent{ElapsedMs: 299}, time.Unix(0, 0))
	if !tr.Unlocked(AchLightningHands) {
		t.Fatalf("299ms completion must unlock lightning-hands")
	}
	tr2 := NewTracker(nil)
	tr2.CheckLive(LiveEvent{ElapsedMs: 300}, time.Unix(0, 0))
	if tr2.Unlocked(AchLightningHands) {
		t.Fatalf("300ms completion must not unlock lightning-hands")
	}
}

func TestProgressAutoUnlocksAtMax(t *testing.T) {
	tr := NewTracker(nil)
	now := time.Unix(0, 0)
	life := model.LifetimeStats{Sessions: 9}
	tr.CheckSessionEnd(model.SessionSummary{}, life, now)
	if tr.Unlocked(AchDedicated) {
		t.Fatalf("9 sessions must not unlock dedicated")
	}
	if got := tr.States()[AchDedicated].Progress; got != 9 {
		t.Fatalf("expected progress 9, got %d", got)
	}
	life.Sessions = 10
	out := tr.CheckSessionEnd(model.SessionSummary{}, life, now)
	if !containsAch(out, AchDedicated) || !tr.Unlocked(AchDedicated) {
		t.Fatalf("reaching max progress must auto-unlock")
	}
}

func TestProgressNeverDecreases(t *testing.T) {
	tr := NewTracker(nil)
	now := time.Unix(0, 0)
	tr.CheckSessionEnd(model.SessionSummary{}, model.LifetimeStats{Successes: 50}, now)
	tr.CheckSessionEnd(model.SessionSummary{}, model.LifetimeStats{Successes: 30}, now)
	if got := tr.States()[AchCentury].Progress; got != 50 {
		t.Fatalf("progress must be monotonic, got %d", got)
	}
}

func TestCleanRunRequiresVolume(t *testing.T) {
	tr := NewTracker(nil)
	now := time.Unix(0, 0)
	tr.CheckSessionEnd(model.SessionSummary{Successes: 9, Errors: 0}, model.LifetimeStats{}, now)
	if tr.Unlocked(AchCleanRun) {
		t.Fatalf("9 combos is not enough for clean-run")
	}
	tr.CheckSessionEnd(model.SessionSummary{Successes: 10, Errors: 0}, model.LifetimeStats{}, now)
	if !tr.Unlocked(AchCleanRun) {
		t.Fatalf("a flawless 10-combo session must unlock clean-run")
	}
}

func TestCoverageChecks(t *testing.T) {
	tr := NewTracker(nil)
	now := time.Unix(0, 0)

	byCat := map[model.Category]int{}
	for _, cat := range []model.Category{
		model.CategoryBasics, model.CategoryQuarters, model.CategoryHalves,
		model.CategoryCharges, model.CategoryDoubles, model.CategoryZigzags,
		model.CategoryMarathons,
	} {
		byCat[cat] = 1
	}
	tr.CheckSessionEnd(model.SessionSummary{}, model.LifetimeStats{CompletedByCat: byCat}, now)
	if tr.Unlocked(AchCompletionist) {
		t.Fatalf("seven of eight categories must not unlock completionist")
	}
	byCat[model.CategorySecrets] = 1
	tr.CheckSessionEnd(model.SessionSummary{}, model.LifetimeStats{CompletedByCat: byCat}, now)
	if !tr.Unlocked(AchCompletionist) {
		t.Fatalf("full category coverage must unlock completionist")
	}

	played := map[model.Mode]int{}
	for _, m := range model.Modes() {
		played[m] = 1
	}
	tr.CheckSessionEnd(model.SessionSummary{}, model.LifetimeStats{PlayedModes: played}, now)
	if !tr.Unlocked(AchModeExplorer) {
		t.Fatalf("playing every mode must unlock mode-explorer")
	}
}

func containsAch(list []Achievement, id AchievementID) bool {
	for _, a := range list {
		if a.ID == id {
			return true
		}
	}
	return false
}
