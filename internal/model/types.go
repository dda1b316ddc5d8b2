// Package model defines shared data structures.
package model

import "time"

// Direction is one of the four combo inputs.
type Direction int

// Direction values.
const (
	Up Direction = iota
	Down
	Left
	Right
)

// String returns the lowercase direction name.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// Glyph returns the arrow glyph for display.
func (d Direction) Glyph() string {
	switch d {
	case Up:
		return "↑"
	case Down:
		return "↓"
	case Left:
		return "←"
	case Right:
		return "→"
	}
	return "?"
}

// ParseDirection maps a direction name to its value.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up":
		return Up, true
	case "down":
		return Down, true
	case "left":
		return Left, true
	case "right":
		return Right, true
	}
	return 0, false
}

// Mode identifies a game mode rule set.
type Mode string

// Game modes.
const (
	ModeFreePractice      Mode = "free-practice"
	ModeTimeAttack        Mode = "time-attack"
	ModeAccuracy          Mode = "accuracy"
	ModeSurvival          Mode = "survival"
	ModeQuiz              Mode = "quiz"
	ModeDailyChallenge    Mode = "daily-challenge"
	ModeSpeedRun          Mode = "speed-run"
	ModeEndless           Mode = "endless"
	ModeCategoryChallenge Mode = "category-challenge"
	ModeBossRush          Mode = "boss-rush"
	ModeCustom            Mode = "custom"
)

// Modes lists every mode in menu order.
func Modes() []Mode {
	return []Mode{
		ModeFreePractice,
		ModeTimeAttack,
		ModeAccuracy,
		ModeSurvival,
		ModeQuiz,
		ModeDailyChallenge,
		ModeSpeedRun,
		ModeEndless,
		ModeCategoryChallenge,
		ModeBossRush,
		ModeCustom,
	}
}

// ParseMode maps a mode name to its value.
func ParseMode(s string) (Mode, bool) {
	for _, m := range Modes() {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// Category groups catalog sequences.
type Category string

// Sequence categories.
const (
	CategoryBasics    Category = "basics"
	CategoryQuarters  Category = "quarters"
	CategoryHalves    Category = "halves"
	CategoryCharges   Category = "charges"
	CategoryDoubles   Category = "doubles"
	CategoryZigzags   Category = "zigzags"
	CategoryMarathons Category = "marathons"
	CategorySecrets   Category = "secrets"
)

// Tier classifies sequence difficulty by length.
type Tier string

// Difficulty tiers.
const (
	TierBasic    Tier = "basic"
	TierAdvanced Tier = "advanced"
	TierExpert   Tier = "expert"
)

// TierForLength derives the tier from a sequence length.
func TierForLength(n int) Tier {
	switch {
	case n <= 3:
		return TierBasic
	case n <= 5:
		return TierAdvanced
	default:
		return TierExpert
	}
}

// SequenceDef is an immutable catalog combo definition.
type SequenceDef struct {
	ID       string
	Name     string
	Category Category
	Sequence []Direction
	Tier     Tier
	IconRef  string
}

// AttemptResult records one concluded sequence attempt.
type AttemptResult struct {
	SequenceID string
	Success    bool
	ElapsedMs  int64
	ErrorCount int
	InputTrace []Direction
	Timestamp  time.Time
}

// SessionSummary is the immutable end-of-session digest.
type SessionSummary struct {
	Mode                 Mode
	StartedAt            time.Time
	EndedAt              time.Time
	DurationMs           int64
	Attempts             int
	Successes            int
	Errors               int
	TotalScore           int
	Accuracy             float64
	BestStreak           int
	AverageSuccessTimeMs int64
}

// LeaderboardEntry is one row of a mode's top-10 board.
type LeaderboardEntry struct {
	Initials   string    `json:"initials"`
	Score      int       `json:"score"`
	BestStreak int       `json:"bestStreak"`
	Date       time.Time `json:"date"`
}

// AchievementState tracks progress for one achievement id.
type AchievementState struct {
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
	Progress   int        `json:"progress"`
	Notified   bool       `json:"notified"`
}

// TimerType selects the clock behavior of a custom mode.
type TimerType string

// Custom-mode timer types.
const (
	TimerNone      TimerType = "none"
	TimerCountdown TimerType = "countdown"
	TimerCountup   TimerType = "countup"
	TimerSurvival  TimerType = "survival"
)

// ValidTimerType reports whether s names a timer type.
func ValidTimerType(s TimerType) bool {
	switch s {
	case TimerNone, TimerCountdown, TimerCountup, TimerSurvival:
		return true
	}
	return false
}

// ErrorPolicy selects what an input miss costs in a custom mode.
type ErrorPolicy string

// Custom-mode error policies.
const (
	ErrorResetStreak ErrorPolicy = "reset-streak"
	ErrorLoseLife    ErrorPolicy = "lose-life"
	ErrorTimePenalty ErrorPolicy = "time-penalty"
	ErrorEndGame     ErrorPolicy = "end-game"
)

// ValidErrorPolicy reports whether s names an error policy.
func ValidErrorPolicy(s ErrorPolicy) bool {
	switch s {
	case ErrorResetStreak, ErrorLoseLife, ErrorTimePenalty, ErrorEndGame:
		return true
	}
	return false
}

// QueueSource selects where a custom mode draws its combos from.
type QueueSource string

// Custom-mode queue sources.
const (
	SourceAll      QueueSource = "all"
	SourceCategory QueueSource = "category"
	SourceTier     QueueSource = "tier"
)

// CustomModeConfig is a user-built rule set, shareable as a code.
type CustomModeConfig struct {
	Name            string      `json:"name"`
	TimerType       TimerType   `json:"timerType"`
	TimerMs         int64       `json:"timerMs"`
	Source          QueueSource `json:"source"`
	Category        Category    `json:"category"`
	Tier            Tier        `json:"tier"`
	Shuffle         bool        `json:"shuffle"`
	QueueLength     int         `json:"queueLength"`
	ErrorPolicy     ErrorPolicy `json:"errorPolicy"`
	Lives           int         `json:"lives"`
	PenaltyMs       int64       `json:"penaltyMs"`
	ScoreMultiplier float64     `json:"scoreMultiplier"`
}

// DefaultCustomMode returns the baseline custom rule set.
func DefaultCustomMode() CustomModeConfig {
	return CustomModeConfig{
		Name:            "custom",
		TimerType:       TimerNone,
		TimerMs:         60000,
		Source:          SourceAll,
		Shuffle:         true,
		QueueLength:     20,
		ErrorPolicy:     ErrorResetStreak,
		Lives:           3,
		PenaltyMs:       3000,
		ScoreMultiplier: 1.0,
	}
}

// Config defines play settings resolved from flags and the config file.
type Config struct {
	Mode       Mode
	Category   Category
	DurationMs int64
	Target     int
	Deadzone   float64
	Custom     CustomModeConfig
}

// Settings is the persisted user preferences envelope. Bindings holds
// only user overrides; the built-in WASD/arrow defaults always apply.
type Settings struct {
	Bindings map[string]string `json:"bindings"`
	Deadzone float64           `json:"deadzone"`
}

// DefaultSettings returns the baseline preferences.
func DefaultSettings() Settings {
	return Settings{
		Bindings: map[string]string{},
		Deadzone: 0.3,
	}
}

// LifetimeStats aggregates every recorded session.
type LifetimeStats struct {
	Sessions       int
	PlaytimeMs     int64
	Attempts       int
	Successes      int
	Errors         int
	BestScore      int
	BestStreak     int
	CompletedByCat map[Category]int
	PlayedModes    map[Mode]int
}
