// Package share encodes custom-mode configs and backup envelopes.
package share

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/verte-zerg/combodash/internal/model"
	"github.com/verte-zerg/combodash/internal/progress"
	"github.com/verte-zerg/combodash/internal/store"
)

// BackupVersion is the current export envelope version.
const BackupVersion = 1

// EncodeCustom serializes a custom-mode config to a share code.
func EncodeCustom(cfg model.CustomModeConfig) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// customPayload mirrors CustomModeConfig with pointer fields so absent
// keys are distinguishable from zero values during validation.
type customPayload struct {
	Name            *string            `json:"name"`
	TimerType       *model.TimerType   `json:"timerType"`
	TimerMs         *int64             `json:"timerMs"`
	Source          *model.QueueSource `json:"source"`
	Category        *model.Category    `json:"category"`
	Tier            *model.Tier        `json:"tier"`
	Shuffle         *bool              `json:"shuffle"`
	QueueLength     *int               `json:"queueLength"`
	ErrorPolicy     *model.ErrorPolicy `json:"errorPolicy"`
	Lives           *int               `json:"lives"`
	PenaltyMs       *int64             `json:"penaltyMs"`
	ScoreMultiplier *float64           `json:"scoreMultiplier"`
}

// DecodeCustom parses a share code. Garbage, missing required fields,
// or an unknown timerType yield nil rather than an error: an invalid
// payload is simply "no config". Valid fields merge over the defaults.
func DecodeCustom(code string) *model.CustomModeConfig {
	data, err := base64.StdEncoding.DecodeString(code)
	if err != nil {
		return nil
	}
	var p customPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil
	}
	if p.TimerType == nil || !model.ValidTimerType(*p.TimerType) {
		return nil
	}
	if p.ErrorPolicy == nil || !model.ValidErrorPolicy(*p.ErrorPolicy) {
		return nil
	}

	cfg := model.DefaultCustomMode()
	cfg.TimerType = *p.TimerType
	cfg.ErrorPolicy = *p.ErrorPolicy
	if p.Name != nil && *p.Name != "" {
		cfg.Name = *p.Name
	}
	if p.TimerMs != nil && *p.TimerMs > 0 {
		cfg.TimerMs = *p.TimerMs
	}
	if p.Source != nil {
		cfg.Source = *p.Source
	}
	if p.Category != nil {
		cfg.Category = *p.Category
	}
	if p.Tier != nil {
		cfg.Tier = *p.Tier
	}
	if p.Shuffle != nil {
		cfg.Shuffle = *p.Shuffle
	}
	if p.QueueLength != nil && *p.QueueLength > 0 {
		cfg.QueueLength = *p.QueueLength
	}
	if p.Lives != nil && *p.Lives > 0 {
		cfg.Lives = *p.Lives
	}
	if p.PenaltyMs != nil && *p.PenaltyMs > 0 {
		cfg.PenaltyMs = *p.PenaltyMs
	}
	if p.ScoreMultiplier != nil && *p.ScoreMultiplier > 0 {
		cfg.ScoreMultiplier = *p.ScoreMultiplier
	}
	return &cfg
}

// Backup is the exported data envelope.
type Backup struct {
	Version      int                                               `json:"version"`
	ExportDate   time.Time                                         `json:"exportDate"`
	Stats        model.LifetimeStats                               `json:"stats"`
	Settings     model.Settings                                    `json:"settings"`
	Achievements map[progress.AchievementID]model.AchievementState `json:"achievements"`
	CustomModes  map[string]model.CustomModeConfig                 `json:"customModes"`
	Leaderboard  progress.Board                                    `json:"leaderboard"`
}

// Export gathers every persisted store into a backup envelope.
func Export(ctx context.Context, st *store.Store, now time.Time) (Backup, error) {
	svc := progress.NewService(st)
	b := Backup{Version: BackupVersion, ExportDate: now}

	var err error
	if b.Stats, err = svc.Lifetime(ctx); err != nil {
		return Backup{}, fmt.Errorf("failed to read stats: %w", err)
	}
	if _, err = st.LoadEnvelope(ctx, store.KeySettings, &b.Settings); err != nil {
		return Backup{}, fmt.Errorf("failed to read settings: %w", err)
	}
	tracker, err := svc.LoadTracker(ctx)
	if err != nil {
		return Backup{}, fmt.Errorf("failed to read achievements: %w", err)
	}
	b.Achievements = tracker.States()
	if b.CustomModes, err = svc.LoadPresets(ctx); err != nil {
		return Backup{}, fmt.Errorf("failed to read presets: %w", err)
	}
	if b.Leaderboard, err = svc.LoadBoard(ctx); err != nil {
		return Backup{}, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	return b, nil
}

// Import validates a backup and applies every store, or nothing. A
// version mismatch is an error before any write happens.
func Import(ctx context.Context, st *store.Store, data []byte) error {
	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("failed to parse backup: %w", err)
	}
	if b.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version %d (expected %d)", b.Version, BackupVersion)
	}

	writes := []struct {
		key     string
		version int
		value   any
	}{
		{store.KeyStats, 1, b.Stats},
		{store.KeySettings, 1, b.Settings},
		{store.KeyAchievements, 1, b.Achievements},
		{store.KeyCustomPresets, 1, b.CustomModes},
		{store.KeyLeaderboard, 1, b.Leaderboard},
	}
	for _, w := range writes {
		if err := st.SaveEnvelope(ctx, w.key, w.version, w.value); err != nil {
			return fmt.Errorf("failed to apply %s: %w", w.key, err)
		}
	}
	return nil
}
