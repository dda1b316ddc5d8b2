package progress

import (
	"context"
	"encoding/json"
	"time"

	"github.com/verte-zerg/combodash/internal/catalog"
	"github.com/verte-zerg/combodash/internal/model"
	"github.com/verte-zerg/combodash/internal/store"
)

// Envelope schema versions.
const (
	statsVersion       = 1
	leaderboardVersion = 1
	achievementVersion = 1
	presetsVersion     = 1
	settingsVersion    = 1
)

// Service is the injectable progression layer: it owns the persisted
// leaderboard, achievement, preset, and lifetime-stat envelopes.
type Service struct {
	store *store.Store
}

// NewService wraps a store.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// RecordSession persists a finished session and folds it into the
// lifetime stats. It returns the updated lifetime aggregates.
func (s *Service) RecordSession(ctx context.Context, sum model.SessionSummary, attempts []model.AttemptResult) (model.LifetimeStats, error) {
	if _, err := s.store.InsertSession(ctx, sum); err != nil {
		return model.LifetimeStats{}, err
	}

	var updated model.LifetimeStats
	err := s.store.UpdateEnvelope(ctx, store.KeyStats, func(version int, data []byte) (int, any, error) {
		life := decodeStats(version, data)
		life.Sessions++
		life.PlaytimeMs += sum.DurationMs
		life.Attempts += sum.Attempts
		life.Successes += sum.Successes
		life.Errors += sum.Errors
		if sum.TotalScore > life.BestScore {
			life.BestScore = sum.TotalScore
		}
		if sum.BestStreak > life.BestStreak {
			life.BestStreak = sum.BestStreak
		}
		if life.CompletedByCat == nil {
			life.CompletedByCat = map[model.Category]int{}
		}
		if life.PlayedModes == nil {
			life.PlayedModes = map[model.Mode]int{}
		}
		life.PlayedModes[sum.Mode]++
		for _, a := range attempts {
			if !a.Success {
				continue
			}
			if seq, ok := catalog.ByID(a.SequenceID); ok {
				life.CompletedByCat[seq.Category]++
			}
		}
		updated = life
		return statsVersion, life, nil
	})
	if err != nil {
		return model.LifetimeStats{}, err
	}
	return updated, nil
}

// Lifetime loads the lifetime aggregates, defaulting on any failure.
func (s *Service) Lifetime(ctx context.Context) (model.LifetimeStats, error) {
	var life model.LifetimeStats
	version, err := s.store.LoadEnvelope(ctx, store.KeyStats, &life)
	if err != nil {
		return model.LifetimeStats{}, err
	}
	if version == 0 {
		return model.LifetimeStats{}, nil
	}
	return life, nil
}

// LoadBoard reads every mode's leaderboard, defaulting to empty.
func (s *Service) LoadBoard(ctx context.Context) (Board, error) {
	board := Board{}
	version, err := s.store.LoadEnvelope(ctx, store.KeyLeaderboard, &board)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return Board{}, nil
	}
	return board, nil
}

// AddEntry inserts a leaderboard entry under the store's
// read-modify-write lock.
func (s *Service) AddEntry(ctx context.Context, mode model.Mode, entry model.LeaderboardEntry) error {
	return s.store.UpdateEnvelope(ctx, store.KeyLeaderboard, func(version int, data []byte) (int, any, error) {
		board := Board{}
		if data != nil {
			if err := json.Unmarshal(data, &board); err != nil {
				board = Board{}
			}
		}
		Add(board, mode, entry)
		return leaderboardVersion, board, nil
	})
}

// LoadTracker reads achievement state into a tracker, defaulting to a
// fresh tracker on absence or corruption.
func (s *Service) LoadTracker(ctx context.Context) (*Tracker, error) {
	states := map[AchievementID]model.AchievementState{}
	version, err := s.store.LoadEnvelope(ctx, store.KeyAchievements, &states)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return NewTracker(nil), nil
	}
	return NewTracker(states), nil
}

// SaveTracker persists achievement state.
func (s *Service) SaveTracker(ctx context.Context, t *Tracker) error {
	return s.store.SaveEnvelope(ctx, store.KeyAchievements, achievementVersion, t.States())
}

// LoadPresets reads saved custom-mode presets.
func (s *Service) LoadPresets(ctx context.Context) (map[string]model.CustomModeConfig, error) {
	presets := map[string]model.CustomModeConfig{}
	version, err := s.store.LoadEnvelope(ctx, store.KeyCustomPresets, &presets)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return map[string]model.CustomModeConfig{}, nil
	}
	return presets, nil
}

// SavePreset stores one named custom-mode preset.
func (s *Service) SavePreset(ctx context.Context, name string, cfg model.CustomModeConfig) error {
	return s.store.UpdateEnvelope(ctx, store.KeyCustomPresets, func(version int, data []byte) (int, any, error) {
		presets := map[string]model.CustomModeConfig{}
		if data != nil {
			if err := json.Unmarshal(data, &presets); err != nil {
				presets = map[string]model.CustomModeConfig{}
			}
		}
		presets[name] = cfg
		return presetsVersion, presets, nil
	})
}

// LoadSettings reads persisted preferences. Version 0 (absent or
// unparseable) yields defaults.
func (s *Service) LoadSettings(ctx context.Context) (model.Settings, error) {
	settings := model.DefaultSettings()
	version, err := s.store.LoadEnvelope(ctx, store.KeySettings, &settings)
	if err != nil {
		return model.Settings{}, err
	}
	if version == 0 {
		return model.DefaultSettings(), nil
	}
	return settings, nil
}

// SaveSettings persists preferences.
func (s *Service) SaveSettings(ctx context.Context, settings model.Settings) error {
	return s.store.SaveEnvelope(ctx, store.KeySettings, settingsVersion, settings)
}

// PlayedDailyOn reports whether a daily challenge was already recorded
// on the given UTC day.
func (s *Service) PlayedDailyOn(ctx context.Context, day time.Time) (bool, error) {
	count, err := s.store.CountSessionsOn(ctx, model.ModeDailyChallenge, day)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Sessions lists recent session history, newest first.
func (s *Service) Sessions(ctx context.Context, limit int) ([]model.SessionSummary, error) {
	return s.store.ListSessions(ctx, limit)
}

// decodeStats migrates a stats envelope forward. Version 0 (absent or
// unparseable) is the zero value; version 1 is current.
func decodeStats(version int, data []byte) model.LifetimeStats {
	if version == 0 || data == nil {
		return model.LifetimeStats{}
	}
	var life model.LifetimeStats
	if err := json.Unmarshal(data, &life); err != nil {
		return model.LifetimeStats{}
	}
	return life
}
