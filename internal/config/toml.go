// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Play   PlayConfig        `toml:"play"`
	Input  InputConfig       `toml:"input"`
	Custom CustomModeSection `toml:"custom"`
}

// PlayConfig maps play-related settings.
type PlayConfig struct {
	Mode       *string  `toml:"mode"`
	Category   *string  `toml:"category"`
	DurationMs *int64   `toml:"duration-ms"`
	Target     *int     `toml:"target"`
	Initials   *string  `toml:"initials"`
	Deadzone   *float64 `toml:"deadzone"`
}

// InputConfig maps key bindings: key name to direction name.
type InputConfig struct {
	Bindings map[string]string `toml:"bindings"`
}

// CustomModeSection maps the custom-mode defaults.
type CustomModeSection struct {
	Name            *string  `toml:"name"`
	TimerType       *string  `toml:"timer-type"`
	TimerMs         *int64   `toml:"timer-ms"`
	Source          *string  `toml:"source"`
	Category        *string  `toml:"category"`
	Tier            *string  `toml:"tier"`
	Shuffle         *bool    `toml:"shuffle"`
	QueueLength     *int     `toml:"queue-length"`
	ErrorPolicy     *string  `toml:"error-policy"`
	Lives           *int     `toml:"lives"`
	PenaltyMs       *int64   `toml:"penalty-ms"`
	ScoreMultiplier *float64 `toml:"score-multiplier"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
