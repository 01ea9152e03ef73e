// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Server      ServerConfig      `toml:"server"`
	Play        PlayConfig        `toml:"play"`
	Leaderboard LeaderboardConfig `toml:"leaderboard"`
}

// ServerConfig maps trivia service settings.
type ServerConfig struct {
	URL     *string `toml:"url"`
	Timeout *string `toml:"timeout"`
}

// PlayConfig maps play-related settings.
type PlayConfig struct {
	Player *string `toml:"player"`
}

// LeaderboardConfig maps leaderboard view settings.
type LeaderboardConfig struct {
	Page *int `toml:"page"`
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
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
