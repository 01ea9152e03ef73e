package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Server.URL != nil || cfg.Play.Player != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[server]
url = "http://trivia.local:5000"
timeout = "3s"

[play]
player = "Ada"

[leaderboard]
page = 2
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.URL == nil || *cfg.Server.URL != "http://trivia.local:5000" {
		t.Fatalf("unexpected server url: %v", cfg.Server.URL)
	}
	if cfg.Server.Timeout == nil || *cfg.Server.Timeout != "3s" {
		t.Fatalf("unexpected timeout: %v", cfg.Server.Timeout)
	}
	if cfg.Play.Player == nil || *cfg.Play.Player != "Ada" {
		t.Fatalf("unexpected player: %v", cfg.Play.Player)
	}
	if cfg.Leaderboard.Page == nil || *cfg.Leaderboard.Page != 2 {
		t.Fatalf("unexpected page: %v", cfg.Leaderboard.Page)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server]\nurll = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	if got := DefaultConfigPath(); got != filepath.Join("/tmp/cfg", "tuivia", "config.toml") {
		t.Fatalf("unexpected config path %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/tmp/data", "tuivia", "history.db") {
		t.Fatalf("unexpected db path %s", got)
	}
}
