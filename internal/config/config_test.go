package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/shotlog/internal/model"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("expected missing file to be ignored: %v", err)
	}
	if cfg.Brew.GrindStep != nil || cfg.Stats.Days != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected empty path to fail")
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[brew]
grind-step = 0.25
target-time = 28

[stats]
curve-window = 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Brew.GrindStep == nil || *cfg.Brew.GrindStep != 0.25 {
		t.Fatalf("unexpected grind-step: %v", cfg.Brew.GrindStep)
	}
	if cfg.Brew.TargetTime == nil || *cfg.Brew.TargetTime != 28 {
		t.Fatalf("unexpected target-time: %v", cfg.Brew.TargetTime)
	}
	if cfg.Brew.MaxSteps != nil {
		t.Fatalf("expected unset max-steps to stay nil")
	}
	if cfg.Stats.CurveWindow == nil || *cfg.Stats.CurveWindow != 5 {
		t.Fatalf("unexpected curve-window: %v", cfg.Stats.CurveWindow)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[brew]\ngrind_step = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected unknown key to fail")
	}
}

func TestTemplateIsValidTOML(t *testing.T) {
	tmpl := Template(model.DefaultBrewConfig(), 30, 10)
	var cfg FileConfig
	if _, err := toml.Decode(tmpl, &cfg); err != nil {
		t.Fatalf("template is not valid toml: %v", err)
	}
	if cfg.Brew.GrindStep != nil {
		t.Fatalf("expected template values to be commented out")
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	if got := DefaultConfigPath(); got != filepath.Join("/tmp/cfg", "shotlog", "config.toml") {
		t.Fatalf("unexpected config path: %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/tmp/data", "shotlog", "shotlog.db") {
		t.Fatalf("unexpected db path: %s", got)
	}
}
