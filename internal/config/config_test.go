package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", cfg.Currency)
	}
	if cfg.PluginTimeout != 10*time.Second {
		t.Errorf("PluginTimeout = %v", cfg.PluginTimeout)
	}
	if cfg.LogLevel != "warn" || cfg.LogFormat != "text" {
		t.Errorf("log defaults = %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
allow: [hex, base64]
min_confidence: 0.25
currency: eur
rates_url: http://localhost:9999/rates
plugin_timeout: 2s
log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Allow) != 2 || cfg.Allow[0] != "hex" {
		t.Errorf("Allow = %v", cfg.Allow)
	}
	if cfg.MinConfidence != 0.25 {
		t.Errorf("MinConfidence = %v", cfg.MinConfidence)
	}
	if cfg.Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR (upper-cased)", cfg.Currency)
	}
	if cfg.RatesURL != "http://localhost:9999/rates" {
		t.Errorf("RatesURL = %q", cfg.RatesURL)
	}
	if cfg.PluginTimeout != 2*time.Second {
		t.Errorf("PluginTimeout = %v", cfg.PluginTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	// Unset file keys keep their defaults.
	if cfg.Listen != DefaultListen {
		t.Errorf("Listen = %q, want default", cfg.Listen)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Currency != DefaultCurrency {
		t.Errorf("Currency = %q", cfg.Currency)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("allow: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on malformed YAML")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("currency: EUR\nmin_confidence: 0.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TOKENLENS_CURRENCY", "jpy")
	t.Setenv("TOKENLENS_ALLOW", "hex, uuid ,")
	t.Setenv("TOKENLENS_MIN_CONFIDENCE", "0.75")
	t.Setenv("TOKENLENS_PLUGIN_TIMEOUT", "3s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Currency != "JPY" {
		t.Errorf("Currency = %q, want JPY", cfg.Currency)
	}
	if len(cfg.Allow) != 2 || cfg.Allow[0] != "hex" || cfg.Allow[1] != "uuid" {
		t.Errorf("Allow = %v", cfg.Allow)
	}
	if cfg.MinConfidence != 0.75 {
		t.Errorf("MinConfidence = %v", cfg.MinConfidence)
	}
	if cfg.PluginTimeout != 3*time.Second {
		t.Errorf("PluginTimeout = %v", cfg.PluginTimeout)
	}
}

func TestEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("TOKENLENS_MIN_CONFIDENCE", "lots")
	t.Setenv("TOKENLENS_PLUGIN_TIMEOUT", "-5s")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.MinConfidence != 0 {
		t.Errorf("MinConfidence = %v, want 0", cfg.MinConfidence)
	}
	if cfg.PluginTimeout != DefaultPluginTimeout {
		t.Errorf("PluginTimeout = %v, want default", cfg.PluginTimeout)
	}
}
