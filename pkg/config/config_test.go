package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Polling.Limit != 100 || cfg.Polling.Timeout != 30 {
		t.Errorf("defaults not applied: %+v", cfg.Polling)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level = %q", cfg.Logging.Level)
	}
}

func TestLoadConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.Telegram.Token = "123:abc"
	cfg.Telegram.Username = "relay_bot"
	cfg.Dispatch.QueueSize = 42
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Telegram.Token != "123:abc" || loaded.Dispatch.QueueSize != 42 {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := DefaultConfig()
	cfg.Telegram.Token = "from-file"
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PICORELAY_TELEGRAM_TOKEN", "from-env")
	t.Setenv("PICORELAY_POLLING_TIMEOUT", "5")

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Telegram.Token != "from-env" {
		t.Errorf("env must override file, got %q", loaded.Telegram.Token)
	}
	if loaded.Polling.Timeout != 5 {
		t.Errorf("timeout = %d, want 5", loaded.Polling.Timeout)
	}
}

func TestFlexibleStringSlice_MixedTypes(t *testing.T) {
	var f FlexibleStringSlice
	if err := json.Unmarshal([]byte(`["123", 456, "abc"]`), &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []string{"123", "456", "abc"}
	if len(f) != len(want) {
		t.Fatalf("len = %d", len(f))
	}
	for i := range want {
		if f[i] != want[i] {
			t.Errorf("f[%d] = %q, want %q", i, f[i], want[i])
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("missing token must fail validation")
	}

	cfg.Telegram.Token = "123:abc"
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cfg.Polling.Limit = 500
	if err := cfg.Validate(); err == nil {
		t.Error("out-of-range polling limit must fail validation")
	}
}
