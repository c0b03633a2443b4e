package confloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gohermgo/respcache/internal/server/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "respcache.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  addr: "0.0.0.0:7000"
  rate_limit: 50
log:
  level: debug
`)

	cfg := config.Default()
	loader := NewLoader(WithConfigFile(path))
	if err := loader.Load(cfg); err != nil {
		t.Fatalf("Load() = %v", err)
	}

	if cfg.Server.Addr != "0.0.0.0:7000" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, "0.0.0.0:7000")
	}
	if cfg.Server.RateLimit != 50 {
		t.Errorf("Server.RateLimit = %d, want 50", cfg.Server.RateLimit)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	// Untouched fields keep their defaults.
	if cfg.Log.Format != config.DefaultLogFormat {
		t.Errorf("Log.Format = %q, want default %q", cfg.Log.Format, config.DefaultLogFormat)
	}
}

func TestLoadMissingFile(t *testing.T) {
	loader := NewLoader(WithConfigFile(filepath.Join(t.TempDir(), "absent.yaml")))
	if err := loader.Load(config.Default()); err == nil {
		t.Error("Load() with a missing file should fail")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  addr: "0.0.0.0:7000"
`)
	t.Setenv("RESPCACHE_SERVER_ADDR", "0.0.0.0:8000")
	t.Setenv("RESPCACHE_SERVER_RATE_LIMIT", "25")

	cfg := config.Default()
	loader := NewLoader(WithConfigFile(path))
	if err := loader.Load(cfg); err != nil {
		t.Fatalf("Load() = %v", err)
	}

	if cfg.Server.Addr != "0.0.0.0:8000" {
		t.Errorf("Server.Addr = %q, want env override %q", cfg.Server.Addr, "0.0.0.0:8000")
	}
	if cfg.Server.RateLimit != 25 {
		t.Errorf("Server.RateLimit = %d, want env override 25", cfg.Server.RateLimit)
	}
}

func TestLoadMapOverridesAll(t *testing.T) {
	t.Setenv("RESPCACHE_SERVER_ADDR", "0.0.0.0:8000")

	cfg := config.Default()
	loader := NewLoader()
	if err := loader.Load(cfg); err != nil {
		t.Fatalf("Load() = %v", err)
	}
	// Flag overrides are layered after Load.
	if err := loader.LoadMap(map[string]any{"server.addr": "127.0.0.1:9000"}); err != nil {
		t.Fatalf("LoadMap() = %v", err)
	}
	if err := loader.Unmarshal(cfg); err != nil {
		t.Fatalf("Unmarshal() = %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q, want map override %q", cfg.Server.Addr, "127.0.0.1:9000")
	}
}

func TestCustomEnvPrefix(t *testing.T) {
	t.Setenv("RC_LOG_LEVEL", "error")

	cfg := config.Default()
	loader := NewLoader(WithEnvPrefix("RC_"))
	if err := loader.Load(cfg); err != nil {
		t.Fatalf("Load() = %v", err)
	}

	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "error")
	}
}

func TestGetString(t *testing.T) {
	path := writeConfigFile(t, `
log:
  level: warn
`)

	loader := NewLoader(WithConfigFile(path))
	if err := loader.Load(config.Default()); err != nil {
		t.Fatalf("Load() = %v", err)
	}

	if got := loader.GetString("log.level"); got != "warn" {
		t.Errorf("GetString(log.level) = %q, want %q", got, "warn")
	}
}
