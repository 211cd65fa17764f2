package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("IRIS_BASE_URL", "http://iris:3000")
	t.Setenv("IRIS_WS_URL", "ws://iris:3000/ws")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BotPrefix != "!othello" || cfg.EgressMode != "http" {
		t.Fatalf("prefix=%q egress=%q", cfg.BotPrefix, cfg.EgressMode)
	}
	if cfg.AuthorityTimeout != 3*time.Second || cfg.ThinkDelay != 700*time.Millisecond || cfg.GuardTTL != 30*time.Second {
		t.Fatalf("durations %v %v %v", cfg.AuthorityTimeout, cfg.ThinkDelay, cfg.GuardTTL)
	}
	if cfg.DefaultDifficulty != 2 || !cfg.RenderImages || cfg.AuthorityURL != "" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "legacy" || !cfg.Log.ToConsole || cfg.Log.ToFile {
		t.Fatalf("log defaults %+v", cfg.Log)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("BOT_PREFIX", "/o")
	t.Setenv("ALLOWED_ROOMS", " a, ,b ")
	t.Setenv("AUTHORITY_URL", "http://authority:8081")
	t.Setenv("AUTHORITY_TIMEOUT", "1500ms")
	t.Setenv("BOT_THINK_DELAY", "0s")
	t.Setenv("DEFAULT_DIFFICULTY", "3")
	t.Setenv("RENDER_IMAGES", "false")
	t.Setenv("EGRESS_MODE", "AUTO")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BotPrefix != "/o" || strings.Join(cfg.AllowedRooms, "|") != "a|b" {
		t.Fatalf("prefix=%q rooms=%v", cfg.BotPrefix, cfg.AllowedRooms)
	}
	if cfg.AuthorityTimeout != 1500*time.Millisecond || cfg.ThinkDelay != 0 {
		t.Fatalf("durations %v %v", cfg.AuthorityTimeout, cfg.ThinkDelay)
	}
	if cfg.DefaultDifficulty != 3 || cfg.RenderImages || cfg.EgressMode != "auto" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected %+v", cfg)
	}
}

func TestLoadRejects(t *testing.T) {
	cases := map[string][2]string{
		"difficulty": {"DEFAULT_DIFFICULTY", "4"},
		"duration":   {"AUTHORITY_TIMEOUT", "soon"},
		"bool":       {"RENDER_IMAGES", "maybe"},
		"egress":     {"EGRESS_MODE", "pigeon"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%s accepted", kv[0], kv[1])
			}
		})
	}
}

func TestLoadRequiresIris(t *testing.T) {
	t.Setenv("IRIS_BASE_URL", "")
	t.Setenv("IRIS_WS_URL", "ws://x")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "IRIS_BASE_URL") {
		t.Fatalf("expected IRIS_BASE_URL error, got %v", err)
	}
}

func TestLoadAuthority(t *testing.T) {
	t.Setenv("AUTHORITY_ADDR", "127.0.0.1:9000")
	t.Setenv("AUTHORITY_SEED", "42")
	cfg, err := LoadAuthority()
	if err != nil {
		t.Fatalf("LoadAuthority: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" || cfg.Seed != 42 || cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("unexpected %+v", cfg)
	}
	if !strings.HasSuffix(cfg.Log.File, "authority.log") {
		t.Fatalf("log file %q", cfg.Log.File)
	}
}
