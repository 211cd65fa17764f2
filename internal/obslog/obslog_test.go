package obslog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/park285/Cheese-Othello-bot/internal/config"
)

type buffer struct{ strings.Builder }

func (b *buffer) Sync() error { return nil }

func TestLegacyFormat(t *testing.T) {
	var out buffer
	logger, c, err := build(config.Log{Level: "info", Format: "legacy", ToConsole: true}, &out)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer c.Close()
	logger.Debug("hidden")
	logger.Info("session_new_game", zap.String("session", "abc"))

	line := out.String()
	if strings.Contains(line, "hidden") {
		t.Fatalf("debug line leaked at info level: %q", line)
	}
	if !strings.Contains(line, " | INFO | ") || !strings.Contains(line, "session_new_game") {
		t.Fatalf("unexpected legacy line %q", line)
	}
}

func TestJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bot.log")
	logger, c, err := build(config.Log{Level: "debug", Format: "json", ToFile: true, File: path}, zapcore.AddSync(&buffer{}))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	logger.Debug("authority_fallback", zap.String("op", "move"))
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(raw))), &entry); err != nil {
		t.Fatalf("not json: %v (%q)", err, raw)
	}
	if entry["msg"] != "authority_fallback" || entry["op"] != "move" || entry["level"] != "debug" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestLDefaultsToNop(t *testing.T) {
	if L() == nil {
		t.Fatalf("L returned nil")
	}
	if parseLevel("bogus") != zapcore.InfoLevel || parseLevel("WARN") != zapcore.WarnLevel {
		t.Fatalf("parseLevel mismatch")
	}
}
