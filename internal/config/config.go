package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Log configures the global logger.
type Log struct {
	Level     string
	Format    string // legacy | json | console
	ToConsole bool
	ToFile    bool
	File      string
	Caller    bool
}

type AppConfig struct {
	IrisBaseURL string
	IrisWSURL   string
	EgressMode  string // http | ws | auto
	DryRun      bool

	BotPrefix    string
	AllowedRooms []string

	XUserID    string
	XUserEmail string
	XSessionID string

	AuthorityURL     string
	AuthorityTimeout time.Duration

	ThinkDelay        time.Duration
	DefaultDifficulty int

	RedisURL string
	GuardTTL time.Duration

	MessagesDir  string
	RenderImages bool

	Log Log
}

// AuthorityConfig is what cmd/othello-authority needs.
type AuthorityConfig struct {
	Addr           string
	RequestTimeout time.Duration
	Seed           int64
	Log            Log
}

const (
	defaultPrefix           = "!othello"
	defaultAuthorityTimeout = 3 * time.Second
	defaultThinkDelay       = 700 * time.Millisecond
	defaultDifficulty       = 2
	defaultGuardTTL         = 30 * time.Second
	defaultAuthorityAddr    = ":8081"
)

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		EgressMode:        "http",
		BotPrefix:         defaultPrefix,
		AuthorityTimeout:  defaultAuthorityTimeout,
		ThinkDelay:        defaultThinkDelay,
		DefaultDifficulty: defaultDifficulty,
		GuardTTL:          defaultGuardTTL,
		RenderImages:      true,
	}

	cfg.IrisBaseURL = env("IRIS_BASE_URL")
	cfg.IrisWSURL = env("IRIS_WS_URL")
	if v := env("EGRESS_MODE"); v != "" {
		cfg.EgressMode = strings.ToLower(v)
	}
	if v := env("BOT_PREFIX"); v != "" {
		cfg.BotPrefix = v
	}
	cfg.AllowedRooms = splitList(env("ALLOWED_ROOMS"))

	cfg.XUserID = env("X_USER_ID")
	cfg.XUserEmail = env("X_USER_EMAIL")
	cfg.XSessionID = env("X_SESSION_ID")

	cfg.AuthorityURL = env("AUTHORITY_URL")
	cfg.RedisURL = env("REDIS_URL")
	cfg.MessagesDir = env("MESSAGES_DIR")

	var err error
	if cfg.DryRun, err = envBool("DRY_RUN", false); err != nil {
		return nil, err
	}
	if cfg.RenderImages, err = envBool("RENDER_IMAGES", cfg.RenderImages); err != nil {
		return nil, err
	}
	if cfg.AuthorityTimeout, err = envDuration("AUTHORITY_TIMEOUT", cfg.AuthorityTimeout); err != nil {
		return nil, err
	}
	if cfg.ThinkDelay, err = envDuration("BOT_THINK_DELAY", cfg.ThinkDelay); err != nil {
		return nil, err
	}
	if cfg.GuardTTL, err = envDuration("GUARD_TTL", cfg.GuardTTL); err != nil {
		return nil, err
	}
	if v := env("DEFAULT_DIFFICULTY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 3 {
			return nil, fmt.Errorf("DEFAULT_DIFFICULTY must be 1..3, got %q", v)
		}
		cfg.DefaultDifficulty = n
	}
	if cfg.Log, err = loadLog("bot.log"); err != nil {
		return nil, err
	}

	if cfg.IrisBaseURL == "" {
		return nil, errors.New("IRIS_BASE_URL is required")
	}
	if cfg.IrisWSURL == "" {
		return nil, errors.New("IRIS_WS_URL is required")
	}
	switch cfg.EgressMode {
	case "http", "ws", "auto":
	default:
		return nil, fmt.Errorf("EGRESS_MODE must be http, ws or auto, got %q", cfg.EgressMode)
	}
	return cfg, nil
}

// LoadAuthority reads the settings of the reference move authority.
func LoadAuthority() (*AuthorityConfig, error) {
	cfg := &AuthorityConfig{Addr: defaultAuthorityAddr, RequestTimeout: 5 * time.Second, Seed: time.Now().UnixNano()}
	if v := env("AUTHORITY_ADDR"); v != "" {
		cfg.Addr = v
	}
	var err error
	if cfg.RequestTimeout, err = envDuration("AUTHORITY_REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return nil, err
	}
	if v := env("AUTHORITY_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("AUTHORITY_SEED: %w", err)
		}
		cfg.Seed = n
	}
	if cfg.Log, err = loadLog("authority.log"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadLog(file string) (Log, error) {
	l := Log{Level: "info", Format: "legacy", ToConsole: true, File: filepath.Join("logs", file)}
	if v := env("LOG_LEVEL"); v != "" {
		l.Level = strings.ToLower(v)
	}
	if v := env("LOG_FORMAT"); v != "" {
		l.Format = strings.ToLower(v)
	}
	if v := env("LOG_FILE"); v != "" {
		l.File = v
	}
	var err error
	if l.ToConsole, err = envBool("LOG_TO_CONSOLE", l.ToConsole); err != nil {
		return l, err
	}
	if l.ToFile, err = envBool("LOG_TO_FILE", false); err != nil {
		return l, err
	}
	if l.Caller, err = envBool("LOG_CALLER", false); err != nil {
		return l, err
	}
	return l, nil
}

func env(key string) string { return strings.TrimSpace(os.Getenv(key)) }

func envBool(key string, def bool) (bool, error) {
	v := env(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := env(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return def, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
