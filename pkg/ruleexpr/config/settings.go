package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/ruleexpr/pkg/ruleexpr/expr"
	"github.com/randalmurphal/ruleexpr/pkg/ruleexpr/ruleset"
)

// Store drivers accepted by StoreSettings.Driver.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
)

// Environment variables read by ApplyEnv.
const (
	EnvMaxDepth    = "RULEEXPR_MAX_DEPTH"
	EnvLogLevel    = "RULEEXPR_LOG_LEVEL"
	EnvStoreDriver = "RULEEXPR_STORE_DRIVER"
	EnvStorePath   = "RULEEXPR_STORE_PATH"
)

// ErrInvalidSettings indicates settings that fail validation.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings configures an engine.
type Settings struct {
	// MaxDepth limits expression nesting. Default: expr.DefaultMaxDepth.
	MaxDepth int

	// LogLevel is one of debug, info, warn, error. Default: info.
	LogLevel string

	// Metrics enables OpenTelemetry metrics. Default: false.
	Metrics bool

	// Tracing enables OpenTelemetry spans. Default: false.
	Tracing bool

	// SlowEvalThreshold logs evaluations slower than this at warn level.
	// Zero disables the check.
	SlowEvalThreshold time.Duration

	// RuleFiles are rule files loaded at startup.
	RuleFiles []string

	// Store selects where rules are persisted.
	Store StoreSettings
}

// StoreSettings selects a rule store.
type StoreSettings struct {
	// Driver is one of memory, sqlite, bolt. Default: memory.
	Driver string

	// Path is the database path for sqlite and bolt.
	Path string
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		MaxDepth: expr.DefaultMaxDepth,
		LogLevel: "info",
		Store:    StoreSettings{Driver: DriverMemory},
	}
}

// FromFile loads settings from a file, auto-detecting format by extension.
// Supported extensions: .yaml, .yml, .json
func FromFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return Settings{}, fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// FromYAML parses YAML data into Settings.
func FromYAML(data []byte) (Settings, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Settings{}, fmt.Errorf("parse yaml: %w", err)
	}
	return FromMap(m), nil
}

// FromJSON parses JSON data into Settings.
func FromJSON(data []byte) (Settings, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Settings{}, fmt.Errorf("parse json: %w", err)
	}
	return FromMap(m), nil
}

// FromMap builds Settings from a decoded document, starting from Default.
// A nil map yields Default.
func FromMap(m map[string]any) Settings {
	v := values(m)
	d := Default()
	store := v.Sub("store")

	return Settings{
		MaxDepth:          v.Int("max_depth", d.MaxDepth),
		LogLevel:          v.String("log_level", d.LogLevel),
		Metrics:           v.Bool("metrics", d.Metrics),
		Tracing:           v.Bool("tracing", d.Tracing),
		SlowEvalThreshold: v.Duration("slow_eval_threshold", d.SlowEvalThreshold),
		RuleFiles:         v.StringSlice("rule_files", d.RuleFiles),
		Store: StoreSettings{
			Driver: store.String("driver", d.Store.Driver),
			Path:   store.String("path", d.Store.Path),
		},
	}
}

// ApplyEnv overrides settings from RULEEXPR_* environment variables.
// Unset variables leave the current value.
func (s *Settings) ApplyEnv() error {
	if raw, ok := os.LookupEnv(EnvMaxDepth); ok {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidSettings, EnvMaxDepth, raw)
		}
		s.MaxDepth = n
	}
	if raw, ok := os.LookupEnv(EnvLogLevel); ok {
		s.LogLevel = strings.TrimSpace(raw)
	}
	if raw, ok := os.LookupEnv(EnvStoreDriver); ok {
		s.Store.Driver = strings.TrimSpace(raw)
	}
	if raw, ok := os.LookupEnv(EnvStorePath); ok {
		s.Store.Path = raw
	}
	return nil
}

// Validate reports the first problem with s.
func (s Settings) Validate() error {
	if s.MaxDepth <= 0 {
		return fmt.Errorf("%w: max_depth must be positive, got %d", ErrInvalidSettings, s.MaxDepth)
	}
	if _, err := parseLevel(s.LogLevel); err != nil {
		return err
	}
	if s.SlowEvalThreshold < 0 {
		return fmt.Errorf("%w: slow_eval_threshold must not be negative", ErrInvalidSettings)
	}

	switch s.Store.Driver {
	case DriverMemory:
	case DriverSQLite, DriverBolt:
		if s.Store.Path == "" {
			return fmt.Errorf("%w: store driver %s requires a path", ErrInvalidSettings, s.Store.Driver)
		}
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalidSettings, s.Store.Driver)
	}
	return nil
}

// Level returns the slog level for LogLevel, or slog.LevelInfo if it is invalid.
func (s Settings) Level() slog.Level {
	level, err := parseLevel(s.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// NewLogger returns a JSON logger writing to w at the configured level.
func (s Settings) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: s.Level()}))
}

// OpenStore builds the configured rule store.
func (s Settings) OpenStore() (ruleset.Store, error) {
	switch s.Store.Driver {
	case DriverMemory, "":
		return ruleset.NewMemoryStore(), nil
	case DriverSQLite:
		if s.Store.Path == "" {
			return nil, fmt.Errorf("%w: store driver sqlite requires a path", ErrInvalidSettings)
		}
		store, err := ruleset.NewSQLiteStore(s.Store.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverBolt:
		if s.Store.Path == "" {
			return nil, fmt.Errorf("%w: store driver bolt requires a path", ErrInvalidSettings)
		}
		store, err := ruleset.NewBoltStore(s.Store.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown store driver %q", ErrInvalidSettings, s.Store.Driver)
	}
}

func parseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: unknown log level %q", ErrInvalidSettings, name)
	}
}
