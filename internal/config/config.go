package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Sigitfad/ocr-reader/internal/aggregate"
	"github.com/Sigitfad/ocr-reader/internal/capture"
	"github.com/Sigitfad/ocr-reader/internal/enhance"
	"github.com/Sigitfad/ocr-reader/internal/evidence"
	"github.com/Sigitfad/ocr-reader/internal/match"
	"github.com/Sigitfad/ocr-reader/internal/recognizer"
	"github.com/Sigitfad/ocr-reader/internal/session"
	"github.com/Sigitfad/ocr-reader/internal/store"
	"github.com/Sigitfad/ocr-reader/internal/vocab"
)

// Config represents the complete configuration of the reader. It is loaded
// from configuration files, environment variables and command-line flags.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Session    session.Config    `mapstructure:"session" yaml:"session" json:"session"`
	Capture    capture.Options   `mapstructure:"capture" yaml:"capture" json:"capture"`
	Matcher    match.Params      `mapstructure:"matcher" yaml:"matcher" json:"matcher"`
	Aggregate  aggregate.Config  `mapstructure:"aggregate" yaml:"aggregate" json:"aggregate"`
	Recognizer recognizer.Config `mapstructure:"recognizer" yaml:"recognizer" json:"recognizer"`
	Store      store.Config      `mapstructure:"store" yaml:"store" json:"store"`
	Storage    StorageConfig     `mapstructure:"storage" yaml:"storage" json:"storage"`
	Server     ServerConfig      `mapstructure:"server" yaml:"server" json:"server"`
	Vocabulary VocabularyConfig  `mapstructure:"vocabulary" yaml:"vocabulary" json:"vocabulary"`
}

// StorageConfig contains the evidence image and report locations.
type StorageConfig struct {
	Evidence  evidence.Options `mapstructure:",squash" yaml:",inline" json:"evidence"`
	ExportDir string           `mapstructure:"export_dir" yaml:"export_dir" json:"export_dir"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// VocabularyConfig points at an optional YAML file replacing the built-in
// code lists.
type VocabularyConfig struct {
	File string `mapstructure:"file" yaml:"file" json:"file"`
}

// ValidationError names the configuration key that failed validation.
type ValidationError struct {
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Key, e.Message)
}

func invalid(key, format string, args ...any) error {
	return &ValidationError{Key: key, Message: fmt.Sprintf(format, args...)}
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		LogLevel:   "info",
		Session:    session.DefaultConfig(),
		Capture:    capture.DefaultOptions(),
		Matcher:    match.DefaultParams(),
		Aggregate:  aggregate.DefaultConfig(),
		Recognizer: recognizer.DefaultConfig(),
		Store:      store.DefaultConfig(),
		Storage: StorageConfig{
			Evidence:  evidence.DefaultOptions(),
			ExportDir: "file_excel",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     20,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
		},
	}
}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration. The returned error is a
// *ValidationError for the first offending key.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return invalid("log_level", "%q (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if _, err := vocab.ParseFamily(c.Session.Family); err != nil {
		return invalid("session.family", "%v", err)
	}
	if err := validateDuration(c.Session.DedupWindow, "session.dedup_window"); err != nil {
		return err
	}
	if err := validateDuration(c.Capture.Interval, "capture.interval"); err != nil {
		return err
	}

	thresholds := []struct {
		key   string
		value float64
	}{
		{"session.accept_threshold", c.Session.AcceptThreshold},
		{"matcher.jis_threshold", c.Matcher.JIS},
		{"matcher.din_threshold", c.Matcher.DIN},
		{"matcher.short_threshold", c.Matcher.Short},
		{"matcher.ln_threshold", c.Matcher.LN},
		{"matcher.suffix_retry_below", c.Matcher.SuffixRetryBelow},
		{"matcher.din_suffix_threshold", c.Matcher.DINSuffix},
		{"matcher.jis_suffix_threshold", c.Matcher.JISSuffix},
		{"aggregate.early_exit_confidence", c.Aggregate.EarlyExitConfidence},
	}
	for _, th := range thresholds {
		if err := validateThreshold(th.value, th.key); err != nil {
			return err
		}
	}

	if c.Aggregate.MaxWidth <= 0 {
		return invalid("aggregate.max_width", "%d (must be positive)", c.Aggregate.MaxWidth)
	}
	if c.Aggregate.GroupMaxGap < 0 || c.Aggregate.GroupMaxVertical < 0 {
		return invalid("aggregate.group_max_gap", "grouping tolerances must not be negative")
	}
	if _, err := enhance.Select(c.Aggregate.Variants); err != nil {
		return invalid("aggregate.variants", "%v", err)
	}

	switch c.Recognizer.Backend {
	case "", recognizer.BackendTesseract, recognizer.BackendNone:
	default:
		return invalid("recognizer.backend", "%q (must be tesseract or none)", c.Recognizer.Backend)
	}

	switch c.Store.Driver {
	case store.DriverSQLite, store.DriverPostgres:
	default:
		return invalid("store.driver", "%q (must be sqlite or postgres)", c.Store.Driver)
	}
	if c.Store.DSN == "" {
		return invalid("store.dsn", "must not be empty")
	}

	if _, err := evidence.ParseColor(c.Storage.Evidence.Color); err != nil {
		return invalid("storage.overlay_color", "%v", err)
	}
	if q := c.Storage.Evidence.Quality; q < 1 || q > 100 {
		return invalid("storage.jpeg_quality", "%d (must be between 1 and 100)", q)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return invalid("server.port", "%d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return invalid("server.max_upload_mb", "%d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return invalid("server.timeout_sec", "%d (must be positive)", c.Server.TimeoutSec)
	}
	return nil
}

// Vocabularies returns the built-in vocabularies, or the ones read from the
// configured override file.
func (c *Config) Vocabularies() (vocab.Set, error) {
	if c.Vocabulary.File == "" {
		return vocab.Builtin(), nil
	}
	set, err := vocab.LoadFile(c.Vocabulary.File)
	if err != nil {
		return vocab.Set{}, fmt.Errorf("vocabulary %s: %w", c.Vocabulary.File, err)
	}
	return set, nil
}

// Addr returns the server listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func validateThreshold(value float64, key string) error {
	if value < 0.0 || value > 1.0 {
		return invalid(key, "%f (must be between 0.0 and 1.0)", value)
	}
	return nil
}

func validateDuration(d time.Duration, key string) error {
	if d <= 0 {
		return invalid(key, "%s (must be positive)", d)
	}
	return nil
}
