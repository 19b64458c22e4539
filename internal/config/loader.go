package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "ocr-reader"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "OCR_READER"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader on the global viper instance so that cobra
// flag bindings apply.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// NewLoaderWith creates a loader on v.
func NewLoaderWith(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// Load loads and validates configuration from the search paths,
// environment variables and defaults. A missing config file is not an error.
func (l *Loader) Load() (*Config, error) {
	return l.load("", true)
}

// LoadWithoutValidation is Load without the final validation.
func (l *Loader) LoadWithoutValidation() (*Config, error) {
	return l.load("", false)
}

// LoadWithFile loads configuration from a specific file path. An empty path
// falls back to Load.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	return l.load(configFile, true)
}

// LoadWithFileWithoutValidation is LoadWithFile without the final validation.
func (l *Loader) LoadWithFileWithoutValidation(configFile string) (*Config, error) {
	return l.load(configFile, false)
}

func (l *Loader) load(configFile string, validate bool) (*Config, error) {
	if configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configFile)
		}
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		l.addConfigPaths()
	}
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if validate {
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}
	return &config, nil
}

// Set sets a value in the configuration.
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

func (l *Loader) addConfigPaths() {
	for _, p := range GetConfigSearchPaths() {
		l.v.AddConfigPath(p)
	}
}

func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	// OCR_READER_SESSION_FAMILY -> session.family
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults registers every key so that AutomaticEnv can override it.
func (l *Loader) setDefaults() {
	d := DefaultConfig()

	l.v.SetDefault("log_level", d.LogLevel)
	l.v.SetDefault("verbose", d.Verbose)

	l.v.SetDefault("session.family", d.Session.Family)
	l.v.SetDefault("session.target_label", d.Session.TargetLabel)
	l.v.SetDefault("session.dedup_window", d.Session.DedupWindow)
	l.v.SetDefault("session.accept_threshold", d.Session.AcceptThreshold)

	l.v.SetDefault("capture.interval", d.Capture.Interval)
	l.v.SetDefault("capture.square_crop", d.Capture.SquareCrop)
	l.v.SetDefault("capture.flip_horizontal", d.Capture.FlipH)
	l.v.SetDefault("capture.flip_vertical", d.Capture.FlipV)

	l.v.SetDefault("matcher.jis_threshold", d.Matcher.JIS)
	l.v.SetDefault("matcher.din_threshold", d.Matcher.DIN)
	l.v.SetDefault("matcher.short_threshold", d.Matcher.Short)
	l.v.SetDefault("matcher.ln_threshold", d.Matcher.LN)
	l.v.SetDefault("matcher.suffix_retry_below", d.Matcher.SuffixRetryBelow)
	l.v.SetDefault("matcher.din_suffix_threshold", d.Matcher.DINSuffix)
	l.v.SetDefault("matcher.jis_suffix_threshold", d.Matcher.JISSuffix)

	l.v.SetDefault("aggregate.early_exit_confidence", d.Aggregate.EarlyExitConfidence)
	l.v.SetDefault("aggregate.max_width", d.Aggregate.MaxWidth)
	l.v.SetDefault("aggregate.group_max_gap", d.Aggregate.GroupMaxGap)
	l.v.SetDefault("aggregate.group_max_vertical", d.Aggregate.GroupMaxVertical)
	l.v.SetDefault("aggregate.variants", d.Aggregate.Variants)
	l.v.SetDefault("aggregate.min_glyph_size", d.Aggregate.MinGlyphSize)
	l.v.SetDefault("aggregate.jis_word_separation", d.Aggregate.JISWordSeparation)
	l.v.SetDefault("aggregate.din_word_separation", d.Aggregate.DINWordSeparation)

	l.v.SetDefault("recognizer.backend", d.Recognizer.Backend)
	l.v.SetDefault("recognizer.language", d.Recognizer.Language)
	l.v.SetDefault("recognizer.tessdata_path", d.Recognizer.TessdataPath)

	l.v.SetDefault("store.driver", d.Store.Driver)
	l.v.SetDefault("store.dsn", d.Store.DSN)

	l.v.SetDefault("storage.image_dir", d.Storage.Evidence.Dir)
	l.v.SetDefault("storage.overlay_color", d.Storage.Evidence.Color)
	l.v.SetDefault("storage.jpeg_quality", d.Storage.Evidence.Quality)
	l.v.SetDefault("storage.export_dir", d.Storage.ExportDir)

	l.v.SetDefault("server.host", d.Server.Host)
	l.v.SetDefault("server.port", d.Server.Port)
	l.v.SetDefault("server.cors_origin", d.Server.CORSOrigin)
	l.v.SetDefault("server.max_upload_mb", d.Server.MaxUploadMB)
	l.v.SetDefault("server.timeout_sec", d.Server.TimeoutSec)
	l.v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	l.v.SetDefault("vocabulary.file", d.Vocabulary.File)
}

// GetResolvedConfig returns the current resolved settings for debugging.
func (l *Loader) GetResolvedConfig() map[string]any {
	return l.v.AllSettings()
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// GenerateDefaultConfigFile writes the default configuration as YAML.
func GenerateDefaultConfigFile(filename string) error {
	if filename == "" {
		filename = ConfigFileName + ".yaml"
	}
	d := DefaultConfig()
	data, err := Marshal(&d)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

// GetConfigSearchPaths returns the paths where configuration files are searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}
	home, homeErr := os.UserHomeDir()
	if homeErr == nil {
		paths = append(paths, filepath.Join(home, ".ocr-reader"))
	}
	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, "ocr-reader"))
	} else if homeErr == nil {
		paths = append(paths, filepath.Join(home, ".config", "ocr-reader"))
	}
	return append(paths, "/etc/ocr-reader")
}
