package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sigitfad/ocr-reader/internal/config"
	"github.com/Sigitfad/ocr-reader/internal/version"
)

var (
	// Global configuration loader.
	configLoader *config.Loader
	// Global configuration.
	globalConfig *config.Config
	// Configuration file path.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ocr-reader",
	Short: "Battery label reader for JIS and DIN codes",
	Long: `ocr-reader reads JIS and DIN battery type codes from label images,
corrects common OCR confusions, matches them against the known code lists
and records every accepted detection with its OK / Not OK status.

This tool provides:
- Static scans of label images
- Live scanning of a capture directory
- Daily detection records in SQLite or PostgreSQL
- Excel reports with evidence thumbnails
- An HTTP and WebSocket API for operator dashboards

Examples:
  ocr-reader scan label.jpg --family DIN --target "LN3 600A"
  ocr-reader match 55023L
  ocr-reader watch ./frames
  ocr-reader serve --port 8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, _ := cmd.PersistentFlags().GetBool("version")
		if v {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "ocr-reader version "+version.String())
			return nil
		}
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command for testing purposes.
// This allows tests to execute commands without calling os.Exit().
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags that apply to all commands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is search in ., $HOME/.ocr-reader, $HOME/.config/ocr-reader, /etc/ocr-reader)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("family", "JIS", "active code family (JIS or DIN)")
	rootCmd.PersistentFlags().String("target", "", "target label detections are compared with")
	rootCmd.PersistentFlags().String("db", "", "database DSN (overrides store.dsn)")
	rootCmd.PersistentFlags().Bool("version", false, "print version information and exit")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("session.family", rootCmd.PersistentFlags().Lookup("family"))
	_ = viper.BindPFlag("session.target_label", rootCmd.PersistentFlags().Lookup("target"))
	_ = viper.BindPFlag("store.dsn", rootCmd.PersistentFlags().Lookup("db"))

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if globalConfig == nil {
			initConfig()
		}
		slog.SetDefault(newLogger(GetConfig()))
	}
}

// newLogger builds the JSON logger for cfg. The verbose flag wins over
// log_level.
func newLogger(cfg *config.Config) *slog.Logger {
	var logLevel slog.Level
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			logLevel = slog.LevelDebug
		case "warn":
			logLevel = slog.LevelWarn
		case "error":
			logLevel = slog.LevelError
		default:
			logLevel = slog.LevelInfo
		}
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	configLoader = config.NewLoader()

	var err error
	if cfgFile != "" {
		globalConfig, err = configLoader.LoadWithFileWithoutValidation(cfgFile)
	} else {
		globalConfig, err = configLoader.LoadWithoutValidation()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}

// GetConfig returns the global configuration.
func GetConfig() *config.Config {
	if globalConfig == nil {
		initConfig()
	}

	// Reload configuration to ensure CLI flags are included
	// This is necessary because flag binding happens after initial config loading
	loader := GetConfigLoader()
	cfg := config.DefaultConfig()
	if err := loader.GetViper().Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling updated configuration: %v\n", err)
		return globalConfig
	}
	return &cfg
}

// GetValidConfig is GetConfig followed by validation.
func GetValidConfig() (*config.Config, error) {
	cfg := GetConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	return cfg, nil
}

// GetConfigLoader returns the global configuration loader.
func GetConfigLoader() *config.Loader {
	if configLoader == nil {
		configLoader = config.NewLoader()
	}
	return configLoader
}
