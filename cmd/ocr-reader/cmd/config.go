package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sigitfad/ocr-reader/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or generate configuration",
}

var configShowCmd = &cobra.Command{
	Use:          "show",
	Short:        "Print the resolved configuration as YAML",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		if used := GetConfigLoader().GetConfigFileUsed(); used != "" {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# loaded from %s\n", used)
		}
		_, _ = cmd.OutOrStdout().Write(data)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("configuration: %w", err)
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:          "init [file]",
	Short:        "Write the default configuration to a file",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		file := config.ConfigFileName + ".yaml"
		if len(args) == 1 {
			file = args[0]
		}
		if err := config.GenerateDefaultConfigFile(file); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "wrote "+file)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd)
}
