package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sigitfad/ocr-reader/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "ocr-reader version "+version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
