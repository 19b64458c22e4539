package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sigitfad/ocr-reader/internal/session"
)

const (
	outputFormatJSON = "json"
	outputFormatText = "text"
)

func validateFormat(format string) error {
	if format != outputFormatText && format != outputFormatJSON {
		return fmt.Errorf("invalid output format: %s (must be one of: %s, %s)", format, outputFormatText, outputFormatJSON)
	}
	return nil
}

type fileResult struct {
	File   string          `json:"file"`
	Result *session.Result `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// scanCmd represents the scan command.
var scanCmd = &cobra.Command{
	Use:   "scan <image>...",
	Short: "Scan label images once",
	Long: `Run a static scan of one or more label images with the active family
and target label. Accepted codes are recorded unless --dry-run is given.

Supported formats: JPEG, PNG, BMP, TIFF, WebP

Examples:
  ocr-reader scan label.jpg
  ocr-reader scan --family DIN --target "LN3 600A" *.png
  ocr-reader scan label.jpg --format json --dry-run`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := validateFormat(format); err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		cfg, err := GetValidConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, appOptions{persist: !dryRun})
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		results := make([]fileResult, 0, len(args))
		failed := 0
		for _, path := range args {
			res, err := a.sess.ScanFile(cmd.Context(), path)
			if err != nil {
				failed++
				results = append(results, fileResult{File: path, Error: err.Error()})
				continue
			}
			results = append(results, fileResult{File: path, Result: &res})
		}

		out := cmd.OutOrStdout()
		if format == outputFormatJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(results); err != nil {
				return err
			}
		} else {
			for _, r := range results {
				line := "ERROR " + r.Error
				if r.Result != nil {
					line = describe(*r.Result)
				}
				_, _ = fmt.Fprintf(out, "%s: %s\n", r.File, line)
			}
		}
		if failed == len(args) {
			return errors.New("no image could be scanned: " + strings.Join(args, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringP("format", "f", outputFormatText, "output format (text, json)")
	scanCmd.Flags().Bool("dry-run", false, "do not record accepted detections")
}
