package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sigitfad/ocr-reader/internal/export"
	"github.com/Sigitfad/ocr-reader/internal/vocab"
)

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write an Excel report of recorded detections",
	Long: `Write the detections of a day or date range to an Excel workbook with
a summary block, one row per detection and evidence thumbnails.

Examples:
  ocr-reader export
  ocr-reader export --from 2026-10-01 --to 2026-10-18 --family DIN
  ocr-reader export --label "LN3 600A" --dir ./reports`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := parseDays(cmd)
		if err != nil {
			return err
		}
		if v, _ := cmd.Flags().GetString("type"); v != "" {
			if q.Family, err = vocab.ParseFamily(v); err != nil {
				return err
			}
		}
		label, _ := cmd.Flags().GetString("label")
		q.Label = strings.TrimSpace(label)

		cfg := GetConfig()
		dir := cfg.Storage.ExportDir
		if cmd.Flags().Changed("dir") {
			dir, _ = cmd.Flags().GetString("dir")
		}

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		exporter := export.New(dir,
			export.WithLogger(slog.Default()),
			export.WithProgress(func(done, total int, message string) {
				slog.Debug("export progress", "done", done, "total", total, "message", message)
			}),
		)
		path, err := exporter.Export(cmd.Context(), st, q)
		if errors.Is(err, export.ErrNoData) {
			return fmt.Errorf("no records for %s", q.Description())
		}
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("from", "", "first day (YYYY-MM-DD, default today)")
	exportCmd.Flags().String("to", "", "last day (YYYY-MM-DD, default --from)")
	exportCmd.Flags().String("type", "", "only detections of this family (JIS or DIN)")
	exportCmd.Flags().String("label", "", "only detections of this target label")
	exportCmd.Flags().String("dir", "", "output directory (overrides storage.export_dir)")
}
