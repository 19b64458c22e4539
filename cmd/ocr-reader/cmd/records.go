package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sigitfad/ocr-reader/internal/export"
)

// recordsCmd groups the record database commands.
var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List, count and delete recorded detections",
}

// parseDays reads the --from/--to flags. Both default to today; --to
// defaults to --from.
func parseDays(cmd *cobra.Command) (export.Query, error) {
	q := export.Day(time.Now())
	fromFlag, _ := cmd.Flags().GetString("from")
	toFlag, _ := cmd.Flags().GetString("to")
	if fromFlag != "" {
		d, err := time.ParseInLocation(time.DateOnly, fromFlag, time.Local)
		if err != nil {
			return q, fmt.Errorf("invalid --from date: %w", err)
		}
		q = export.Day(d)
	}
	if toFlag != "" {
		d, err := time.ParseInLocation(time.DateOnly, toFlag, time.Local)
		if err != nil {
			return q, fmt.Errorf("invalid --to date: %w", err)
		}
		q.To = export.Day(d).To
	}
	if q.To.Before(q.From) {
		return q, fmt.Errorf("--to %s is before --from %s", toFlag, fromFlag)
	}
	return q, nil
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List detections of a day or a date range",
	Example: `  ocr-reader records list
  ocr-reader records list --from 2026-10-01 --to 2026-10-18 --format json`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := validateFormat(format); err != nil {
			return err
		}
		q, err := parseDays(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(GetConfig())
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		recs, err := st.Range(cmd.Context(), q.From, q.To)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if format == outputFormatJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(recs)
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "ID\tTIME\tCODE\tTYPE\tSTATUS\tTARGET\tIMAGE")
		for _, r := range recs {
			_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.ID, r.Timestamp.Format(time.DateTime), r.Code, r.Preset, r.Status, r.TargetSession, r.ImagePath)
		}
		return tw.Flush()
	},
}

var recordsCountCmd = &cobra.Command{
	Use:          "count",
	Short:        "Print the number of stored detections",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(GetConfig())
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		n, err := st.Count(cmd.Context())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

var recordsDeleteCmd = &cobra.Command{
	Use:          "delete <id>...",
	Short:        "Delete detections and their evidence images",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]uint, 0, len(args))
		for _, arg := range args {
			id, err := strconv.ParseUint(arg, 10, 0)
			if err != nil || id == 0 {
				return fmt.Errorf("invalid record id %q", arg)
			}
			ids = append(ids, uint(id))
		}
		st, err := openStore(GetConfig())
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		n, err := st.Delete(cmd.Context(), ids)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d record(s)\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recordsCmd)
	recordsCmd.AddCommand(recordsListCmd, recordsCountCmd, recordsDeleteCmd)
	recordsListCmd.Flags().String("from", "", "first day (YYYY-MM-DD, default today)")
	recordsListCmd.Flags().String("to", "", "last day (YYYY-MM-DD, default --from)")
	recordsListCmd.Flags().StringP("format", "f", outputFormatText, "output format (text, json)")
}
