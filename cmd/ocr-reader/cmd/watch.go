package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// watchCmd represents the watch command.
var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Scan frames written to a directory in live mode",
	Long: `Watch a capture directory and scan the newest frame every capture
interval. Repeated detections of the same code within the de-duplication
window are suppressed.

Examples:
  ocr-reader watch ./frames
  ocr-reader watch ./frames --family DIN --target "LN3 600A"`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetValidConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("interval") {
			cfg.Capture.Interval, _ = cmd.Flags().GetDuration("interval")
		}
		settle, _ := cmd.Flags().GetDuration("settle")

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		a, err := newApp(ctx, cfg, appOptions{persist: true})
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()
		defer a.sess.Subscribe(printer(cmd.OutOrStdout(), a.logger))()

		done, err := startLive(ctx, a, args[0], settle)
		if err != nil {
			return err
		}
		go runDailyReset(ctx, a.sess)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal", "signal", sig.String())
			cancel()
			return <-done
		case err := <-done:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Duration("interval", 0, "scan interval (overrides capture.interval)")
	watchCmd.Flags().Duration("settle", 0, "time a file must stop changing before it is read")
}
