package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sigitfad/ocr-reader/internal/server"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and WebSocket API",
	Long: `Start an HTTP server for operator dashboards.

The server provides the following endpoints:
  GET  /health          - Health check
  GET  /metrics         - Prometheus metrics
  GET  /session         - Active family and target label
  PUT  /session         - Change family or target label
  POST /scan            - Static scan of an uploaded image
  GET  /records         - Today's detections (or ?from=&to=)
  DELETE /records       - Delete detections by id
  GET  /records/count   - Number of stored detections
  GET  /records/stats   - OK / Not OK totals (today or ?date=)
  GET  /export          - Excel report download
  GET  /vocabulary      - Known JIS and DIN codes
  GET  /images/<name>   - Evidence images
  GET  /ws              - Live event stream

With --watch the server also scans frames written to a directory.

Examples:
  ocr-reader serve
  ocr-reader serve --port 8080
  ocr-reader serve --host 0.0.0.0 --watch ./frames`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetValidConfig()
		if err != nil {
			return err
		}

		srv := &cfg.Server
		if cmd.Flags().Changed("host") {
			srv.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			srv.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("cors-origin") {
			srv.CORSOrigin, _ = cmd.Flags().GetString("cors-origin")
		}
		if cmd.Flags().Changed("max-upload-size") {
			srv.MaxUploadMB, _ = cmd.Flags().GetInt("max-upload-size")
		}
		if cmd.Flags().Changed("timeout") {
			srv.TimeoutSec, _ = cmd.Flags().GetInt("timeout")
		}
		if cmd.Flags().Changed("shutdown-timeout") {
			srv.ShutdownTimeout, _ = cmd.Flags().GetInt("shutdown-timeout")
		}
		watchDir, _ := cmd.Flags().GetString("watch")

		if srv.Port < 1 || srv.Port > 65535 {
			return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", srv.Port)
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		a, err := newApp(ctx, cfg, appOptions{persist: true})
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		ocrServer := server.NewServer(server.Config{
			Host:        srv.Host,
			Port:        srv.Port,
			CORSOrigin:  srv.CORSOrigin,
			MaxUploadMB: int64(srv.MaxUploadMB),
			TimeoutSec:  srv.TimeoutSec,
			ImageDir:    cfg.Storage.Evidence.Dir,
			ExportDir:   cfg.Storage.ExportDir,
		}, a.sess, a.store, a.logger)

		mux := http.NewServeMux()
		ocrServer.SetupRoutes(mux)

		httpServer := &http.Server{
			Addr:              srv.Addr(),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       time.Duration(srv.TimeoutSec) * time.Second,
		}

		go func() {
			slog.Info("Starting OCR reader server", "host", srv.Host, "port", srv.Port)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Server error", "error", err)
				cancel()
			}
		}()
		go runDailyReset(ctx, a.sess)

		var liveDone <-chan error
		if watchDir != "" {
			if liveDone, err = startLive(ctx, a, watchDir, 0); err != nil {
				return err
			}
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal", "signal", sig.String())
		case err := <-liveDone:
			if err != nil {
				slog.Error("Live capture failed", "error", err)
			}
		case <-ctx.Done():
			slog.Info("Context cancelled, initiating shutdown")
		}
		cancel()

		slog.Info("Starting graceful shutdown", "timeout", fmt.Sprintf("%ds", srv.ShutdownTimeout))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(srv.ShutdownTimeout)*time.Second)
		defer shutdownCancel()

		slog.Info("Shutting down HTTP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		} else {
			slog.Info("HTTP server shutdown completed")
		}

		if err := ocrServer.Close(); err != nil {
			slog.Error("Server cleanup error", "error", err)
		}
		if liveDone != nil {
			<-liveDone
		}

		slog.Info("Graceful shutdown completed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origins")
	serveCmd.Flags().Int("max-upload-size", 20, "maximum upload size in MB")
	serveCmd.Flags().Int("timeout", 30, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	serveCmd.Flags().String("watch", "", "also scan frames written to this directory")
}
