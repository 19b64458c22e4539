package server

import (
	"context"
	"image"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sigitfad/ocr-reader/internal/export"
	"github.com/Sigitfad/ocr-reader/internal/session"
	"github.com/Sigitfad/ocr-reader/internal/store"
	"github.com/Sigitfad/ocr-reader/internal/vocab"
)

// sessionInterface defines the methods needed by the server from a session.
type sessionInterface interface {
	Snapshot() session.Snapshot
	SetActiveFamily(f vocab.Family) error
	SetTargetLabel(label string)
	State() session.State
	IsLive() bool
	Vocabularies() vocab.Set
	Scan(ctx context.Context, frame image.Image, mode session.Mode) (session.Result, error)
	Records() []store.Record
	Stats() store.Stats
	DeleteRecords(ctx context.Context, ids []uint) (int64, error)
	Subscribe(o session.Observer) (cancel func())
}

// recordStore is the read side of the record database.
type recordStore interface {
	Range(ctx context.Context, from, to time.Time) ([]store.Record, error)
	Count(ctx context.Context) (int64, error)
	DayStats(ctx context.Context, day time.Time) (store.Stats, error)
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	session     sessionInterface
	records     recordStore
	exporter    *export.Exporter
	hub         *Hub
	logger      *slog.Logger
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
	imageDir    string
	now         func() time.Time
	unsubscribe []func()
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	CORSOrigin  string
	MaxUploadMB int64
	TimeoutSec  int
	// ImageDir is the evidence directory served under /images/.
	ImageDir string
	// ExportDir receives generated reports.
	ExportDir string
}

// Response types for API endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

type SessionResponse struct {
	Family      vocab.Family  `json:"family"`
	TargetLabel string        `json:"target_label"`
	State       session.State `json:"state"`
	Live        bool          `json:"live"`
}

type SessionRequest struct {
	Family      *string `json:"family,omitempty"`
	TargetLabel *string `json:"target_label,omitempty"`
}

type ScanResponse struct {
	Success bool           `json:"success"`
	Result  session.Result `json:"result"`
	Error   string         `json:"error,omitempty"`
}

type RecordsResponse struct {
	Records []store.Record `json:"records"`
	Count   int            `json:"count"`
}

type DeleteRequest struct {
	IDs []uint `json:"ids"`
}

type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

type VocabularyResponse struct {
	JIS []string `json:"jis"`
	DIN []string `json:"din"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewServer creates a server over sess. records may be nil, in which case
// range queries and exports fall back to the session's records of today.
func NewServer(config Config, sess sessionInterface, records recordStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		session:     sess,
		records:     records,
		hub:         NewHub(logger),
		logger:      logger,
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
		timeoutSec:  config.TimeoutSec,
		imageDir:    config.ImageDir,
		now:         time.Now,
	}
	if s.maxUploadMB <= 0 {
		s.maxUploadMB = 20
	}
	s.exporter = export.New(config.ExportDir,
		export.WithLogger(logger),
		export.WithProgress(func(done, total int, message string) {
			s.hub.Broadcast(WebSocketMessage{Type: msgExportProgress, Payload: map[string]any{
				"done": done, "total": total, "message": message,
			}})
		}),
	)
	s.unsubscribe = append(s.unsubscribe,
		sess.Subscribe(s.hub),
		sess.Subscribe(MetricsObserver{}),
	)
	return s
}

// Hub returns the websocket broadcaster.
func (s *Server) Hub() *Hub { return s.hub }

// Close detaches the server from the session and drops websocket clients.
func (s *Server) Close() error {
	for _, fn := range s.unsubscribe {
		fn()
	}
	s.unsubscribe = nil
	s.hub.Close()
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/session", s.corsMiddleware(s.sessionHandler))
	mux.HandleFunc("/scan", s.corsMiddleware(s.scanHandler))
	mux.HandleFunc("/records", s.corsMiddleware(s.recordsHandler))
	mux.HandleFunc("/records/count", s.corsMiddleware(s.countHandler))
	mux.HandleFunc("/records/stats", s.corsMiddleware(s.statsHandler))
	mux.HandleFunc("/export", s.corsMiddleware(s.exportHandler))
	mux.HandleFunc("/vocabulary", s.corsMiddleware(s.vocabularyHandler))
	mux.HandleFunc("/images/", s.corsMiddleware(s.imageHandler))
	mux.HandleFunc("/ws", s.webSocketHandler)
}
