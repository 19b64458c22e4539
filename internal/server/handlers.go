package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sigitfad/ocr-reader/internal/export"
	"github.com/Sigitfad/ocr-reader/internal/session"
	"github.com/Sigitfad/ocr-reader/internal/store"
	"github.com/Sigitfad/ocr-reader/internal/utils"
	"github.com/Sigitfad/ocr-reader/internal/version"
	"github.com/Sigitfad/ocr-reader/internal/vocab"
)

const dateLayout = "2006-01-02"

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, code, message string, status int) {
	s.writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// requestContext bounds a handler by the configured request timeout.
func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.timeoutSec <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), time.Duration(s.timeoutSec)*time.Second)
}

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) sessionResponse() SessionResponse {
	snap := s.session.Snapshot()
	return SessionResponse{
		Family:      snap.Family,
		TargetLabel: snap.TargetLabel,
		State:       s.session.State(),
		Live:        s.session.IsLive(),
	}
}

// sessionHandler reads or updates the active family and target label.
func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, s.sessionResponse())
	case http.MethodPut:
		var req SessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeErrorResponse(w, "invalid_request", "Failed to decode session update", http.StatusBadRequest)
			return
		}
		if req.Family != nil {
			f, err := vocab.ParseFamily(*req.Family)
			if err != nil {
				s.writeErrorResponse(w, "invalid_family", err.Error(), http.StatusBadRequest)
				return
			}
			if err := s.session.SetActiveFamily(f); err != nil {
				s.writeErrorResponse(w, "invalid_family", err.Error(), http.StatusBadRequest)
				return
			}
		}
		if req.TargetLabel != nil {
			s.session.SetTargetLabel(strings.TrimSpace(*req.TargetLabel))
		}
		resp := s.sessionResponse()
		s.hub.Broadcast(WebSocketMessage{Type: msgSession, Payload: resp})
		s.writeJSON(w, http.StatusOK, resp)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// scanHandler runs a static scan of an uploaded image.
func (s *Server) scanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.session.IsLive() {
		s.writeErrorResponse(w, "live_active", session.ErrLiveActive.Error(), http.StatusConflict)
		return
	}

	limit := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		s.writeErrorResponse(w, "invalid_request", "Failed to parse form data", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "invalid_request", "No image file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()
	uploadSizeBytes.Observe(float64(header.Size))

	img, _, err := utils.DecodeImage(file)
	if err != nil {
		scansTotal.WithLabelValues(session.ModeStatic.String(), "load_error").Inc()
		s.writeErrorResponse(w, "load_error", err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()
	start := time.Now()
	res, err := s.session.Scan(ctx, img, session.ModeStatic)
	scanDuration.WithLabelValues(session.ModeStatic.String()).Observe(time.Since(start).Seconds())
	if errors.Is(err, session.ErrLiveActive) {
		s.writeErrorResponse(w, "live_active", err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		s.writeErrorResponse(w, "scan_failed", err.Error(), http.StatusInternalServerError)
		return
	}
	scansTotal.WithLabelValues(session.ModeStatic.String(), string(res.Outcome)).Inc()

	resp := ScanResponse{Success: res.Outcome == session.OutcomeAccepted, Result: res}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// parseRange reads from/to query parameters as inclusive calendar days.
// Both default to today.
func (s *Server) parseRange(r *http.Request) (time.Time, time.Time, error) {
	today := export.Day(s.now())
	from, to := today.From, today.To
	if v := r.URL.Query().Get("from"); v != "" {
		d, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			return from, to, fmt.Errorf("invalid from date %q", v)
		}
		from = d
		if r.URL.Query().Get("to") == "" {
			to = export.Day(d).To
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		d, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			return from, to, fmt.Errorf("invalid to date %q", v)
		}
		to = export.Day(d).To
	}
	if to.Before(from) {
		return from, to, errors.New("to date is before from date")
	}
	return from, to, nil
}

// source returns where range queries read from.
func (s *Server) source() export.Source {
	if s.records != nil {
		return s.records
	}
	return sessionSource{s.session}
}

// sessionSource serves range queries from the session's records of today.
type sessionSource struct{ sess sessionInterface }

func (src sessionSource) Range(_ context.Context, from, to time.Time) ([]store.Record, error) {
	var out []store.Record
	for _, r := range src.sess.Records() {
		if !r.Timestamp.Before(from) && !r.Timestamp.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

// recordsHandler lists records (today unless a range is given) or deletes
// records by ID.
func (s *Server) recordsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var recs []store.Record
		q := r.URL.Query()
		if q.Get("from") == "" && q.Get("to") == "" {
			recs = s.session.Records()
		} else {
			from, to, err := s.parseRange(r)
			if err != nil {
				s.writeErrorResponse(w, "invalid_range", err.Error(), http.StatusBadRequest)
				return
			}
			ctx, cancel := s.requestContext(r)
			defer cancel()
			if recs, err = s.source().Range(ctx, from, to); err != nil {
				s.writeErrorResponse(w, "store_error", err.Error(), http.StatusInternalServerError)
				return
			}
		}
		if recs == nil {
			recs = []store.Record{}
		}
		s.writeJSON(w, http.StatusOK, RecordsResponse{Records: recs, Count: len(recs)})
	case http.MethodDelete:
		var req DeleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.IDs) == 0 {
			s.writeErrorResponse(w, "invalid_request", "Expected a non-empty ids list", http.StatusBadRequest)
			return
		}
		ctx, cancel := s.requestContext(r)
		defer cancel()
		n, err := s.session.DeleteRecords(ctx, req.IDs)
		switch {
		case errors.Is(err, store.ErrNotFound):
			s.writeErrorResponse(w, "not_found", err.Error(), http.StatusNotFound)
			return
		case err != nil:
			s.writeErrorResponse(w, "store_error", err.Error(), http.StatusInternalServerError)
			return
		}
		s.hub.Broadcast(WebSocketMessage{Type: msgRecordsDeleted, Payload: req.IDs})
		s.writeJSON(w, http.StatusOK, DeleteResponse{Deleted: n})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// countHandler returns the number of records in the database.
func (s *Server) countHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.records == nil {
		s.writeJSON(w, http.StatusOK, CountResponse{Count: int64(len(s.session.Records()))})
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()
	n, err := s.records.Count(ctx)
	if err != nil {
		s.writeErrorResponse(w, "store_error", err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, CountResponse{Count: n})
}

// statsHandler returns today's OK / Not OK totals.
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	v := r.URL.Query().Get("date")
	if v == "" || s.records == nil {
		s.writeJSON(w, http.StatusOK, s.session.Stats())
		return
	}
	day, err := time.ParseInLocation(dateLayout, v, time.Local)
	if err != nil {
		s.writeErrorResponse(w, "invalid_range", fmt.Sprintf("invalid date %q", v), http.StatusBadRequest)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()
	st, err := s.records.DayStats(ctx, day)
	if err != nil {
		s.logger.Error("Failed to compute stats", "error", err)
		s.writeErrorResponse(w, "store_error", "failed to compute stats", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

// exportHandler writes a report for the requested range and streams it.
func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	from, to, err := s.parseRange(r)
	if err != nil {
		s.writeErrorResponse(w, "invalid_range", err.Error(), http.StatusBadRequest)
		return
	}
	q := export.Query{From: from, To: to, Label: strings.TrimSpace(r.URL.Query().Get("label"))}
	if v := r.URL.Query().Get("family"); v != "" {
		if q.Family, err = vocab.ParseFamily(v); err != nil {
			s.writeErrorResponse(w, "invalid_family", err.Error(), http.StatusBadRequest)
			return
		}
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()
	path, err := s.exporter.Export(ctx, s.source(), q)
	if errors.Is(err, export.ErrNoData) {
		exportsTotal.WithLabelValues("no_data").Inc()
		s.writeErrorResponse(w, "no_data", "No records for "+q.Description(), http.StatusNotFound)
		return
	}
	if err != nil {
		exportsTotal.WithLabelValues("error").Inc()
		s.writeErrorResponse(w, "export_failed", err.Error(), http.StatusInternalServerError)
		return
	}
	exportsTotal.WithLabelValues("ok").Inc()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

// vocabularyHandler lists both vocabularies without their sentinels.
func (s *Server) vocabularyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	set := s.session.Vocabularies()
	s.writeJSON(w, http.StatusOK, VocabularyResponse{JIS: set.JIS.Codes(), DIN: set.DIN.Codes()})
}

// imageHandler serves evidence images by file name.
func (s *Server) imageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/images/")
	if s.imageDir == "" || name == "" || name != filepath.Base(name) {
		http.NotFound(w, r)
		return
	}
	path := filepath.Join(s.imageDir, name)
	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}
