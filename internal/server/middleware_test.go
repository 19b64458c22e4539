package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORSMiddleware(t *testing.T) {
	s := &Server{corsOrigin: "https://dashboard.local"}
	called := false
	handler := s.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("preflight", func(t *testing.T) {
		called = false
		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest(http.MethodOptions, "/scan", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, called)
		assert.Equal(t, "https://dashboard.local", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("passes through", func(t *testing.T) {
		called = false
		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.True(t, called)
		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	})

	t.Run("default origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		(&Server{}).corsMiddleware(func(http.ResponseWriter, *http.Request) {})(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestEndpointLabel(t *testing.T) {
	assert.Equal(t, "/images/", endpointLabel("/images/20261018_093000.jpg"))
	assert.Equal(t, "/records/stats", endpointLabel("/records/stats"))
}

func TestResponseWriterCapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}
	rw.WriteHeader(http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, rw.statusCode)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
