package server

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sigitfad/ocr-reader/internal/aggregate"
	"github.com/Sigitfad/ocr-reader/internal/session"
	"github.com/Sigitfad/ocr-reader/internal/store"
	"github.com/Sigitfad/ocr-reader/internal/testutil"
	"github.com/Sigitfad/ocr-reader/internal/vocab"
)

type testEnv struct {
	rec    *testutil.FakeRecognizer
	sess   *session.Session
	store  *store.Store
	server *Server
	mux    *http.ServeMux
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEnv wires a real session, sqlite store and server around a scripted
// recognizer.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{rec: testutil.NewFakeRecognizer()}

	st, err := store.Open(store.Config{Driver: store.DriverSQLite, DSN: filepath.Join(t.TempDir(), "test.db")}, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	env.store = st

	agg, err := aggregate.New(env.rec, aggregate.DefaultConfig(), discardLogger())
	require.NoError(t, err)
	env.sess, err = session.New(agg, vocab.Builtin(), session.DefaultConfig(),
		session.WithStore(st),
		session.WithLogger(discardLogger()),
	)
	require.NoError(t, err)

	env.server = NewServer(Config{
		CORSOrigin:  "*",
		MaxUploadMB: 5,
		TimeoutSec:  10,
		ImageDir:    t.TempDir(),
		ExportDir:   t.TempDir(),
	}, env.sess, st, discardLogger())
	t.Cleanup(func() { _ = env.server.Close() })

	env.mux = http.NewServeMux()
	env.server.SetupRoutes(env.mux)
	return env
}

// reads scripts the recognizer to return texts side by side on one line.
func (env *testEnv) reads(texts ...string) {
	var step testutil.Step
	for i, text := range texts {
		x := float64(10 + i*100)
		step.Fragments = append(step.Fragments, testutil.Frag(text, x, 40, x+70, 70, 0.95))
	}
	env.rec.Script(step)
}

func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	env.mux.ServeHTTP(w, req)
	return w
}

// createTestImage creates a simple test image.
func createTestImage(text string) image.Image {
	return testutil.LabelImage(text, 320, 120)
}

// createMultipartRequest creates a multipart form request with an image file.
func createMultipartRequest(t *testing.T, url, fieldName string, img image.Image) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if img != nil {
		require.NoError(t, png.Encode(&buf, img))
	}
	return createMultipartRequestRaw(t, url, fieldName, buf.Bytes())
}

func createMultipartRequestRaw(t *testing.T, url, fieldName string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(fieldName, "upload.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// mockConnWriter records websocket writes.
type mockConnWriter struct {
	messages chan []byte
	err      error
}

func newMockConnWriter() *mockConnWriter {
	return &mockConnWriter{messages: make(chan []byte, 16)}
}

func (m *mockConnWriter) WriteMessage(_ int, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.messages <- data
	return nil
}
