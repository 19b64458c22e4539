package capture

import (
	"context"
	"image"
	"image/color"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sigitfad/ocr-reader/internal/session"
	"github.com/Sigitfad/ocr-reader/internal/testutil"
)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestCropCenter(t *testing.T) {
	wide := image.NewRGBA(image.Rect(0, 0, 300, 200))
	wide.Set(150, 100, color.RGBA{R: 255, A: 255})
	sq := CropCenter(wide)
	assert.Equal(t, 200, sq.Bounds().Dx())
	assert.Equal(t, 200, sq.Bounds().Dy())
	r, _, _, _ := sq.At(sq.Bounds().Min.X+100, sq.Bounds().Min.Y+100).RGBA()
	assert.Equal(t, uint32(0xffff), r, "the centre pixel stays in the centre")

	tall := image.NewRGBA(image.Rect(0, 0, 120, 400))
	assert.Equal(t, image.Rect(0, 0, 120, 120), CropCenter(tall).Bounds())

	square := image.NewRGBA(image.Rect(0, 0, 64, 64))
	assert.Same(t, square, CropCenter(square).(*image.RGBA))
}

func TestPrepareFlips(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	out := Options{FlipH: true}.Prepare(img)
	r, _, _, _ := out.At(3, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)

	out = Options{FlipV: true}.Prepare(img)
	r, _, _, _ = out.At(0, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)

	out = Options{SquareCrop: true}.Prepare(img)
	assert.Equal(t, 2, out.Bounds().Dx())
}

type stubSource struct {
	mu sync.Mutex
	f  Frame
}

func (s *stubSource) Latest() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f, s.f.Seq > 0
}

func (s *stubSource) push(name string, img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f = Frame{Image: img, Name: name, Seq: s.f.Seq + 1, At: time.Now()}
}

type stubScanner struct {
	mu      sync.Mutex
	live    bool
	busy    bool
	scanned []image.Rectangle
}

func (s *stubScanner) StartLive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live {
		return false
	}
	s.live = true
	return true
}

func (s *stubScanner) StopLive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live = false
}

func (s *stubScanner) StartScan(_ context.Context, frame image.Image, mode session.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode != session.ModeLive {
		panic("loop must dispatch live scans")
	}
	if s.busy {
		return session.ErrBusy
	}
	s.scanned = append(s.scanned, frame.Bounds())
	return nil
}

func (s *stubScanner) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scanned)
}

func TestLoopTickDispatchesNewFramesOnce(t *testing.T) {
	src := &stubSource{}
	sc := &stubScanner{}
	l := NewLoop(src, sc, DefaultOptions(), quietLogger())
	ctx := context.Background()

	last := l.tick(ctx, 0)
	assert.Zero(t, last)
	assert.Zero(t, sc.count())

	src.push("a.png", image.NewRGBA(image.Rect(0, 0, 640, 480)))
	last = l.tick(ctx, last)
	last = l.tick(ctx, last)
	require.Equal(t, 1, sc.count())
	assert.Equal(t, image.Rect(0, 0, 480, 480), sc.scanned[0].Sub(sc.scanned[0].Min))

	src.push("b.png", image.NewRGBA(image.Rect(0, 0, 10, 10)))
	sc.busy = true
	last = l.tick(ctx, last)
	assert.Equal(t, uint64(1), last, "a dropped frame is retried")
	sc.busy = false
	last = l.tick(ctx, last)
	assert.Equal(t, uint64(2), last)
	assert.Equal(t, 2, sc.count())
}

func TestLoopRunHoldsLiveMode(t *testing.T) {
	src := &stubSource{}
	src.push("a.png", image.NewRGBA(image.Rect(0, 0, 20, 20)))
	sc := &stubScanner{}
	l := NewLoop(src, sc, Options{Interval: 10 * time.Millisecond}, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	assert.Eventually(t, func() bool { return sc.count() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, NewLoop(src, sc, DefaultOptions(), quietLogger()).Run(context.Background()), ErrAlreadyLive)

	cancel()
	require.NoError(t, <-done)
	assert.True(t, sc.StartLive(), "live mode is released on exit")
}

func TestDirSourcePicksUpNewImages(t *testing.T) {
	dir := t.TempDir()
	src, err := NewDirSource(dir, 50*time.Millisecond, quietLogger())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = src.Run(ctx) }()

	_, ok := src.Latest()
	assert.False(t, ok)

	testutil.WritePNG(t, dir, "frame1.png", testutil.LabelImage("55D23L", 120, 60))
	testutil.WriteEmptyFile(t, dir, "notes.txt")
	require.Eventually(t, func() bool {
		f, ok := src.Latest()
		return ok && f.Name == "frame1.png"
	}, 5*time.Second, 20*time.Millisecond)

	f, _ := src.Latest()
	assert.Equal(t, 120, f.Image.Bounds().Dx())
	assert.Equal(t, uint64(1), f.Seq)
}

func TestNewDirSourceRejectsFiles(t *testing.T) {
	path := testutil.WriteEmptyFile(t, t.TempDir(), "file.png")
	_, err := NewDirSource(path, 0, nil)
	assert.Error(t, err)
	_, err = NewDirSource(path+"-missing", 0, nil)
	assert.Error(t, err)
}
