package capture

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Sigitfad/ocr-reader/internal/utils"
)

// DirSource watches a directory and exposes the newest image written to it.
// Files are read once they stopped changing for the settle period.
type DirSource struct {
	dir     string
	settle  time.Duration
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	mu     sync.Mutex
	latest Frame
	seq    uint64
}

// NewDirSource starts watching dir.
func NewDirSource(dir string, settle time.Duration, logger *slog.Logger) (*DirSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if settle <= 0 {
		settle = 300 * time.Millisecond
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "watch", Path: dir, Err: os.ErrInvalid}
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}
	return &DirSource{dir: dir, settle: settle, watcher: w, logger: logger}, nil
}

// Latest implements Source.
func (d *DirSource) Latest() (Frame, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest, d.seq > 0
}

// Run processes file events until ctx is done or the watcher fails. It
// closes the watcher on return.
func (d *DirSource) Run(ctx context.Context) error {
	defer d.watcher.Close()
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(d.settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-d.watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				if utils.IsSupportedImage(ev.Name) {
					pending[ev.Name] = time.Now()
				}
			}
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return nil
			}
			d.logger.Warn("watch error", "dir", d.dir, "error", err)
		case <-ticker.C:
			now := time.Now()
			var ready []string
			for name, t := range pending {
				if now.Sub(t) >= d.settle {
					ready = append(ready, name)
				}
			}
			for _, name := range ready {
				delete(pending, name)
				d.load(name)
			}
		}
	}
}

func (d *DirSource) load(path string) {
	img, _, err := utils.LoadImage(path)
	if err != nil {
		d.logger.Warn("skipping unreadable frame", "path", path, "error", err)
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	d.latest = Frame{Image: img, Name: filepath.Base(path), At: time.Now(), Seq: d.seq}
	d.logger.Debug("frame received", "frame", d.latest.Name, "seq", d.seq)
}
