// Package capture writes presented frames to disk as BMP files.
package capture

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"time"

	"mini-vox/internal/logging"

	"golang.org/x/image/bmp"
)

// Saver numbers and writes captures into one directory.
type Saver struct {
	dir string
	now func() time.Time

	mu  sync.Mutex
	seq int
}

// NewSaver writes into dir, creating it on first save.
func NewSaver(dir string) *Saver {
	return &Saver{dir: dir, now: time.Now}
}

// Save encodes img and returns the written path.
func (s *Saver) Save(img image.Image) (string, error) {
	s.mu.Lock()
	s.seq++
	name := fmt.Sprintf("frame-%s-%03d.bmp", s.now().Format("20060102-150405"), s.seq)
	s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := bmp.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("capture: encode %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	b := img.Bounds()
	logging.Logger().Info("frame captured", "path", path, "width", b.Dx(), "height", b.Dy())
	return path, nil
}

// SaveAsync saves img on a new goroutine so encoding stays off the render
// thread. Errors are logged.
func (s *Saver) SaveAsync(img image.Image) {
	go func() {
		if _, err := s.Save(img); err != nil {
			logging.Logger().Warn("frame capture failed", "err", err)
		}
	}()
}
