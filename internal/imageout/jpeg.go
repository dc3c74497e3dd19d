// Package imageout encodes rendered frames to image files on disk.
package imageout

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/dyluth/mandelmovie/pkg/mandel"
)

// DefaultQuality balances file size against artefacts on the smooth colour bands.
const DefaultQuality = 95

// JPEGEncoder writes pixel buffers as baseline JPEG files.
// The zero value encodes with DefaultQuality.
type JPEGEncoder struct {
	Quality int
}

// Encode writes buf to path. The file appears atomically: readers see either
// the previous file, no file, or the complete new image.
func (e JPEGEncoder) Encode(buf *mandel.PixelBuffer, path string) error {
	if buf == nil {
		return errors.New("pixel buffer is nil")
	}

	quality := e.Quality
	if quality == 0 {
		quality = DefaultQuality
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, buf.RGBA(), &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("failed to encode JPEG: %w", err)
	}

	if err := writeFileAtomic(path, out.Bytes()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// writeFileAtomic writes data to a hidden temp file next to path and renames
// it into place. The temp file lives in the same directory so the rename
// stays on one filesystem.
func writeFileAtomic(path string, data []byte) error {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
