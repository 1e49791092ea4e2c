package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// AtomicFile writes to a temporary file that replaces the destination only
// on Commit, so a failed run never leaves a partial file behind. A
// destination ending in .gz is gzip-compressed.
type AtomicFile struct {
	path string
	tmp  *os.File
	gz   *gzip.Writer
	w    io.Writer
}

// CreateAtomic creates a temporary file next to path.
func CreateAtomic(path string) (*AtomicFile, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	f := &AtomicFile{path: path, tmp: tmp, w: tmp}
	if strings.HasSuffix(path, ".gz") {
		f.gz = gzip.NewWriter(tmp)
		f.w = f.gz
	}
	return f, nil
}

// Write implements io.Writer.
func (f *AtomicFile) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

// Commit flushes and renames the temporary file to its destination.
func (f *AtomicFile) Commit() error {
	if f.gz != nil {
		if err := f.gz.Close(); err != nil {
			f.Abort()
			return fmt.Errorf("close gzip writer: %w", err)
		}
	}
	if err := f.tmp.Close(); err != nil {
		os.Remove(f.tmp.Name())
		return fmt.Errorf("close %s: %w", f.path, err)
	}
	if err := os.Rename(f.tmp.Name(), f.path); err != nil {
		os.Remove(f.tmp.Name())
		return fmt.Errorf("rename %s: %w", f.path, err)
	}
	return nil
}

// Abort discards the temporary file. It is safe to call after Commit.
func (f *AtomicFile) Abort() {
	f.tmp.Close()
	os.Remove(f.tmp.Name())
}
