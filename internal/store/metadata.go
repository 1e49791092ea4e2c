package store

import (
	"os"
	"time"
)

// FileFingerprint identifies a run input by path, size and modification time.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile fingerprints an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Changed reports whether the file on disk no longer matches the
// fingerprint. A file that cannot be stat'ed counts as changed.
func (fp FileFingerprint) Changed() bool {
	cur, err := StatFile(fp.Path)
	if err != nil {
		return true
	}
	return cur.Size != fp.Size || !cur.ModTime.Equal(fp.ModTime)
}

// Times are stored as RFC 3339 text so both drivers round-trip them alike.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
