package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Storage persists uploaded images on disk under a single directory that is
// also mounted as /uploads/ by the HTTP server.
type Storage struct {
	dir string
}

func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Dir returns the directory files are stored in.
func (s *Storage) Dir() string {
	return s.dir
}

// Save writes the upload to disk under a unique name built from the form
// field, a nanosecond timestamp and the original file's extension, and
// returns that name.
func (s *Storage) Save(field, originalName string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%s-%d%s", field, time.Now().UnixNano(), filepath.Ext(originalName))

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return name, nil
}
