package publisher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps artifacts as text files in a single directory.
type FileStore struct {
	BaseDir string
}

func NewFileStore(baseDir string) *FileStore {
	return &FileStore{BaseDir: baseDir}
}

// Path returns the file path for a stamp.
func (s *FileStore) Path(stamp string) string {
	return filepath.Join(s.BaseDir, FileName(stamp))
}

func (s *FileStore) Save(ctx context.Context, a Artifact) (string, error) {
	if err := os.MkdirAll(s.BaseDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", s.BaseDir, err)
	}
	base := Stamp(a.CompletedAt)
	for attempt := 1; attempt <= maxStampAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		stamp := candidateStamp(base, attempt)
		file, err := os.OpenFile(s.Path(stamp), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create artifact %s: %w", stamp, err)
		}
		_, werr := file.Write(a.Body)
		cerr := file.Close()
		if werr != nil {
			return "", fmt.Errorf("failed to write artifact %s: %w", stamp, werr)
		}
		if cerr != nil {
			return "", fmt.Errorf("failed to close artifact %s: %w", stamp, cerr)
		}
		return stamp, nil
	}
	return "", fmt.Errorf("no free artifact name for %s after %d attempts", base, maxStampAttempts)
}

func (s *FileStore) Load(ctx context.Context, stamp string) ([]byte, error) {
	if err := ValidateStamp(stamp); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(stamp))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", stamp, err)
	}
	return data, nil
}
