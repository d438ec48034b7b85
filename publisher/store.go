package publisher

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
)

// StampLayout formats completion timestamps into artifact keys.
const StampLayout = "20060102_150405"

// maxStampAttempts bounds the "-N" suffixes tried when a second already has
// an artifact.
const maxStampAttempts = 100

var (
	ErrNotFound     = errors.New("artifact not found")
	ErrInvalidStamp = errors.New("invalid artifact stamp")

	stampRe = regexp.MustCompile(`^\d{8}_\d{6}(-\d+)?$`)
)

// Artifact is one rendered job output.
type Artifact struct {
	CompletedAt time.Time
	Body        []byte
}

// Store persists artifacts under a key derived from their completion time.
// Save never overwrites an existing artifact and returns the stamp used.
type Store interface {
	Save(ctx context.Context, a Artifact) (string, error)
	Load(ctx context.Context, stamp string) ([]byte, error)
}

// Stamp returns the base key for a completion time.
func Stamp(t time.Time) string {
	return t.UTC().Format(StampLayout)
}

// FileName is the persisted file name for a stamp.
func FileName(stamp string) string {
	return "output_" + stamp + ".txt"
}

// ValidateStamp rejects anything that is not a stamp produced by this package.
func ValidateStamp(stamp string) error {
	if !stampRe.MatchString(stamp) {
		return fmt.Errorf("%w: %q", ErrInvalidStamp, stamp)
	}
	return nil
}

func candidateStamp(base string, attempt int) string {
	if attempt <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, attempt)
}
