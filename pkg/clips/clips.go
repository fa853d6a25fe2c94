// Package clips archives voice recordings. Enrollment samples and
// identification probes can be kept after processing, either for auditing
// or for re-enrolling users when the signature model changes.
//
// The archive abstracts the underlying backend so callers can swap between
// local disk and S3-compatible object stores without changing application
// code. Clips are stored as 16-bit mono WAV.
package clips

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/voxauth/voxauth/pkg/audio/wav"
)

// Kind labels why a clip was recorded.
type Kind string

const (
	KindEnroll Kind = "enroll"
	KindProbe  Kind = "probe"
)

// Archive is a minimal interface for clip storage.
//
// Paths are forward-slash separated and relative to the archive root.
// Implementations must be safe for concurrent use.
type Archive interface {
	// Read opens the named clip for reading.
	// The caller must close the returned ReadCloser when done.
	// If the clip does not exist, an error wrapping os.ErrNotExist is returned.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write opens the named clip for writing.
	// If the clip already exists it is truncated.
	// The caller must close the returned WriteCloser to flush data.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes the named clip.
	// If the clip does not exist, Delete returns nil (idempotent).
	Delete(ctx context.Context, path string) error

	// Exists reports whether the named clip exists.
	Exists(ctx context.Context, path string) (bool, error)
}

// NewPath builds a unique archive path for a clip belonging to user.
// The layout is <user>/<kind>/<timestamp>-<uuid>.wav so per-user clips
// group together and sort chronologically.
func NewPath(user string, kind Kind, now time.Time) string {
	return fmt.Sprintf("%s/%s/%s-%s.wav",
		user, kind, now.UTC().Format("20060102T150405"), uuid.NewString())
}

// Save encodes samples as 16-bit mono WAV and writes them to the archive
// at path.
func Save(ctx context.Context, a Archive, path string, samples []float32, sampleRate int) error {
	w, err := a.Write(ctx, path)
	if err != nil {
		return err
	}
	if err := wav.Encode(w, samples, sampleRate); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Load reads a clip from the archive and decodes it.
func Load(ctx context.Context, a Archive, path string) (*wav.Clip, error) {
	r, err := a.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return wav.Decode(r)
}
