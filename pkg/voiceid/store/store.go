// Package store persists speaker profiles. It provides a BadgerDB-backed
// implementation for production use and an in-memory implementation for
// testing.
//
// Profiles are keyed by user name, which is unique per store. Values are
// msgpack-encoded [voiceid.UserProfile] records.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/voxauth/voxauth/pkg/voiceid"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when no profile exists for a name.
	ErrNotFound = errors.New("store: profile not found")

	// ErrExists is returned by Create when the name is already taken.
	ErrExists = errors.New("store: profile already exists")
)

// Store is the interface for speaker profile persistence.
type Store interface {
	// Get retrieves the profile for a name. Returns ErrNotFound if absent.
	Get(ctx context.Context, name string) (*voiceid.UserProfile, error)

	// Create stores a new profile. An empty ID is assigned a fresh UUID,
	// and CreatedAt/UpdatedAt are set if zero. Returns ErrExists when a
	// profile with the same name is already present.
	Create(ctx context.Context, p *voiceid.UserProfile) error

	// Update overwrites an existing profile and bumps UpdatedAt.
	// Returns ErrNotFound if no profile with the name exists.
	Update(ctx context.Context, p *voiceid.UserProfile) error

	// Delete removes the profile for a name. Returns ErrNotFound if absent.
	Delete(ctx context.Context, name string) error

	// List returns all profiles ordered by name.
	List(ctx context.Context) ([]*voiceid.UserProfile, error)

	// Close releases any resources held by the store.
	Close() error
}

// keyPrefix namespaces profile records so the same database can hold
// other record types later.
const keyPrefix = "profile:"

func profileKey(name string) []byte {
	return append([]byte(keyPrefix), name...)
}

func encodeProfile(p *voiceid.UserProfile) ([]byte, error) {
	return msgpack.Marshal(p)
}

func decodeProfile(b []byte) (*voiceid.UserProfile, error) {
	var p voiceid.UserProfile
	if err := msgpack.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// stamp fills in identity and timestamps for a profile about to be created.
func stamp(p *voiceid.UserProfile) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
}
