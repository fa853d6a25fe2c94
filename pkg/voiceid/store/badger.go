package store

import (
	"context"
	"errors"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/voxauth/voxauth/pkg/voiceid"
)

// Badger is a Store implementation backed by BadgerDB v4.
type Badger struct {
	db *badger.DB
}

// BadgerOptions configures the BadgerDB store.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files.
	// Required unless InMemory is set.
	Dir string

	// InMemory runs BadgerDB in memory-only mode (no disk persistence).
	// Useful for testing with a real badger engine.
	InMemory bool

	// Logger receives badger's internal messages. If nil, a disabled
	// logger is used.
	Logger *zerolog.Logger
}

// NewBadger creates a new BadgerDB-backed Store.
func NewBadger(opts BadgerOptions) (*Badger, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("store: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	dbOpts = dbOpts.WithLogger(badgerLogger{log: opts.Logger})
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Get(_ context.Context, name string) (*voiceid.UserProfile, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(profileKey(name))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeProfile(val)
}

func (b *Badger) Create(_ context.Context, p *voiceid.UserProfile) error {
	stamp(p)
	val, err := encodeProfile(p)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		k := profileKey(p.Name)
		_, err := txn.Get(k)
		if err == nil {
			return ErrExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(k, val)
	})
}

func (b *Badger) Update(_ context.Context, p *voiceid.UserProfile) error {
	p.UpdatedAt = time.Now().UTC()
	val, err := encodeProfile(p)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		k := profileKey(p.Name)
		if _, err := txn.Get(k); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Set(k, val)
	})
}

func (b *Badger) Delete(_ context.Context, name string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		k := profileKey(name)
		if _, err := txn.Get(k); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(k)
	})
}

func (b *Badger) List(_ context.Context) ([]*voiceid.UserProfile, error) {
	var profiles []*voiceid.UserProfile
	prefix := []byte(keyPrefix)
	err := b.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			p, err := decodeProfile(val)
			if err != nil {
				return err
			}
			profiles = append(profiles, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	return profiles, nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}

// badgerLogger adapts zerolog for badger's logger interface, suppressing
// debug and info level messages.
type badgerLogger struct {
	log *zerolog.Logger
}

func (l badgerLogger) Errorf(f string, v ...interface{}) {
	if l.log != nil {
		l.log.Error().Msgf("badger: "+f, v...)
	}
}

func (l badgerLogger) Warningf(f string, v ...interface{}) {
	if l.log != nil {
		l.log.Warn().Msgf("badger: "+f, v...)
	}
}

func (badgerLogger) Infof(string, ...interface{})  {}
func (badgerLogger) Debugf(string, ...interface{}) {}
