package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/voxauth/voxauth/pkg/voiceid"
)

// Memory is an in-memory Store implementation. It is safe for concurrent
// use and intended primarily for testing.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates a new in-memory Store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, name string) (*voiceid.UserProfile, error) {
	m.mu.RLock()
	val, ok := m.data[name]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decodeProfile(val)
}

func (m *Memory) Create(_ context.Context, p *voiceid.UserProfile) error {
	stamp(p)
	val, err := encodeProfile(p)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[p.Name]; ok {
		return ErrExists
	}
	m.data[p.Name] = val
	return nil
}

func (m *Memory) Update(_ context.Context, p *voiceid.UserProfile) error {
	p.UpdatedAt = time.Now().UTC()
	val, err := encodeProfile(p)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[p.Name]; !ok {
		return ErrNotFound
	}
	m.data[p.Name] = val
	return nil
}

func (m *Memory) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[name]; !ok {
		return ErrNotFound
	}
	delete(m.data, name)
	return nil
}

func (m *Memory) List(_ context.Context) ([]*voiceid.UserProfile, error) {
	m.mu.RLock()
	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	vals := make([][]byte, 0, len(names))
	sort.Strings(names)
	for _, name := range names {
		vals = append(vals, m.data[name])
	}
	m.mu.RUnlock()

	profiles := make([]*voiceid.UserProfile, 0, len(vals))
	for _, val := range vals {
		p, err := decodeProfile(val)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (m *Memory) Close() error {
	return nil
}
