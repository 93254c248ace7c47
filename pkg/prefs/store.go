package prefs

import (
	"context"
	"sync"
)

// Store persists preferences keyed by Preferences.Key. Load returns ErrNotFound when
// no record exists and a *ConfigError when the stored record is malformed.
type Store interface {
	Load(ctx context.Context, key string) (*Preferences, error)
	Save(ctx context.Context, p *Preferences) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore keeps encoded records in memory. The zero value is ready to use.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context, key string) (*Preferences, error) {
	s.mu.Lock()
	data, ok := s.records[key]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decodeKeyed(key, data)
}

func (s *MemoryStore) Save(_ context.Context, p *Preferences) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}
	s.Put(p.Key(), data)
	return nil
}

// Put stores a raw record under key without validating it.
func (s *MemoryStore) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records == nil {
		s.records = make(map[string][]byte)
	}
	s.records[key] = data
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

func decodeKeyed(key string, data []byte) (*Preferences, error) {
	p, err := Decode(data)
	if err != nil {
		err.(*ConfigError).Key = key
		return nil, err
	}
	return p, nil
}
