// Package store is the flat durable key/value map under the filesystem.
//
// A Store keeps every key in memory and writes through to a Backend, so reads never
// touch the backing medium and a write returns only after the backend accepted it.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"phosphor/internal/logging"
)

var (
	// ErrClosed is returned by writes after Close.
	ErrClosed = errors.New("store: closed")
	// ErrCorrupt indicates an unreadable backend image.
	ErrCorrupt = errors.New("store: corrupt image")
	// ErrKeyTooLong is returned by backends whose records cap the key length.
	ErrKeyTooLong = errors.New("store: key too long")
)

// Backend persists individual keys. Load is called once when the store opens.
type Backend interface {
	Load(ctx context.Context) (map[string][]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Store is a write-through cache over a Backend. It is not safe for concurrent use;
// the kernel dispatcher is its only caller.
type Store struct {
	b       Backend
	m       map[string][]byte
	timeout time.Duration
	log     *slog.Logger
	closed  bool
}

// Open loads the backend into memory. A nil backend gives a volatile store.
func Open(ctx context.Context, b Backend, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = logging.Discard()
	}
	s := &Store{b: b, m: make(map[string][]byte), timeout: 5 * time.Second, log: log}
	if b == nil {
		return s, nil
	}

	m, err := b.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: load: %w", err)
	}
	for k, v := range m {
		s.m[k] = v
	}
	log.Debug("store loaded", slog.Int("keys", len(s.m)))
	return s, nil
}

// NewMemory returns a volatile store.
func NewMemory() *Store {
	s, _ := Open(context.Background(), nil, nil)
	return s
}

// Get returns the value stored under key. The returned slice must not be modified.
func (s *Store) Get(key string) ([]byte, bool) {
	v, ok := s.m[key]
	return v, ok
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	_, ok := s.m[key]
	return ok
}

// Set stores a copy of value under key.
func (s *Store) Set(key string, value []byte) error {
	if s.closed {
		return ErrClosed
	}
	v := append([]byte{}, value...)
	if s.b != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.b.Put(ctx, key, v); err != nil {
			return fmt.Errorf("store: put %q: %w", key, err)
		}
	}
	s.m[key] = v
	return nil
}

// Delete removes key; deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.m[key]; !ok {
		return nil
	}
	if s.b != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.b.Remove(ctx, key); err != nil {
			return fmt.Errorf("store: remove %q: %w", key, err)
		}
	}
	delete(s.m, key)
	return nil
}

// Keys returns all keys in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.m))
	for k := range s.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys.
func (s *Store) Len() int { return len(s.m) }

func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.b == nil {
		return nil
	}
	return s.b.Close()
}
