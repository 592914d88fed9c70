// Package cache implements the three process-wide, title-keyed caches the
// engine consults: page-data, category verdict, and backlinks. Each is an
// LRU-bounded in-memory view (github.com/hashicorp/golang-lru/v2, the same
// library peer-db bounds its page cache with) backed by a JSON file on
// disk, flushed with a write-temp-then-rename so a crash mid-flush cannot
// leave a half-written file that fails to parse on next load. A flush
// writes only the entries held in memory at that moment, so entries the
// LRU has evicted are not kept on disk either.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Store is a generic persistent, LRU-bounded, title-keyed cache. The zero
// value is not usable; construct with New.
type Store[V any] struct {
	lru  *lru.Cache[string, V]
	path string
}

// New constructs a Store backed by path, bounded in memory to size entries,
// loading any existing file at path immediately.
func New[V any](path string, size int) (*Store[V], error) {
	l, err := lru.New[string, V](size)
	if err != nil {
		return nil, fmt.Errorf("cache: new lru for %q: %w", path, err)
	}
	s := &Store[V]{lru: l, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store[V]) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cache: read %q: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil
	}
	var onDisk map[string]V
	if err := json.Unmarshal(data, &onDisk); err != nil {
		return fmt.Errorf("cache: parse %q: %w", s.path, err)
	}
	for k, v := range onDisk {
		s.lru.Add(k, v)
	}
	return nil
}

// Get returns the cached value for title, if present.
func (s *Store[V]) Get(title string) (V, bool) {
	return s.lru.Get(title)
}

// Set stores value for title, evicting the least recently used entry if the
// cache is at capacity. Last-writer-wins under concurrent callers; the LRU
// itself is internally synchronized.
func (s *Store[V]) Set(title string, value V) {
	s.lru.Add(title, value)
}

// Len reports the number of entries currently held in memory.
func (s *Store[V]) Len() int {
	return s.lru.Len()
}

// Flush writes every in-memory entry to disk atomically: a temp file in the
// same directory is written and fsynced, then renamed over the destination.
func (s *Store[V]) Flush() error {
	snapshot := make(map[string]V, s.lru.Len())
	for _, k := range s.lru.Keys() {
		if v, ok := s.lru.Peek(k); ok {
			snapshot[k] = v
		}
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("cache: marshal %q: %w", s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache: mkdir %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("cache: create temp for %q: %w", s.path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("cache: write temp for %q: %w", s.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("cache: fsync temp for %q: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cache: close temp for %q: %w", s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cache: rename temp onto %q: %w", s.path, err)
	}
	return nil
}
