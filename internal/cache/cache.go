package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Store is a durable prompt -> response cache backed by a single JSON file.
// The whole file is read on Open and rewritten after every Put, so a crash
// loses at most the in-flight call. Keys are exact prompt strings. A single
// writing process is assumed; concurrent writers from separate processes are
// an accepted risk of this design.
type Store struct {
	path string

	mu      sync.RWMutex
	entries map[string]string
}

// Open loads the cache file at path. A missing or empty file yields an empty
// store; a file that exists but cannot be parsed is an error.
func Open(path string) (*Store, error) {
	store := &Store{
		path:    path,
		entries: make(map[string]string),
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("opening cache file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return store, nil
	}

	if err := json.NewDecoder(file).Decode(&store.entries); err != nil {
		return nil, fmt.Errorf("parsing cache file %q: %w", path, err)
	}

	return store, nil
}

// Get returns the cached response for the exact prompt string.
func (s *Store) Get(prompt string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	response, ok := s.entries[prompt]
	return response, ok
}

// Put stores the response and persists the whole cache to disk.
func (s *Store) Put(prompt, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[prompt] = response

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	return nil
}

// Len reports the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
