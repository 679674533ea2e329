package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type entry struct {
	cfg     Config
	modTime time.Time
}

// Store is the owned configuration cache: one entry per resolved config
// path, invalidated when the backing file's mtime changes, on save, or by
// explicit request. Constructed once per process; safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]entry)}
}

// defaultStore is the process-wide cache used by the hook and CLI entry
// points. Tests construct their own Store for isolation.
var defaultStore = NewStore()

// Default returns the process-wide Store.
func Default() *Store { return defaultStore }

// Load returns the merged configuration for a working directory.
//
// Cache behavior: with force unset, an entry whose backing file still has
// the recorded mtime is returned without re-reading the file. A stat
// failure (file removed, unreadable) serves the stale entry rather than
// failing the call. A miss or forced reload starts from fresh defaults,
// overlays the file when it parses, and records the new mtime. Parse and
// read failures silently yield the defaults; Load never fails.
func (s *Store) Load(workDir string, force bool) Config {
	path := Path(workDir)
	key := cacheKey(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	fi, statErr := os.Stat(path)

	if !force {
		if e, ok := s.entries[key]; ok {
			if statErr != nil || fi.ModTime().Equal(e.modTime) {
				return e.cfg
			}
		}
	}

	cfg := Defaults()
	var modTime time.Time
	if statErr == nil {
		if data, err := os.ReadFile(path); err == nil {
			var user map[string]any
			if err := json.Unmarshal(data, &user); err == nil {
				merge(cfg, user)
			}
		}
		modTime = fi.ModTime()
	}

	s.entries[key] = entry{cfg: cfg, modTime: modTime}
	return cfg
}

// Save writes the full configuration to the project file, creating parent
// directories as needed, and invalidates the cache entry so the next Load
// re-reads from disk. Returns false on any I/O failure.
func (s *Store) Save(cfg Config, workDir string) bool {
	path := Path(workDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return false
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return false
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return false
	}

	s.mu.Lock()
	delete(s.entries, cacheKey(path))
	s.mu.Unlock()
	return true
}

// ClearCache removes the entry for one working directory, or every entry
// when workDir is empty.
func (s *Store) ClearCache(workDir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if workDir == "" {
		s.entries = make(map[string]entry)
		return
	}
	delete(s.entries, cacheKey(Path(workDir)))
}

// IsStrictMode reports whether the working directory runs at strict level.
func (s *Store) IsStrictMode(workDir string) bool {
	return s.Load(workDir, false).IsStrict()
}

// IsRelaxedMode reports whether the working directory runs at relaxed level.
func (s *Store) IsRelaxedMode(workDir string) bool {
	return s.Load(workDir, false).IsRelaxed()
}

// IsStandardMode reports whether the working directory runs at standard level.
func (s *Store) IsStandardMode(workDir string) bool {
	return s.Load(workDir, false).IsStandard()
}

// GetSetting returns one top-level setting.
func (s *Store) GetSetting(workDir, key string) (any, bool) {
	v, ok := s.Load(workDir, false)[key]
	return v, ok
}

// SetSetting writes one top-level setting through a load-modify-save cycle.
func (s *Store) SetSetting(workDir, key string, value any) bool {
	cfg := s.Load(workDir, false).clone()
	cfg[key] = value
	return s.Save(cfg, workDir)
}

// IsInitialized reports whether the harness marker exists for workDir.
func (s *Store) IsInitialized(workDir string) bool {
	return IsInitialized(workDir)
}

// IsInitialized reports whether the initialization marker file exists. No
// marker means no enforcement runs at all.
func IsInitialized(workDir string) bool {
	_, err := os.Stat(MarkerPath(workDir))
	return err == nil
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Package-level conveniences over the process-wide Store.

// Load returns the merged configuration using the default Store.
func Load(workDir string, force bool) Config { return defaultStore.Load(workDir, force) }

// Save persists a configuration using the default Store.
func Save(cfg Config, workDir string) bool { return defaultStore.Save(cfg, workDir) }

// ClearCache clears the default Store, one directory or all.
func ClearCache(workDir string) { defaultStore.ClearCache(workDir) }
