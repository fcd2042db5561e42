package geocode

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

// FileStore persists the geocode cache as a JSON document. Load never fails:
// a missing, corrupt, or schema-invalid file yields an empty cache (logged,
// never fatal), because losing cached resolutions only costs re-lookups.
// Save drops entries that violate the schema so one odd key (a territory
// name with no postal abbreviation, say) cannot block persistence of every
// valid entry for the rest of the run.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load reads and validates the cache file.
func (s *FileStore) Load() *Cache {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewCache(nil)
	}
	if err != nil {
		s.logger.Error("cache file unreadable, starting empty", "path", s.path, "error", err)
		return NewCache(nil)
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Error("cache file corrupted (invalid JSON), starting empty", "path", s.path, "error", err)
		return NewCache(nil)
	}
	if err := ValidateEntries(entries); err != nil {
		s.logger.Error("cache file contains invalid data, starting empty", "path", s.path, "error", err)
		return NewCache(nil)
	}

	s.logger.Info("loaded geocode cache", "path", s.path, "locations", len(entries))
	return NewCache(entries)
}

// Save writes the schema-conforming subset of the cache, then restricts the
// file to the owning user. City/state resolutions are sensitive in
// aggregate, so the persisted cache is owner-read/write only.
func (s *FileStore) Save(c *Cache) error {
	entries := c.Entries()
	for k, v := range entries {
		if !cacheKeyRe.MatchString(k) || !cacheValueRe.MatchString(v) {
			s.logger.Warn("dropping non-conforming cache entry from durable copy",
				"key", k, "value", v)
			delete(entries, k)
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	// WriteFile only applies the mode on creation; tighten pre-existing files too.
	if err := os.Chmod(s.path, 0o600); err != nil {
		s.logger.Warn("could not restrict cache file permissions", "path", s.path, "error", err)
	}

	s.logger.Debug("saved geocode cache", "path", s.path, "locations", len(entries))
	return nil
}
