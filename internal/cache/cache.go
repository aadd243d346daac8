// Package cache persists computed result sets keyed by a fingerprint of
// the input content and active configuration. A fingerprint hit returns the
// stored results unchanged; any change to a well attribute or configuration
// constant produces a different fingerprint and forces recomputation. There
// is no time-based expiry.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/wellshed/wellrisk/internal/domain"
)

// Fingerprint derives the cache key from the well list and configuration.
// Wells are sorted by ID before hashing so input ordering alone never
// invalidates the cache; JSON gives a stable serialization (struct fields
// in declaration order, map keys sorted).
func Fingerprint(wells []domain.Well, cfg any) (string, error) {
	sorted := make([]domain.Well, len(wells))
	copy(sorted, wells)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	payload := struct {
		Wells  []domain.Well `json:"wells"`
		Config any           `json:"config"`
	}{Wells: sorted, Config: cfg}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("fingerprint inputs: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Store is a directory-backed result cache. Reads that hit corrupt or
// partial entries are logged and treated as misses, never surfaced as
// errors.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a cache over the given directory. The directory is
// created lazily on first save.
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Load returns the cached result set for the fingerprint, or false when no
// usable entry exists.
func (s *Store) Load(fingerprint string) (*domain.ResultSet, bool) {
	data, err := os.ReadFile(s.path(fingerprint))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cache read failed, recomputing", "fingerprint", fingerprint, "error", err)
		}
		return nil, false
	}

	var rs domain.ResultSet
	if err := json.Unmarshal(data, &rs); err != nil {
		s.logger.Warn("cache entry corrupt, recomputing", "fingerprint", fingerprint, "error", err)
		return nil, false
	}
	if rs.Fingerprint != fingerprint {
		s.logger.Warn("cache entry fingerprint mismatch, recomputing",
			"want", fingerprint, "got", rs.Fingerprint)
		return nil, false
	}
	return &rs, true
}

// Save persists the result set under its fingerprint. The entry is written
// to a temp file and renamed into place so a concurrent reader never
// observes a partial write.
func (s *Store) Save(rs *domain.ResultSet) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	data, err := json.Marshal(rs)
	if err != nil {
		return fmt.Errorf("serialize result set: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, rs.Fingerprint+".tmp-*")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close cache temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(rs.Fingerprint)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish cache entry: %w", err)
	}
	return nil
}

func (s *Store) path(fingerprint string) string {
	return filepath.Join(s.dir, fingerprint+".json")
}
