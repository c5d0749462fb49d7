// Package cache persists the usage snapshot shared by every hook invocation.
//
// The file is read and written whole. Writes go through a temp file and a
// rename so concurrent readers see either the old or the new snapshot. No
// lock is taken: the last writer wins.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jung-wan-kim/usage-gate/internal/domain"
	log "github.com/sirupsen/logrus"
)

const FileName = "claude-usage-gate-cache.json"

// ErrUnavailable is returned by Load when there is no usable snapshot.
var ErrUnavailable = errors.New("usage cache unavailable")

type Store struct {
	path string
	now  func() time.Time
}

func New(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// DefaultDir returns the platform cache directory used when none is configured.
func DefaultDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.TempDir(), "claude-usage-gate")
	}
	return "/tmp"
}

// PathIn returns the cache file path inside dir.
func PathIn(dir string) string {
	if dir == "" {
		dir = DefaultDir()
	}
	return filepath.Join(dir, FileName)
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the cached snapshot or an error wrapping ErrUnavailable.
func (s *Store) Load() (*domain.Snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrUnavailable, s.path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrUnavailable, s.path)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrUnavailable, s.path, err)
	}
	return &snap, nil
}

// Read is Load without the error: a missing, unreadable or corrupt file is
// simply "no data".
func (s *Store) Read() (*domain.Snapshot, bool) {
	snap, err := s.Load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Debugf("cache: %v", err)
		}
		return nil, false
	}
	return snap, true
}

// Write replaces the cache file with snap.
func (s *Store) Write(snap domain.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("cache: marshal snapshot: %w", err)
	}
	if err := atomicWriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

// IsStale reports whether the cache is absent or at least ttl old.
func (s *Store) IsStale(ttl time.Duration) bool {
	snap, ok := s.Read()
	if !ok {
		return true
	}
	return snap.IsStale(s.now(), ttl)
}

// atomicWriteFile writes to a temp file in the target directory, syncs it
// and renames it over path.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	f, err := os.CreateTemp(dir, ".usage-gate-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()

	success := false
	defer func() {
		if !success {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}
