// Package recent keeps the list of repositories the user opened most recently.
package recent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// Entry is one remembered repository
type Entry struct {
	Path     string    `yaml:"path" json:"path"`
	OpenedAt time.Time `yaml:"opened_at" json:"opened_at"`
}

// Store reads and writes the recent list file.
// Writers from separate processes are serialized by a lock on <file>.lock.
type Store struct {
	file  string
	limit int
	now   func() time.Time
}

// NewStore returns a store backed by file keeping at most limit entries
func NewStore(file string, limit int) *Store {
	if limit < 1 {
		limit = 1
	}
	return &Store{file: file, limit: limit, now: time.Now}
}

// File returns the path of the backing file
func (s *Store) File() string {
	return s.file
}

// List returns the remembered repositories, most recent first.
// A missing file is an empty list.
func (s *Store) List() ([]Entry, error) {
	return s.read()
}

// Add records path as opened now, moving it to the front of the list
func (s *Store) Add(path string) ([]Entry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	return s.update(func(entries []Entry) []Entry {
		updated := []Entry{{Path: abs, OpenedAt: s.now().UTC().Truncate(time.Second)}}
		for _, e := range entries {
			if e.Path != abs {
				updated = append(updated, e)
			}
		}
		if len(updated) > s.limit {
			updated = updated[:s.limit]
		}
		return updated
	})
}

// Remove forgets path. Removing a path that is not listed is not an error.
func (s *Store) Remove(path string) ([]Entry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	return s.update(func(entries []Entry) []Entry {
		updated := []Entry{}
		for _, e := range entries {
			if e.Path != abs {
				updated = append(updated, e)
			}
		}
		return updated
	})
}

func (s *Store) update(fn func([]Entry) []Entry) ([]Entry, error) {
	var result []Entry
	err := withFileLock(s.file, func() error {
		entries, err := s.read()
		if err != nil {
			return err
		}
		result = fn(entries)

		data, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", s.file, err)
		}
		return atomicWriteFile(s.file, data, 0o644)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) read() ([]Entry, error) {
	data, err := os.ReadFile(s.file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.file, err)
	}

	entries := []Entry{}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.file, err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// withFileLock holds an advisory lock on path+".lock" while fn runs
func withFileLock(path string, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	fl := flock.New(path + ".lock")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("timed out locking %s", path)
	}
	defer func() { _ = fl.Unlock() }()

	return fn()
}

func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".recent-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
