package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const (
	defaultLockTimeout = 5 * time.Second
	lockRetryDelay     = 10 * time.Millisecond
)

// FileStore keeps all profiles in one JSON document. Every access holds a
// flock on <path>.lock; writes replace the document atomically.
type FileStore struct {
	path        string
	lockTimeout time.Duration
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:        strings.TrimSpace(path),
		lockTimeout: defaultLockTimeout,
	}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(profile string) (Record, error) {
	profile = NormalizeProfile(profile)

	var record Record
	err := s.withLock(false, func() error {
		profiles, err := s.read()
		if err != nil {
			return err
		}
		entry, ok := profiles[profile]
		if !ok {
			return fmt.Errorf("%w: %s", ErrProfileNotFound, profile)
		}
		record = entry.record(profile)
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	return record, nil
}

func (s *FileStore) List() ([]Record, error) {
	var records []Record
	err := s.withLock(false, func() error {
		profiles, err := s.read()
		if err != nil {
			return err
		}
		names := make([]string, 0, len(profiles))
		for name := range profiles {
			names = append(names, name)
		}
		sort.Strings(names)

		records = make([]Record, 0, len(names))
		for _, name := range names {
			records = append(records, profiles[name].record(name))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Save validates the record and merges it into the existing document,
// replacing any previous entry for the same profile.
func (s *FileStore) Save(record Record) error {
	record.Profile = NormalizeProfile(record.Profile)
	if err := record.Validate(); err != nil {
		return err
	}

	return s.withLock(true, func() error {
		profiles, err := s.read()
		if err != nil {
			return err
		}
		profiles[record.Profile] = entryFromRecord(record)
		return s.write(profiles)
	})
}

func (s *FileStore) Delete(profile string) (bool, error) {
	profile = NormalizeProfile(profile)

	deleted := false
	err := s.withLock(true, func() error {
		profiles, err := s.read()
		if err != nil {
			return err
		}
		if _, ok := profiles[profile]; !ok {
			return nil
		}
		delete(profiles, profile)
		deleted = true
		return s.write(profiles)
	})
	return deleted, err
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) withLock(exclusive bool, fn func() error) error {
	if s.path == "" {
		return errors.New("credentials file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create directory %q: %w", filepath.Dir(s.path), err)
	}

	lock := flock.New(s.path + ".lock")
	ctx, cancel := context.WithTimeout(context.Background(), s.lockTimeout)
	defer cancel()

	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		locked, err = lock.TryRLockContext(ctx, lockRetryDelay)
	}
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("lock credentials file: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrLocked, s.path)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	return fn()
}

func (s *FileStore) read() (map[string]fileEntry, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]fileEntry{}, nil
		}
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	if strings.TrimSpace(string(content)) == "" {
		return map[string]fileEntry{}, nil
	}

	profiles := map[string]fileEntry{}
	if err := json.Unmarshal(content, &profiles); err != nil {
		return nil, fmt.Errorf("decode credentials file %s: %w", s.path, err)
	}
	return profiles, nil
}

func (s *FileStore) write(profiles map[string]fileEntry) error {
	content, err := json.MarshalIndent(profiles, "", "    ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	content = append(content, '\n')
	if err := writeFileAtomic(s.path, content, 0o600); err != nil {
		return fmt.Errorf("write credentials file: %w", err)
	}
	return nil
}
