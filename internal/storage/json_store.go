package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/annolab/imagejudge/internal/apperr"
	"github.com/annolab/imagejudge/internal/domain"
)

const (
	lockRetryInterval = 10 * time.Millisecond
	lockRetryLimit    = 500
)

// JSONFileStore persists records as a single human-readable JSON array.
// Append is read-merge-write behind a lock file scoped to the store's path,
// and the merged artifact is written to a temp file and renamed into place,
// so concurrent flushes from separate processes cannot lose records or be
// observed half-written.
type JSONFileStore struct {
	path string
}

func NewJSONFileStore(path string) *JSONFileStore {
	return &JSONFileStore{
		path: path,
	}
}

func (s *JSONFileStore) ReadAll(ctx context.Context) ([]domain.AnnotationRecord, error) {
	return s.read()
}

func (s *JSONFileStore) read() ([]domain.AnnotationRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store %s: %w", s.path, err)
	}

	var records []domain.AnnotationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &apperr.CorruptStoreError{Path: s.path, Err: err}
	}
	return records, nil
}

func (s *JSONFileStore) Append(ctx context.Context, records []domain.AnnotationRecord) error {
	if len(records) == 0 {
		return nil
	}

	unlock, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	existing, err := s.read()
	if err != nil {
		return err
	}
	combined := append(existing, records...)

	data, err := json.MarshalIndent(combined, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store %s: %w", s.path, err)
	}
	return s.writeAtomic(data)
}

func (s *JSONFileStore) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".annotations-*.json")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write store %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp store file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace store %s: %w", s.path, err)
	}
	return nil
}

// acquireLock takes a single-writer lock on the store's identity by creating
// a sibling lock file exclusively, retrying until the holder releases it.
func (s *JSONFileStore) acquireLock(ctx context.Context) (func(), error) {
	lockPath := s.path + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	for attempt := 0; attempt < lockRetryLimit; attempt++ {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			f.Close()
			return func() { os.Remove(lockPath) }, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("acquire store lock %s: %w", lockPath, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
	return nil, fmt.Errorf("store %s: lock held too long by another writer", s.path)
}
