package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
)

type fileRecord struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// FileStore keeps each key in its own JSON file under a directory, so a
// session survives process restarts without an external server.
type FileStore struct {
	dir string
	now func() time.Time
	mu  sync.Mutex
}

// NewFileStore creates the directory if needed and returns the store
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

var _ ports.Store = (*FileStore)(nil)

func (s *FileStore) path(key string) string {
	name := strings.NewReplacer("/", "_", ":", "_", "\\", "_").Replace(key)
	return filepath.Join(s.dir, name+".json")
}

// Set writes value atomically through a temp file and rename
func (s *FileStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	rec := fileRecord{Value: value}
	if ttl > 0 {
		rec.ExpiresAt = s.now().Add(ttl)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreOperation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreOperation, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", core.ErrStoreOperation, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreOperation, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreOperation, err)
	}

	return nil
}

// Get reads the value for key, removing it when expired
func (s *FileStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", core.ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", core.ErrStoreOperation, err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrSessionCorrupted, err)
	}

	if !rec.ExpiresAt.IsZero() && !s.now().Before(rec.ExpiresAt) {
		_ = os.Remove(s.path(key))
		return "", core.ErrNotFound
	}

	return rec.Value, nil
}

// Delete removes the file for key
func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", core.ErrStoreOperation, err)
	}
	return nil
}
