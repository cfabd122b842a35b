package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/bulwark-sec/bulwark/pkg/shared/files"
)

// FileStore keeps values in a JSON object on disk. Every write replaces the file atomically.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger hclog.Logger
}

// NewFileStore returns a store backed by the JSON file at path. The file is created on first write.
// A file that does not parse is removed and read as empty.
func NewFileStore(path string, logger hclog.Logger) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file store path is empty")
	}
	expanded, err := files.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand file store path %q: %w", path, err)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &FileStore{path: expanded, logger: logger}, nil
}

func (f *FileStore) load() (map[string]string, error) {
	values := map[string]string{}
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file %q: %w", f.path, err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		f.logger.Warn("discarding unreadable session file", "path", f.path, "error", err)
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove session file %q: %w", f.path, err)
		}
		return map[string]string{}, nil
	}
	return values, nil
}

func (f *FileStore) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session file: %w", err)
	}
	return files.WriteFileAtomic(f.path, data, 0o600)
}

func (f *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *FileStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.save(values)
}

func (f *FileStore) Close() error { return nil }
