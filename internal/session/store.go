// Package session persists the GitHub session and the OAuth resume flag.
package session

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/bulwark-sec/bulwark/pkg/shared/config"
)

// Store is a string key/value store.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NewStore opens the store selected by the storage directive.
func NewStore(cfg *config.Config, logger hclog.Logger) (Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageFile, "":
		return NewFileStore(cfg.Storage.Path, logger.Named("store"))
	case config.StorageSQLite:
		return NewSQLiteStore(cfg.Storage.Path)
	case config.StorageMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
}

// prefixed scopes every key of an underlying store under a prefix.
type prefixed struct {
	Store
	prefix string
}

// WithPrefix returns a view of s whose keys are namespaced by prefix.
// Closing the view closes s.
func WithPrefix(s Store, prefix string) Store {
	return &prefixed{Store: s, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.Store.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.Store.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.Store.Delete(ctx, p.prefix+key)
}

// ResumePrefix namespaces the one-shot values kept next to the durable session.
const ResumePrefix = "session/"

// Open builds a watcher over the configured store and returns the store for closing.
func Open(cfg *config.Config, logger hclog.Logger) (*Watcher, Store, error) {
	store, err := NewStore(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session store: %w", err)
	}
	return NewWatcher(store, WithPrefix(store, ResumePrefix), logger), store, nil
}
