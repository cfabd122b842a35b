package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bulwark-sec/bulwark/internal/flow"
	"github.com/bulwark-sec/bulwark/pkg/shared/config"
)

func TestStores(t *testing.T) {
	dir := t.TempDir()
	fileStore, err := NewFileStore(filepath.Join(dir, "session.json"), hclog.NewNullLogger())
	require.NoError(t, err)
	sqliteStore, err := NewSQLiteStore(filepath.Join(dir, "db", "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteStore.Close() })

	stores := map[string]Store{
		"memory":   NewMemoryStore(),
		"file":     fileStore,
		"sqlite":   sqliteStore,
		"prefixed": WithPrefix(NewMemoryStore(), "session/"),
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, "k", "v1"))
			require.NoError(t, s.Set(ctx, "k", "v2"))
			v, ok, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "v2", v)

			require.NoError(t, s.Delete(ctx, "k"))
			require.NoError(t, s.Delete(ctx, "k"))
			_, ok, err = s.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	ctx := context.Background()

	first, err := NewFileStore(path, hclog.NewNullLogger())
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, KeyToken, "tok"))

	second, err := NewFileStore(path, hclog.NewNullLogger())
	require.NoError(t, err)
	v, ok, err := second.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	ctx := context.Background()

	s, err := NewFileStore(path, hclog.NewNullLogger())
	require.NoError(t, err)
	_, ok, err := s.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, s.Delete(ctx, KeyToken))
	require.NoError(t, s.Set(ctx, KeyToken, "tok"))
	v, ok, err := s.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", v)
}

func TestWatchTruncatedSessionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"github_token":"abc","github_user":"{trunc`), 0o600))
	ctx := context.Background()

	fs, err := NewFileStore(path, hclog.NewNullLogger())
	require.NoError(t, err)
	w := NewWatcher(fs, WithPrefix(fs, ResumePrefix), hclog.NewNullLogger())
	gh := flow.NewGitHubFlow(nil, hclog.NewNullLogger(), nil)

	s, err := w.Watch(ctx, gh)
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Equal(t, flow.GitHubStepAuth, gh.Step())

	assert.NoError(t, w.ClearSession(ctx))
}

func TestPrefixedKeysAreIsolated(t *testing.T) {
	ctx := context.Background()
	base := NewMemoryStore()
	scoped := WithPrefix(base, "session/")

	require.NoError(t, scoped.Set(ctx, KeyResumeFlow, "true"))
	_, ok, err := base.Get(ctx, KeyResumeFlow)
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err := base.Get(ctx, "session/"+KeyResumeFlow)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestNewStore(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		storage config.Storage
		wantErr bool
	}{
		{name: "file", storage: config.Storage{Backend: config.StorageFile, Path: filepath.Join(dir, "s.json")}},
		{name: "sqlite", storage: config.Storage{Backend: config.StorageSQLite, Path: filepath.Join(dir, "s.db")}},
		{name: "memory", storage: config.Storage{Backend: config.StorageMemory}},
		{name: "unknown", storage: config.Storage{Backend: "redis"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStore(&config.Config{Storage: tt.storage}, hclog.NewNullLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, s.Close())
		})
	}
}

func TestOpenSharesOneStore(t *testing.T) {
	cfg := &config.Config{Storage: config.Storage{Backend: config.StorageFile, Path: filepath.Join(t.TempDir(), "session.json")}}
	w, store, err := Open(cfg, hclog.NewNullLogger())
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, w.MarkResumeFlow(ctx))
	v, ok, err := store.Get(ctx, ResumePrefix+KeyResumeFlow)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)
}
