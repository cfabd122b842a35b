package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHTTPConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     HTTPClient
		wantErr string
	}{
		{
			name: "defaults are valid",
			cfg:  HTTPClient{},
		},
		{
			name:    "negative retry count",
			cfg:     HTTPClient{RetryCount: -1},
			wantErr: "retry_count must be between 0 and 20",
		},
		{
			name:    "timeout too long",
			cfg:     HTTPClient{Timeout: 5 * time.Minute},
			wantErr: "duration is too long",
		},
		{
			name:    "proxy port out of range",
			cfg:     HTTPClient{Proxy: Proxy{Host: "proxy.local", Port: 70000}},
			wantErr: "port must be between 1 and 65535",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHTTPConfig(&tt.cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateProxyAddsScheme(t *testing.T) {
	p := Proxy{Host: "proxy.local/", Port: 3128}
	require.NoError(t, validateProxy(&p))
	assert.Equal(t, "http://proxy.local", p.Host)
}

func TestValidateBackendConfig(t *testing.T) {
	t.Run("default url", func(t *testing.T) {
		t.Setenv("BULWARK_API_URL", "")
		b := Backend{}
		require.NoError(t, ValidateBackendConfig(&b))
		assert.Equal(t, DefaultBackendURL, b.URL)
	})

	t.Run("env override trims slash", func(t *testing.T) {
		t.Setenv("BULWARK_API_URL", "https://api.bulwark.example/")
		b := Backend{URL: "http://ignored"}
		require.NoError(t, ValidateBackendConfig(&b))
		assert.Equal(t, "https://api.bulwark.example", b.URL)
	})

	t.Run("invalid url", func(t *testing.T) {
		t.Setenv("BULWARK_API_URL", "")
		b := Backend{URL: "not a url"}
		assert.Error(t, ValidateBackendConfig(&b))
	})
}

func TestValidateStorageConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("BULWARK_STORAGE_BACKEND", "")

	cfg := &Config{Bulwark: Bulwark{HomeFolder: home}}
	require.NoError(t, ValidateStorageConfig(cfg))
	assert.Equal(t, StorageFile, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(home, "session.json"), cfg.Storage.Path)

	cfg = &Config{Bulwark: Bulwark{HomeFolder: home}, Storage: Storage{Backend: "redis"}}
	assert.ErrorContains(t, ValidateStorageConfig(cfg), "unknown storage backend")
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestLoadConfigAndValidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := `
bulwark:
  home_folder: ` + dir + `
logger:
  level: debug
http_client:
  timeout: 30s
backend:
  url: https://audit.example.com
storage:
  backend: memory
artifacts:
  s3:
    enabled: true
    bucket: reports
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("BULWARK_API_URL", "")
	t.Setenv("BULWARK_HOME", "")
	t.Setenv("BULWARK_STORAGE_BACKEND", "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 30*time.Second, cfg.HTTPClient.Timeout)
	assert.Equal(t, "https://audit.example.com", cfg.Backend.URL)
	assert.Equal(t, DefaultGithubAPIURL, cfg.Github.APIURL)
	assert.Equal(t, StorageMemory, cfg.Storage.Backend)
	assert.Equal(t, "us-east-1", cfg.Artifacts.S3.Region)
	assert.Equal(t, filepath.Join(dir, "artifacts"), GetArtifactsHome(cfg))
}
