package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bulwark-sec/bulwark/pkg/shared/files"
)

// ValidateConfig checks if the global configurations have valid values and applies
// environment overrides and defaults.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateBulwarkConfig(cfg); err != nil {
		return fmt.Errorf("YAML global config: bulwark directive is invalid: %w", err)
	}
	if err := ValidateHTTPConfig(&cfg.HTTPClient); err != nil {
		return fmt.Errorf("YAML global config: http_client directive is invalid: %w", err)
	}
	if err := ValidateBackendConfig(&cfg.Backend); err != nil {
		return fmt.Errorf("YAML global config: backend directive is invalid: %w", err)
	}
	if err := ValidateGithubConfig(&cfg.Github); err != nil {
		return fmt.Errorf("YAML global config: github directive is invalid: %w", err)
	}
	if err := ValidateStorageConfig(cfg); err != nil {
		return fmt.Errorf("YAML global config: storage directive is invalid: %w", err)
	}
	if err := ValidateArtifactsConfig(&cfg.Artifacts); err != nil {
		return fmt.Errorf("YAML global config: artifacts directive is invalid: %w", err)
	}
	return nil
}

// ValidateBulwarkConfig resolves the home folder from BULWARK_HOME or ~/.bulwark.
func ValidateBulwarkConfig(cfg *Config) error {
	if home := os.Getenv("BULWARK_HOME"); home != "" {
		cfg.Bulwark.HomeFolder = home
	} else if cfg.Bulwark.HomeFolder == "" {
		homeFolder, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("unable to get user home folder: %w", err)
		}
		cfg.Bulwark.HomeFolder = filepath.Join(homeFolder, ".bulwark")
	}

	expanded, err := files.ExpandPath(cfg.Bulwark.HomeFolder)
	if err != nil {
		return fmt.Errorf("failed to expand home path %q: %w", cfg.Bulwark.HomeFolder, err)
	}
	cfg.Bulwark.HomeFolder = expanded

	if err := files.CreateFolderIfNotExists(expanded); err != nil {
		return fmt.Errorf("failed to create home folder %q: %w", expanded, err)
	}
	return nil
}

// ValidateHTTPConfig checks if the HTTP configurations have valid values.
func ValidateHTTPConfig(httpConfig *HTTPClient) error {
	if httpConfig == nil {
		return fmt.Errorf("HTTP configuration is nil")
	}
	if httpConfig.RetryCount < 0 || httpConfig.RetryCount > 20 {
		return fmt.Errorf("retry_count must be between 0 and 20: %d", httpConfig.RetryCount)
	}

	durations := map[string]time.Duration{
		"RetryMaxWaitTime": httpConfig.RetryMaxWaitTime,
		"RetryWaitTime":    httpConfig.RetryWaitTime,
		"Timeout":          httpConfig.Timeout,
	}
	for name, duration := range durations {
		if err := validateDuration(duration, name, 100*time.Second); err != nil {
			return err
		}
	}

	return validateProxy(&httpConfig.Proxy)
}

// ValidateBackendConfig applies BULWARK_API_URL and checks the backend URL.
func ValidateBackendConfig(backend *Backend) error {
	if env := os.Getenv("BULWARK_API_URL"); env != "" {
		backend.URL = env
	}
	if backend.URL == "" {
		backend.URL = DefaultBackendURL
	}
	backend.URL = strings.TrimRight(backend.URL, "/")
	return validateAbsoluteURL(backend.URL)
}

// ValidateGithubConfig applies BULWARK_GITHUB_API_URL and checks the API URL.
func ValidateGithubConfig(gh *Github) error {
	if env := os.Getenv("BULWARK_GITHUB_API_URL"); env != "" {
		gh.APIURL = env
	}
	if gh.APIURL == "" {
		gh.APIURL = DefaultGithubAPIURL
	}
	if !strings.HasSuffix(gh.APIURL, "/") {
		gh.APIURL += "/"
	}
	return validateAbsoluteURL(gh.APIURL)
}

// ValidateStorageConfig resolves the session store backend and its path.
func ValidateStorageConfig(cfg *Config) error {
	if env := os.Getenv("BULWARK_STORAGE_BACKEND"); env != "" {
		cfg.Storage.Backend = env
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = StorageFile
	}

	switch cfg.Storage.Backend {
	case StorageFile:
		if cfg.Storage.Path == "" {
			cfg.Storage.Path = filepath.Join(GetBulwarkHome(cfg), "session.json")
		}
	case StorageSQLite:
		if cfg.Storage.Path == "" {
			cfg.Storage.Path = filepath.Join(GetBulwarkHome(cfg), "session.db")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage backend %q, expected one of %q, %q, %q",
			cfg.Storage.Backend, StorageFile, StorageSQLite, StorageMemory)
	}

	expanded, err := files.ExpandPath(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to expand storage path %q: %w", cfg.Storage.Path, err)
	}
	cfg.Storage.Path = expanded
	return nil
}

// ValidateArtifactsConfig checks the S3 upload settings when they are enabled.
func ValidateArtifactsConfig(artifacts *Artifacts) error {
	if artifacts.Folder != "" {
		expanded, err := files.ExpandPath(artifacts.Folder)
		if err != nil {
			return fmt.Errorf("failed to expand artifacts folder %q: %w", artifacts.Folder, err)
		}
		artifacts.Folder = expanded
	}
	if !artifacts.S3.Enabled {
		return nil
	}
	if artifacts.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket must be set when s3 upload is enabled")
	}
	if artifacts.S3.Region == "" {
		artifacts.S3.Region = "us-east-1"
	}
	if artifacts.S3.Endpoint != "" {
		return validateAbsoluteURL(artifacts.S3.Endpoint)
	}
	return nil
}

// validateDuration checks that a time.Duration is valid and within a specified maximum duration.
func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %q: %v cannot be negative", name, d)
	}
	if d > max {
		return fmt.Errorf("%q duration is too long: %v exceeds maximum of %v", name, d, max)
	}
	return nil
}

// validateProxy checks if the given Proxy settings are valid.
func validateProxy(proxy *Proxy) error {
	if proxy == nil {
		return fmt.Errorf("proxy configuration is nil")
	}

	if proxy.Host == "" || proxy.Port == 0 {
		return nil
	}

	if !strings.Contains(proxy.Host, "://") {
		proxy.Host = "http://" + proxy.Host
	}
	proxy.Host = strings.TrimRight(proxy.Host, "/")

	if _, err := url.Parse(proxy.Host); err != nil {
		return fmt.Errorf("invalid host URL: %w", err)
	}

	if proxy.Port < 1 || proxy.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", proxy.Port)
	}
	return nil
}

func validateAbsoluteURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid scheme in URL %q", raw)
	}
	return nil
}
