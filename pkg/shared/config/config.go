package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v2"
)

const (
	DefaultBackendURL   = "http://localhost:3000"
	DefaultGithubAPIURL = "https://api.github.com/"
)

// Storage backends for the session store.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config is the global bulwark configuration, decoded from YAML.
type Config struct {
	Bulwark    Bulwark    `yaml:"bulwark"`
	Logger     Logger     `yaml:"logger"`
	HTTPClient HTTPClient `yaml:"http_client"`
	Backend    Backend    `yaml:"backend"`
	Github     Github     `yaml:"github"`
	Storage    Storage    `yaml:"storage"`
	Artifacts  Artifacts  `yaml:"artifacts"`
}

type Bulwark struct {
	HomeFolder string `yaml:"home_folder"`
}

type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

type HTTPClient struct {
	Debug            *bool           `yaml:"debug"`
	RetryCount       int             `yaml:"retry_count"`
	RetryWaitTime    time.Duration   `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration   `yaml:"retry_max_wait_time"`
	Timeout          time.Duration   `yaml:"timeout"`
	TLSClientConfig  TLSClientConfig `yaml:"tls_client_config"`
	Proxy            Proxy           `yaml:"proxy"`
}

type TLSClientConfig struct {
	Verify *bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Backend points at the audit service consumed over HTTP.
type Backend struct {
	URL string `yaml:"url"`
}

type Github struct {
	APIURL string `yaml:"api_url"`
}

// Storage selects where the GitHub session and the resume flag are persisted.
type Storage struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type Artifacts struct {
	Folder string `yaml:"folder"`
	S3     S3     `yaml:"s3"`
}

type S3 struct {
	Enabled  bool   `yaml:"enabled"`
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Prefix   string `yaml:"prefix"`
	Endpoint string `yaml:"endpoint"`
}

// ValidateConfigPath checks that path points to a file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML decodes the YAML file at configPath into data.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// LoadConfig reads a .env file if present, then the YAML config at configPath.
// A missing config file yields an empty configuration that ValidateConfig fills with defaults.
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if configPath == "" {
		return cfg, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	if err := LoadYAML(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
	}
	return cfg, nil
}

// GetBulwarkHome returns the resolved home folder.
func GetBulwarkHome(cfg *Config) string {
	return cfg.Bulwark.HomeFolder
}

// GetArtifactsHome returns the folder where reports and exports are written.
func GetArtifactsHome(cfg *Config) string {
	if cfg.Artifacts.Folder != "" {
		return cfg.Artifacts.Folder
	}
	return filepath.Join(GetBulwarkHome(cfg), "artifacts")
}
