// Package config loads the CLI configuration from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries everything the CLI needs beyond its flags.
type Config struct {
	Env           string        `yaml:"env"`
	StorageURL    string        `yaml:"storage_url"`
	Bucket        string        `yaml:"bucket"`
	OutputFormat  string        `yaml:"output_format"`
	UploadTimeout time.Duration `yaml:"upload_timeout"`
}

// Load reads the file at path (skipped when empty), then applies environment
// overrides on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Config{
		Env:           "dev",
		StorageURL:    "http://localhost:8000/storage/v1",
		Bucket:        "project-one",
		OutputFormat:  "json",
		UploadTimeout: 30 * time.Second,
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.Env = get("PROFILEFORM_ENV", cfg.Env)
	cfg.StorageURL = get("PROFILEFORM_STORAGE_URL", cfg.StorageURL)
	cfg.Bucket = get("PROFILEFORM_BUCKET", cfg.Bucket)
	cfg.OutputFormat = get("PROFILEFORM_OUTPUT_FORMAT", cfg.OutputFormat)
	if raw := os.Getenv("PROFILEFORM_UPLOAD_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: parse PROFILEFORM_UPLOAD_TIMEOUT: %w", err)
		}
		cfg.UploadTimeout = d
	}
	return cfg, nil
}

func get(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
