// Package config loads the voxauth configuration file.
//
// The file is YAML, looked up at the path given by --config, then
// $VOXAUTH_CONFIG, then os.UserConfigDir()/voxauth/config.yaml. A missing
// file is not an error: every field has a default, and a handful of
// environment variables override the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goccy/go-yaml"
)

// appDir is the directory name under os.UserConfigDir().
const appDir = "voxauth"

// Config is the full voxauth configuration.
type Config struct {
	// Listen is the HTTP listen address for the serve command.
	Listen string `yaml:"listen"`

	// DataDir holds the profile database.
	DataDir string `yaml:"data_dir"`

	// LogLevel is one of zerolog's level names (debug, info, warn, ...).
	LogLevel string `yaml:"log_level"`

	Auth    Auth    `yaml:"auth"`
	Audio   Audio   `yaml:"audio"`
	Archive Archive `yaml:"archive"`

	// AllowedOrigins configures CORS for the HTTP server.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Auth tunes the decision parameters.
type Auth struct {
	// Threshold is the caller verification threshold in [0, 1].
	Threshold float64 `yaml:"threshold"`

	// Method is "cosine" or "euclidean".
	Method string `yaml:"method"`

	// MinDuration and MaxDuration bound recording lengths in seconds.
	MinDuration float64 `yaml:"min_duration"`
	MaxDuration float64 `yaml:"max_duration"`
}

// Audio tunes the preprocessing pipeline.
type Audio struct {
	NoiseReduction bool    `yaml:"noise_reduction"`
	NoiseStrength  float64 `yaml:"noise_strength"`
	TrimSilence    bool    `yaml:"trim_silence"`
	TrimTopDB      float64 `yaml:"trim_top_db"`
	PreEmphasis    bool    `yaml:"pre_emphasis"`
	Normalize      bool    `yaml:"normalize"`
}

// Archive configures optional clip retention.
type Archive struct {
	// Backend is "", "local", or "s3". Empty disables archiving.
	Backend string `yaml:"backend"`

	// Dir is the root directory for the local backend.
	Dir string `yaml:"dir"`

	S3 ArchiveS3 `yaml:"s3"`
}

// ArchiveS3 holds the S3 backend settings. Endpoint is optional and
// enables S3-compatible stores (MinIO, R2).
type ArchiveS3 struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{
		Listen:   ":8080",
		LogLevel: "info",
		Auth: Auth{
			Threshold:   0.65,
			Method:      "cosine",
			MinDuration: 2.0,
			MaxDuration: 30.0,
		},
		Audio: Audio{
			NoiseReduction: true,
			NoiseStrength:  0.8,
			TrimSilence:    true,
			TrimTopDB:      20,
			Normalize:      true,
		},
	}
	if base, err := os.UserConfigDir(); err == nil {
		cfg.DataDir = filepath.Join(base, appDir, "data")
	}
	return cfg
}

// DefaultPath returns the default config file location, or "" when the
// user config directory cannot be determined.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, appDir, "config.yaml")
}

// Load reads the configuration from path. An empty path falls back to
// $VOXAUTH_CONFIG and then the default location. A missing file at the
// fallback locations yields the defaults; a missing file at an explicit
// path is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = os.Getenv("VOXAUTH_CONFIG")
	}
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case os.IsNotExist(err) && !explicit:
			// fall through to defaults
		default:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overrides file values from the environment.
func applyEnv(cfg *Config) {
	if v := os.Getenv("VOXAUTH_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("VOXAUTH_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("VOXAUTH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("VOXAUTH_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Auth.Threshold = f
		}
	}
}

// Save writes the configuration to path, creating parent directories.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
