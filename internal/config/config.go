package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	dserrors "github.com/systmms/paramstore-keyring/internal/errors"
	"github.com/systmms/paramstore-keyring/internal/logging"
	"github.com/systmms/paramstore-keyring/pkg/paramstore"
)

// DefaultBackend is used when neither flags nor the config file name one.
const DefaultBackend = paramstore.BackendType

// Config holds the runtime configuration
type Config struct {
	Path     string
	Logger   *logging.Logger
	Settings *Settings

	// Flag overrides; empty means "not given".
	Backend    string
	Region     string
	Profile    string
	KeyID      string
	AssumeRole string
	Timeout    time.Duration

	// ParamStoreOptions are passed to paramstore.New when the backend is built.
	ParamStoreOptions []paramstore.Option
}

// Settings represents the config file
type Settings struct {
	Version    int    `yaml:"version,omitempty"`
	Backend    string `yaml:"backend,omitempty"`
	Region     string `yaml:"region,omitempty"`
	Profile    string `yaml:"profile,omitempty"`
	KeyID      string `yaml:"key_id,omitempty"`
	AssumeRole string `yaml:"assume_role,omitempty"`
	Timeout    string `yaml:"timeout,omitempty"`
}

// DefaultPath returns $XDG_CONFIG_HOME/paramstore-keyring/config.yaml (or
// the platform equivalent). Returns "" if no config directory is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "paramstore-keyring", "config.yaml")
}

// Load reads and validates the config file.
//
// A missing file is only an error when Path was set explicitly; the default
// path is optional.
func (c *Config) Load() error {
	path := c.Path
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	c.Settings = &Settings{}
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			c.logger().Debug("No config file at %s, using flags and environment", path)
			return nil
		}
		if os.IsNotExist(err) {
			return dserrors.ConfigError{
				Field:      "path",
				Value:      path,
				Message:    "configuration file not found",
				Suggestion: fmt.Sprintf("Create %s or drop --config to use flags and environment only", path),
			}
		}
		return dserrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	settings, err := Parse(data)
	if err != nil {
		return err
	}

	c.Settings = settings
	c.logger().Debug("Loaded config from %s", path)
	return nil
}

// Parse decodes and validates config file contents
func Parse(data []byte) (*Settings, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, dserrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters",
			Err:        err,
		}
	}

	if doc == nil {
		return &Settings{}, nil
	}

	if err := validateWithSchema(doc); err != nil {
		return nil, dserrors.ConfigError{
			Message:    err.Error(),
			Suggestion: "Supported keys: version, backend, region, profile, key_id, assume_role, timeout",
			Err:        err,
		}
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, dserrors.ConfigError{
			Message: "failed to decode configuration file",
			Err:     err,
		}
	}

	return &s, nil
}

// BackendType returns the selected backend: flag, then file, then default.
func (c *Config) BackendType() string {
	return firstNonEmpty(c.Backend, c.settings().Backend, DefaultBackend)
}

// ParamStore builds the Parameter Store backend configuration.
//
// Precedence per field is flag, then config file, then the standard AWS
// environment variables. The PARAMSTORE_KEYRING_KEY_ID override is applied
// later by paramstore.New.
func (c *Config) ParamStore() (paramstore.Config, error) {
	s := c.settings()

	timeout := c.Timeout
	if timeout == 0 && s.Timeout != "" {
		d, err := time.ParseDuration(s.Timeout)
		if err != nil {
			return paramstore.Config{}, dserrors.ConfigError{
				Field:      "timeout",
				Value:      s.Timeout,
				Message:    "invalid duration",
				Suggestion: "Use a Go duration such as 10s or 1m30s",
				Err:        err,
			}
		}
		timeout = d
	}

	return paramstore.Config{
		Region:     firstNonEmpty(c.Region, s.Region, os.Getenv("AWS_REGION"), os.Getenv("AWS_DEFAULT_REGION")),
		Profile:    firstNonEmpty(c.Profile, s.Profile, os.Getenv("AWS_PROFILE")),
		KeyID:      firstNonEmpty(c.KeyID, s.KeyID),
		AssumeRole: firstNonEmpty(c.AssumeRole, s.AssumeRole),
		Timeout:    timeout,
	}, nil
}

func (c *Config) settings() *Settings {
	if c.Settings == nil {
		return &Settings{}
	}
	return c.Settings
}

func (c *Config) logger() *logging.Logger {
	if c.Logger == nil {
		return logging.Discard()
	}
	return c.Logger
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
