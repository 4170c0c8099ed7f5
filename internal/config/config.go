// Package config holds the service configuration. Values come from, in
// increasing precedence: built-in defaults, an optional YAML file, then
// command-line flags and their LESSON_* environment variables.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/JuniperLessons/core/errors"
)

// Config represents the full service configuration.
type Config struct {
	Port    int    `yaml:"port"`
	DataDir string `yaml:"data_dir"`

	// Catalog overrides. Empty means the embedded catalogs.
	Catalogs CatalogConfig `yaml:"catalogs"`

	Search    SearchConfig    `yaml:"search"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// CORS allowed origins (empty = allow all)
	AllowedOrigins []string `yaml:"allowed_origins"`

	Log LogConfig `yaml:"log"`
}

// CatalogConfig points at replacement catalog files.
type CatalogConfig struct {
	Samples       string `yaml:"samples"`
	Congregations string `yaml:"congregations"`
}

// SearchConfig configures the remote code search.
type SearchConfig struct {
	BaseURL  string   `yaml:"base_url"`
	Repo     string   `yaml:"repo"`
	Timeout  Duration `yaml:"timeout"`
	CacheTTL Duration `yaml:"cache_ttl"`
	Limit    int      `yaml:"limit"`
}

// RateLimitConfig configures the per-IP token bucket.
type RateLimitConfig struct {
	Requests int `yaml:"requests"` // Requests per minute (0 = disabled)
	Burst    int `yaml:"burst"`
}

// LogConfig selects the log level and handler format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration is a time.Duration written as "5s" in YAML.
type Duration time.Duration

// UnmarshalYAML accepts Go duration strings.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML writes the duration string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Port:    8081,
		DataDir: "./data",
		Search: SearchConfig{
			BaseURL:  "https://api.github.com",
			Repo:     "ETCBC/bhsa",
			Timeout:  Duration(5 * time.Second),
			CacheTTL: Duration(10 * time.Minute),
			Limit:    5,
		},
		RateLimit: RateLimitConfig{
			Requests: 60,
			Burst:    10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadFile reads a YAML file over cfg. Keys absent from the file keep
// their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewIO("read", path, err)
	}
	return Decode(bytes.NewReader(data), path, cfg)
}

// Decode reads YAML from r over cfg. Unknown keys are rejected.
func Decode(r io.Reader, name string, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return &errors.ParseError{Format: "YAML", Path: name, Message: err.Error(), Err: err}
	}
	return nil
}

// Write encodes cfg as YAML.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// Validate checks ranges and required values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return &errors.ValidationError{Field: "port", Value: fmt.Sprint(c.Port), Message: "must be between 1 and 65535"}
	}
	if c.DataDir == "" {
		return errors.NewValidation("data_dir", "cannot be empty")
	}
	if c.Search.BaseURL == "" {
		return errors.NewValidation("search.base_url", "cannot be empty")
	}
	if c.Search.Timeout <= 0 {
		return errors.NewValidation("search.timeout", "must be positive")
	}
	if c.Search.Limit < 1 {
		return errors.NewValidation("search.limit", "must be at least 1")
	}
	if c.RateLimit.Requests < 0 || c.RateLimit.Burst < 0 {
		return errors.NewValidation("rate_limit", "cannot be negative")
	}
	return nil
}

// DecksDir is where generated .pptx files are written.
func (c *Config) DecksDir() string {
	return filepath.Join(c.DataDir, "decks")
}

// DatabasePath is the deck registry database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "lessons.db")
}
