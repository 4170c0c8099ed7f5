package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/FocuswithJustin/JuniperLessons/core/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Port != 8081 {
		t.Errorf("Port = %d, want 8081", cfg.Port)
	}
	if cfg.Search.Timeout.Std() != 5*time.Second {
		t.Errorf("Search.Timeout = %v, want 5s", cfg.Search.Timeout.Std())
	}
	if cfg.Search.Repo != "ETCBC/bhsa" {
		t.Errorf("Search.Repo = %q", cfg.Search.Repo)
	}
	if got := cfg.DecksDir(); got != filepath.Join("data", "decks") {
		t.Errorf("DecksDir() = %q", got)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lesson.yaml")
	content := `port: 9090
data_dir: /srv/lessons
search:
  timeout: 2s
  repo: example/texts
allowed_origins:
  - https://church.example
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := LoadFile(path, cfg); err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.Port != 9090 || cfg.DataDir != "/srv/lessons" {
		t.Errorf("top-level values not loaded: %+v", cfg)
	}
	if cfg.Search.Timeout.Std() != 2*time.Second || cfg.Search.Repo != "example/texts" {
		t.Errorf("Search = %+v", cfg.Search)
	}
	if cfg.Search.BaseURL != "https://api.github.com" {
		t.Errorf("absent key should keep default, got %q", cfg.Search.BaseURL)
	}
	if cfg.RateLimit.Requests != 60 {
		t.Errorf("absent section should keep default, got %+v", cfg.RateLimit)
	}
	if len(cfg.AllowedOrigins) != 1 {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadFileErrors(t *testing.T) {
	cfg := Default()
	if err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), cfg); err == nil {
		t.Error("expected error for missing file")
	}

	tests := []struct {
		name  string
		input string
	}{
		{"unknown key", "prot: 9090\n"},
		{"bad duration", "search:\n  timeout: soon\n"},
		{"wrong type", "port: eighty\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Decode(strings.NewReader(tt.input), "test.yaml", Default())
			var pe *errors.ParseError
			if !errors.As(err, &pe) {
				t.Errorf("Decode() error = %v, want ParseError", err)
			}
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	cfg := Default()
	if err := Decode(strings.NewReader(""), "empty.yaml", cfg); err != nil {
		t.Errorf("empty file should be accepted: %v", err)
	}
	if cfg.Port != 8081 {
		t.Errorf("Port = %d, want default", cfg.Port)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.AllowedOrigins = []string{"https://a.example"}

	var buf bytes.Buffer
	if err := cfg.Write(&buf); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if !strings.Contains(buf.String(), "timeout: 5s") {
		t.Errorf("durations should be written as strings:\n%s", buf.String())
	}

	got := &Config{}
	if err := Decode(&buf, "written.yaml", got); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got.Search.Timeout != cfg.Search.Timeout || got.Port != cfg.Port || got.AllowedOrigins[0] != "https://a.example" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"port zero", func(c *Config) { c.Port = 0 }, "port"},
		{"port too large", func(c *Config) { c.Port = 70000 }, "port"},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, "data_dir"},
		{"empty search url", func(c *Config) { c.Search.BaseURL = "" }, "search.base_url"},
		{"zero timeout", func(c *Config) { c.Search.Timeout = 0 }, "search.timeout"},
		{"zero limit", func(c *Config) { c.Search.Limit = 0 }, "search.limit"},
		{"negative burst", func(c *Config) { c.RateLimit.Burst = -1 }, "rate_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			var ve *errors.ValidationError
			if err := cfg.Validate(); !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("Validate() error = %v, want field %q", err, tt.field)
			}
		})
	}
}

func TestFlagsResolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lesson.yaml")
	if err := os.WriteFile(path, []byte("port: 9090\nlog:\n  level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	f := Flags{Config: path, DataDir: "/tmp/lessons", SearchTimeout: time.Second}
	cfg, err := f.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want file value 9090", cfg.Port)
	}
	if cfg.DataDir != "/tmp/lessons" {
		t.Errorf("DataDir = %q, want flag value", cfg.DataDir)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Search.Timeout.Std() != time.Second {
		t.Errorf("Search.Timeout = %v", cfg.Search.Timeout.Std())
	}

	f = Flags{Config: path, Port: 7000}
	cfg, err = f.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if cfg.Port != 7000 {
		t.Errorf("flag should override file, Port = %d", cfg.Port)
	}

	f = Flags{Port: 99999}
	if _, err := f.Resolve(); err == nil {
		t.Error("expected validation error for out-of-range port")
	}
}
