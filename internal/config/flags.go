package config

import "time"

// Flags are the kong-bound server options. Zero values mean "not given" so
// the YAML file and defaults can fill them in.
type Flags struct {
	Config         string        `name:"config" short:"c" help:"YAML configuration file" type:"existingfile" env:"LESSON_CONFIG"`
	Port           int           `help:"HTTP server port" env:"LESSON_PORT"`
	DataDir        string        `name:"data-dir" help:"Directory for generated decks and the registry" type:"path" env:"LESSON_DATA_DIR"`
	Samples        string        `help:"Sample catalog JSON (default: embedded)" type:"existingfile" env:"LESSON_SAMPLES"`
	Congregations  string        `help:"Congregation catalog JSON (default: embedded)" type:"existingfile" env:"LESSON_CONGREGATIONS"`
	SearchURL      string        `name:"search-url" help:"Code search API base URL" env:"LESSON_SEARCH_URL"`
	SearchRepo     string        `name:"search-repo" help:"Repository the code search is scoped to" env:"LESSON_SEARCH_REPO"`
	SearchTimeout  time.Duration `name:"search-timeout" help:"Code search timeout" env:"LESSON_SEARCH_TIMEOUT"`
	RateLimit      int           `name:"rate-limit" help:"Requests per minute per client (0 = config default)" env:"LESSON_RATE_LIMIT"`
	RateBurst      int           `name:"rate-burst" help:"Rate limit burst size" env:"LESSON_RATE_BURST"`
	AllowedOrigins []string      `name:"allowed-origin" help:"CORS allowed origin (repeatable)" env:"LESSON_ALLOWED_ORIGINS"`
	LogLevel       string        `name:"log-level" help:"Log level (debug, info, warn, error)" env:"LESSON_LOG_LEVEL"`
	LogFormat      string        `name:"log-format" help:"Log format (json, text)" env:"LESSON_LOG_FORMAT"`
}

// Resolve builds the effective configuration.
func (f *Flags) Resolve() (*Config, error) {
	cfg := Default()
	if f.Config != "" {
		if err := LoadFile(f.Config, cfg); err != nil {
			return nil, err
		}
	}
	f.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (f *Flags) apply(cfg *Config) {
	setInt(&cfg.Port, f.Port)
	setString(&cfg.DataDir, f.DataDir)
	setString(&cfg.Catalogs.Samples, f.Samples)
	setString(&cfg.Catalogs.Congregations, f.Congregations)
	setString(&cfg.Search.BaseURL, f.SearchURL)
	setString(&cfg.Search.Repo, f.SearchRepo)
	if f.SearchTimeout > 0 {
		cfg.Search.Timeout = Duration(f.SearchTimeout)
	}
	setInt(&cfg.RateLimit.Requests, f.RateLimit)
	setInt(&cfg.RateLimit.Burst, f.RateBurst)
	if len(f.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = append([]string(nil), f.AllowedOrigins...)
	}
	setString(&cfg.Log.Level, f.LogLevel)
	setString(&cfg.Log.Format, f.LogFormat)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
