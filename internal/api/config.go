package api

import (
	"fmt"
	"html/template"
	"time"

	"github.com/FocuswithJustin/JuniperLessons/core/congregation"
	"github.com/FocuswithJustin/JuniperLessons/core/festival"
	"github.com/FocuswithJustin/JuniperLessons/core/lesson"
	"github.com/FocuswithJustin/JuniperLessons/internal/codesearch"
	"github.com/FocuswithJustin/JuniperLessons/internal/config"
	"github.com/FocuswithJustin/JuniperLessons/internal/decks"
)

// Deps are the services the API is built on. Catalogs are loaded once at
// startup and shared read-only by every request.
type Deps struct {
	Generator     *lesson.Generator
	Congregations *congregation.Catalog
	Resolver      *congregation.Resolver
	Festivals     *festival.Matcher
	Search        *codesearch.Client
	Decks         *decks.Store
	Pages         *template.Template

	// Now is the clock used for requests without a date. Defaults to time.Now.
	Now func() time.Time
}

func (d *Deps) validate() error {
	switch {
	case d.Generator == nil:
		return fmt.Errorf("api: missing lesson generator")
	case d.Congregations == nil || d.Resolver == nil:
		return fmt.Errorf("api: missing congregation catalog")
	case d.Festivals == nil:
		return fmt.Errorf("api: missing festival matcher")
	case d.Search == nil:
		return fmt.Errorf("api: missing code search client")
	case d.Decks == nil:
		return fmt.Errorf("api: missing deck store")
	case d.Pages == nil:
		return fmt.Errorf("api: missing page templates")
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return nil
}

// rateLimitConfig maps the service configuration to the limiter's.
func rateLimitConfig(cfg *config.Config) RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerMinute: cfg.RateLimit.Requests,
		BurstSize:         cfg.RateLimit.Burst,
	}
}
