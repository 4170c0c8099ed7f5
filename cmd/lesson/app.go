package main

import (
	"context"
	"fmt"
	"os"

	"github.com/FocuswithJustin/JuniperLessons/core/congregation"
	"github.com/FocuswithJustin/JuniperLessons/core/festival"
	"github.com/FocuswithJustin/JuniperLessons/core/lesson"
	"github.com/FocuswithJustin/JuniperLessons/core/samples"
	"github.com/FocuswithJustin/JuniperLessons/internal/api"
	"github.com/FocuswithJustin/JuniperLessons/internal/codesearch"
	"github.com/FocuswithJustin/JuniperLessons/internal/config"
	"github.com/FocuswithJustin/JuniperLessons/internal/decks"
	"github.com/FocuswithJustin/JuniperLessons/internal/embedded"
	"github.com/FocuswithJustin/JuniperLessons/internal/logging"
)

type catalogs struct {
	samples       *samples.Catalog
	congregations *congregation.Catalog
}

func (c catalogs) generator() *lesson.Generator {
	return lesson.NewGenerator(c.samples, festival.NewMatcher(nil), congregation.NewResolver(c.congregations))
}

// loadCatalogs reads catalog overrides, falling back to the embedded
// catalogs. A catalog that fails to load is fatal.
func loadCatalogs(cfg config.CatalogConfig) (catalogs, error) {
	var (
		c   catalogs
		err error
	)

	if cfg.Samples == "" {
		c.samples, err = embedded.Samples()
	} else {
		err = withFile(cfg.Samples, func(f *os.File) (err error) {
			c.samples, err = samples.LoadCatalog(f)
			return err
		})
	}
	if err != nil {
		return catalogs{}, fmt.Errorf("load sample catalog: %w", err)
	}

	if cfg.Congregations == "" {
		c.congregations, err = embedded.Congregations()
	} else {
		err = withFile(cfg.Congregations, func(f *os.File) (err error) {
			c.congregations, err = congregation.LoadCatalog(f)
			return err
		})
	}
	if err != nil {
		return catalogs{}, fmt.Errorf("load congregation catalog: %w", err)
	}

	return c, nil
}

func withFile(path string, fn func(*os.File) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f)
}

func initLogging(cfg config.LogConfig) error {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format)
	return nil
}

// buildServer wires the API from cfg. The caller owns the returned store.
func buildServer(ctx context.Context, cfg *config.Config) (*api.Server, *decks.Store, error) {
	cat, err := loadCatalogs(cfg.Catalogs)
	if err != nil {
		return nil, nil, err
	}
	pages, err := embedded.Templates()
	if err != nil {
		return nil, nil, fmt.Errorf("parse templates: %w", err)
	}

	store, err := decks.Open(ctx, cfg.DecksDir(), cfg.DatabasePath())
	if err != nil {
		return nil, nil, err
	}

	fm := festival.NewMatcher(nil)
	resolver := congregation.NewResolver(cat.congregations)
	srv, err := api.New(cfg, api.Deps{
		Generator:     lesson.NewGenerator(cat.samples, fm, resolver),
		Congregations: cat.congregations,
		Resolver:      resolver,
		Festivals:     fm,
		Search: codesearch.New(codesearch.Options{
			BaseURL:  cfg.Search.BaseURL,
			Repo:     cfg.Search.Repo,
			Timeout:  cfg.Search.Timeout.Std(),
			CacheTTL: cfg.Search.CacheTTL.Std(),
		}, cat.samples),
		Decks: store,
		Pages: pages,
	})
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return srv, store, nil
}
