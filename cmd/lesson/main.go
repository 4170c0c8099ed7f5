// Command lesson composes Hebrew-text lessons with liturgical and
// congregational context, serves the lesson API and manages generated decks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"

	"github.com/FocuswithJustin/JuniperLessons/core/calendar"
	"github.com/FocuswithJustin/JuniperLessons/core/festival"
	"github.com/FocuswithJustin/JuniperLessons/core/pptx"
	"github.com/FocuswithJustin/JuniperLessons/core/sqlite"
	"github.com/FocuswithJustin/JuniperLessons/internal/api"
	"github.com/FocuswithJustin/JuniperLessons/internal/config"
	"github.com/FocuswithJustin/JuniperLessons/internal/decks"
	"github.com/FocuswithJustin/JuniperLessons/internal/validation"
)

// CLI defines the command-line interface for lesson.
type CLI struct {
	Serve     ServeCmd     `cmd:"" help:"Start the lesson API server"`
	Generate  GenerateCmd  `cmd:"" help:"Compose a lesson and print it as JSON"`
	Festivals FestivalsCmd `cmd:"" help:"List festivals near a date"`
	Convert   ConvertGroup `cmd:"" help:"Convert between civil and Hebrew dates"`
	Decks     DecksGroup   `cmd:"" help:"Generated deck registry"`
	Config    ConfigGroup  `cmd:"" help:"Configuration helpers"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// ConvertGroup contains calendar conversions.
type ConvertGroup struct {
	ToHebrew ToHebrewCmd `cmd:"" name:"to-hebrew" help:"Convert a civil date to a Hebrew date"`
	ToCivil  ToCivilCmd  `cmd:"" name:"to-civil" help:"Convert a Hebrew date to a civil date"`
}

// DecksGroup contains deck registry operations.
type DecksGroup struct {
	List    DecksListCmd    `cmd:"" help:"List generated decks"`
	Inspect DecksInspectCmd `cmd:"" help:"Show the slides of a .pptx file"`
}

// ConfigGroup contains configuration operations.
type ConfigGroup struct {
	Show ConfigShowCmd `cmd:"" help:"Print the effective configuration as YAML"`
}

// ServeCmd starts the HTTP API.
type ServeCmd struct {
	config.Flags `embed:""`
}

func (c *ServeCmd) Run() error {
	cfg, err := c.Resolve()
	if err != nil {
		return err
	}
	if err := initLogging(cfg.Log); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, store, err := buildServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	return srv.Start(ctx)
}

// GenerateCmd composes one lesson offline.
type GenerateCmd struct {
	Topic         string `help:"Lesson topic"`
	Passage       string `help:"Passage to anchor on, e.g. \"Psalm 23\""`
	Type          string `name:"type" default:"bible_study" enum:"expository,topical,bible_study,personal" help:"Lesson type"`
	Audience      string `help:"Audience description"`
	Occasion      string `help:"Occasion for the lesson"`
	Date          string `help:"Reference date (default: today, UTC)"`
	Minutes       int    `default:"35" help:"Requested length in minutes (10-120)"`
	Interpreted   bool   `help:"Every line is interpreted"`
	Congregation  string `default:"default" help:"Congregation profile ID"`
	Samples       string `help:"Sample catalog JSON (default: embedded)" type:"existingfile"`
	Congregations string `help:"Congregation catalog JSON (default: embedded)" type:"existingfile"`
	Out           string `help:"Also write the slide deck to this .pptx path" type:"path"`
}

func (c *GenerateCmd) Run(k *kong.Context) error {
	minutes := c.Minutes
	req, ref, err := validation.ValidateLesson(validation.LessonInput{
		Audience:         c.Audience,
		Occasion:         c.Occasion,
		Date:             c.Date,
		Topic:            c.Topic,
		Passage:          c.Passage,
		LessonType:       c.Type,
		EstimatedMinutes: &minutes,
		Interpreted:      c.Interpreted,
		CongregationID:   c.Congregation,
	}, time.Now())
	if err != nil {
		return err
	}

	cat, err := loadCatalogs(config.CatalogConfig{Samples: c.Samples, Congregations: c.Congregations})
	if err != nil {
		return err
	}

	result := cat.generator().Generate(req, ref, nil)

	if c.Out != "" {
		deck, err := result.Lesson.Deck()
		if err != nil {
			return fmt.Errorf("build deck: %w", err)
		}
		if err := os.WriteFile(c.Out, deck, 0o644); err != nil {
			return fmt.Errorf("write deck: %w", err)
		}
		fmt.Fprintf(k.Stderr, "wrote %s (%s, %d slides)\n", c.Out, humanize.Bytes(uint64(len(deck))), len(result.Lesson.Slides))
	}

	enc := json.NewEncoder(k.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// FestivalsCmd lists festivals within the proximity window of a date.
type FestivalsCmd struct {
	Date string `help:"Reference date (default: today, UTC)"`
	JSON bool   `name:"json" help:"Print JSON instead of a table"`
}

func (c *FestivalsCmd) Run(k *kong.Context) error {
	ref, err := validation.ReferenceDate(c.Date, time.Now())
	if err != nil {
		return err
	}
	matches := festival.NewMatcher(nil).Match(ref)

	if c.JSON {
		enc := json.NewEncoder(k.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	}

	fmt.Fprintf(k.Stdout, "%s (%s)\n", ref.Format(time.DateOnly), calendar.FromTime(ref))
	if len(matches) == 0 {
		fmt.Fprintf(k.Stdout, "No festivals within %d days.\n", festival.Window)
		return nil
	}
	for _, m := range matches {
		fmt.Fprintf(k.Stdout, "  %-28s %s  %-18s %3d days\n", m.Festival, m.Date, m.HebrewDate, m.DaysApart)
	}
	return nil
}

// ToHebrewCmd converts a civil date.
type ToHebrewCmd struct {
	Date string `arg:"" help:"Civil date, e.g. 2025-04-13"`
}

func (c *ToHebrewCmd) Run(k *kong.Context) error {
	t, err := calendar.ParseCivil(c.Date)
	if err != nil {
		return err
	}
	fmt.Fprintln(k.Stdout, calendar.FromTime(t))
	return nil
}

// ToCivilCmd converts a Hebrew date. Months are numbered from Nisan (1);
// Adar II is 13.
type ToCivilCmd struct {
	Year  int `arg:"" help:"Hebrew year, e.g. 5785"`
	Month int `arg:"" help:"Month number counted from Nisan (1-13)"`
	Day   int `arg:"" help:"Day of the month"`
}

func (c *ToCivilCmd) Run(k *kong.Context) error {
	t, ok := calendar.LiturgicalToCivil(c.Year, c.Month, c.Day)
	if !ok {
		return fmt.Errorf("%d/%d/%d does not exist in the Hebrew calendar", c.Day, c.Month, c.Year)
	}
	fmt.Fprintln(k.Stdout, t.Format(time.DateOnly))
	return nil
}

// DecksListCmd lists the deck registry.
type DecksListCmd struct {
	DataDir string `name:"data-dir" default:"./data" type:"path" env:"LESSON_DATA_DIR" help:"Data directory holding decks and the registry"`
}

func (c *DecksListCmd) Run(k *kong.Context) error {
	cfg := config.Default()
	cfg.DataDir = c.DataDir

	ctx := context.Background()
	store, err := decks.Open(ctx, cfg.DecksDir(), cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer store.Close()

	list, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(k.Stdout, "No decks.")
		return nil
	}
	for _, d := range list {
		fmt.Fprintf(k.Stdout, "%s  %-40s %2d slides  %8s  %s\n",
			d.ID, d.Title, d.Slides, humanize.Bytes(uint64(d.Size)), humanize.Time(d.CreatedAt))
	}
	return nil
}

// DecksInspectCmd prints a deck's slides.
type DecksInspectCmd struct {
	Path  string `arg:"" type:"existingfile" help:"Path to a .pptx file"`
	Notes bool   `help:"Include speaker notes"`
}

func (c *DecksInspectCmd) Run(k *kong.Context) error {
	f, err := os.Open(c.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := validation.ValidateDeck(f)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(c.Path), err)
	}
	slides, err := pptx.Read(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(k.Stdout, "%s: %d slides, %s, blake3 %s\n",
		filepath.Base(c.Path), len(slides), humanize.Bytes(uint64(len(data))), decks.Hash(data))
	for i, s := range slides {
		fmt.Fprintf(k.Stdout, "\n%d. %s [#%s]\n", i+1, s.Title, s.Background)
		for _, b := range s.Bullets {
			fmt.Fprintf(k.Stdout, "   - %s\n", b)
		}
		if c.Notes && s.Notes != "" {
			fmt.Fprintf(k.Stdout, "   notes: %s\n", s.Notes)
		}
	}
	return nil
}

// ConfigShowCmd prints the resolved configuration.
type ConfigShowCmd struct {
	config.Flags `embed:""`
}

func (c *ConfigShowCmd) Run(k *kong.Context) error {
	cfg, err := c.Resolve()
	if err != nil {
		return err
	}
	return cfg.Write(k.Stdout)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(k *kong.Context) error {
	info := sqlite.GetInfo()
	fmt.Fprintf(k.Stdout, "lesson version %s (sqlite: %s, %s)\n", api.Version, info.DriverType, info.Package)
	return nil
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("lesson"),
		kong.Description("Juniper Lessons - Hebrew text lessons with liturgical and congregational context"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	ctx.FatalIfErrorf(ctx.Run(ctx))
}
