package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/JuniperLessons/core/festival"
	"github.com/FocuswithJustin/JuniperLessons/core/lesson"
	"github.com/FocuswithJustin/JuniperLessons/core/pptx"
	"github.com/FocuswithJustin/JuniperLessons/internal/api"
	"github.com/FocuswithJustin/JuniperLessons/internal/config"
)

// run parses and executes args, returning what the command wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var (
		cli            CLI
		stdout, stderr bytes.Buffer
	)
	parser, err := newParser(&cli,
		kong.Writers(&stdout, &stderr),
		kong.Exit(func(code int) { t.Fatalf("unexpected exit %d: %s", code, stderr.String()) }),
	)
	if err != nil {
		t.Fatalf("newParser() error: %v", err)
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return "", err
	}
	err = ctx.Run(ctx)
	return stdout.String(), err
}

func TestConvert(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"convert", "to-hebrew", "2025-04-13"}, "15 Nisan 5785"},
		{[]string{"convert", "to-hebrew", "2024-10-03"}, "1 Tishri 5785"},
		{[]string{"convert", "to-civil", "5785", "1", "15"}, "2025-04-13"},
		{[]string{"convert", "to-civil", "5785", "7", "1"}, "2024-10-03"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("run() error: %v", err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConvertErrors(t *testing.T) {
	// 5785 is a common year, so it has no Adar II.
	if _, err := run(t, "convert", "to-civil", "5785", "13", "1"); err == nil {
		t.Error("expected error for Adar II of a common year")
	}
	if _, err := run(t, "convert", "to-hebrew", "not a date"); err == nil {
		t.Error("expected error for an unparseable date")
	}
}

func TestFestivals(t *testing.T) {
	out, err := run(t, "festivals", "--date", "2025-04-13", "--json")
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}
	var matches []festival.Match
	if err := json.Unmarshal([]byte(out), &matches); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(matches) == 0 || matches[0].Festival != "Passover (Pesach)" || matches[0].DaysApart != 0 {
		t.Errorf("matches = %+v", matches)
	}

	out, err = run(t, "festivals", "--date", "2025-04-13")
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if !strings.HasPrefix(out, "2025-04-13 (15 Nisan 5785)") || !strings.Contains(out, "Passover (Pesach)") {
		t.Errorf("table output = %q", out)
	}

	out, err = run(t, "festivals", "--date", "2025-08-01")
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if !strings.Contains(out, "No festivals within 21 days.") {
		t.Errorf("quiet period output = %q", out)
	}
}

func TestGenerateAndInspect(t *testing.T) {
	deckPath := filepath.Join(t.TempDir(), "psalm.pptx")
	out, err := run(t, "generate", "--passage", "Psalm 23", "--date", "2025-04-01", "--out", deckPath)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}

	var result lesson.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if result.Lesson.Title != "Psalm 23: Bible Study" || result.RuntimeMinutes != 35 {
		t.Errorf("Title = %q, RuntimeMinutes = %d", result.Lesson.Title, result.RuntimeMinutes)
	}

	data, err := os.ReadFile(deckPath)
	if err != nil {
		t.Fatalf("deck not written: %v", err)
	}
	slides, err := pptx.Read(data)
	if err != nil {
		t.Fatalf("pptx.Read() error: %v", err)
	}
	if len(slides) != len(result.Lesson.Slides) {
		t.Errorf("deck has %d slides, lesson has %d", len(slides), len(result.Lesson.Slides))
	}

	out, err = run(t, "decks", "inspect", "--notes", deckPath)
	if err != nil {
		t.Fatalf("inspect error: %v", err)
	}
	if !strings.Contains(out, "psalm.pptx: 5 slides") || !strings.Contains(out, "1. Opening Story") {
		t.Errorf("inspect output = %q", out)
	}
	if !strings.Contains(out, "notes: "+lesson.OpeningNotes) {
		t.Error("inspect --notes did not print speaker notes")
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := [][]string{
		{"generate"},
		{"generate", "--topic", "hope", "--minutes", "200"},
		{"generate", "--topic", "hope", "--date", "2025-02-30"},
		{"generate", "--topic", "hope", "--type", "sermon"},
	}
	for _, args := range tests {
		if _, err := run(t, args...); err == nil {
			t.Errorf("run(%v) expected error", args)
		}
	}
}

func TestInspectRejectsNonDeck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pptx")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "decks", "inspect", path); err == nil {
		t.Error("expected error for a non-deck file")
	}
}

func TestDecksListEmpty(t *testing.T) {
	out, err := run(t, "decks", "list", "--data-dir", t.TempDir())
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if strings.TrimSpace(out) != "No decks." {
		t.Errorf("output = %q", out)
	}
}

func TestConfigShow(t *testing.T) {
	out, err := run(t, "config", "show", "--port", "9090", "--search-timeout", "2s")
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if !strings.Contains(out, "port: 9090") || !strings.Contains(out, "timeout: 2s") {
		t.Errorf("config output = %q", out)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if !strings.HasPrefix(out, "lesson version "+api.Version) {
		t.Errorf("output = %q", out)
	}
}

func TestLoadCatalogsOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.json")
	catalog := `[{"reference": "Ruth 1:16-17", "hebrew_focus": "davqah", "lexical_insights": ["cling"], "themes": ["loyalty"]}]`
	if err := os.WriteFile(path, []byte(catalog), 0o644); err != nil {
		t.Fatal(err)
	}

	cat, err := loadCatalogs(config.CatalogConfig{Samples: path})
	if err != nil {
		t.Fatalf("loadCatalogs() error: %v", err)
	}
	if cat.samples.Len() != 1 || len(cat.congregations.IDs()) != 3 {
		t.Errorf("samples = %d, congregations = %d", cat.samples.Len(), len(cat.congregations.IDs()))
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadCatalogs(config.CatalogConfig{Congregations: bad}); err == nil {
		t.Error("expected error for a catalog without a default profile")
	}
}

func TestBuildServer(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	srv, store, err := buildServer(t.Context(), cfg)
	if err != nil {
		t.Fatalf("buildServer() error: %v", err)
	}
	defer store.Close()
	defer srv.Close()

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("GET /health status = %d", w.Code)
	}
}
