package embedded

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/FocuswithJustin/JuniperLessons/core/congregation"
)

func TestSamples(t *testing.T) {
	c, err := Samples()
	if err != nil {
		t.Fatalf("Samples() error: %v", err)
	}
	if c.Len() < 5 {
		t.Errorf("built-in catalog has %d samples, want at least 5", c.Len())
	}
	for _, s := range c.All() {
		if s.HebrewFocus == "" || s.Translation == "" {
			t.Errorf("%s: missing focus term or translation", s.Reference)
		}
		if len(s.ExegeticalNotes) == 0 || len(s.Themes) == 0 {
			t.Errorf("%s: missing notes or themes", s.Reference)
		}
	}
	if got := c.Select("", "").Reference; got != "Genesis 12:1-3" {
		t.Errorf("first sample = %q, want Genesis 12:1-3", got)
	}
}

func TestCongregations(t *testing.T) {
	c, err := Congregations()
	if err != nil {
		t.Fatalf("Congregations() error: %v", err)
	}
	ids := c.IDs()
	if len(ids) < 2 {
		t.Errorf("IDs() = %v, want default plus at least one congregation", ids)
	}

	ctx := congregation.NewResolver(c).Resolve("default", time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC))
	if len(ctx.NearbyEvents) != 1 || ctx.NearbyEvents[0].Description != "Resurrection Sunday" {
		t.Errorf("NearbyEvents = %+v, want Resurrection Sunday", ctx.NearbyEvents)
	}
}

func TestTemplates(t *testing.T) {
	tmpl, err := Templates()
	if err != nil {
		t.Fatalf("Templates() error: %v", err)
	}
	s, _ := Samples()
	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "index.html", map[string]any{
		"Name":          "Juniper Lessons",
		"Version":       "test",
		"Samples":       s.All(),
		"Congregations": []string{"default"},
	})
	if err != nil {
		t.Fatalf("ExecuteTemplate() error: %v", err)
	}
	if !strings.Contains(buf.String(), "Genesis 12:1-3") {
		t.Error("rendered page should list the samples")
	}
}
