// Package congregation resolves a congregation's profile and the locally
// significant dates that fall near a reference date.
package congregation

import (
	"encoding/json"
	"io"
	"sort"
	"time"

	"github.com/FocuswithJustin/JuniperLessons/core/calendar"
	"github.com/FocuswithJustin/JuniperLessons/core/errors"
	"github.com/FocuswithJustin/JuniperLessons/internal/logging"
)

// DefaultID is the profile used when a congregation identifier is unknown.
const DefaultID = "default"

// Window is the proximity window, in days, for significant dates. The bound
// is inclusive.
const Window = 21

// SignificantDate is one entry of a congregation's local calendar. Date is
// kept as written in the catalog and parsed on demand.
type SignificantDate struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Emphasis    string `json:"emphasis,omitempty"`
}

// Profile describes one congregation.
type Profile struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Location         string            `json:"location"`
	Values           []string          `json:"values"`
	SignificantDates []SignificantDate `json:"significant_dates"`
}

// Event is a significant date that falls inside the window.
type Event struct {
	Description string `json:"description"`
	Emphasis    string `json:"emphasis,omitempty"`
	Date        string `json:"date"`
	DaysApart   int    `json:"days_apart"`
}

// Context is the resolved congregation information for one request.
type Context struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Location     string   `json:"location"`
	Values       []string `json:"values"`
	NearbyEvents []Event  `json:"nearby_events"`
}

// Catalog is an immutable table of profiles keyed by identifier.
type Catalog struct {
	profiles map[string]Profile
	ids      []string
}

// NewCatalog builds a catalog. The table must contain a DefaultID entry.
func NewCatalog(profiles map[string]Profile) (*Catalog, error) {
	if _, ok := profiles[DefaultID]; !ok {
		return nil, errors.NewParse("congregation catalog", "", "missing \"default\" profile")
	}

	c := &Catalog{profiles: make(map[string]Profile, len(profiles))}
	for id, p := range profiles {
		p.ID = id
		p.Values = append([]string(nil), p.Values...)
		p.SignificantDates = append([]SignificantDate(nil), p.SignificantDates...)
		c.profiles[id] = p
		c.ids = append(c.ids, id)
	}
	sort.Strings(c.ids)
	return c, nil
}

// LoadCatalog decodes a JSON object of profiles keyed by identifier.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var raw map[string]Profile
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, &errors.ParseError{Format: "congregation catalog", Message: err.Error(), Err: err}
	}
	return NewCatalog(raw)
}

// Profile returns the profile for id, falling back to the default profile.
// The second result reports whether id itself was known.
func (c *Catalog) Profile(id string) (Profile, bool) {
	if p, ok := c.profiles[id]; ok {
		return p, true
	}
	return c.profiles[DefaultID], false
}

// IDs returns the known identifiers in sorted order.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.ids...)
}

// Resolver computes congregation context against a catalog.
type Resolver struct {
	catalog *Catalog
	window  int
}

// NewResolver returns a resolver over catalog.
func NewResolver(catalog *Catalog) *Resolver {
	return &Resolver{catalog: catalog, window: Window}
}

// Resolve returns the profile metadata for id together with its significant
// dates inside the window around ref, nearest first. Entries whose stored
// date cannot be parsed are left out.
func (r *Resolver) Resolve(id string, ref time.Time) Context {
	p, _ := r.catalog.Profile(id)
	ref = calendar.DateOnly(ref)

	events := []Event{}
	for _, sd := range p.SignificantDates {
		when, err := calendar.ParseCivil(sd.Date)
		if err != nil {
			logging.Debug("skipping significant date", "congregation", p.ID, "date", sd.Date, "error", err)
			continue
		}
		delta := calendar.DaysBetween(ref, when)
		if delta > r.window {
			continue
		}
		events = append(events, Event{
			Description: sd.Description,
			Emphasis:    sd.Emphasis,
			Date:        when.Format(time.DateOnly),
			DaysApart:   delta,
		})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].DaysApart < events[j].DaysApart
	})

	return Context{
		ID:           p.ID,
		Name:         p.Name,
		Location:     p.Location,
		Values:       append([]string(nil), p.Values...),
		NearbyEvents: events,
	}
}
