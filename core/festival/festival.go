// Package festival correlates civil dates with nearby Hebrew festivals.
package festival

import (
	"sort"
	"time"

	"github.com/FocuswithJustin/JuniperLessons/core/calendar"
)

// Window is the proximity window, in days, inside which a festival counts
// as near a reference date. The bound is inclusive.
const Window = 21

// Festival is a fixed Hebrew month/day with a display name and a thematic
// emphasis.
type Festival struct {
	Month    int    `json:"month"`
	Day      int    `json:"day"`
	Name     string `json:"name"`
	Emphasis string `json:"emphasis"`
}

// Match is a festival's civil occurrence near a reference date.
type Match struct {
	Festival   string `json:"festival"`
	Emphasis   string `json:"emphasis"`
	Date       string `json:"festival_date"`
	HebrewDate string `json:"hebrew_date"`
	DaysApart  int    `json:"days_apart"`
}

var catalog = []Festival{
	{calendar.Nisan, 15, "Passover (Pesach)", "Celebrates redemption from Egypt and anticipates ultimate deliverance."},
	{calendar.Nisan, 21, "Feast of Unleavened Bread", "Calls to remove leaven, symbolizing holiness and readiness."},
	{calendar.Sivan, 6, "Shavuot (Pentecost)", "Remembers Torah giving and the Spirit's empowering."},
	{calendar.Tishri, 1, "Rosh Hashanah", "Invites reflection, repentance, and attentiveness to God's voice."},
	{calendar.Tishri, 10, "Yom Kippur", "Centers on atonement and God's mercy."},
	{calendar.Tishri, 15, "Sukkot", "Highlights God's provision in wilderness journeys."},
	{calendar.Kislev, 25, "Hanukkah", "Celebrates dedication and faithful witness."},
	{calendar.Adar, 14, "Purim", "Recounts God's hidden deliverance in Esther's story."},
}

// Catalog returns a copy of the built-in festival table in catalog order.
func Catalog() []Festival {
	out := make([]Festival, len(catalog))
	copy(out, catalog)
	return out
}

// Matcher finds festivals near a reference date.
type Matcher struct {
	festivals []Festival
	window    int
}

// NewMatcher returns a matcher over the given festivals. A nil slice selects
// the built-in catalog.
func NewMatcher(festivals []Festival) *Matcher {
	if festivals == nil {
		festivals = catalog
	}
	return &Matcher{festivals: festivals, window: Window}
}

// Match returns the festival occurrences within Window days of ref, nearest
// first. Occurrences are gathered from the Hebrew year containing ref and the
// years either side, so a Tishri festival just after the civil reference is
// found even while ref still falls in Elul of the previous year. Festival
// dates that do not exist in a given year are skipped.
func (m *Matcher) Match(ref time.Time) []Match {
	ref = calendar.DateOnly(ref)
	year := calendar.FromTime(ref).Year

	matches := []Match{}
	for _, y := range []int{year - 1, year, year + 1} {
		for _, f := range m.festivals {
			hd := calendar.Date{Year: y, Month: f.Month, Day: f.Day}
			when, ok := hd.Civil()
			if !ok {
				continue
			}
			delta := calendar.DaysBetween(ref, when)
			if delta > m.window {
				continue
			}
			matches = append(matches, Match{
				Festival:   f.Name,
				Emphasis:   f.Emphasis,
				Date:       when.Format(time.DateOnly),
				HebrewDate: hd.String(),
				DaysApart:  delta,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].DaysApart < matches[j].DaysApart
	})
	return matches
}
