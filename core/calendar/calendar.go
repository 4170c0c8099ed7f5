// Package calendar converts between the civil (proleptic Gregorian) calendar
// and the Hebrew lunisolar calendar used to place liturgical festivals.
//
// Months are numbered from Nisan (1) as in the festival tables, so the
// Hebrew year begins in month 7 (Tishri). In leap years month 12 is Adar I
// and month 13 is Adar II; common years have no month 13.
//
// Conversions never panic. A Hebrew date that does not exist in a given
// year (Adar II of a common year, 30 Heshvan of a deficient year) is an
// ordinary outcome and is reported through the ok result.
package calendar

import (
	"fmt"
	"time"
)

// Hebrew month numbers.
const (
	Nisan   = 1
	Iyyar   = 2
	Sivan   = 3
	Tammuz  = 4
	Av      = 5
	Elul    = 6
	Tishri  = 7
	Heshvan = 8
	Kislev  = 9
	Tevet   = 10
	Shevat  = 11
	Adar    = 12
	AdarII  = 13
)

const (
	// epochJDN is the Julian Day Number offset of the Hebrew calendar epoch
	// as used by the day-number arithmetic below.
	epochJDN = 347997

	// unixEpochJDN is the Julian Day Number of 1970-01-01.
	unixEpochJDN = 2440588

	// partsPerDay is the number of halakim in a day.
	partsPerDay = 25920
)

var monthNames = [...]string{
	Nisan:   "Nisan",
	Iyyar:   "Iyyar",
	Sivan:   "Sivan",
	Tammuz:  "Tammuz",
	Av:      "Av",
	Elul:    "Elul",
	Tishri:  "Tishri",
	Heshvan: "Heshvan",
	Kislev:  "Kislev",
	Tevet:   "Tevet",
	Shevat:  "Shevat",
	Adar:    "Adar",
	AdarII:  "Adar II",
}

// Date is a Hebrew calendar date.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// String renders the date as "15 Nisan 5785".
func (d Date) String() string {
	return fmt.Sprintf("%d %s %d", d.Day, MonthName(d.Year, d.Month), d.Year)
}

// Valid reports whether the date exists in its year.
func (d Date) Valid() bool {
	if d.Year < 1 || d.Month < 1 || d.Month > MonthsInYear(d.Year) {
		return false
	}
	return d.Day >= 1 && d.Day <= DaysInMonth(d.Year, d.Month)
}

// Civil returns the civil date (UTC midnight) for d.
func (d Date) Civil() (time.Time, bool) {
	if !d.Valid() {
		return time.Time{}, false
	}
	return civilFromJDN(toJDN(d.Year, d.Month, d.Day)), true
}

// FromTime returns the Hebrew date of t's civil wall-clock date.
func FromTime(t time.Time) Date {
	return fromJDN(jdnFromCivil(t))
}

// CivilToLiturgical converts a civil date to its Hebrew date. It reports
// false when the civil date itself does not exist (e.g. February 30).
func CivilToLiturgical(year int, month time.Month, day int) (Date, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, false
	}
	return FromTime(t), true
}

// LiturgicalToCivil converts a Hebrew date to a civil date. It reports false
// when the Hebrew date does not exist in that year; callers treat that as
// "no occurrence this year".
func LiturgicalToCivil(year, month, day int) (time.Time, bool) {
	return Date{Year: year, Month: month, Day: day}.Civil()
}

// IsLeapYear reports whether the Hebrew year has thirteen months.
func IsLeapYear(year int) bool {
	return mod(7*year+1, 19) < 7
}

// MonthsInYear returns 13 for leap years and 12 otherwise.
func MonthsInYear(year int) int {
	if IsLeapYear(year) {
		return 13
	}
	return 12
}

// DaysInYear returns the length of the Hebrew year (353-355 or 383-385).
func DaysInYear(year int) int {
	return newYear(year+1) - newYear(year)
}

// DaysInMonth returns the number of days in a Hebrew month, or 0 when the
// month does not exist in that year.
func DaysInMonth(year, month int) int {
	if month < 1 || month > MonthsInYear(year) {
		return 0
	}
	switch month {
	case Iyyar, Tammuz, Elul, Tevet, AdarII:
		return 29
	case Adar:
		if !IsLeapYear(year) {
			return 29
		}
	case Heshvan:
		// Heshvan is full only in complete years.
		if DaysInYear(year)%10 != 5 {
			return 29
		}
	case Kislev:
		// Kislev is short only in deficient years.
		if DaysInYear(year)%10 == 3 {
			return 29
		}
	}
	return 30
}

// MonthName returns the display name of a month in the given year.
func MonthName(year, month int) string {
	if month == Adar && IsLeapYear(year) {
		return "Adar I"
	}
	if month < 1 || month >= len(monthNames) {
		return fmt.Sprintf("Month %d", month)
	}
	return monthNames[month]
}

// elapsedDays returns the days from the epoch to the molad of Tishri of the
// given year, after the "lo ADU rosh" postponement.
func elapsedDays(year int) int {
	months := (235*year - 234) / 19
	parts := 12084 + 13753*months
	day := months*29 + parts/partsPerDay
	if mod(3*(day+1), 7) < 3 {
		day++
	}
	return day
}

// yearLengthCorrection keeps year lengths within the permitted range.
func yearLengthCorrection(year int) int {
	last, present, next := elapsedDays(year-1), elapsedDays(year), elapsedDays(year+1)
	switch {
	case next-present == 356:
		return 2
	case present-last == 382:
		return 1
	}
	return 0
}

// newYear returns the JDN of 1 Tishri.
func newYear(year int) int {
	return epochJDN + elapsedDays(year) + yearLengthCorrection(year) + 1
}

// toJDN assumes a valid date.
func toJDN(year, month, day int) int {
	jdn := newYear(year) + day - 1
	if month < Tishri {
		for m := Tishri; m <= MonthsInYear(year); m++ {
			jdn += DaysInMonth(year, m)
		}
		for m := Nisan; m < month; m++ {
			jdn += DaysInMonth(year, m)
		}
		return jdn
	}
	for m := Tishri; m < month; m++ {
		jdn += DaysInMonth(year, m)
	}
	return jdn
}

func fromJDN(jdn int) Date {
	year := (jdn-epochJDN+1)*98496/35975351 - 1
	for jdn >= newYear(year+1) {
		year++
	}

	month := Nisan
	if jdn < toJDN(year, Nisan, 1) {
		month = Tishri
	}
	for jdn > toJDN(year, month, DaysInMonth(year, month)) {
		month++
	}
	return Date{Year: year, Month: month, Day: jdn - toJDN(year, month, 1) + 1}
}

func jdnFromCivil(t time.Time) int {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return unixEpochJDN + int(midnight.Unix()/86400)
}

func civilFromJDN(jdn int) time.Time {
	return time.Unix(int64(jdn-unixEpochJDN)*86400, 0).UTC()
}

// DaysBetween returns the absolute number of civil days between the dates
// of a and b, ignoring time of day.
func DaysBetween(a, b time.Time) int {
	n := jdnFromCivil(a) - jdnFromCivil(b)
	if n < 0 {
		return -n
	}
	return n
}

// DateOnly truncates t to midnight UTC of its wall-clock date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}
