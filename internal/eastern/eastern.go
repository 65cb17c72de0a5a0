// Package eastern handles every conversion between UTC instants and US
// Eastern civil time. All listings, slugs, and generation windows are defined
// in Eastern wall-clock terms, so the rest of the codebase never does its own
// timezone math.
package eastern

import (
	"strconv"
	"strings"
	"time"

	// Embed tzdata so civil-time conversion works regardless of the host's
	// timezone database or TZ setting.
	_ "time/tzdata"
)

// UTC offsets in force during daylight saving and standard time.
const (
	OffsetEDT = "-04:00"
	OffsetEST = "-05:00"
)

// Location is the canonical Eastern zone used for civil-time extraction and
// display formatting.
var Location = mustLoadLocation()

func mustLoadLocation() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic("eastern: load America/New_York: " + err.Error())
	}
	return loc
}

// Now returns the current instant viewed in the Eastern zone.
func Now() time.Time {
	return time.Now().In(Location)
}

// CivilDate returns the Eastern calendar date of an arbitrary instant.
func CivilDate(t time.Time) (year int, month time.Month, day int) {
	return t.In(Location).Date()
}

// nthSunday returns the day of month of the nth Sunday of the given month.
func nthSunday(year int, month time.Month, n int) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	day := 1 + (7-int(first.Weekday()))%7
	return day + 7*(n-1)
}

// OffsetForCivilDate returns the UTC offset in force for the given Eastern
// civil date. Daylight saving runs from the second Sunday of March through
// the day before the first Sunday of November.
//
// The transition day itself takes the post-transition offset for the whole
// civil day: clocks move at 02:00 local, before any start time this system
// resolves.
func OffsetForCivilDate(year int, month time.Month, day int) string {
	switch {
	case month > time.March && month < time.November:
		return OffsetEDT
	case month < time.March || month > time.November:
		return OffsetEST
	case month == time.March:
		if day >= nthSunday(year, time.March, 2) {
			return OffsetEDT
		}
		return OffsetEST
	default: // November
		if day < nthSunday(year, time.November, 1) {
			return OffsetEDT
		}
		return OffsetEST
	}
}

// ToUTC composes a wall-clock time and a UTC offset ("-05:00" style) into a
// precise UTC instant.
func ToUTC(year int, month time.Month, day, hour, minute int, offset string) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0,
		time.FixedZone("", offsetSeconds(offset))).UTC()
}

func offsetSeconds(offset string) int {
	sign := 1
	s := offset
	switch {
	case strings.HasPrefix(s, "-"):
		sign = -1
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	hh, mm := s, "0"
	if i := strings.IndexByte(s, ':'); i >= 0 {
		hh, mm = s[:i], s[i+1:]
	}
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	return sign * (h*3600 + m*60)
}

// StartOfWeek returns Monday 00:00 Eastern of the week containing t. The
// arithmetic is on civil dates, so a week containing a DST transition still
// starts on its Monday midnight.
func StartOfWeek(t time.Time) time.Time {
	et := t.In(Location)
	y, m, d := et.Date()
	back := (int(et.Weekday()) + 6) % 7
	return time.Date(y, m, d-back, 0, 0, 0, 0, Location)
}

// EndOfWeek returns the following Monday 00:00 Eastern — the exclusive upper
// bound of the week containing t.
func EndOfWeek(t time.Time) time.Time {
	start := StartOfWeek(t)
	y, m, d := start.Date()
	return time.Date(y, m, d+7, 0, 0, 0, 0, Location)
}

// Format renders t in the Eastern zone with the given layout.
func Format(t time.Time, layout string) string {
	return t.In(Location).Format(layout)
}

// DateString returns the Eastern civil date of t as YYYY-MM-DD. Generated
// event slugs embed this string.
func DateString(t time.Time) string {
	return t.In(Location).Format("2006-01-02")
}

// ParseFlexible parses externally supplied date/time strings.
//
// Policy (intentional asymmetry, relied on by day-of-week bucketing
// downstream): a string with an explicit offset or "Z" is taken as given; a
// bare YYYY-MM-DD date is UTC midnight of that date, not Eastern midnight; a
// naive datetime is treated as UTC. Unparseable input reports ok=false so
// callers can drop bad records instead of failing a whole listing.
func ParseFlexible(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s+"Z"); err == nil {
		return t, true
	}
	return time.Time{}, false
}
