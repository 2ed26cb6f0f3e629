package prayer

import (
	"fmt"
	"strings"
	"time"
)

// Name identifies one of the five daily prayers.
type Name string

// The five tracked prayers.
const (
	Fajr    Name = "Fajr"
	Dhuhr   Name = "Dhuhr"
	Asr     Name = "Asr"
	Maghrib Name = "Maghrib"
	Isha    Name = "Isha"
)

// Names lists every prayer in canonical (chronological) order.
// The order decides which prayer is "next" and the wraparound to Fajr.
var Names = []Name{Fajr, Dhuhr, Asr, Maghrib, Isha}

// ShortNames maps full prayer names to single-character abbreviations.
var ShortNames = map[Name]string{
	Fajr:    "F",
	Dhuhr:   "D",
	Asr:     "A",
	Maghrib: "M",
	Isha:    "I",
}

// Coordinate is a geographic position in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DefaultCoordinate is used whenever no location can be determined (Masjid al-Haram).
var DefaultCoordinate = Coordinate{Latitude: 21.4225, Longitude: 39.8262}

// offset is the distance of a prayer from the approximated solar noon.
type offset struct {
	hours, minutes int
}

// offsets are fixed constants, not derived from solar position.
var offsets = map[Name]offset{
	Fajr:    {-6, -30},
	Dhuhr:   {0, 15},
	Asr:     {3, 30},
	Maghrib: {6, 10},
	Isha:    {7, 45},
}

// Times holds the scheduled instant of every prayer for one day.
type Times map[Name]time.Time

// Prayer represents a single prayer with its name and time.
type Prayer struct {
	Name Name
	Time time.Time
}

// Valid reports whether n is one of the five tracked prayers.
func (n Name) Valid() bool {
	_, ok := offsets[n]
	return ok
}

// ParseName resolves a case-insensitive prayer name.
func ParseName(s string) (Name, error) {
	s = strings.TrimSpace(s)
	for _, n := range Names {
		if strings.EqualFold(string(n), s) {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown prayer %q; valid names: %s", s, strings.Join(NameStrings(), ", "))
}

// NameStrings returns the canonical names as plain strings.
func NameStrings() []string {
	out := make([]string, len(Names))
	for i, n := range Names {
		out[i] = string(n)
	}
	return out
}

// SolarNoon approximates solar noon for the calendar date of date.
// It shifts local midday by the difference between the longitude's solar
// time (15 degrees per hour) and the location's UTC offset on that date.
func SolarNoon(lon float64, date time.Time) time.Time {
	midday := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, date.Location())
	_, offsetSec := date.Zone()
	correction := lon/15 - float64(offsetSec)/3600

	// Millisecond resolution, truncated toward zero.
	shift := time.Duration(correction*3600000) * time.Millisecond
	return midday.Add(-shift)
}

// Calculate returns the five prayer instants for the calendar date of date,
// interpreted in date's location. It is total and deterministic.
// Latitude does not influence the approximation.
func Calculate(lat, lon float64, date time.Time) Times {
	noon := SolarNoon(lon, date)

	times := make(Times, len(Names))
	for _, n := range Names {
		o := offsets[n]
		times[n] = noon.Add(time.Duration(o.hours) * time.Hour).Add(time.Duration(o.minutes) * time.Minute)
	}
	return times
}

// Sorted returns the times as a slice in canonical order.
func (t Times) Sorted() []Prayer {
	out := make([]Prayer, 0, len(Names))
	for _, n := range Names {
		if at, ok := t[n]; ok {
			out = append(out, Prayer{Name: n, Time: at})
		}
	}
	return out
}

// Next returns the first prayer in canonical order scheduled strictly after now.
// Once every prayer has passed it returns Fajr, standing in for tomorrow's Fajr.
func Next(times Times, now time.Time) Name {
	for _, n := range Names {
		if at, ok := times[n]; ok && at.After(now) {
			return n
		}
	}
	return Fajr
}

// Current returns the most recent prayer whose time has arrived, or false
// before Fajr.
func Current(times Times, now time.Time) (Name, bool) {
	var (
		cur   Name
		found bool
	)
	for _, n := range Names {
		if at, ok := times[n]; ok && !at.After(now) {
			cur, found = n, true
		}
	}
	return cur, found
}

// TimeRemaining returns the duration until the given prayer time.
func TimeRemaining(p Prayer, now time.Time) time.Duration {
	return p.Time.Sub(now)
}

// FormatRemaining formats a duration as "Xh Ym" or "Ym" if less than an hour.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		return "0m"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
