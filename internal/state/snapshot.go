// Package state owns today's five prayer records.
//
// A Snapshot is valid only for the calendar day it was built for. The Store
// holds the authoritative in-memory copy and mirrors every mutation into a
// single key-value slot; the slot is only read back when the process starts.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
)

const (
	// DayLayout formats the calendar-day key.
	DayLayout = "2006-01-02"

	// instantLayout is ISO-8601 in UTC with millisecond precision.
	instantLayout = "2006-01-02T15:04:05.000Z07:00"
)

// errMalformed marks persisted data that does not have the expected shape.
var errMalformed = errors.New("malformed snapshot")

// Record is the state of one prayer for the day.
type Record struct {
	Name         prayer.Name
	Time         time.Time
	Completed    bool
	ReminderSent bool
}

// Due reports whether the prayer's time has arrived and no reminder fired yet.
func (r Record) Due(now time.Time) bool {
	return !r.ReminderSent && !now.Before(r.Time)
}

// Snapshot is the full set of records for one calendar day.
type Snapshot struct {
	Date    string
	Prayers map[prayer.Name]Record
}

// DayKey returns the calendar-day key of t in t's location.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// Initialize builds a fresh snapshot for the calendar date of date, with
// every record neither completed nor reminded.
func Initialize(coord prayer.Coordinate, date time.Time) Snapshot {
	times := prayer.Calculate(coord.Latitude, coord.Longitude, date)

	snap := Snapshot{
		Date:    DayKey(date),
		Prayers: make(map[prayer.Name]Record, len(prayer.Names)),
	}
	for _, n := range prayer.Names {
		snap.Prayers[n] = Record{Name: n, Time: times[n]}
	}
	return snap
}

// Records returns the records in canonical order.
func (s Snapshot) Records() []Record {
	out := make([]Record, 0, len(prayer.Names))
	for _, n := range prayer.Names {
		if r, ok := s.Prayers[n]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Times returns the scheduled instants of every record.
func (s Snapshot) Times() prayer.Times {
	times := make(prayer.Times, len(s.Prayers))
	for n, r := range s.Prayers {
		times[n] = r.Time
	}
	return times
}

// CompletedCount returns how many prayers are marked completed.
func (s Snapshot) CompletedCount() int {
	n := 0
	for _, r := range s.Prayers {
		if r.Completed {
			n++
		}
	}
	return n
}

// Awaiting returns, in canonical order, the prayers whose reminder fired
// but which are not yet completed.
func (s Snapshot) Awaiting() []prayer.Name {
	var out []prayer.Name
	for _, r := range s.Records() {
		if r.ReminderSent && !r.Completed {
			out = append(out, r.Name)
		}
	}
	return out
}

// Upcoming returns the next prayer after now with its real instant. When
// every prayer of the snapshot has passed, the selector wraps to Fajr and
// the instant comes from tomorrow's calculation at coord.
func Upcoming(s Snapshot, coord prayer.Coordinate, now time.Time) prayer.Prayer {
	times := s.Times()
	name := prayer.Next(times, now)

	at, ok := times[name]
	if !ok || !at.After(now) {
		at = prayer.Calculate(coord.Latitude, coord.Longitude, now.AddDate(0, 0, 1))[name]
	}
	return prayer.Prayer{Name: name, Time: at}
}

// Clone returns a deep copy that shares nothing with s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Date: s.Date, Prayers: make(map[prayer.Name]Record, len(s.Prayers))}
	for n, r := range s.Prayers {
		out.Prayers[n] = r
	}
	return out
}

// wireRecord and wireSnapshot mirror the persisted JSON. Pointer fields let
// Decode tell a missing field from a zero value.
type wireRecord struct {
	Time         *string `json:"time"`
	Completed    *bool   `json:"completed"`
	ReminderSent *bool   `json:"reminderSent"`
}

type wireSnapshot struct {
	Date    *string                `json:"date"`
	Prayers map[string]*wireRecord `json:"prayers"`
}

// Encode serializes s into the persisted JSON shape.
func Encode(s Snapshot) ([]byte, error) {
	date := s.Date
	w := wireSnapshot{Date: &date, Prayers: make(map[string]*wireRecord, len(s.Prayers))}
	for n, r := range s.Prayers {
		ts := r.Time.UTC().Format(instantLayout)
		completed, sent := r.Completed, r.ReminderSent
		w.Prayers[string(n)] = &wireRecord{Time: &ts, Completed: &completed, ReminderSent: &sent}
	}

	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// Decode parses persisted JSON, converting instants into loc. Any deviation
// from the expected shape is reported as an error.
func Decode(data []byte, loc *time.Location) (Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if w.Date == nil || *w.Date == "" {
		return Snapshot{}, fmt.Errorf("%w: missing date", errMalformed)
	}
	if len(w.Prayers) != len(prayer.Names) {
		return Snapshot{}, fmt.Errorf("%w: want %d prayers, got %d", errMalformed, len(prayer.Names), len(w.Prayers))
	}

	snap := Snapshot{Date: *w.Date, Prayers: make(map[prayer.Name]Record, len(prayer.Names))}
	for _, n := range prayer.Names {
		wr, ok := w.Prayers[string(n)]
		if !ok || wr == nil || wr.Time == nil || wr.Completed == nil || wr.ReminderSent == nil {
			return Snapshot{}, fmt.Errorf("%w: incomplete record for %s", errMalformed, n)
		}
		at, err := time.Parse(time.RFC3339Nano, *wr.Time)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: bad time for %s: %v", errMalformed, n, err)
		}
		snap.Prayers[n] = Record{
			Name:         n,
			Time:         at.In(loc),
			Completed:    *wr.Completed,
			ReminderSent: *wr.ReminderSent,
		}
	}
	return snap, nil
}
