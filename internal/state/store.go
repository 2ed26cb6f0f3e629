package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
	"github.com/smokyabdulrahman/prayer-tracker/internal/storage"
)

// Key is the storage slot holding the current snapshot.
const Key = "prayers_v1"

// ErrUnknownPrayer is returned when a mutation names a prayer that is not tracked.
var ErrUnknownPrayer = errors.New("unknown prayer")

// Store is the single owner of today's snapshot. The reminder poll and the
// interactive console share one *Store; its mutex serializes their mutations.
type Store struct {
	mu    sync.Mutex
	kv    storage.KV
	coord prayer.Coordinate
	loc   *time.Location
	log   zerolog.Logger

	snap  Snapshot
	alert prayer.Name // prayer whose reminder is awaiting acknowledgement, "" if none
}

// New creates a Store. Call Open before using the snapshot.
func New(kv storage.KV, coord prayer.Coordinate, loc *time.Location, logger zerolog.Logger) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{
		kv:    kv,
		coord: coord,
		loc:   loc,
		log:   logger.With().Str("component", "state").Logger(),
	}
}

// Location returns the time zone that defines calendar days.
func (s *Store) Location() *time.Location {
	return s.loc
}

// Coordinate returns the position prayer times are computed for.
func (s *Store) Coordinate() prayer.Coordinate {
	return s.coord
}

// Load reads the persisted snapshot. It reports false when nothing is stored,
// the data cannot be read or parsed, or the snapshot belongs to another day.
func (s *Store) Load(ctx context.Context, now time.Time) (Snapshot, bool) {
	data, err := s.kv.Get(ctx, Key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn().Err(err).Msg("reading snapshot failed, starting fresh")
		}
		return Snapshot{}, false
	}

	snap, err := Decode(data, s.loc)
	if err != nil {
		s.log.Warn().Err(err).Msg("discarding unreadable snapshot")
		return Snapshot{}, false
	}

	if today := DayKey(now.In(s.loc)); snap.Date != today {
		s.log.Debug().Str("stored", snap.Date).Str("today", today).Msg("discarding stale snapshot")
		return Snapshot{}, false
	}

	return snap, true
}

// Save overwrites the persisted slot with snap.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, Key, data); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Open rehydrates today's snapshot, or builds and persists a fresh one.
func (s *Store) Open(ctx context.Context, now time.Time) Snapshot {
	snap, ok := s.Load(ctx, now)

	s.mu.Lock()
	defer s.mu.Unlock()

	if ok {
		s.snap = snap
		s.log.Debug().Str("date", snap.Date).Msg("rehydrated snapshot")
		return snap.Clone()
	}

	s.snap = Initialize(s.coord, now.In(s.loc))
	s.alert = ""
	s.persist(ctx)
	return s.snap.Clone()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// Toggle flips the completed flag of one prayer and persists. It never
// touches ReminderSent. Toggling the prayer whose reminder alert is showing
// clears the alert.
func (s *Store) Toggle(ctx context.Context, name prayer.Name) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.snap.Prayers[name]
	if !ok {
		return Record{}, fmt.Errorf("%w: %q", ErrUnknownPrayer, name)
	}

	r.Completed = !r.Completed
	s.snap.Prayers[name] = r
	if s.alert == name {
		s.alert = ""
	}

	s.persist(ctx)
	return r, nil
}

// MarkReminderSent records that the reminder for name fired and persists.
// It reports whether the flag changed; repeated calls are no-ops.
func (s *Store) MarkReminderSent(ctx context.Context, name prayer.Name) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.snap.Prayers[name]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownPrayer, name)
	}
	if r.ReminderSent {
		return false, nil
	}

	r.ReminderSent = true
	s.snap.Prayers[name] = r
	s.alert = name

	s.persist(ctx)
	return true, nil
}

// Due returns the records whose reminder should fire at now, in canonical order.
func (s *Store) Due(now time.Time) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []Record
	for _, r := range s.snap.Records() {
		if r.Due(now) {
			due = append(due, r)
		}
	}
	return due
}

// Rollover replaces the snapshot with a fresh one when now falls on a later
// calendar day than the snapshot. It reports whether a rollover happened.
func (s *Store) Rollover(ctx context.Context, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	local := now.In(s.loc)
	if s.snap.Date == DayKey(local) {
		return false
	}

	prev := s.snap.Date
	s.snap = Initialize(s.coord, local)
	s.alert = ""
	s.log.Info().Str("from", prev).Str("to", s.snap.Date).Msg("day rolled over")

	s.persist(ctx)
	return true
}

// Alert returns the prayer whose reminder fired and has not been acknowledged.
func (s *Store) Alert() (prayer.Name, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alert, s.alert != ""
}

// DismissAlert clears the pending alert without touching any record.
func (s *Store) DismissAlert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alert = ""
}

// Reset deletes the persisted slot and starts today over.
func (s *Store) Reset(ctx context.Context, now time.Time) error {
	if err := s.kv.Delete(ctx, Key); err != nil {
		return fmt.Errorf("failed to reset snapshot: %w", err)
	}
	s.Open(ctx, now)
	return nil
}

// persist mirrors the current snapshot into storage. Failures are logged and
// the in-memory state stays authoritative; the next successful save catches up.
// Callers must hold s.mu.
func (s *Store) persist(ctx context.Context) {
	if err := s.Save(ctx, s.snap); err != nil {
		s.log.Warn().Err(err).Msg("persisting snapshot failed, continuing in memory")
	}
}
