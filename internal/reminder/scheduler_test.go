package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
	"github.com/smokyabdulrahman/prayer-tracker/internal/state"
	"github.com/smokyabdulrahman/prayer-tracker/internal/storage"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// recorder captures every dispatched message.
type recorder struct {
	mu     sync.Mutex
	bodies []string
	err    error
	panic  bool
}

func (r *recorder) Notify(_ context.Context, title, body string) error {
	r.mu.Lock()
	r.bodies = append(r.bodies, body)
	r.mu.Unlock()
	if r.panic {
		panic("notification API exploded")
	}
	return r.err
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bodies)
}

type fixture struct {
	store *state.Store
	clock *fakeClock
	rec   *recorder
	snap  state.Snapshot
}

// newFixture opens a store at 00:30 UTC, before Fajr, so all five records are Pending.
func newFixture(t *testing.T, opts ...Option) (*fixture, *Scheduler) {
	t.Helper()
	start := time.Date(2026, 2, 28, 0, 30, 0, 0, time.UTC)

	store := state.New(storage.NewMemory(), prayer.DefaultCoordinate, time.UTC, zerolog.Nop())
	snap := store.Open(context.Background(), start)
	for _, r := range snap.Records() {
		require.True(t, r.Time.After(start), "%s should still be pending", r.Name)
	}

	f := &fixture{store: store, clock: &fakeClock{now: start}, rec: &recorder{}, snap: snap}
	opts = append([]Option{WithClock(f.clock.Now)}, opts...)
	return f, New(store, f.rec, opts...)
}

func (f *fixture) at(name prayer.Name, d time.Duration) {
	f.clock.Set(f.snap.Prayers[name].Time.Add(d))
}

func TestTick_NothingDue(t *testing.T) {
	f, s := newFixture(t)

	assert.Empty(t, s.Tick(context.Background()))
	assert.Equal(t, 0, f.rec.count())
}

func TestTick_FajrOnly(t *testing.T) {
	f, s := newFixture(t)
	f.at(prayer.Fajr, time.Second)

	fired := s.Tick(context.Background())
	assert.Equal(t, []prayer.Name{prayer.Fajr}, fired)
	assert.Equal(t, 1, f.rec.count())
	assert.Equal(t, "It is time for Fajr. Track your progress.", f.rec.bodies[0])

	snap := f.store.Snapshot()
	assert.True(t, snap.Prayers[prayer.Fajr].ReminderSent)
	for _, n := range []prayer.Name{prayer.Dhuhr, prayer.Asr, prayer.Maghrib, prayer.Isha} {
		assert.False(t, snap.Prayers[n].ReminderSent, "%s should remain pending", n)
	}
}

func TestTick_CanceledContextLeavesRemindersDue(t *testing.T) {
	f, s := newFixture(t)
	f.at(prayer.Asr, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Empty(t, s.Tick(ctx))
	assert.Equal(t, 0, f.rec.count())
	assert.Len(t, f.store.Due(f.clock.Now()), 3, "Fajr, Dhuhr and Asr should still be due")

	fired := s.Tick(context.Background())
	assert.Equal(t, []prayer.Name{prayer.Fajr, prayer.Dhuhr, prayer.Asr}, fired)
}

// cancelingRecorder cancels the session while the first reminder is delivered.
type cancelingRecorder struct {
	recorder
	cancel context.CancelFunc
}

func (r *cancelingRecorder) Notify(ctx context.Context, title, body string) error {
	r.cancel()
	return r.recorder.Notify(ctx, title, body)
}

func TestTick_StopsDispatchingAfterCancel(t *testing.T) {
	f, _ := newFixture(t)
	f.at(prayer.Dhuhr, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	rec := &cancelingRecorder{cancel: cancel}
	s := New(f.store, rec, WithClock(f.clock.Now))

	assert.Equal(t, []prayer.Name{prayer.Fajr}, s.Tick(ctx))
	assert.Equal(t, 1, rec.count())
	assert.True(t, f.store.Snapshot().Prayers[prayer.Fajr].ReminderSent)
	assert.False(t, f.store.Snapshot().Prayers[prayer.Dhuhr].ReminderSent)
}

func TestTick_ExactlyOnce(t *testing.T) {
	f, s := newFixture(t)
	f.at(prayer.Fajr, 0)

	assert.Equal(t, []prayer.Name{prayer.Fajr}, s.Tick(context.Background()))
	for i := 0; i < 5; i++ {
		f.at(prayer.Fajr, time.Duration(i+1)*10*time.Second)
		assert.Empty(t, s.Tick(context.Background()))
	}
	assert.Equal(t, 1, f.rec.count())
}

func TestTick_MultipleDueInCanonicalOrder(t *testing.T) {
	f, s := newFixture(t)
	f.at(prayer.Maghrib, time.Minute)

	fired := s.Tick(context.Background())
	assert.Equal(t, []prayer.Name{prayer.Fajr, prayer.Dhuhr, prayer.Asr, prayer.Maghrib}, fired)
	assert.Equal(t, []string{
		"It is time for Fajr. Track your progress.",
		"It is time for Dhuhr. Track your progress.",
		"It is time for Asr. Track your progress.",
		"It is time for Maghrib. Track your progress.",
	}, f.rec.bodies)
	assert.False(t, f.store.Snapshot().Prayers[prayer.Isha].ReminderSent)
}

func TestTick_CompletedStillFires(t *testing.T) {
	f, s := newFixture(t)

	_, err := f.store.Toggle(context.Background(), prayer.Dhuhr)
	require.NoError(t, err)

	f.at(prayer.Dhuhr, time.Second)
	fired := s.Tick(context.Background())
	assert.Contains(t, fired, prayer.Dhuhr)

	r := f.store.Snapshot().Prayers[prayer.Dhuhr]
	assert.True(t, r.Completed)
	assert.True(t, r.ReminderSent)
}

func TestTick_SuppressCompleted(t *testing.T) {
	f, s := newFixture(t, WithSuppressCompleted(true))

	_, err := f.store.Toggle(context.Background(), prayer.Fajr)
	require.NoError(t, err)

	f.at(prayer.Dhuhr, time.Second)
	fired := s.Tick(context.Background())
	assert.Equal(t, []prayer.Name{prayer.Dhuhr}, fired)
	assert.False(t, f.store.Snapshot().Prayers[prayer.Fajr].ReminderSent)
}

func TestTick_DispatchErrorStillMarksSent(t *testing.T) {
	f, s := newFixture(t)
	f.rec.err = errors.New("permission denied")
	f.at(prayer.Asr, time.Second)

	fired := s.Tick(context.Background())
	assert.Len(t, fired, 3)
	for _, n := range fired {
		assert.True(t, f.store.Snapshot().Prayers[n].ReminderSent, n)
	}
}

func TestTick_DispatchPanicDoesNotStallLoop(t *testing.T) {
	f, s := newFixture(t)
	f.rec.panic = true
	f.at(prayer.Dhuhr, time.Second)

	fired := s.Tick(context.Background())
	assert.Equal(t, []prayer.Name{prayer.Fajr, prayer.Dhuhr}, fired)
	assert.Equal(t, 2, f.rec.count())
}

func TestTick_OnFireAndAlert(t *testing.T) {
	var got []prayer.Name
	f, s := newFixture(t, OnFire(func(n prayer.Name) { got = append(got, n) }))
	f.at(prayer.Fajr, time.Second)

	s.Tick(context.Background())
	assert.Equal(t, []prayer.Name{prayer.Fajr}, got)

	alert, ok := f.store.Alert()
	require.True(t, ok)
	assert.Equal(t, prayer.Fajr, alert)
}

func TestTick_RollsOverAtMidnight(t *testing.T) {
	f, s := newFixture(t)
	f.at(prayer.Isha, time.Minute)
	require.Len(t, s.Tick(context.Background()), 5)

	f.clock.Set(time.Date(2026, 3, 1, 0, 0, 5, 0, time.UTC))
	assert.Empty(t, s.Tick(context.Background()))

	snap := f.store.Snapshot()
	assert.Equal(t, "2026-03-01", snap.Date)
	for _, r := range snap.Records() {
		assert.False(t, r.ReminderSent, r.Name)
	}

	f.clock.Set(snap.Prayers[prayer.Fajr].Time)
	assert.Equal(t, []prayer.Name{prayer.Fajr}, s.Tick(context.Background()))
}

func TestNew_Defaults(t *testing.T) {
	store := state.New(storage.NewMemory(), prayer.DefaultCoordinate, time.UTC, zerolog.Nop())
	s := New(store, nil)
	assert.Equal(t, DefaultInterval, s.Interval())

	s = New(store, nil, WithInterval(10*time.Millisecond))
	assert.Equal(t, time.Second, s.Interval())
}

func TestStartStop(t *testing.T) {
	f, s := newFixture(t, WithInterval(time.Second))
	f.at(prayer.Fajr, time.Second)

	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()), "second Start must fail")

	// The catch-up tick fires Fajr immediately.
	assert.Equal(t, 1, f.rec.count())

	f.at(prayer.Dhuhr, time.Second)
	require.Eventually(t, func() bool { return f.rec.count() == 2 }, 5*time.Second, 50*time.Millisecond)

	s.Stop()
	s.Stop()

	f.at(prayer.Asr, time.Second)
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, 2, f.rec.count(), "no ticks after Stop")
}
