// Package reminder fires each prayer's reminder once its time arrives.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/prayer-tracker/internal/notify"
	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
	"github.com/smokyabdulrahman/prayer-tracker/internal/state"
)

const (
	// DefaultInterval is how often the store is polled for due reminders.
	DefaultInterval = 10 * time.Second

	dispatchTimeout = 30 * time.Second
)

// Scheduler polls the store and drives each due record to ReminderSent.
type Scheduler struct {
	store      *state.Store
	dispatcher notify.Dispatcher
	now        func() time.Time
	interval   time.Duration
	log        zerolog.Logger

	// suppressCompleted skips reminders for prayers already marked completed.
	suppressCompleted bool
	onFire            func(prayer.Name)

	cron *cron.Cron
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now, e.g. with a simulated clock in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithInterval sets the poll period. Values under one second are raised to one second.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d < time.Second {
			d = time.Second
		}
		s.interval = d
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// WithSuppressCompleted stops reminders from firing for prayers the user
// already marked completed. Off by default.
func WithSuppressCompleted(b bool) Option {
	return func(s *Scheduler) { s.suppressCompleted = b }
}

// OnFire registers a callback run after each reminder is marked sent.
func OnFire(fn func(prayer.Name)) Option {
	return func(s *Scheduler) { s.onFire = fn }
}

// New creates a Scheduler over store. A nil dispatcher discards messages.
func New(store *state.Store, dispatcher notify.Dispatcher, opts ...Option) *Scheduler {
	if dispatcher == nil {
		dispatcher = notify.Discard
	}
	s := &Scheduler{
		store:      store,
		dispatcher: dispatcher,
		now:        time.Now,
		interval:   DefaultInterval,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "reminder").Logger()
	return s
}

// Interval returns the poll period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Tick runs one poll: it rolls the store over to a new day if needed, then
// dispatches every due reminder in canonical order and marks it sent.
// It returns the prayers whose reminders fired. Once ctx is done nothing more
// is dispatched, so reminders cut off by shutdown stay due for the next session.
func (s *Scheduler) Tick(ctx context.Context) []prayer.Name {
	if ctx.Err() != nil {
		return nil
	}
	now := s.now()
	s.store.Rollover(ctx, now)

	var fired []prayer.Name
	for _, r := range s.store.Due(now) {
		if ctx.Err() != nil {
			s.log.Debug().Str("prayer", string(r.Name)).Msg("shutting down, reminder left due")
			break
		}
		if s.suppressCompleted && r.Completed {
			continue
		}

		s.dispatch(ctx, r.Name)

		// A delivered reminder is recorded even if shutdown began during delivery.
		if _, err := s.store.MarkReminderSent(context.WithoutCancel(ctx), r.Name); err != nil {
			s.log.Error().Err(err).Str("prayer", string(r.Name)).Msg("marking reminder sent failed")
			continue
		}
		fired = append(fired, r.Name)
		s.log.Info().Str("prayer", string(r.Name)).Time("scheduled", r.Time).Msg("reminder fired")

		if s.onFire != nil {
			s.onFire(r.Name)
		}
	}
	return fired
}

// dispatch hands one reminder to the dispatcher. Errors and panics are
// logged; the caller marks the reminder sent regardless.
func (s *Scheduler) dispatch(ctx context.Context, name prayer.Name) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error().Interface("panic", rec).Str("prayer", string(name)).Msg("notification dispatcher panicked")
		}
	}()

	dctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()

	if err := s.dispatcher.Notify(dctx, notify.Title, notify.ReminderBody(name)); err != nil {
		s.log.Warn().Err(err).Str("prayer", string(name)).Msg("notification not delivered")
	}
}

// Start runs one catch-up tick, then polls every interval until Stop.
// A tick still running when the next one is due is skipped, never overlapped.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cron != nil {
		return fmt.Errorf("scheduler already started")
	}

	logger := cron.PrintfLogger(&s.log)
	c := cron.New(
		cron.WithLocation(s.store.Location()),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := c.AddFunc(spec, func() { s.Tick(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule poll %q: %w", spec, err)
	}

	s.Tick(ctx)

	s.cron = c
	c.Start()
	s.log.Debug().Dur("interval", s.interval).Msg("reminder poll started")
	return nil
}

// Stop halts the poll and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
	s.log.Debug().Msg("reminder poll stopped")
}
