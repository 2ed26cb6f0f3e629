package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-tracker/internal/config"
	"github.com/smokyabdulrahman/prayer-tracker/internal/display"
	"github.com/smokyabdulrahman/prayer-tracker/internal/geo"
	"github.com/smokyabdulrahman/prayer-tracker/internal/logging"
	"github.com/smokyabdulrahman/prayer-tracker/internal/state"
	"github.com/smokyabdulrahman/prayer-tracker/internal/storage"
)

// app is everything a command needs once configuration is resolved.
type app struct {
	cfg     *config.Config
	secrets config.Secrets
	log     zerolog.Logger
	kv      storage.KV
	place   geo.Resolution
	loc     *time.Location
	store   *state.Store
	out     io.Writer
}

// newApp resolves config, opens storage, locates the user, and opens today's snapshot.
// Storage that cannot be opened is replaced by an in-memory store with a warning.
func newApp(cmd *cobra.Command, now time.Time) (*app, error) {
	cfg := effectiveConfig(cmd)

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	errOut := cmd.ErrOrStderr()
	f, isFile := errOut.(*os.File)
	log := logging.New(errOut, level, isFile && display.Supports(f))

	a := &app{
		cfg:     cfg,
		secrets: config.LoadSecrets(),
		log:     log,
		out:     cmd.OutOrStdout(),
	}

	ctx := cmdContext(cmd)

	a.kv, err = storage.Open(ctx, a.storageOptions())
	if err != nil {
		log.Warn().Err(err).Str("backend", cfg.Storage).Msg("storage unavailable, state will not persist")
		a.kv = storage.NewMemory()
	}

	a.place = geo.NewResolver(a.kv, log).Resolve(ctx, cfg.Coordinate())

	a.loc, err = cfg.LoadLocation(a.place.Timezone)
	if err != nil {
		if cfg.Timezone != "" {
			a.kv.Close()
			return nil, err
		}
		log.Warn().Err(err).Str("detected", a.place.Timezone).Msg("detected timezone unusable, using system timezone")
		a.loc = time.Local
	}

	a.store = state.New(a.kv, a.place.Coordinate, a.loc, log)
	a.store.Open(ctx, now)
	return a, nil
}

// cmdContext returns the command's context, or Background when run without one.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func (a *app) storageOptions() storage.Options {
	dsn := a.cfg.StorageDSN
	if dsn == "" && a.cfg.Storage == storage.BackendPostgres {
		dsn = a.secrets.DatabaseURL
	}
	return storage.Options{
		Backend:       a.cfg.Storage,
		Dir:           a.cfg.CacheDir,
		DSN:           dsn,
		RedisAddr:     a.cfg.RedisAddr,
		RedisUsername: a.secrets.RedisUsername,
		RedisPassword: a.secrets.RedisPassword,
	}
}

// Close releases the storage backend.
func (a *app) Close() {
	if err := a.kv.Close(); err != nil {
		a.log.Debug().Err(err).Msg("closing storage failed")
	}
}

// now returns the current time in the tracker's location.
func (a *app) now() time.Time {
	return time.Now().In(a.loc)
}

// locationFooter renders the coordinate the times were calculated for.
func (a *app) locationFooter() string {
	c := a.place.Coordinate
	s := fmt.Sprintf("%.2f, %.2f", c.Latitude, c.Longitude)
	if a.place.City != "" {
		s = a.place.City + " (" + s + ")"
	}
	if a.place.Source == geo.SourceDefault {
		s += " (default location)"
	}
	return s
}
