package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"
	_ "time/tzdata" // detected zones must load on hosts without a tz database

	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/prayer-tracker/internal/config"
	"github.com/smokyabdulrahman/prayer-tracker/internal/geo"
	"github.com/smokyabdulrahman/prayer-tracker/internal/logging"
	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
	"github.com/smokyabdulrahman/prayer-tracker/internal/state"
	"github.com/smokyabdulrahman/prayer-tracker/internal/storage"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0"
var version = "dev"

// options holds the command-line flags.
type options struct {
	latitude, longitude float64
	timezone            string
	format              string
	timeFormat          string
	cacheDir            string
	storage             string
	alerts              bool
}

func main() {
	var opts options

	// Location flags
	flag.Float64Var(&opts.latitude, "latitude", 0, "Latitude for prayer time calculation")
	flag.Float64Var(&opts.longitude, "longitude", 0, "Longitude for prayer time calculation")
	flag.StringVar(&opts.timezone, "timezone", "", "IANA timezone (default: config, detected, or system)")

	// Display flags
	flag.StringVar(&opts.format, "format", prayer.FormatNameAndTime, "Display format: time-remaining, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, countdown, full, or a custom Go template (e.g. '{{.Name}} in {{.Remaining}}'). Template fields: .Name, .ShortName, .Time, .Remaining, .Hours, .Minutes")
	flag.StringVar(&opts.timeFormat, "time-format", "", "Time format: 12h or 24h (default: config or 24h)")
	flag.BoolVar(&opts.alerts, "alerts", true, "Append !N when N reminded prayers are not yet completed")

	// Storage flags
	flag.StringVar(&opts.cacheDir, "cache-dir", "", "Data directory (default: ~/.cache/prayer-tracker/)")
	flag.StringVar(&opts.storage, "storage", "", "Storage backend (default: config or file)")

	// Info flags
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("tmux-prayer-tracker %s\n", version)
		return
	}

	if err := prayer.ValidateFormat(opts.format); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, w io.Writer) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.latitude != 0 || opts.longitude != 0 {
		cfg.Latitude, cfg.Longitude = &opts.latitude, &opts.longitude
	}
	if opts.timezone != "" {
		cfg.Timezone = opts.timezone
	}
	if opts.timeFormat != "" {
		cfg.TimeFormat = opts.timeFormat
	}
	if opts.cacheDir != "" {
		cfg.CacheDir = opts.cacheDir
	}
	if opts.storage != "" {
		cfg.Storage = opts.storage
	}

	// A status bar has nowhere to show logs; only errors reach stderr.
	log := logging.New(os.Stderr, zerolog.ErrorLevel, false)
	secrets := config.LoadSecrets()

	dsn := cfg.StorageDSN
	if dsn == "" && cfg.Storage == storage.BackendPostgres {
		dsn = secrets.DatabaseURL
	}
	kv, err := storage.Open(ctx, storage.Options{
		Backend:       cfg.Storage,
		Dir:           cfg.CacheDir,
		DSN:           dsn,
		RedisAddr:     cfg.RedisAddr,
		RedisUsername: secrets.RedisUsername,
		RedisPassword: secrets.RedisPassword,
	})
	if err != nil {
		// Storage failure is non-fatal; the line is still computable.
		kv = storage.NewMemory()
	}
	defer kv.Close()

	place := geo.NewResolver(kv, log).Resolve(ctx, cfg.Coordinate())
	loc, err := cfg.LoadLocation(place.Timezone)
	if err != nil {
		if cfg.Timezone != "" {
			return err
		}
		log.Warn().Err(err).Str("detected", place.Timezone).Msg("detected timezone unusable, using system timezone")
		loc = time.Local
	}

	store := state.New(kv, place.Coordinate, loc, log)
	now := time.Now().In(loc)
	snap := store.Open(ctx, now)

	fmt.Fprint(w, statusLine(snap, place.Coordinate, now, opts.format, goTimeLayout(cfg.TimeFormat), opts.alerts))
	return nil
}

// statusLine renders the next prayer, followed by " !N" when N prayers were
// reminded but are not completed.
func statusLine(snap state.Snapshot, coord prayer.Coordinate, now time.Time, format, layout string, alerts bool) string {
	next := state.Upcoming(snap, coord, now)
	line := prayer.FormatOutput(next, now, format, layout)
	if n := len(snap.Awaiting()); alerts && n > 0 {
		line += fmt.Sprintf(" !%d", n)
	}
	return line
}

func goTimeLayout(timeFormat string) string {
	if timeFormat == "12h" {
		return "3:04 PM"
	}
	return "15:04"
}
