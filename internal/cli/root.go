package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/prayer-tracker/internal/config"
)

// Global flags shared across all subcommands.
var (
	FlagLatitude   float64
	FlagLongitude  float64
	FlagTimezone   string
	FlagJSON       bool
	FlagCacheDir   string
	FlagTimeFormat string
	FlagStorage    string
	FlagLogLevel   string
	FlagEphemeral  bool
)

// loadedConfig holds the config loaded during PersistentPreRunE.
// Available to all subcommand handlers.
var loadedConfig *config.Config

// NewRootCmd creates the root command for the prayer-tracker CLI.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "prayer-tracker",
		Short:   "Daily prayer tracker with reminders",
		Long:    "Track the five daily prayers: see today's times, mark prayers completed,\nand get a reminder the moment each prayer time arrives.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			loadedConfig = cfg
			return nil
		},
		// Default action: show today's tracker.
		RunE:          runToday,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Register global persistent flags.
	pf := rootCmd.PersistentFlags()
	pf.Float64Var(&FlagLatitude, "latitude", 0, "Override latitude")
	pf.Float64Var(&FlagLongitude, "longitude", 0, "Override longitude")
	pf.StringVar(&FlagTimezone, "timezone", "", "IANA timezone for the day boundary (default: detected or system)")
	pf.BoolVar(&FlagJSON, "json", false, "Output as JSON (where supported)")
	pf.StringVar(&FlagCacheDir, "cache-dir", "", "Data directory for the file backend (default: ~/.cache/prayer-tracker/)")
	pf.StringVar(&FlagTimeFormat, "time-format", "", "Time format: 12h or 24h (overrides config)")
	pf.StringVar(&FlagStorage, "storage", "", "Storage backend: file, sqlite, postgres, redis, or memory")
	pf.StringVar(&FlagLogLevel, "log-level", "", "Log level: trace, debug, info, warn, error, or disabled")
	pf.BoolVar(&FlagEphemeral, "ephemeral", false, "Keep state in memory only; nothing is read or written")

	// Register subcommands.
	rootCmd.AddCommand(newTodayCmd())
	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newToggleCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// PrintVersion prints the version string in the expected format.
func PrintVersion(version string) string {
	return fmt.Sprintf("prayer-tracker %s\n", version)
}

// effectiveConfig returns the merged configuration values,
// applying the priority: CLI flags > config file > defaults.
// It uses cobra's Changed() to detect whether a flag was explicitly set.
func effectiveConfig(cmd *cobra.Command) *config.Config {
	cfg := loadedConfig
	if cfg == nil {
		empty := config.Config{}
		cfg = &empty
	}

	defaults := config.Defaults()

	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	if flagWasSet(flags, root, "latitude") {
		lat := FlagLatitude
		cfg.Latitude = &lat
	}
	if flagWasSet(flags, root, "longitude") {
		lon := FlagLongitude
		cfg.Longitude = &lon
	}
	if flagWasSet(flags, root, "timezone") {
		cfg.Timezone = FlagTimezone
	}
	if flagWasSet(flags, root, "cache-dir") {
		cfg.CacheDir = FlagCacheDir
	}

	if flagWasSet(flags, root, "storage") {
		cfg.Storage = FlagStorage
	}
	if FlagEphemeral {
		cfg.Storage = "memory"
	}
	if cfg.Storage == "" {
		cfg.Storage = defaults.Storage
	}

	if flagWasSet(flags, root, "log-level") {
		cfg.LogLevel = FlagLogLevel
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}

	// Time format: CLI flag > config > default ("24h").
	if flagWasSet(flags, root, "time-format") {
		cfg.TimeFormat = FlagTimeFormat
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = defaults.TimeFormat
	}

	if cfg.MQTTTopic == "" {
		cfg.MQTTTopic = defaults.MQTTTopic
	}
	if cfg.SuppressCompleted == nil {
		cfg.SuppressCompleted = defaults.SuppressCompleted
	}

	return cfg
}

// flagWasSet checks if a flag was explicitly set on either the local or persistent flag set.
func flagWasSet(local, persistent *pflag.FlagSet, name string) bool {
	if f := local.Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := persistent.Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}

// goTimeLayout maps the time_format setting to a Go layout.
func goTimeLayout(timeFormat string) string {
	if timeFormat == "12h" {
		return "3:04 PM"
	}
	return "15:04"
}
