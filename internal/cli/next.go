package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
	"github.com/smokyabdulrahman/prayer-tracker/internal/state"
)

var flagFormat string

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer with countdown",
		Long:  "Display the next upcoming prayer time with a countdown.\nAfter Isha the next prayer is tomorrow's Fajr.",
		Args:  cobra.NoArgs,
		RunE:  runNext,
	}

	cmd.Flags().StringVar(&flagFormat, "format", prayer.FormatFull, "Display format: time-remaining, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, countdown, full, or a custom Go template")

	return cmd
}

func runNext(cmd *cobra.Command, args []string) error {
	if err := prayer.ValidateFormat(flagFormat); err != nil {
		return err
	}

	a, err := newApp(cmd, time.Now())
	if err != nil {
		return err
	}
	defer a.Close()

	now := a.now()
	next := state.Upcoming(a.store.Snapshot(), a.store.Coordinate(), now)

	fmt.Fprint(a.out, prayer.FormatOutput(next, now, flagFormat, goTimeLayout(a.cfg.TimeFormat)))
	return nil
}
