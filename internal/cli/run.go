package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-tracker/internal/display"
	"github.com/smokyabdulrahman/prayer-tracker/internal/inspiration"
	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
	"github.com/smokyabdulrahman/prayer-tracker/internal/reminder"
	"github.com/smokyabdulrahman/prayer-tracker/internal/state"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Track prayers and send reminders until stopped",
		Long: "Start a tracking session. Each prayer's reminder is sent once when its time\n" +
			"arrives, through the configured notifiers. Commands typed on stdin\n" +
			"(toggle <prayer>, status, dismiss, quit) update the session.\n\n" +
			"The session ends on quit, SIGINT, or SIGTERM.",
		Args: cobra.NoArgs,
		RunE: runRun,
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, time.Now())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := &syncWriter{w: a.out}
	dispatcher, closeSinks := buildDispatcher(a.cfg, a.secrets, out, a.log)
	defer closeSinks()

	sched := reminder.New(a.store, dispatcher,
		reminder.WithInterval(a.cfg.PollIntervalOrDefault()),
		reminder.WithLogger(a.log),
		reminder.WithSuppressCompleted(a.cfg.SuppressCompletedOrDefault(false)),
		reminder.OnFire(func(n prayer.Name) {
			fmt.Fprintf(out, "  %s\n", display.Dim(fmt.Sprintf("type \"toggle %s\" once prayed, or \"dismiss\"", strings.ToLower(string(n)))))
		}),
	)

	c := newConsole(a.store, out, goTimeLayout(a.cfg.TimeFormat))
	c.printStatus()
	fmt.Fprintf(out, "  %s\n\n", display.Gray(a.locationFooter()))

	go showInspiration(ctx, inspiration.NewOpenAI(a.secrets.OpenAIAPIKey), state.Upcoming(a.store.Snapshot(), a.store.Coordinate(), a.now()).Name, out)

	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	a.log.Info().Dur("interval", sched.Interval()).Str("date", a.store.Snapshot().Date).Msg("session started")
	c.run(ctx, cmd.InOrStdin())

	fmt.Fprintln(out, "Session ended.")
	return nil
}

// showInspiration prints a reflection once it arrives, unless the session ended first.
func showInspiration(ctx context.Context, p inspiration.Provider, name prayer.Name, out *syncWriter) {
	text := inspiration.Fetch(ctx, p, name)
	if ctx.Err() != nil {
		return
	}
	fmt.Fprintf(out, "  %s\n\n", display.Cyan(text))
}
