package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-tracker/internal/display"
	"github.com/smokyabdulrahman/prayer-tracker/internal/inspiration"
	"github.com/smokyabdulrahman/prayer-tracker/internal/notify"
	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
	"github.com/smokyabdulrahman/prayer-tracker/internal/state"
)

func newTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's prayers and progress",
		Long:  "Display the five prayers for today with their times, completion status,\nthe next prayer, and today's progress. This is the default command.",
		Args:  cobra.NoArgs,
		RunE:  runToday,
	}
}

// todayView is everything rendered by the today command.
type todayView struct {
	Snapshot    state.Snapshot
	Now         time.Time
	Next        prayer.Prayer
	Alert       prayer.Name
	Layout      string
	Location    string
	Timezone    string
	Inspiration string
}

func runToday(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, time.Now())
	if err != nil {
		return err
	}
	defer a.Close()

	now := a.now()
	snap := a.store.Snapshot()
	next := state.Upcoming(snap, a.store.Coordinate(), now)

	view := todayView{
		Snapshot:    snap,
		Now:         now,
		Next:        next,
		Layout:      goTimeLayout(a.cfg.TimeFormat),
		Location:    a.locationFooter(),
		Timezone:    a.loc.String(),
		Inspiration: todayInspiration(cmdContext(cmd), inspiration.NewOpenAI(a.secrets.OpenAIAPIKey), next.Name),
	}

	if awaiting := snap.Awaiting(); len(awaiting) > 0 {
		view.Alert = awaiting[len(awaiting)-1]
	}

	if FlagJSON {
		return printTodayJSON(a.out, view, a.place.Coordinate)
	}
	printTodayRich(a.out, view)
	return nil
}

// todayInspirationWait bounds how long today's view waits for a reflection.
var todayInspirationWait = 3 * time.Second

// todayInspiration fetches a reflection for a one-shot view, settling for the
// fallback sentence rather than stalling the output.
func todayInspiration(ctx context.Context, p inspiration.Provider, name prayer.Name) string {
	ctx, cancel := context.WithTimeout(ctx, todayInspirationWait)
	defer cancel()
	return inspiration.Fetch(ctx, p, name)
}

// statusLabel describes a record for display.
func statusLabel(r state.Record) string {
	switch {
	case r.Completed:
		return display.StatusCompleted
	case r.ReminderSent:
		return display.StatusDue
	default:
		return display.StatusUpcoming
	}
}

// printTodayRich renders the colored terminal output for today's tracker.
func printTodayRich(w io.Writer, v todayView) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Prayer Tracker"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", v.Now.Format("Mon 02 Jan 2006"))
	fmt.Fprintf(w, "  %s\n", v.Timezone)
	fmt.Fprintln(w)

	tbl := display.NewTable([]string{"Prayer", "Time", "Status", ""})
	for _, r := range v.Snapshot.Records() {
		isNext := r.Name == v.Next.Name && v.Next.Time.Equal(r.Time)
		status, marker := statusLabel(r), ""
		if isNext {
			marker = "<- next in " + prayer.FormatRemaining(prayer.TimeRemaining(v.Next, v.Now))
		} else if !r.Completed {
			status = display.Status(status)
		}

		row := tbl.AddRow([]string{string(r.Name), r.Time.In(v.Now.Location()).Format(v.Layout), status, marker})
		switch {
		case isNext:
			tbl.SetHighlightRow(row)
		case r.Completed:
			tbl.SetDimRow(row)
		}
	}
	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)

	if v.Next.Name == prayer.Fajr && !v.Next.Time.Equal(v.Snapshot.Prayers[prayer.Fajr].Time) {
		remaining := prayer.FormatRemaining(prayer.TimeRemaining(v.Next, v.Now))
		fmt.Fprintf(w, "  %s\n\n", display.Accent(fmt.Sprintf("Next: Fajr tomorrow at %s (in %s)", v.Next.Time.Format(v.Layout), remaining)))
	}

	fmt.Fprintf(w, "  Progress  %s\n", display.Progress(v.Snapshot.CompletedCount(), len(prayer.Names), 10))

	if v.Alert != "" {
		fmt.Fprintf(w, "\n  %s %s\n", display.Alert("!"), notify.ReminderBody(v.Alert))
	}

	if v.Inspiration != "" {
		fmt.Fprintf(w, "\n  %s\n", display.Cyan(v.Inspiration))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Gray(v.Location))
	fmt.Fprintln(w)
}

// todayJSON is the JSON output structure for the today command.
type todayJSON struct {
	Date        string            `json:"date"`
	Location    todayJSONLocation `json:"location"`
	Prayers     []todayJSONPrayer `json:"prayers"`
	Next        todayJSONNext     `json:"next"`
	Completed   int               `json:"completed"`
	Total       int               `json:"total"`
	Inspiration string            `json:"inspiration,omitempty"`
}

type todayJSONLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

type todayJSONPrayer struct {
	Name         string `json:"name"`
	Time         string `json:"time"`
	Completed    bool   `json:"completed"`
	ReminderSent bool   `json:"reminder_sent"`
}

type todayJSONNext struct {
	Prayer    string `json:"prayer"`
	Time      string `json:"time"`
	Remaining string `json:"remaining"`
}

// printTodayJSON renders structured JSON output.
func printTodayJSON(w io.Writer, v todayView, coord prayer.Coordinate) error {
	out := todayJSON{
		Date: v.Snapshot.Date,
		Location: todayJSONLocation{
			Latitude:  coord.Latitude,
			Longitude: coord.Longitude,
			Timezone:  v.Timezone,
		},
		Next: todayJSONNext{
			Prayer:    strings.ToLower(string(v.Next.Name)),
			Time:      v.Next.Time.Format(time.RFC3339),
			Remaining: prayer.FormatRemaining(prayer.TimeRemaining(v.Next, v.Now)),
		},
		Completed:   v.Snapshot.CompletedCount(),
		Total:       len(prayer.Names),
		Inspiration: v.Inspiration,
	}
	for _, r := range v.Snapshot.Records() {
		out.Prayers = append(out.Prayers, todayJSONPrayer{
			Name:         strings.ToLower(string(r.Name)),
			Time:         r.Time.In(v.Now.Location()).Format(time.RFC3339),
			Completed:    r.Completed,
			ReminderSent: r.ReminderSent,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
