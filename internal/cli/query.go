package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-tracker/internal/display"
	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
	"github.com/smokyabdulrahman/prayer-tracker/internal/state"
)

func newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <prayer>",
		Short: "Show one prayer's record for today",
		Long:  "Show today's time, completion, and reminder status for a single prayer.\n\nValid prayer names: " + strings.Join(prayer.NameStrings(), ", "),
		Args:  cobra.ExactArgs(1),
		RunE:  runQuery,
	}
}

func runQuery(cmd *cobra.Command, args []string) error {
	name, err := prayer.ParseName(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd, time.Now())
	if err != nil {
		return err
	}
	defer a.Close()

	r := a.store.Snapshot().Prayers[name]
	layout := goTimeLayout(a.cfg.TimeFormat)

	if FlagJSON {
		return printQueryJSON(a.out, r, a.now())
	}
	printQueryRich(a.out, r, a.now(), layout)
	return nil
}

// queryJSON is the JSON output structure for the query command.
type queryJSON struct {
	Prayer       string `json:"prayer"`
	Time         string `json:"time"`
	Completed    bool   `json:"completed"`
	ReminderSent bool   `json:"reminder_sent"`
	Remaining    string `json:"remaining,omitempty"`
}

func printQueryJSON(w io.Writer, r state.Record, now time.Time) error {
	out := queryJSON{
		Prayer:       strings.ToLower(string(r.Name)),
		Time:         r.Time.Format(time.RFC3339),
		Completed:    r.Completed,
		ReminderSent: r.ReminderSent,
	}
	if r.Time.After(now) {
		out.Remaining = prayer.FormatRemaining(r.Time.Sub(now))
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func printQueryRich(w io.Writer, r state.Record, now time.Time, layout string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s  %s  %s\n", display.Bold(string(r.Name)), r.Time.In(now.Location()).Format(layout), display.Status(statusLabel(r)))
	fmt.Fprintln(w)

	when := "passed"
	if r.Time.After(now) {
		when = "in " + prayer.FormatRemaining(r.Time.Sub(now))
	}
	fmt.Fprintf(w, "  %-10s %s\n", "When", when)
	fmt.Fprintf(w, "  %-10s %s\n", "Completed", yesNo(r.Completed))
	fmt.Fprintf(w, "  %-10s %s\n", "Reminder", sentLabel(r.ReminderSent))
	fmt.Fprintln(w)
}

func yesNo(b bool) string {
	if b {
		return display.Green("yes")
	}
	return "no"
}

func sentLabel(sent bool) string {
	if sent {
		return "sent"
	}
	return "pending"
}
