package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
	"github.com/smokyabdulrahman/prayer-tracker/internal/state"
)

func newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <prayer>",
		Short: "Mark a prayer completed, or undo it",
		Long:  "Flip today's completion flag for a prayer and save it.\n\nWhile `run` is active, toggle from its console instead so the running\nsession does not overwrite the change.",
		Args:  cobra.ExactArgs(1),
		RunE:  runToggle,
	}
}

func runToggle(cmd *cobra.Command, args []string) error {
	name, err := prayer.ParseName(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd, time.Now())
	if err != nil {
		return err
	}
	defer a.Close()

	return toggle(cmdContext(cmd), a.store, name, a.out)
}

// toggle flips one record and reports the result on w.
func toggle(ctx context.Context, store *state.Store, name prayer.Name, w io.Writer) error {
	r, err := store.Toggle(ctx, name)
	if err != nil {
		return err
	}
	verb := "marked completed"
	if !r.Completed {
		verb = "marked not completed"
	}
	fmt.Fprintf(w, "%s %s (%d/%d today)\n", r.Name, verb, store.Snapshot().CompletedCount(), len(prayer.Names))
	return nil
}
