package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear today's progress",
		Long:  "Delete the saved snapshot and start today over with every prayer\nnot completed and every reminder pending.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, time.Now())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.Reset(cmdContext(cmd), a.now()); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Progress for %s reset.\n", a.store.Snapshot().Date)
			return nil
		},
	}
}
