package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/smokyabdulrahman/prayer-tracker/internal/display"
	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
	"github.com/smokyabdulrahman/prayer-tracker/internal/state"
)

const consoleHelp = `Commands:
  toggle <prayer>   mark a prayer completed, or undo it (alias: t)
  status            show today's prayers (alias: s)
  dismiss           clear the pending reminder alert (alias: d)
  quit              end the session (alias: q)
`

// syncWriter serializes writes from the scheduler, the console, and background fetches.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// console applies line commands typed during a run session.
type console struct {
	store  *state.Store
	out    io.Writer
	layout string
	now    func() time.Time
}

func newConsole(store *state.Store, out io.Writer, layout string) *console {
	return &console{
		store:  store,
		out:    out,
		layout: layout,
		now:    func() time.Time { return time.Now().In(store.Location()) },
	}
}

// run reads commands from in until quit or ctx is done. When in reaches
// EOF the session keeps running until ctx is done.
func (c *console) run(ctx context.Context, in io.Reader) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			if c.handle(ctx, line) {
				return
			}
		}
	}
}

// handle executes one command line and reports whether the session should end.
func (c *console) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch strings.ToLower(fields[0]) {
	case "toggle", "t":
		if len(fields) != 2 {
			fmt.Fprintln(c.out, "usage: toggle <prayer>")
			return false
		}
		name, err := prayer.ParseName(fields[1])
		if err != nil {
			fmt.Fprintf(c.out, "%v\n", err)
			return false
		}
		if err := toggle(ctx, c.store, name, c.out); err != nil {
			fmt.Fprintf(c.out, "%v\n", err)
		}
	case "status", "s":
		c.printStatus()
	case "dismiss", "d":
		if _, ok := c.store.Alert(); !ok {
			fmt.Fprintln(c.out, "No pending alert.")
			return false
		}
		c.store.DismissAlert()
		fmt.Fprintln(c.out, "Alert dismissed.")
	case "quit", "q", "exit":
		return true
	case "help", "?":
		fmt.Fprint(c.out, consoleHelp)
	default:
		fmt.Fprintf(c.out, "unknown command %q (type help)\n", fields[0])
	}
	return false
}

// printStatus prints a compact one-line-per-prayer view of today.
func (c *console) printStatus() {
	now := c.now()
	snap := c.store.Snapshot()
	next := state.Upcoming(snap, c.store.Coordinate(), now)

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n  %s  %s\n", display.Bold(snap.Date), display.Progress(snap.CompletedCount(), len(prayer.Names), 5))
	for _, r := range snap.Records() {
		mark := " "
		if r.Completed {
			mark = display.Green("✓")
		}
		line := fmt.Sprintf("  %s %-8s %s", mark, r.Name, r.Time.In(now.Location()).Format(c.layout))
		if r.Name == next.Name && r.Time.Equal(next.Time) {
			line += display.Accent("  <- next in " + prayer.FormatRemaining(next.Time.Sub(now)))
		}
		sb.WriteString(line + "\n")
	}
	if alert, ok := c.store.Alert(); ok {
		fmt.Fprintf(&sb, "  %s %s is due\n", display.Alert("!"), alert)
	}
	sb.WriteString("\n")
	fmt.Fprint(c.out, sb.String())
}
