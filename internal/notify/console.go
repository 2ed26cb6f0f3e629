package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/smokyabdulrahman/prayer-tracker/internal/display"
)

// Console prints reminders to a terminal, ringing the bell when colors are on.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Notify(_ context.Context, title, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := fmt.Fprintf(c.w, "%s  %s %s\n", display.Bell(), display.Accent(title+":"), body)
	if err != nil {
		return fmt.Errorf("console notify: %w", err)
	}
	return nil
}
