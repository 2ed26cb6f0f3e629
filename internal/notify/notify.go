// Package notify delivers reminder messages to the user.
//
// Delivery is best-effort: callers log a failed Notify and move on.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
)

// Title is the heading used for every prayer reminder.
const Title = "Prayer Reminder"

// Sink names accepted in the notifiers setting.
const (
	SinkConsole = "console"
	SinkTwilio  = "twilio"
	SinkMQTT    = "mqtt"
)

// Sinks lists every supported sink name.
var Sinks = []string{SinkConsole, SinkTwilio, SinkMQTT}

// Dispatcher surfaces a message to the user.
type Dispatcher interface {
	Notify(ctx context.Context, title, body string) error
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, title, body string) error

func (f DispatcherFunc) Notify(ctx context.Context, title, body string) error {
	return f(ctx, title, body)
}

// ReminderBody returns the reminder text for a prayer.
func ReminderBody(name prayer.Name) string {
	return fmt.Sprintf("It is time for %s. Track your progress.", name)
}

// Multi fans a message out to every dispatcher. All are attempted; their
// errors are joined.
type Multi []Dispatcher

func (m Multi) Notify(ctx context.Context, title, body string) error {
	var errs []error
	for _, d := range m {
		if err := d.Notify(ctx, title, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every message.
var Discard Dispatcher = DispatcherFunc(func(context.Context, string, string) error { return nil })
