// Package display renders the tracker's terminal output with raw ANSI codes.
//
// Color follows NO_COLOR (https://no-color.org/) and FORCE_COLOR, and is
// otherwise on only when stdout is a terminal.
package display

import (
	"os"
	"sync/atomic"
)

const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
	fgGray = "\033[90m"
)

// Status labels shown next to each prayer.
const (
	StatusCompleted = "completed"
	StatusDue       = "due"
	StatusUpcoming  = "upcoming"
)

// The scheduler and the console render from different goroutines.
var enabled atomic.Bool

func init() {
	enabled.Store(Supports(os.Stdout))
}

// Supports reports whether f should receive colored output.
func Supports(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		return true
	}
	return isTerminal(f)
}

// isTerminal checks for a character device; no cgo needed.
func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// SetEnabled overrides the detected color state, e.g. for --json.
func SetEnabled(b bool) {
	enabled.Store(b)
}

// Enabled reports whether color output is active.
func Enabled() bool {
	return enabled.Load()
}

func wrap(code, text string) string {
	if !Enabled() {
		return text
	}
	return code + text + reset
}

func Bold(text string) string   { return wrap(bold, text) }
func Dim(text string) string    { return wrap(dim, text) }
func Green(text string) string  { return wrap(green, text) }
func Yellow(text string) string { return wrap(yellow, text) }
func Cyan(text string) string   { return wrap(cyan, text) }
func Gray(text string) string   { return wrap(fgGray, text) }

// Accent highlights the next prayer.
func Accent(text string) string {
	return wrap(bold+cyan, text)
}

// Alert marks a reminder that fired and is still waiting on the user.
func Alert(text string) string {
	return wrap(bold+yellow, text)
}

// Status colors a status label: completed green, due yellow, anything else gray.
func Status(label string) string {
	switch label {
	case StatusCompleted:
		return Green(label)
	case StatusDue:
		return Yellow(label)
	default:
		return Gray(label)
	}
}

// Bell returns the terminal bell when colors are on, so piped output stays clean.
func Bell() string {
	if !Enabled() {
		return ""
	}
	return "\a"
}
