// Package logging builds the zerolog logger shared by every command.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "warn"

// Levels lists the accepted level names.
var Levels = []string{"trace", "debug", "info", "warn", "error", "disabled"}

// ParseLevel resolves a case-insensitive level name. An empty name yields DefaultLevel.
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultLevel
	}
	for _, l := range Levels {
		if l == name {
			return zerolog.ParseLevel(name)
		}
	}
	return zerolog.NoLevel, fmt.Errorf("invalid log level %q; valid levels: %s", name, strings.Join(Levels, ", "))
}

// New returns a human-readable console logger writing to w.
// Colors are only used when color is true.
func New(w io.Writer, level zerolog.Level, color bool) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !color,
		TimeFormat: time.TimeOnly,
	}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}
