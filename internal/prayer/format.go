package prayer

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Display modes for a single upcoming prayer.
const (
	FormatTimeRemaining      = "time-remaining"
	FormatNextPrayerTime     = "next-prayer-time"
	FormatNameAndTime        = "name-and-time"
	FormatNameAndRemaining   = "name-and-remaining"
	FormatShortNameAndTime   = "short-name-and-time"
	FormatShortNameAndRemain = "short-name-and-remaining"
	FormatCountdown          = "countdown"
	FormatFull               = "full"
)

// Formats lists the built-in modes.
var Formats = []string{
	FormatTimeRemaining,
	FormatNextPrayerTime,
	FormatNameAndTime,
	FormatNameAndRemaining,
	FormatShortNameAndTime,
	FormatShortNameAndRemain,
	FormatCountdown,
	FormatFull,
}

// FormatData is the data passed to custom templates.
type FormatData struct {
	Name      string // "Asr"
	ShortName string // "A"
	Time      string // "15:02" or "3:02 PM"
	Remaining string // "2h 15m"
	Hours     int
	Minutes   int
	// Tomorrow is set when the prayer falls on the day after now.
	Tomorrow bool
}

func isTemplate(mode string) bool {
	return strings.Contains(mode, "{{")
}

// ValidateFormat rejects a mode that is neither built in nor a template
// that parses and runs against FormatData.
func ValidateFormat(mode string) error {
	if !isTemplate(mode) {
		for _, f := range Formats {
			if f == mode {
				return nil
			}
		}
		return fmt.Errorf("unknown format %q; valid formats: %s, or a Go template", mode, strings.Join(Formats, ", "))
	}
	if _, err := render(mode, FormatData{}); err != nil {
		return fmt.Errorf("invalid format template: %w", err)
	}
	return nil
}

// newFormatData derives the template fields for p as seen from now.
func newFormatData(p Prayer, now time.Time, layout string) FormatData {
	d := TimeRemaining(p, now)
	if d < 0 {
		d = 0
	}
	at := p.Time.In(now.Location())
	y, m, day := now.Date()
	return FormatData{
		Name:      string(p.Name),
		ShortName: ShortNames[p.Name],
		Time:      at.Format(layout),
		Remaining: FormatRemaining(d),
		Hours:     int(d.Hours()),
		Minutes:   int(d.Minutes()) % 60,
		Tomorrow:  at.After(time.Date(y, m, day, 23, 59, 59, 999999999, now.Location())),
	}
}

// FormatOutput renders p for a status line. layout is a Go time layout,
// "15:04" or "3:04 PM". A mode containing "{{" is run as a template over
// FormatData; unknown modes fall back to name-and-time.
//
// Example: "{{.Name}} in {{.Remaining}}" -> "Asr in 2h 15m"
func FormatOutput(p Prayer, now time.Time, mode string, layout string) string {
	data := newFormatData(p, now, layout)

	if isTemplate(mode) {
		out, err := render(mode, data)
		if err != nil {
			return fmt.Sprintf("template-err: %v", err)
		}
		return out
	}

	switch mode {
	case FormatTimeRemaining:
		return data.Remaining
	case FormatNextPrayerTime:
		return data.Time
	case FormatNameAndRemaining:
		return data.Name + " " + data.Remaining
	case FormatShortNameAndTime:
		return data.ShortName + " " + data.Time
	case FormatShortNameAndRemain:
		return data.ShortName + " " + data.Remaining
	case FormatCountdown:
		return data.Name + " in " + data.Remaining
	case FormatFull:
		when := data.Time
		if data.Tomorrow {
			when += " tomorrow"
		}
		return fmt.Sprintf("%s %s (%s)", data.Name, when, data.Remaining)
	default:
		return data.Name + " " + data.Time
	}
}

func render(tmpl string, data FormatData) (string, error) {
	t, err := template.New("format").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
