package display

import (
	"fmt"
	"strings"
)

// Progress renders "done/total" followed by a bar of width cells, e.g. "3/5 ███░░".
func Progress(done, total, width int) string {
	if total <= 0 || width <= 0 {
		return fmt.Sprintf("%d/%d", done, total)
	}
	done = max(0, min(done, total))

	filled := done * width / total
	bar := Green(strings.Repeat("█", filled)) + Gray(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%d/%d %s", done, total, bar)
}
