// Package util provides shared formatting helpers for terminal output.
package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// TruncateANSI truncates a string to maxWidth visual columns, adding "..." if truncated.
// This function properly handles ANSI escape codes and wide characters, making it
// suitable for terminal output with styling.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	// ansi.Truncate includes the tail in the final width calculation
	return ansi.Truncate(s, maxWidth, "...")
}

// TruncateMiddle shortens s to maxWidth visual columns by replacing its middle
// with "...". Share links differ mostly in their tail, so both ends are kept.
// s must not contain escape sequences.
func TruncateMiddle(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	keep := maxWidth - 3
	head := keep - keep/2
	tail := keep / 2
	return ansi.Truncate(s, head, "") + "..." + ansi.TruncateLeft(s, lipgloss.Width(s)-tail, "")
}

// PadRight pads s with spaces to width visual columns. Wider strings are
// returned unchanged.
func PadRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// FormatDuration renders d compactly for task rows: "850ms", "4.2s", "3m05s".
func FormatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "-"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		d = d.Round(time.Second)
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}
