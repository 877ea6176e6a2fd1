package tui

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/vidparse/internal/taskqueue"
	"github.com/Iron-Ham/vidparse/internal/tui/keymap"
	"github.com/Iron-Ham/vidparse/internal/tui/styles"
	"github.com/Iron-Ham/vidparse/internal/util"
	"github.com/charmbracelet/lipgloss"
)

const (
	progressBarWidth = 30

	// Rows taken by everything other than the task list
	chromeRows = 12

	// Fallbacks before the first WindowSizeMsg arrives
	defaultWidth  = 120
	defaultHeight = 30
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.mode == keymap.ModeHelp {
		b.WriteString(m.renderFullHelp())
		return b.String()
	}

	b.WriteString(m.renderTasks())
	b.WriteString("\n")

	if m.mode == keymap.ModeAdd {
		b.WriteString(styles.InputBox.Render(m.input.View()))
		b.WriteString("\n")
	}
	if m.message != "" {
		style := styles.Secondary
		if m.warn {
			style = styles.Warning
		}
		b.WriteString(style.Render(m.message))
		b.WriteString("\n")
	}

	b.WriteString(m.renderHelpBar())
	return b.String()
}

func (m Model) renderHeader() string {
	state := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.RunStateColor(m.runState)).
		Render(strings.ToUpper(m.runState.String()))

	title := styles.Title.Render("vidparse") + "  " + state

	summary := fmt.Sprintf("%s %3d%%  %d/%d done",
		renderProgressBar(m.report.Percent, progressBarWidth),
		m.report.Percent,
		m.report.Completed(),
		m.report.Total)

	return styles.Header.Render(title + "\n" + summary + "\n" + m.renderCounts())
}

func (m Model) renderCounts() string {
	parts := make([]string, 0, len(taskqueue.AllStatuses()))
	for _, st := range taskqueue.AllStatuses() {
		style := lipgloss.NewStyle().Foreground(styles.StatusColor(st))
		parts = append(parts, style.Render(fmt.Sprintf("%s %d", st, m.report.Counts[st])))
	}
	return strings.Join(parts, styles.Muted.Render(" · "))
}

// renderProgressBar draws percent as a bar of width cells.
func renderProgressBar(percent, width int) string {
	percent = min(max(percent, 0), 100)
	filled := percent * width / 100
	return styles.ProgressFilled.Render(strings.Repeat("█", filled)) +
		styles.ProgressEmpty.Render(strings.Repeat("░", width-filled))
}

func (m Model) renderTasks() string {
	if len(m.tasks) == 0 {
		return styles.Muted.Render("No links queued. Press a to add some.") + "\n"
	}

	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	height := m.height
	if height <= 0 {
		height = defaultHeight
	}

	start, end := visibleRange(len(m.tasks), m.selected, max(height-chromeRows, 1))

	var b strings.Builder
	header := fmt.Sprintf("  %4s %-10s %4s %6s  %s", "#", "STATUS", "PROG", "TIME", util.PadRight("LINK", m.urlWidth))
	b.WriteString(styles.Muted.Render(header + "  DETAIL"))
	b.WriteString("\n")

	if start > 0 {
		b.WriteString(styles.Muted.Render(fmt.Sprintf("  ↑ %d more", start)))
		b.WriteString("\n")
	}
	for i := start; i < end; i++ {
		b.WriteString(m.renderRow(i, width))
		b.WriteString("\n")
	}
	if end < len(m.tasks) {
		b.WriteString(styles.Muted.Render(fmt.Sprintf("  ↓ %d more", len(m.tasks)-end)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderRow(i, width int) string {
	task := m.tasks[i]

	cursor := "  "
	if i == m.selected {
		cursor = styles.Primary.Render("> ")
	}
	badge := styles.StatusBadge.
		Foreground(styles.StatusColor(task.Status)).
		Render(task.Status.String())

	progress := fmt.Sprintf("%3d%%", task.Progress)
	elapsed := util.FormatDuration(task.Duration())
	link := util.PadRight(util.TruncateMiddle(task.URL, m.urlWidth), m.urlWidth)
	if i == m.selected {
		link = styles.SelectedRow.Render(link)
	}

	row := fmt.Sprintf("%s%4d %s %s %6s  %s", cursor, i+1, badge, progress, elapsed, link)

	// Whatever width is left goes to the title or error
	used := lipgloss.Width(row) + 2
	if detail := taskDetail(task); detail != "" && width > used {
		style := styles.Muted
		if task.Status == taskqueue.StatusFailed {
			style = styles.Error
		}
		row += "  " + style.Render(util.TruncateANSI(detail, width-used))
	}
	return row
}

// taskDetail is the text shown after the link: the title of a resolved link
// or the reason it failed.
func taskDetail(task taskqueue.Task) string {
	switch task.Status {
	case taskqueue.StatusSuccess:
		if task.Result == nil {
			return ""
		}
		if task.Result.Title != "" {
			return task.Result.Title
		}
		return task.Result.VideoURL
	case taskqueue.StatusFailed:
		return task.Error
	}
	return ""
}

// visibleRange returns the window [start, end) of n rows that keeps selected
// in view when only rows fit.
func visibleRange(n, selected, rows int) (int, int) {
	if n <= rows {
		return 0, n
	}
	start := selected - rows/2
	start = min(max(start, 0), n-rows)
	return start, start + rows
}

func (m Model) renderHelpBar() string {
	entries := m.keymap.Help(m.mode, true)
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, styles.HelpKey.Render(e.Keys)+" "+e.Description)
	}
	return styles.HelpBar.Render(strings.Join(parts, "  "))
}

func (m Model) renderFullHelp() string {
	var b strings.Builder
	for _, category := range m.keymap.GetCategories(keymap.ModeNormal) {
		b.WriteString(styles.Title.Render(category))
		b.WriteString("\n")
		for _, e := range m.keymap.Help(keymap.ModeNormal, false) {
			if e.Category != category {
				continue
			}
			b.WriteString("  ")
			b.WriteString(styles.HelpKey.Render(util.PadRight(e.Keys, 12)))
			b.WriteString(e.Description)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(m.renderHelpBar())
	return b.String()
}
