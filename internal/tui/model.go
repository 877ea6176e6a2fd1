package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Iron-Ham/vidparse/internal/errors"
	"github.com/Iron-Ham/vidparse/internal/logging"
	"github.com/Iron-Ham/vidparse/internal/taskqueue"
	"github.com/Iron-Ham/vidparse/internal/tui/keymap"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultURLWidth is the URL column width when Options.URLWidth is zero.
const DefaultURLWidth = 60

// flashTTL is how long a status message stays on screen.
const flashTTL = 4 * time.Second

// tickMsg drives the periodic refresh of the queue snapshot.
type tickMsg time.Time

// flashMsg puts a message on the status line from outside the model.
type flashMsg struct {
	text string
	warn bool
}

// Options configures the queue view.
type Options struct {
	// URLWidth is the display width of the link column.
	URLWidth int
	Logger   *logging.Logger
}

// Model is the Bubbletea model of the queue view. It reads everything it
// renders from a snapshot of the scheduler's store taken on each tick.
type Model struct {
	ctx    context.Context
	sched  *taskqueue.Scheduler
	keymap *keymap.Keymap
	logger *logging.Logger

	mode  keymap.Mode
	input textinput.Model

	// Snapshot
	tasks    []taskqueue.Task
	report   taskqueue.Report
	runState taskqueue.RunState

	// Selection follows the task id so rows shifting under it keep it
	selected   int
	selectedID string

	urlWidth int
	width    int
	height   int

	message   string
	messageAt time.Time
	warn      bool

	quitting bool
}

// NewModel creates the queue view over sched. ctx is handed to every batch
// the view starts.
func NewModel(ctx context.Context, sched *taskqueue.Scheduler, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	width := opts.URLWidth
	if width <= 0 {
		width = DefaultURLWidth
	}

	ti := textinput.New()
	ti.Placeholder = "https://v.douyin.com/..."
	ti.Prompt = "link> "
	ti.CharLimit = 4096
	ti.Width = 60

	m := Model{
		ctx:      ctx,
		sched:    sched,
		keymap:   keymap.DefaultKeymap(),
		logger:   logger.WithComponent("tui"),
		mode:     keymap.ModeNormal,
		input:    ti,
		urlWidth: width,
	}
	m.refresh()
	return m
}

// Init starts the refresh ticker.
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-len(m.input.Prompt)-6, 10)
		return m, nil

	case tickMsg:
		m.refresh()
		if m.message != "" && time.Since(m.messageAt) > flashTTL {
			m.message = ""
		}
		return m, tick()

	case flashMsg:
		m.flash(msg.text, msg.warn)
		m.refresh()
		return m, nil
	}

	if m.mode == keymap.ModeAdd {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, ok := m.keymap.GetBinding(msg, m.mode)
	if !ok {
		if m.mode == keymap.ModeAdd {
			var inputCmd tea.Cmd
			m.input, inputCmd = m.input.Update(msg)
			return m, inputCmd
		}
		return m, nil
	}

	switch cmd {
	case keymap.CmdQuit:
		m.quitting = true
		return m, tea.Quit

	case keymap.CmdToggleHelp:
		if m.mode == keymap.ModeHelp {
			m.mode = keymap.ModeNormal
		} else {
			m.mode = keymap.ModeHelp
		}
		return m, nil

	case keymap.CmdAdd:
		m.mode = keymap.ModeAdd
		m.input.Reset()
		m.input.Focus()
		return m, textinput.Blink

	case keymap.CmdConfirm:
		m.submitInput()
		return m, nil

	case keymap.CmdCancelEdit:
		m.closeInput()
		return m, nil

	case keymap.CmdStart:
		if err := m.sched.Start(m.ctx); err != nil {
			m.reject(err)
		} else {
			m.flash("processing queue", false)
		}

	case keymap.CmdPause:
		if err := m.sched.Pause(); err != nil {
			m.reject(err)
		} else {
			m.flash("pausing after the current link", false)
		}

	case keymap.CmdCancel:
		if task, ok := m.selectedTask(); ok {
			if err := m.sched.CancelTask(task.ID); err != nil {
				m.reject(err)
			} else {
				m.flash("cancelled "+task.URL, false)
			}
		}

	case keymap.CmdRemove:
		if task, ok := m.selectedTask(); ok {
			if err := m.sched.RemoveTask(task.ID); err != nil {
				m.reject(err)
			} else {
				m.flash("removed "+task.URL, false)
			}
		}

	case keymap.CmdClear:
		if n, err := m.sched.ClearQueue(); err != nil {
			m.reject(err)
		} else {
			m.flash(fmt.Sprintf("cleared %d %s", n, plural(n, "task", "tasks")), false)
		}

	case keymap.CmdNext:
		m.moveSelection(1)
	case keymap.CmdPrev:
		m.moveSelection(-1)
	case keymap.CmdTop:
		m.moveSelection(-len(m.tasks))
	case keymap.CmdBottom:
		m.moveSelection(len(m.tasks))
	}

	m.refresh()
	return m, nil
}

// submitInput hands the prompt's text to the scheduler. The prompt is a
// single line, so whitespace separates links.
func (m *Model) submitInput() {
	text := strings.Join(strings.Fields(m.input.Value()), "\n")
	n, err := m.sched.Submit(text)
	if err != nil {
		m.reject(err)
		return
	}
	m.closeInput()
	m.flash(fmt.Sprintf("added %d %s", n, plural(n, "link", "links")), false)
	m.refresh()
}

func (m *Model) closeInput() {
	m.mode = keymap.ModeNormal
	m.input.Blur()
	m.input.Reset()
}

// reject shows a rejected operation on the status line.
func (m *Model) reject(err error) {
	m.logger.Debug("operation rejected", "error", err.Error())
	m.flash(errors.UserMessage(err), true)
}

func (m *Model) flash(text string, warn bool) {
	m.message = text
	m.messageAt = time.Now()
	m.warn = warn
}

// refresh takes a fresh snapshot of the queue and re-anchors the selection.
func (m *Model) refresh() {
	m.tasks = m.sched.Store().Tasks()
	m.report = taskqueue.NewReport(m.tasks)
	m.runState = m.sched.RunState()

	if len(m.tasks) == 0 {
		m.selected = 0
		m.selectedID = ""
		return
	}
	for i, t := range m.tasks {
		if t.ID == m.selectedID {
			m.selected = i
			return
		}
	}
	// Selected task is gone; keep the cursor where it was
	m.selected = min(max(m.selected, 0), len(m.tasks)-1)
	m.selectedID = m.tasks[m.selected].ID
}

func (m *Model) moveSelection(delta int) {
	if len(m.tasks) == 0 {
		return
	}
	m.selected = min(max(m.selected+delta, 0), len(m.tasks)-1)
	m.selectedID = m.tasks[m.selected].ID
}

func (m Model) selectedTask() (taskqueue.Task, bool) {
	if m.selected < 0 || m.selected >= len(m.tasks) {
		return taskqueue.Task{}, false
	}
	return m.tasks[m.selected], true
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
