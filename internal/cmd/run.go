package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Iron-Ham/vidparse/internal/errors"
	"github.com/Iron-Ham/vidparse/internal/event"
	"github.com/Iron-Ham/vidparse/internal/inbox"
	"github.com/Iron-Ham/vidparse/internal/logging"
	"github.com/Iron-Ham/vidparse/internal/taskqueue"
	"github.com/Iron-Ham/vidparse/internal/tui/styles"
	"github.com/Iron-Ham/vidparse/internal/util"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var runCmd = &cobra.Command{
	Use:   "run [file...]",
	Short: "Resolve links without the interactive UI",
	Long: `Resolve share links one at a time and print each outcome as it settles.

Links are read one per line from the given files, or from stdin when no file
is given or the file is "-". Blank lines are ignored. Failed links do not
affect the exit status; only unreadable input or invalid configuration does.

Examples:
  # Resolve links from a file
  vidparse run links.txt

  # Pipe links in and get JSON back
  cat links.txt | vidparse run --json

  # Keep resolving links appended to an inbox file until interrupted
  vidparse run --watch ~/inbox.txt`,
	RunE: runRun,
}

var (
	runJSON  bool
	runWatch string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print the final task list as JSON")
	runCmd.Flags().StringVarP(&runWatch, "watch", "w", "", "Keep running and resolve links appended to this file")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	// A watched inbox replaces stdin as the default source
	input, err := readInputs(cmd.InOrStdin(), args, runWatch == "")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := event.NewBus(logger)
	res := newResolver(cfg, logger)
	sched := newScheduler(cfg, res, bus, logger)

	out := cmd.OutOrStdout()
	if !runJSON {
		printer := newSettlePrinter(out, isTerminal(out))
		bus.Subscribe(event.TypeTaskSettled, printer.handle)
	}

	if input != "" || runWatch == "" {
		if _, err := sched.Submit(input); err != nil {
			return fmt.Errorf("no links to resolve: %s", errors.UserMessage(err))
		}
	}

	if runWatch != "" {
		if err := watchInbox(ctx, sched, runWatch, logger); err != nil {
			return err
		}
	} else if err := sched.Start(ctx); err != nil {
		return err
	}

	// Let the in-flight task settle; an interrupt aborts its request
	_ = sched.Wait(context.Background())
	logCacheStats(res, logger)

	tasks := sched.Store().Tasks()
	if runJSON {
		return writeJSON(out, tasks)
	}
	printSummary(out, taskqueue.NewReport(tasks), isTerminal(out))
	return nil
}

// watchInbox processes links from the inbox file until ctx is done. Each
// submission restarts the batch if it had finished.
func watchInbox(ctx context.Context, sched *taskqueue.Scheduler, path string, logger *logging.Logger) error {
	w, err := inbox.New(path, sched, logger)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	w.SetSubmitCallback(func(int) {
		if err := sched.Start(ctx); err != nil && !errors.Is(err, errors.ErrAlreadyRunning) {
			logger.Warn("could not start batch", "error", err.Error())
		}
	})
	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	defer w.Stop()

	// Lines already in the file, or given as arguments
	if sched.Store().Report().Remaining() > 0 {
		if err := sched.Start(ctx); err != nil && !errors.Is(err, errors.ErrAlreadyRunning) {
			return err
		}
	}

	<-ctx.Done()
	return nil
}

// settlePrinter writes one line per settled task.
type settlePrinter struct {
	mu     sync.Mutex
	out    io.Writer
	styled bool
}

func newSettlePrinter(out io.Writer, styled bool) *settlePrinter {
	return &settlePrinter{out: out, styled: styled}
}

func (p *settlePrinter) handle(e event.Event) {
	settled, ok := e.(event.TaskSettledEvent)
	if !ok || settled.Discarded {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.out, formatSettled(settled, p.styled))
}

// formatSettled renders a settled task as
// "<status> <duration> <url> <title or error>".
func formatSettled(e event.TaskSettledEvent, styled bool) string {
	status := util.PadRight(e.Status, 9)
	detail := e.Title
	if e.Status == taskqueue.StatusFailed.String() {
		detail = e.Error
	}
	duration := util.PadRight(util.FormatDuration(e.Duration), 6)

	if styled {
		color := styles.StatusColor(taskqueue.Status(e.Status))
		status = lipgloss.NewStyle().Bold(true).Foreground(color).Render(status)
		duration = styles.Muted.Render(duration)
		if e.Status == taskqueue.StatusFailed.String() {
			detail = styles.Error.Render(detail)
		}
	}

	line := status + " " + duration + " " + e.URL
	if detail != "" {
		line += "  " + detail
	}
	return line
}

func printSummary(out io.Writer, report taskqueue.Report, styled bool) {
	line := fmt.Sprintf("%d %s: %d succeeded, %d failed, %d cancelled, %d not processed (%d%%)",
		report.Total,
		pluralize(report.Total, "link", "links"),
		report.Counts[taskqueue.StatusSuccess],
		report.Counts[taskqueue.StatusFailed],
		report.Counts[taskqueue.StatusCancelled],
		report.Remaining(),
		report.Percent)
	if styled {
		line = styles.Title.Render(line)
	}
	_, _ = fmt.Fprintln(out, line)
}

// runOutput is the --json document.
type runOutput struct {
	Tasks  []taskqueue.Task `json:"tasks"`
	Report taskqueue.Report `json:"report"`
}

func writeJSON(out io.Writer, tasks []taskqueue.Task) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(runOutput{Tasks: tasks, Report: taskqueue.NewReport(tasks)})
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
