package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/Iron-Ham/vidparse/internal/config"
	"github.com/Iron-Ham/vidparse/internal/errors"
	"github.com/Iron-Ham/vidparse/internal/event"
	"github.com/Iron-Ham/vidparse/internal/inbox"
	"github.com/Iron-Ham/vidparse/internal/logging"
	"github.com/Iron-Ham/vidparse/internal/taskqueue"
	"github.com/Iron-Ham/vidparse/internal/tui"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var queueCmd = &cobra.Command{
	Use:   "queue [file...]",
	Short: "Manage the link queue interactively",
	Long: `Open the interactive queue. Links from the given files are queued up front;
more can be added with 'a'. Nothing is resolved until the queue is started
with 's'.

Keys:
  a        add links (Enter submits, Esc cancels)
  s        start or resume
  p        pause after the current link
  c        cancel the selected link while it is processing
  d        remove the selected link
  x        clear the queue
  j/k      move the selection
  ?        help
  q        quit

Edits to the config file are picked up while the queue is open and apply to
the next link processed.`,
	RunE: runQueue,
}

var queueWatch string

func init() {
	rootCmd.AddCommand(queueCmd)

	queueCmd.Flags().StringVarP(&queueWatch, "watch", "w", "", "Add links appended to this file to the queue")
}

func runQueue(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// The alternate screen owns the terminal, so logs need a directory
	logger, err := newLogger(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	input, err := readInputs(cmd.InOrStdin(), args, false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	bus := event.NewBus(logger)
	res := newResolver(cfg, logger)
	sched := newScheduler(cfg, res, bus, logger)
	if input != "" {
		if _, err := sched.Submit(input); err != nil && !errors.IsWarning(err) {
			return err
		}
	}

	app := tui.New(ctx, sched, tui.Options{URLWidth: cfg.TUI.URLWidth, Logger: logger})

	watchConfig(sched, logger, app.Notify)

	if queueWatch != "" {
		w, err := inbox.New(queueWatch, sched, logger)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", queueWatch, err)
		}
		w.SetSubmitCallback(func(n int) {
			go app.Notify(fmt.Sprintf("%d %s added from %s", n, pluralize(n, "link", "links"), queueWatch), false)
		})
		if err := w.Start(); err != nil {
			return fmt.Errorf("failed to watch %s: %w", queueWatch, err)
		}
		defer w.Stop()
	}

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// Abort the in-flight request, if any, before exiting
	cancel()
	_ = sched.Wait(context.Background())
	logCacheStats(res, logger)
	return nil
}

// watchConfig reapplies the progress settings whenever the config file
// changes. Invalid edits are logged and ignored.
func watchConfig(sched *taskqueue.Scheduler, logger *logging.Logger, notify func(text string, warn bool)) {
	if viper.ConfigFileUsed() == "" {
		return
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		applyConfigChange(sched, logger, notify, e.Name)
	})
	viper.WatchConfig()
}

func applyConfigChange(sched *taskqueue.Scheduler, logger *logging.Logger, notify func(text string, warn bool), path string) {
	cfg, err := config.Load()
	if err != nil {
		logger.Warn("config reload rejected", "path", path, "error", err.Error())
		notify("config change ignored: "+err.Error(), true)
		return
	}

	sched.SetProgress(cfg.Queue.ProgressInterval(), cfg.Queue.ProgressCeiling)
	logger.Info("config reloaded",
		"path", path,
		"progress_interval_ms", cfg.Queue.ProgressIntervalMs,
		"progress_ceiling", cfg.Queue.ProgressCeiling)
	notify("config reloaded", false)
}
