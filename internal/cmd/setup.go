package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Iron-Ham/vidparse/internal/config"
	"github.com/Iron-Ham/vidparse/internal/event"
	"github.com/Iron-Ham/vidparse/internal/logging"
	"github.com/Iron-Ham/vidparse/internal/resolver"
	"github.com/Iron-Ham/vidparse/internal/taskqueue"
)

// loadConfig loads and validates the effective configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the logger described by cfg.Logging. With no log
// directory, logs go to fallback; pass io.Discard to drop them.
func newLogger(cfg *config.Config, fallback io.Writer) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	if cfg.Logging.Dir != "" {
		return logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
	}
	return logging.NewWriterLogger(fallback, cfg.Logging.Level), nil
}

// newResolver builds the HTTP resolver, wrapped in the session cache when
// enabled.
func newResolver(cfg *config.Config, logger *logging.Logger) taskqueue.Resolver {
	client := resolver.New(resolver.Options{
		BaseURL: cfg.Resolver.BaseURL,
		Token:   cfg.Resolver.Token,
		Timeout: cfg.Resolver.Timeout(),
		Logger:  logger,
	})
	if cfg.Resolver.Cache {
		return resolver.NewCache(client)
	}
	return client
}

// newScheduler wires a fresh store, res and bus into a scheduler.
func newScheduler(cfg *config.Config, res taskqueue.Resolver, bus *event.Bus, logger *logging.Logger) *taskqueue.Scheduler {
	return taskqueue.NewScheduler(taskqueue.NewStore(), res, taskqueue.Options{
		ProgressInterval: cfg.Queue.ProgressInterval(),
		ProgressCeiling:  cfg.Queue.ProgressCeiling,
		Bus:              bus,
		Logger:           logger,
	})
}

// logCacheStats records the session cache counters at the end of a batch.
// It does nothing when res is not a *resolver.Cache.
func logCacheStats(res taskqueue.Resolver, logger *logging.Logger) {
	cache, ok := res.(*resolver.Cache)
	if !ok {
		return
	}
	hits, misses := cache.Stats()
	logger.WithComponent("resolver").Info("cache stats",
		"cache_hits", hits,
		"cache_misses", misses,
		"cached_links", cache.Len())
}

// readInputs concatenates the given files, reading stdin for "-". With no
// paths and useStdin set, stdin is read.
func readInputs(stdin io.Reader, paths []string, useStdin bool) (string, error) {
	if len(paths) == 0 {
		if !useStdin {
			return "", nil
		}
		paths = []string{"-"}
	}

	var b strings.Builder
	for _, path := range paths {
		var data []byte
		var err error
		if path == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return "", fmt.Errorf("failed to read links: %w", err)
		}
		b.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}
