package taskqueue

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Iron-Ham/vidparse/internal/errors"
	"github.com/Iron-Ham/vidparse/internal/event"
	"github.com/Iron-Ham/vidparse/internal/logging"
)

// Progress simulation defaults.
const (
	DefaultProgressInterval = 500 * time.Millisecond
	DefaultProgressCeiling  = 90
)

// Options configures a Scheduler. Zero values select the defaults.
type Options struct {
	// ProgressInterval is how often the in-flight task's progress is raised.
	ProgressInterval time.Duration
	// ProgressCeiling caps simulated progress; must be below 100.
	ProgressCeiling int
	// ProgressStep returns the increment applied on each tick.
	ProgressStep func() int
	// Bus receives lifecycle events. Nil disables publishing.
	Bus *event.Bus
	// Logger receives scheduler logs. Nil discards them.
	Logger *logging.Logger
}

// Scheduler drives sequential resolution of pending tasks and owns the
// run-state. All methods are safe for concurrent use.
type Scheduler struct {
	store    *Store
	resolver Resolver
	bus      *event.Bus
	logger   *logging.Logger
	step     func() int

	mu       sync.Mutex
	state    RunState
	looping  bool            // a batch goroutine is alive
	done     chan struct{}   // closed when the current batch goroutine exits
	current  string          // id of the task in flight
	ctx      context.Context // from the latest Start; checked at each task boundary
	interval time.Duration
	ceiling  int
}

// NewScheduler creates a Scheduler over store that resolves links with resolver.
func NewScheduler(store *Store, resolver Resolver, opts Options) *Scheduler {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	step := opts.ProgressStep
	if step == nil {
		step = func() int { return 5 + rand.IntN(11) }
	}
	s := &Scheduler{
		store:    store,
		resolver: resolver,
		bus:      opts.Bus,
		logger:   logger.WithComponent("scheduler"),
		step:     step,
		state:    RunIdle,
	}
	s.SetProgress(opts.ProgressInterval, opts.ProgressCeiling)
	return s
}

// Store returns the store the scheduler operates on.
func (s *Scheduler) Store() *Store {
	return s.store
}

// SetProgress changes the simulator interval and ceiling. The new values
// apply from the next task started. Out-of-range values select the defaults.
func (s *Scheduler) SetProgress(interval time.Duration, ceiling int) {
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	if ceiling <= 0 || ceiling >= 100 {
		ceiling = DefaultProgressCeiling
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = interval
	s.ceiling = ceiling
}

// RunState returns the current run-state.
func (s *Scheduler) RunState() RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the task in flight, if any.
func (s *Scheduler) Current() (Task, bool) {
	s.mu.Lock()
	id := s.current
	s.mu.Unlock()

	if id == "" {
		return Task{}, false
	}
	return s.store.Get(id)
}

// Submit appends links to the store. See Store.Append.
func (s *Scheduler) Submit(inputs ...string) (int, error) {
	ids, err := s.store.appendLinks(inputs)
	if err != nil {
		s.logger.Warn("submission rejected", "error", err.Error())
		return 0, err
	}
	s.logger.Info("tasks added", "count", len(ids))
	s.publish(event.NewTaskAddedEvent(ids))
	s.publishDepth()
	return len(ids), nil
}

// Start begins processing pending tasks in insertion order and returns
// immediately; use Wait to block until the batch stops.
//
// Starting an empty queue or a running scheduler is rejected with an
// *errors.InvariantViolation. Starting while a paused batch is still waiting
// for its in-flight task resumes that batch instead of launching a second one;
// the resumed batch continues under ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == RunRunning {
		s.mu.Unlock()
		err := errors.NewInvariantViolation("start", errors.ErrAlreadyRunning)
		s.logger.Warn("start ignored", "error", err.Error())
		return err
	}
	if s.store.Len() == 0 {
		s.mu.Unlock()
		err := errors.NewInvariantViolation("start", errors.ErrQueueEmpty)
		s.logger.Warn("start ignored", "error", err.Error())
		return err
	}

	from := s.state
	s.state = RunRunning
	resumed := s.looping
	if !resumed {
		s.looping = true
		s.done = make(chan struct{})
	}
	done := s.done
	s.ctx = ctx
	s.mu.Unlock()

	s.logger.Info("batch started", "from", from.String(), "resumed_in_flight", resumed)
	s.publish(event.NewRunStateChangedEvent(from.String(), RunRunning.String()))
	if !resumed {
		go s.run(done)
	}
	return nil
}

// Wait blocks until the current batch goroutine exits or ctx is done.
// It returns immediately when no batch has been started.
func (s *Scheduler) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pause stops the batch from advancing past the task in flight. The in-flight
// resolution is not interrupted and settles normally.
func (s *Scheduler) Pause() error {
	s.mu.Lock()
	if s.state != RunRunning {
		s.mu.Unlock()
		err := errors.NewInvariantViolation("pause", errors.ErrNotRunning)
		s.logger.Warn("pause ignored", "error", err.Error())
		return err
	}
	s.state = RunPaused
	s.mu.Unlock()

	s.logger.Info("batch paused")
	s.publish(event.NewRunStateChangedEvent(RunRunning.String(), RunPaused.String()))
	return nil
}

// CancelTask marks the processing task id as cancelled. The outstanding
// resolver call is not aborted; its result is discarded when it arrives.
func (s *Scheduler) CancelTask(id string) error {
	task, err := s.store.cancel(id)
	if err != nil {
		s.logger.Warn("cancel ignored", "task_id", id, "error", err.Error())
		return err
	}

	s.logger.WithTask(id).Info("task cancelled", "url", task.URL)
	s.publish(event.NewTaskSettledEvent(task.ID, task.URL, task.Status.String(), "", "", task.Duration(), false))
	s.publishDepth()
	return nil
}

// RemoveTask deletes task id from the queue. A processing task may be
// removed; the batch carries on with the next pending task.
func (s *Scheduler) RemoveTask(id string) error {
	task, ok := s.store.remove(id)
	if !ok {
		err := errors.NewInvariantViolation("remove", errors.ErrTaskNotFound).WithTaskID(id)
		s.logger.Warn("remove ignored", "task_id", id, "error", err.Error())
		return err
	}

	wasRunning := task.Status == StatusProcessing
	s.logger.WithTask(id).Info("task removed", "was_running", wasRunning)
	s.publish(event.NewTaskRemovedEvent(id, wasRunning))
	s.publishDepth()
	return nil
}

// ClearQueue stops the batch at the next task boundary, empties the queue and
// leaves the scheduler idle. It returns the number of tasks removed. A result
// still in flight is discarded when it arrives. Clearing an empty queue is
// rejected with an *errors.InvariantViolation.
func (s *Scheduler) ClearQueue() (int, error) {
	s.mu.Lock()
	if s.store.Len() == 0 {
		s.mu.Unlock()
		err := errors.NewInvariantViolation("clear", errors.ErrQueueEmpty)
		s.logger.Warn("clear ignored", "error", err.Error())
		return 0, err
	}
	from := s.state
	s.state = RunIdle
	s.mu.Unlock()

	n := s.store.Clear()
	s.logger.Info("queue cleared", "removed", n, "from", from.String())
	if from != RunIdle {
		s.publish(event.NewRunStateChangedEvent(from.String(), RunIdle.String()))
	}
	s.publish(event.NewQueueClearedEvent(n))
	s.publishDepth()
	return n, nil
}

// run is the batch loop.
func (s *Scheduler) run(done chan struct{}) {
	defer close(done)

	visited := make(map[string]struct{})
	for {
		ctx, task, pos, ok := s.next(visited)
		if !ok {
			return
		}
		s.process(ctx, task, pos)
	}
}

// next checks the cancellation boundary and begins the next pending task in
// the same critical section, so a concurrent Pause either lands before the
// task starts or applies after it settles.
func (s *Scheduler) next(visited map[string]struct{}) (context.Context, Task, int, bool) {
	s.mu.Lock()
	ctx := s.ctx

	if s.state != RunRunning {
		s.looping = false
		s.mu.Unlock()
		s.logger.Info("batch stopped at task boundary", "state", s.RunState().String())
		return nil, Task{}, 0, false
	}

	if err := ctx.Err(); err != nil {
		s.state = RunPaused
		s.looping = false
		s.mu.Unlock()
		s.logger.Info("batch interrupted", "error", err.Error())
		s.publish(event.NewRunStateChangedEvent(RunRunning.String(), RunPaused.String()))
		return nil, Task{}, 0, false
	}

	task, pos, ok := s.store.beginNext(visited)
	if !ok {
		s.state = RunIdle
		s.looping = false
		s.mu.Unlock()
		report := s.store.Report()
		s.logger.Info("batch complete",
			"success", report.Counts[StatusSuccess],
			"failed", report.Counts[StatusFailed],
			"cancelled", report.Counts[StatusCancelled])
		s.publish(event.NewRunStateChangedEvent(RunRunning.String(), RunIdle.String()))
		return nil, Task{}, 0, false
	}

	visited[task.ID] = struct{}{}
	s.current = task.ID
	s.mu.Unlock()
	return ctx, task, pos, true
}

// process resolves one task and settles its record.
func (s *Scheduler) process(ctx context.Context, task Task, pos int) {
	log := s.logger.WithTask(task.ID)
	log.Info("task started", "url", task.URL, "position", pos)
	s.publish(event.NewTaskStartedEvent(task.ID, task.URL, pos))
	s.publishDepth()

	s.mu.Lock()
	interval, ceiling := s.interval, s.ceiling
	s.mu.Unlock()

	sim := startSimulator(s.store, task.ID, interval, ceiling, s.step)
	result, err := s.resolve(ctx, task.URL)
	sim.stop()

	aborted := err != nil && ctx.Err() != nil
	settled, outcome := s.store.settle(task.ID, result, err, aborted)

	s.mu.Lock()
	s.current = ""
	s.mu.Unlock()

	switch outcome {
	case settleDiscardedRemoved:
		log.Info("result discarded, task was removed")
		s.publish(event.NewTaskSettledEvent(task.ID, task.URL, "", "", errors.UserMessage(err), 0, true))
		return
	case settleDiscardedCancelled:
		log.Info("result discarded, task was cancelled", "status", settled.Status.String())
		s.publish(event.NewTaskSettledEvent(task.ID, task.URL, settled.Status.String(), "", errors.UserMessage(err), settled.Duration(), true))
		return
	}

	title := ""
	if settled.Result != nil {
		title = settled.Result.Title
	}
	switch settled.Status {
	case StatusSuccess:
		log.Info("task succeeded", "title", title, "duration_ms", settled.Duration().Milliseconds())
	case StatusFailed:
		log.Warn("task failed", "error", settled.Error, "duration_ms", settled.Duration().Milliseconds())
	case StatusCancelled:
		log.Info("task aborted", "error", err.Error())
	}
	s.publish(event.NewTaskSettledEvent(task.ID, task.URL, settled.Status.String(), title, settled.Error, settled.Duration(), false))
	s.publishDepth()
}

// resolve calls the resolver and converts panics and empty results into
// errors, so nothing escapes the batch loop.
func (s *Scheduler) resolve(ctx context.Context, url string) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = errors.NewResolutionFailure(fmt.Sprintf("resolver panicked: %v", r)).WithURL(url)
		}
	}()

	result, err = s.resolver.Resolve(ctx, url)
	if err == nil && result == nil {
		err = errors.NewResolutionFailure("resolver returned no result").WithURL(url)
	}
	return result, err
}
