package taskqueue

import (
	"strings"
	"sync"
	"time"

	"github.com/Iron-Ham/vidparse/internal/errors"
	"github.com/google/uuid"
)

// Store is the ordered task collection. All methods are safe for concurrent
// use via an internal mutex, and every query returns copies.
type Store struct {
	mu    sync.Mutex
	tasks map[string]*Task // taskID -> task
	order []string         // task IDs in insertion order
	newID func() string
}

// NewStore creates an empty Store. Task IDs are UUIDv7, which sort by
// creation time.
func NewStore() *Store {
	return &Store{
		tasks: make(map[string]*Task),
		newID: func() string { return uuid.Must(uuid.NewV7()).String() },
	}
}

// splitLinks splits raw text into trimmed, non-empty lines. It also reports
// the number of raw lines inspected.
func splitLinks(inputs []string) (links []string, lines int) {
	for _, in := range inputs {
		for _, line := range strings.Split(in, "\n") {
			lines++
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				links = append(links, trimmed)
			}
		}
	}
	return links, lines
}

// Append splits each input on line breaks and creates one pending task per
// non-blank trimmed line, appended in order. It returns the number of tasks
// created. When nothing usable remains the queue is unchanged and a
// *errors.ValidationWarning is returned.
func (s *Store) Append(inputs ...string) (int, error) {
	ids, err := s.appendLinks(inputs)
	return len(ids), err
}

func (s *Store) appendLinks(inputs []string) ([]string, error) {
	links, lines := splitLinks(inputs)
	if len(links) == 0 {
		return nil, errors.NewValidationWarning("enter at least one video link").WithLines(lines)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(links))
	for _, link := range links {
		id := s.newID()
		s.tasks[id] = &Task{
			ID:     id,
			URL:    link,
			Status: StatusPending,
		}
		s.order = append(s.order, id)
		ids = append(ids, id)
	}
	return ids, nil
}

// Update applies mutate to the task with the given id and reports whether the
// task was found. Unknown ids are ignored.
func (s *Store) Update(id string, mutate func(t *Task)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return false
	}
	mutate(task)
	task.ID = id
	return true
}

// Remove deletes the task with the given id. Removing a processing task is
// allowed; the scheduler discards its eventual result.
func (s *Store) Remove(id string) error {
	if _, ok := s.remove(id); !ok {
		return errors.NewInvariantViolation("remove", errors.ErrTaskNotFound).WithTaskID(id)
	}
	return nil
}

func (s *Store) remove(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}
	delete(s.tasks, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return task.clone(), true
}

// Clear empties the queue and returns how many tasks were removed.
// Use Scheduler.ClearQueue while a batch may be running.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.order)
	s.tasks = make(map[string]*Task)
	s.order = nil
	return n
}

// Get returns a copy of the task with the given id.
func (s *Store) Get(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}
	return task.clone(), true
}

// Tasks returns a copy of every task in insertion order.
func (s *Store) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() []Task {
	out := make([]Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tasks[id].clone())
	}
	return out
}

// Len returns the number of tasks in the queue.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Report returns aggregate progress computed from the current contents.
func (s *Store) Report() Report {
	return NewReport(s.Tasks())
}

// beginNext transitions the first pending task not yet in visited to
// processing and returns a copy with its queue position.
func (s *Store) beginNext(visited map[string]struct{}) (Task, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for pos, id := range s.order {
		task := s.tasks[id]
		if task.Status != StatusPending {
			continue
		}
		if _, seen := visited[id]; seen {
			continue
		}
		now := time.Now()
		task.Status = StatusProcessing
		task.StartedAt = &now
		task.EndedAt = nil
		task.Progress = 0
		task.Result = nil
		task.Error = ""
		return task.clone(), pos, true
	}
	return Task{}, 0, false
}

// raiseProgress moves a processing task's progress up by step, clamped to
// ceiling. It never lowers progress. It returns false once the task is gone
// or no longer processing, telling the simulator to stop.
func (s *Store) raiseProgress(id string, step, ceiling int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok || task.Status != StatusProcessing {
		return false
	}
	next := min(task.Progress+step, ceiling)
	if next > task.Progress {
		task.Progress = next
	}
	return true
}

// settleOutcome describes what happened to a resolution result.
type settleOutcome int

const (
	settleApplied settleOutcome = iota
	settleDiscardedCancelled
	settleDiscardedRemoved
)

// settle applies a resolution outcome to a processing task. A task that was
// removed or is no longer processing is left untouched. When aborted is true
// the call was interrupted by context cancellation and the task becomes
// cancelled instead of failed.
func (s *Store) settle(id string, result *Result, resolveErr error, aborted bool) (Task, settleOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return Task{}, settleDiscardedRemoved
	}
	if task.Status != StatusProcessing {
		return task.clone(), settleDiscardedCancelled
	}

	now := time.Now()
	task.EndedAt = &now
	switch {
	case aborted:
		task.Status = StatusCancelled
		task.Progress = 0
	case resolveErr != nil:
		task.Status = StatusFailed
		task.Error = errors.UserMessage(resolveErr)
		task.Progress = 0
	default:
		r := *result
		task.Status = StatusSuccess
		task.Result = &r
		task.Progress = 100
	}
	return task.clone(), settleApplied
}

// cancel moves a processing task to cancelled.
func (s *Store) cancel(id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return Task{}, errors.NewInvariantViolation("cancel", errors.ErrTaskNotFound).WithTaskID(id)
	}
	if task.Status != StatusProcessing {
		return task.clone(), errors.NewInvariantViolation("cancel", errors.ErrInvalidTransition).
			WithTaskID(id).
			WithDetail("only a processing task can be cancelled, task is " + task.Status.String())
	}

	now := time.Now()
	task.Status = StatusCancelled
	task.EndedAt = &now
	task.Progress = 0
	return task.clone(), nil
}
