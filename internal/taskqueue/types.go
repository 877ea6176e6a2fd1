package taskqueue

import (
	"context"
	"time"
)

// Status is the lifecycle state of a single task.
type Status string

const (
	// StatusPending indicates the task is waiting for the scheduler.
	StatusPending Status = "pending"

	// StatusProcessing indicates the task's link is being resolved.
	StatusProcessing Status = "processing"

	// StatusSuccess indicates the resolver returned a result.
	StatusSuccess Status = "success"

	// StatusFailed indicates the resolver returned an error. Failures are
	// terminal; the task is never revisited.
	StatusFailed Status = "failed"

	// StatusCancelled indicates the task was cancelled while processing.
	StatusCancelled Status = "cancelled"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if the scheduler will not process the task again.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusCancelled
}

// AllStatuses returns every status in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusProcessing, StatusSuccess, StatusFailed, StatusCancelled}
}

// RunState is the scheduler's own state, distinct from any task's status.
type RunState string

const (
	// RunIdle means no batch is in progress.
	RunIdle RunState = "idle"

	// RunRunning means the scheduler is advancing through pending tasks.
	RunRunning RunState = "running"

	// RunPaused means a batch was interrupted and can be resumed with Start.
	RunPaused RunState = "paused"
)

// String returns the string representation of the run-state.
func (r RunState) String() string {
	return string(r)
}

// Result is what the resolution service returns for a link.
type Result struct {
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
	VideoURL string `json:"video_url"`
	CoverURL string `json:"cover,omitempty"`
	Platform string `json:"platform,omitempty"`
}

// Task is one queued link.
//
// Result is set only when Status is success, Error only when Status is failed.
// Progress is meaningful while processing and is held at 0 or 100 otherwise.
type Task struct {
	ID        string     `json:"id"`
	URL       string     `json:"url"`
	Status    Status     `json:"status"`
	Result    *Result    `json:"result,omitempty"`
	Error     string     `json:"error,omitempty"`
	Progress  int        `json:"progress"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// Duration returns how long the task spent processing. A task still in
// flight reports the time elapsed so far; a task never started reports 0.
func (t Task) Duration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	if t.EndedAt == nil {
		return time.Since(*t.StartedAt)
	}
	return t.EndedAt.Sub(*t.StartedAt)
}

// clone returns a deep copy so callers never share pointers with the store.
func (t *Task) clone() Task {
	cp := *t
	if t.Result != nil {
		r := *t.Result
		cp.Result = &r
	}
	if t.StartedAt != nil {
		ts := *t.StartedAt
		cp.StartedAt = &ts
	}
	if t.EndedAt != nil {
		ts := *t.EndedAt
		cp.EndedAt = &ts
	}
	return cp
}

// Resolver turns a link into a Result. Implementations carry their own
// timeout; the scheduler waits for as long as the call takes.
type Resolver interface {
	Resolve(ctx context.Context, url string) (*Result, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, url string) (*Result, error)

// Resolve calls f(ctx, url).
func (f ResolverFunc) Resolve(ctx context.Context, url string) (*Result, error) {
	return f(ctx, url)
}
