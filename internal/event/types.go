package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "task.started").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeTaskAdded       = "task.added"
	TypeTaskStarted     = "task.started"
	TypeTaskSettled     = "task.settled"
	TypeTaskRemoved     = "task.removed"
	TypeQueueCleared    = "queue.cleared"
	TypeRunStateChanged = "queue.runstate"
	TypeQueueDepth      = "queue.depth"
)

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Task Events
// -----------------------------------------------------------------------------

// TaskAddedEvent is emitted once per submission that created tasks.
type TaskAddedEvent struct {
	baseEvent
	TaskIDs []string // IDs in insertion order
}

// NewTaskAddedEvent creates a TaskAddedEvent.
func NewTaskAddedEvent(taskIDs []string) TaskAddedEvent {
	return TaskAddedEvent{
		baseEvent: newBaseEvent(TypeTaskAdded),
		TaskIDs:   taskIDs,
	}
}

// TaskStartedEvent is emitted when a task enters processing.
type TaskStartedEvent struct {
	baseEvent
	TaskID   string
	URL      string
	Position int // zero-based index in the queue when started
}

// NewTaskStartedEvent creates a TaskStartedEvent.
func NewTaskStartedEvent(taskID, url string, position int) TaskStartedEvent {
	return TaskStartedEvent{
		baseEvent: newBaseEvent(TypeTaskStarted),
		TaskID:    taskID,
		URL:       url,
		Position:  position,
	}
}

// TaskSettledEvent is emitted when an in-flight resolution settles.
// Discarded is true when the outcome was dropped because the task had been
// cancelled or removed while the call was outstanding.
type TaskSettledEvent struct {
	baseEvent
	TaskID    string
	URL       string
	Status    string // success, failed or cancelled
	Title     string // result title on success
	Error     string // failure message on failure
	Duration  time.Duration
	Discarded bool
}

// NewTaskSettledEvent creates a TaskSettledEvent.
func NewTaskSettledEvent(taskID, url, status, title, errMsg string, duration time.Duration, discarded bool) TaskSettledEvent {
	return TaskSettledEvent{
		baseEvent: newBaseEvent(TypeTaskSettled),
		TaskID:    taskID,
		URL:       url,
		Status:    status,
		Title:     title,
		Error:     errMsg,
		Duration:  duration,
		Discarded: discarded,
	}
}

// TaskRemovedEvent is emitted when a task is deleted from the queue.
type TaskRemovedEvent struct {
	baseEvent
	TaskID     string
	WasRunning bool
}

// NewTaskRemovedEvent creates a TaskRemovedEvent.
func NewTaskRemovedEvent(taskID string, wasRunning bool) TaskRemovedEvent {
	return TaskRemovedEvent{
		baseEvent:  newBaseEvent(TypeTaskRemoved),
		TaskID:     taskID,
		WasRunning: wasRunning,
	}
}

// -----------------------------------------------------------------------------
// Queue Events
// -----------------------------------------------------------------------------

// QueueClearedEvent is emitted when the whole queue is emptied.
type QueueClearedEvent struct {
	baseEvent
	Removed int
}

// NewQueueClearedEvent creates a QueueClearedEvent.
func NewQueueClearedEvent(removed int) QueueClearedEvent {
	return QueueClearedEvent{
		baseEvent: newBaseEvent(TypeQueueCleared),
		Removed:   removed,
	}
}

// RunStateChangedEvent is emitted when the scheduler run-state changes.
type RunStateChangedEvent struct {
	baseEvent
	From string
	To   string
}

// NewRunStateChangedEvent creates a RunStateChangedEvent.
func NewRunStateChangedEvent(from, to string) RunStateChangedEvent {
	return RunStateChangedEvent{
		baseEvent: newBaseEvent(TypeRunStateChanged),
		From:      from,
		To:        to,
	}
}

// QueueDepthChangedEvent carries status counts after a mutation.
type QueueDepthChangedEvent struct {
	baseEvent
	Pending    int
	Processing int
	Success    int
	Failed     int
	Cancelled  int
	Total      int
	Percent    int
}

// NewQueueDepthChangedEvent creates a QueueDepthChangedEvent.
func NewQueueDepthChangedEvent(pending, processing, success, failed, cancelled, total, percent int) QueueDepthChangedEvent {
	return QueueDepthChangedEvent{
		baseEvent:  newBaseEvent(TypeQueueDepth),
		Pending:    pending,
		Processing: processing,
		Success:    success,
		Failed:     failed,
		Cancelled:  cancelled,
		Total:      total,
		Percent:    percent,
	}
}
