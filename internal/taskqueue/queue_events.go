package taskqueue

import "github.com/Iron-Ham/vidparse/internal/event"

// publish sends e to the bus if one is configured. Callers must not hold s.mu
// so handlers may call back into the scheduler.
func (s *Scheduler) publish(e event.Event) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(e)
}

// publishDepth emits the current status counts.
func (s *Scheduler) publishDepth() {
	if s.bus == nil {
		return
	}
	r := s.store.Report()
	s.bus.Publish(event.NewQueueDepthChangedEvent(
		r.Counts[StatusPending],
		r.Counts[StatusProcessing],
		r.Counts[StatusSuccess],
		r.Counts[StatusFailed],
		r.Counts[StatusCancelled],
		r.Total,
		r.Percent,
	))
}

// Compile-time checks that the events the scheduler publishes satisfy event.Event.
var (
	_ event.Event = event.TaskAddedEvent{}
	_ event.Event = event.TaskStartedEvent{}
	_ event.Event = event.TaskSettledEvent{}
	_ event.Event = event.TaskRemovedEvent{}
	_ event.Event = event.QueueClearedEvent{}
	_ event.Event = event.RunStateChangedEvent{}
	_ event.Event = event.QueueDepthChangedEvent{}
)
