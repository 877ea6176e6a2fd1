// Package event provides a pub-sub event bus that lets the queue report its
// lifecycle without knowing who is listening.
//
// The headless runner subscribes to task.settled to print one line per link;
// the log sink subscribes to everything. The TUI does not subscribe: it polls
// the store on a tick, which is enough for a presentation layer.
//
// # Main Types
//
//   - [Event]: interface that all events implement (EventType, Timestamp)
//   - [Bus]: synchronous pub-sub dispatcher, safe for concurrent use
//   - [Handler]: func(Event)
//
// # Event Types
//
// Event types follow the pattern "category.action":
//   - task.added, task.started, task.settled, task.removed
//   - queue.cleared, queue.runstate, queue.depth
//
// # Basic Usage
//
//	bus := event.NewBus()
//	bus.Subscribe(event.TypeTaskSettled, func(e event.Event) {
//	    settled := e.(event.TaskSettledEvent)
//	    fmt.Println(settled.URL, settled.Status)
//	})
//
// Handlers are called synchronously on the publishing goroutine and are
// protected against panics; a panicking handler does not prevent the others
// from running.
package event
