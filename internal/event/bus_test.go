package event

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/vidparse/internal/logging"
)

func TestBus_Subscribe(t *testing.T) {
	bus := NewBus(nil)

	called := false
	id := bus.Subscribe(TypeTaskStarted, func(e Event) {
		called = true
	})

	if id == "" {
		t.Error("Subscribe should return a non-empty ID")
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("Expected 1 subscription, got %d", bus.SubscriptionCount())
	}
	if called {
		t.Error("Handler should not be called until an event is published")
	}
}

func TestBus_Publish(t *testing.T) {
	bus := NewBus(nil)

	var received Event
	bus.Subscribe(TypeTaskSettled, func(e Event) {
		received = e
	})

	bus.Publish(NewTaskSettledEvent("t1", "https://v.douyin.com/abc", "success", "clip", "", time.Second, false))

	if received == nil {
		t.Fatal("Handler should have received the event")
	}
	settled, ok := received.(TaskSettledEvent)
	if !ok {
		t.Fatalf("expected TaskSettledEvent, got %T", received)
	}
	if settled.TaskID != "t1" || settled.Title != "clip" {
		t.Errorf("unexpected payload: %+v", settled)
	}
	if settled.Timestamp().IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestBus_PublishOnlyMatchingType(t *testing.T) {
	bus := NewBus(nil)

	calls := 0
	bus.Subscribe(TypeTaskRemoved, func(e Event) { calls++ })

	bus.Publish(NewTaskStartedEvent("t1", "u", 0))

	if calls != 0 {
		t.Errorf("expected no calls for unrelated event type, got %d", calls)
	}
}

func TestBus_SubscribeAllOrdering(t *testing.T) {
	bus := NewBus(nil)

	var order []string
	bus.SubscribeAll(func(e Event) { order = append(order, "all") })
	bus.Subscribe(TypeQueueCleared, func(e Event) { order = append(order, "specific") })

	bus.Publish(NewQueueClearedEvent(3))

	if len(order) != 2 || order[0] != "specific" || order[1] != "all" {
		t.Errorf("expected specific handler before wildcard, got %v", order)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)

	calls := 0
	first := bus.Subscribe(TypeQueueDepth, func(e Event) { calls++ })
	bus.Subscribe(TypeQueueDepth, func(e Event) { calls += 10 })

	if !bus.Unsubscribe(first) {
		t.Fatal("expected Unsubscribe to find the subscription")
	}
	if bus.Unsubscribe(first) {
		t.Error("second Unsubscribe of the same id should return false")
	}

	bus.Publish(NewQueueDepthChangedEvent(1, 0, 0, 0, 0, 1, 0))
	if calls != 10 {
		t.Errorf("expected only the remaining handler to run, got calls=%d", calls)
	}
}

func TestBus_HandlerPanicRecovery(t *testing.T) {
	var buf bytes.Buffer
	bus := NewBus(logging.NewWriterLogger(&buf, logging.LevelDebug))

	calls := 0
	bus.Subscribe(TypeTaskAdded, func(e Event) {
		calls++
		panic("handler panic")
	})
	bus.Subscribe(TypeTaskAdded, func(e Event) {
		calls++
	})

	bus.Publish(NewTaskAddedEvent([]string{"a"}))

	if calls != 2 {
		t.Errorf("Expected both handlers to be called despite panic, got %d calls", calls)
	}
	if !strings.Contains(buf.String(), "event handler panicked") {
		t.Errorf("expected panic to be logged, got %q", buf.String())
	}
}

func TestBus_NilPublish(t *testing.T) {
	var bus *Bus
	bus.Publish(NewQueueClearedEvent(0))
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(nil)

	var mu sync.Mutex
	calls := 0
	bus.Subscribe(TypeRunStateChanged, func(e Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 100 {
		wg.Go(func() {
			bus.Publish(NewRunStateChangedEvent("idle", "running"))
		})
	}
	wg.Wait()

	if calls != 100 {
		t.Errorf("Expected 100 calls, got %d", calls)
	}
}
