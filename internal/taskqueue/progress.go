package taskqueue

import (
	"context"
	"math"
	"sync"
	"time"
)

// Report is an aggregate view of the queue, computed from a snapshot.
type Report struct {
	Total   int            `json:"total"`
	Counts  map[Status]int `json:"counts"`
	Percent int            `json:"percent"`
}

// NewReport computes counts and overall percent for tasks.
func NewReport(tasks []Task) Report {
	return Report{
		Total:   len(tasks),
		Counts:  StatusCounts(tasks),
		Percent: OverallPercent(tasks),
	}
}

// Completed returns the number of tasks that count toward the overall percent.
func (r Report) Completed() int {
	return r.Counts[StatusSuccess] + r.Counts[StatusFailed]
}

// Remaining returns the number of tasks still pending or processing.
func (r Report) Remaining() int {
	return r.Counts[StatusPending] + r.Counts[StatusProcessing]
}

// StatusCounts tallies tasks by status. Every status is present in the map,
// with zero for statuses that have no tasks.
func StatusCounts(tasks []Task) map[Status]int {
	counts := make(map[Status]int, len(AllStatuses()))
	for _, st := range AllStatuses() {
		counts[st] = 0
	}
	for _, t := range tasks {
		counts[t.Status]++
	}
	return counts
}

// OverallPercent returns round(100 * completed / total), where completed is
// success plus failed. Cancelled tasks stay in the total but never count as
// completed. An empty queue reports 0.
func OverallPercent(tasks []Task) int {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range tasks {
		if t.Status == StatusSuccess || t.Status == StatusFailed {
			done++
		}
	}
	return int(math.Round(100 * float64(done) / float64(len(tasks))))
}

// progressSimulator periodically raises the in-flight task's progress so the
// user sees movement while the real call is outstanding. It carries no
// correctness weight.
type progressSimulator struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// startSimulator launches the ticker goroutine for task id. step returns the
// increment for each tick; progress is clamped to ceiling.
func startSimulator(store *Store, id string, interval time.Duration, ceiling int, step func() int) *progressSimulator {
	ctx, cancel := context.WithCancel(context.Background())
	sim := &progressSimulator{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sim.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !store.raiseProgress(id, step(), ceiling) {
					return
				}
			}
		}
	}()
	return sim
}

// stop cancels the ticker and waits for the goroutine to exit, so no tick can
// land after the caller settles the task. Safe to call more than once.
func (p *progressSimulator) stop() {
	p.once.Do(func() {
		p.cancel()
		<-p.done
	})
}
