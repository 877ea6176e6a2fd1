// Package taskqueue provides the batch queue that resolves share links one at
// a time against a remote [Resolver].
//
// The package has three cooperating parts:
//
//   - [Store] holds the ordered task records and is the single source of truth
//     for task state. Processing order is insertion order.
//   - [Scheduler] walks the store, resolving each pending task and settling its
//     record. It owns the idle/running/paused run-state.
//   - [Report] is the aggregate view (status counts, overall percent) derived
//     from the store on every read. While a task is in flight a background
//     simulator raises its progress toward a ceiling below 100.
//
// The scheduler is strictly sequential: it waits for each resolution to settle
// before advancing, so at most one task is processing at any instant. Pause is
// cooperative and observed only between tasks; the in-flight call is always
// allowed to settle. A cancelled or removed task never receives a late result.
//
// Usage:
//
//	store := taskqueue.NewStore()
//	sched := taskqueue.NewScheduler(store, client, taskqueue.Options{Bus: bus})
//
//	if _, err := sched.Submit("https://v.douyin.com/abc\nhttps://v.kuaishou.com/xyz"); err != nil {
//	    // errors.IsWarning(err): nothing usable was submitted
//	}
//	if err := sched.Start(ctx); err != nil {
//	    // already running or empty queue
//	}
//	_ = sched.Wait(ctx)
//	report := store.Report()
package taskqueue
