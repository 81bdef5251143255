// Package jobs provides the background machinery of the dispatch engine.
//
// # Components
//
//  1. DispatchWorker - bounded queue of deliveries awaiting a courier, drained
//     by a fixed pool of goroutines running DispatchDeliveryCommandHandler
//  2. OfferTimers - one in-process timer per pending offer, firing
//     ExpireOfferCommandHandler at the offer deadline
//  3. OfferExpirySweepJob - cron job expiring overdue offers every second
//  4. RedispatchJob - cron job re-queueing Pending deliveries without an open offer
//
// # Usage
//
// The worker and timers satisfy ports.DispatchTrigger and
// ports.OfferExpiryScheduler, so they are created before the command handlers
// and bound to them when the manager starts:
//
//	worker := jobs.NewDispatchWorker(1024, 4, logger)
//	timers := jobs.NewOfferTimers(clock, logger)
//	rt := commands.Runtime{Trigger: worker, Scheduler: timers, ...}
//
//	manager := jobs.NewJobManager(worker, timers, sweepJob, redispatchJob)
//	if err := manager.StartAll(ctx, jobs.Handlers{...}); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer manager.StopAll()
//
// # Error Handling
//
//   - The worker stays quiet on ErrDispatchInProgress and logs
//     ErrNoCourierAvailable at info level
//   - Timers ignore offers that no longer exist
//   - Failed job starts stop any already running jobs
package jobs
