package jobs

import (
	"context"
	"fmt"
)

// Handlers are bound after the command runtime exists, since the handlers
// themselves are built on top of the worker and timers.
type Handlers struct {
	Dispatch    DispatchHandler
	ExpireOffer ExpireOfferHandler
}

// JobManager coordinates the dispatch worker, offer timers and cron jobs.
type JobManager struct {
	worker     *DispatchWorker
	timers     *OfferTimers
	sweepJob   *OfferExpirySweepJob
	redispatch *RedispatchJob
}

func NewJobManager(
	worker *DispatchWorker,
	timers *OfferTimers,
	sweepJob *OfferExpirySweepJob,
	redispatch *RedispatchJob,
) *JobManager {
	return &JobManager{
		worker:     worker,
		timers:     timers,
		sweepJob:   sweepJob,
		redispatch: redispatch,
	}
}

// StartAll starts every job. Jobs already running are stopped when a later
// one fails to start.
func (jm *JobManager) StartAll(ctx context.Context, h Handlers) error {
	jm.timers.Start(ctx, h.ExpireOffer)

	if err := jm.worker.Start(ctx, h.Dispatch); err != nil {
		jm.timers.Stop()
		return fmt.Errorf("failed to start dispatch worker: %w", err)
	}

	if err := jm.sweepJob.Start(); err != nil {
		jm.worker.Stop()
		jm.timers.Stop()
		return fmt.Errorf("failed to start offer expiry sweep job: %w", err)
	}

	if err := jm.redispatch.Start(); err != nil {
		jm.sweepJob.Stop()
		jm.worker.Stop()
		jm.timers.Stop()
		return fmt.Errorf("failed to start redispatch job: %w", err)
	}

	return nil
}

// StopAll stops the cron jobs first so nothing enqueues into a stopped worker.
func (jm *JobManager) StopAll() {
	jm.redispatch.Stop()
	jm.sweepJob.Stop()
	jm.timers.Stop()
	jm.worker.Stop()
}
