package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
)

var ErrWorkerAlreadyStarted = errors.New("dispatch worker already started")

const (
	// A delivery whose ring search is locked elsewhere is retried until the
	// lock has certainly expired; after that the redispatch job owns it.
	defaultBusyRetryDelay = 2 * time.Second
	defaultMaxBusyRetries = 8
)

// DispatchWorker runs the ring search off the request path. It satisfies
// ports.DispatchTrigger: Enqueue never blocks, and a delivery that is already
// waiting in the queue is not queued twice.
type DispatchWorker struct {
	queue   chan kernel.UUID
	workers int
	logger  *slog.Logger

	busyRetryDelay time.Duration
	maxBusyRetries int

	mu      sync.Mutex
	waiting map[kernel.UUID]struct{}
	busy    map[kernel.UUID]int
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewDispatchWorker(queueSize, workers int, logger *slog.Logger) *DispatchWorker {
	if queueSize <= 0 {
		queueSize = 1
	}
	if workers <= 0 {
		workers = 1
	}
	return &DispatchWorker{
		queue:   make(chan kernel.UUID, queueSize),
		workers: workers,
		logger:  logger.With("component", "dispatch_worker"),
		waiting: make(map[kernel.UUID]struct{}),
		busy:    make(map[kernel.UUID]int),

		busyRetryDelay: defaultBusyRetryDelay,
		maxBusyRetries: defaultMaxBusyRetries,
	}
}

// Enqueue reports false only when the queue is full.
func (w *DispatchWorker) Enqueue(deliveryID kernel.UUID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.waiting[deliveryID]; ok {
		return true
	}
	select {
	case w.queue <- deliveryID:
		w.waiting[deliveryID] = struct{}{}
		return true
	default:
		w.logger.Warn("Dispatch queue is full", "delivery_id", deliveryID.String())
		return false
	}
}

// Start launches the workers. The handler is bound here rather than in the
// constructor because the dispatch handler itself needs the worker as its
// trigger.
func (w *DispatchWorker) Start(ctx context.Context, handler DispatchHandler) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return ErrWorkerAlreadyStarted
	}
	ctx, w.cancel = context.WithCancel(ctx)

	for range w.workers {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.run(ctx, handler)
		}()
	}

	w.logger.InfoContext(ctx, "Dispatch worker started", "workers", w.workers, "queue_size", cap(w.queue))
	return nil
}

// Stop cancels the workers and waits for in-flight dispatches to return.
func (w *DispatchWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	w.wg.Wait()

	w.mu.Lock()
	w.cancel = nil
	w.mu.Unlock()
	w.logger.Info("Dispatch worker stopped")
}

func (w *DispatchWorker) run(ctx context.Context, handler DispatchHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-w.queue:
			w.mu.Lock()
			delete(w.waiting, id)
			w.mu.Unlock()

			w.dispatch(ctx, handler, id)
		}
	}
}

func (w *DispatchWorker) dispatch(ctx context.Context, handler DispatchHandler, id kernel.UUID) {
	cmd, err := commands.NewDispatchDeliveryCommand(id)
	if err != nil {
		w.logger.ErrorContext(ctx, "Invalid dispatch request", "delivery_id", id.String(), "error", err)
		return
	}

	err = handler.Handle(ctx, cmd)
	if errors.Is(err, commands.ErrDispatchInProgress) {
		w.retryBusy(ctx, id)
		return
	}
	w.mu.Lock()
	delete(w.busy, id)
	w.mu.Unlock()

	switch {
	case err == nil:
	case errors.Is(err, commands.ErrNoCourierAvailable):
		w.logger.InfoContext(ctx, "No courier available", "delivery_id", id.String())
	case errors.Is(err, context.Canceled):
	default:
		w.logger.ErrorContext(ctx, "Dispatch failed", "delivery_id", id.String(), "error", err)
	}
}

// retryBusy enqueues id again after busyRetryDelay, at most maxBusyRetries
// times in a row.
func (w *DispatchWorker) retryBusy(ctx context.Context, id kernel.UUID) {
	w.mu.Lock()
	attempt := w.busy[id] + 1
	if attempt > w.maxBusyRetries {
		delete(w.busy, id)
		w.mu.Unlock()
		w.logger.WarnContext(ctx, "Dispatch still locked, leaving delivery to redispatch",
			"delivery_id", id.String(),
			"attempts", attempt-1,
		)
		return
	}
	w.busy[id] = attempt
	w.mu.Unlock()

	timer := time.NewTimer(w.busyRetryDelay)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
			w.Enqueue(id)
		}
	}()
}
