package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// OfferTimers arms one in-process timer per pending offer and expires the
// offer when it fires. Timers live in memory only; OfferExpirySweepJob picks up
// whatever a restart dropped.
type OfferTimers struct {
	clock  ports.Clock
	logger *slog.Logger

	mu      sync.Mutex
	ctx     context.Context
	handler ExpireOfferHandler
	timers  map[kernel.UUID]*armedTimer
}

type armedTimer struct {
	timer *time.Timer
}

func NewOfferTimers(clock ports.Clock, logger *slog.Logger) *OfferTimers {
	return &OfferTimers{
		clock:  clock,
		logger: logger.With("component", "offer_timers"),
		timers: make(map[kernel.UUID]*armedTimer),
	}
}

// Start binds the expire handler. Timers that fire before Start are dropped.
func (t *OfferTimers) Start(ctx context.Context, handler ExpireOfferHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ctx = ctx
	t.handler = handler
}

// Schedule replaces any timer already armed for the offer.
func (t *OfferTimers) Schedule(offerID kernel.UUID, at time.Time) {
	delay := max(at.Sub(t.clock.Now()), 0)

	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.timers[offerID]; ok {
		existing.timer.Stop()
	}
	armed := &armedTimer{}
	armed.timer = time.AfterFunc(delay, func() { t.fire(offerID, armed) })
	t.timers[offerID] = armed
}

func (t *OfferTimers) Cancel(offerID kernel.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if armed, ok := t.timers[offerID]; ok {
		armed.timer.Stop()
		delete(t.timers, offerID)
	}
}

// Stop disarms every timer.
func (t *OfferTimers) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, armed := range t.timers {
		armed.timer.Stop()
		delete(t.timers, id)
	}
	t.logger.Info("Offer timers stopped")
}

// Armed returns the number of timers still waiting to fire.
func (t *OfferTimers) Armed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.timers)
}

func (t *OfferTimers) fire(offerID kernel.UUID, armed *armedTimer) {
	t.mu.Lock()
	if t.timers[offerID] == armed {
		delete(t.timers, offerID)
	}
	ctx, handler := t.ctx, t.handler
	t.mu.Unlock()

	if handler == nil {
		t.logger.Warn("Offer timer fired before start", "offer_id", offerID.String())
		return
	}
	if ctx.Err() != nil {
		return
	}

	cmd, err := commands.NewExpireOfferCommand(offerID)
	if err != nil {
		t.logger.ErrorContext(ctx, "Invalid offer expiry", "offer_id", offerID.String(), "error", err)
		return
	}
	if _, err := handler.Handle(ctx, cmd); err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
		t.logger.ErrorContext(ctx, "Offer expiry failed", "offer_id", offerID.String(), "error", err)
	}
}
