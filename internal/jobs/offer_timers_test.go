package jobs

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/clock"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var timersNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func forOffer(id kernel.UUID) any {
	return mock.MatchedBy(func(c commands.ExpireOfferCommand) bool { return c.OfferID().IsEqual(id) })
}

func TestOfferTimers_Schedule_FiresAtDeadline(t *testing.T) {
	// Given
	timers := NewOfferTimers(clock.NewManual(timersNow), discardLogger)
	handler := new(MockExpireOfferHandler)
	fired := make(chan struct{})
	offerID := kernel.NewUUID()
	handler.On("Handle", mock.Anything, forOffer(offerID)).
		Return(true, nil).
		Run(func(mock.Arguments) { close(fired) }).Once()
	timers.Start(t.Context(), handler)
	t.Cleanup(timers.Stop)

	// When
	timers.Schedule(offerID, timersNow.Add(20*time.Millisecond))

	// Then
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("offer timer did not fire")
	}
	require.Eventually(t, func() bool { return timers.Armed() == 0 }, time.Second, 10*time.Millisecond)
	handler.AssertExpectations(t)
}

func TestOfferTimers_Schedule_PastDeadlineFiresImmediately(t *testing.T) {
	timers := NewOfferTimers(clock.NewManual(timersNow), discardLogger)
	handler := new(MockExpireOfferHandler)
	fired := make(chan struct{})
	offerID := kernel.NewUUID()
	handler.On("Handle", mock.Anything, forOffer(offerID)).
		Return(false, errs.NewObjectNotFoundError("offer", offerID)).
		Run(func(mock.Arguments) { close(fired) }).Once()
	timers.Start(t.Context(), handler)
	t.Cleanup(timers.Stop)

	timers.Schedule(offerID, timersNow.Add(-time.Minute))

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("overdue offer timer did not fire")
	}
}

func TestOfferTimers_Cancel_DisarmsTimer(t *testing.T) {
	timers := NewOfferTimers(clock.NewManual(timersNow), discardLogger)
	handler := new(MockExpireOfferHandler)
	timers.Start(t.Context(), handler)
	offerID := kernel.NewUUID()

	timers.Schedule(offerID, timersNow.Add(time.Hour))
	require.Equal(t, 1, timers.Armed())

	timers.Cancel(offerID)

	assert.Zero(t, timers.Armed())
	timers.Cancel(offerID)
	handler.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestOfferTimers_Schedule_ReplacesExistingTimer(t *testing.T) {
	timers := NewOfferTimers(clock.NewManual(timersNow), discardLogger)
	timers.Start(t.Context(), new(MockExpireOfferHandler))
	t.Cleanup(timers.Stop)
	offerID := kernel.NewUUID()

	timers.Schedule(offerID, timersNow.Add(time.Hour))
	timers.Schedule(offerID, timersNow.Add(2*time.Hour))

	assert.Equal(t, 1, timers.Armed())
}

func TestOfferTimers_Stop_DisarmsEverything(t *testing.T) {
	timers := NewOfferTimers(clock.NewManual(timersNow), discardLogger)
	timers.Schedule(kernel.NewUUID(), timersNow.Add(time.Hour))
	timers.Schedule(kernel.NewUUID(), timersNow.Add(time.Hour))

	timers.Stop()

	assert.Zero(t, timers.Armed())
}
