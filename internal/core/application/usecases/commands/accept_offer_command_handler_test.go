package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func acceptCommand(t *testing.T, o *offer.Offer, courierID kernel.UUID) commands.AcceptOfferCommand {
	t.Helper()
	cmd, err := commands.NewAcceptOfferCommand(o.ID(), courierID)
	require.NoError(t, err)
	return cmd
}

func TestAcceptOfferCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	d := newDelivery(t, kernel.NewUUID(), delivery.PaymentCashP2P)
	courier := newCourier(t, d.Pickup())
	o := newOffer(t, d, courier.ID(), startedAt)
	f.clock.Advance(10 * time.Second)

	f.expectTx(ctx)
	mock.InOrder(
		f.offers.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		f.deliveries.On("GetForUpdate", ctx, d.ID()).Return(d, nil).Once(),
		f.offers.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once(),
		f.accounts.On("GetForUpdate", ctx, courier.ID()).Return(courier, nil).Once(),
		f.offers.On("Update", ctx, o).Return(nil).Once(),
		f.deliveries.On("Update", ctx, d).Return(nil).Once(),
		f.accounts.On("Update", ctx, courier).Return(nil).Once(),
	)
	f.scheduler.On("Cancel", o.ID()).Once()

	err := commands.NewAcceptOfferCommandHandler(f.factory, f.runtime()).Handle(ctx, acceptCommand(t, o, courier.ID()))

	require.NoError(t, err)
	assert.Equal(t, offer.OutcomeAccepted, o.Outcome())
	assert.Equal(t, delivery.Assigned, d.Status())
	require.NotNil(t, d.CourierID())
	assert.Equal(t, courier.ID(), *d.CourierID())
	require.NotNil(t, courier.CurrentDeliveryID())
	assert.Equal(t, d.ID(), *courier.CurrentDeliveryID())
	assert.Equal(t, 1.0, courier.AcceptanceRate())
	f.metrics.AssertCalled(t, "OfferResolved", "Accepted")
	f.metrics.AssertCalled(t, "DeliveryTransition", "Assigned")
	f.assertExpectations(t)
}

func TestAcceptOfferCommandHandler_Handle_LateAcceptanceExpires(t *testing.T) {
	tests := []struct {
		name  string
		after time.Duration
	}{
		{"exactly at the deadline", offer.DefaultTimeout},
		{"one millisecond late", offer.DefaultTimeout + time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			f := newFixture()
			d := newDelivery(t, kernel.NewUUID(), delivery.PaymentCashP2P)
			courier := newCourier(t, d.Pickup())
			o := newOffer(t, d, courier.ID(), startedAt)
			f.clock.Advance(tt.after)

			f.expectTx(ctx)
			f.offers.On("Get", ctx, o.ID()).Return(o, nil).Once()
			f.deliveries.On("GetForUpdate", ctx, d.ID()).Return(d, nil).Once()
			f.offers.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once()
			f.offers.On("Update", ctx, o).Return(nil).Once()
			f.accounts.On("GetForUpdate", ctx, courier.ID()).Return(courier, nil).Once()
			f.accounts.On("Update", ctx, courier).Return(nil).Once()
			f.scheduler.On("Cancel", o.ID()).Once()
			f.trigger.On("Enqueue", d.ID()).Return(true).Once()

			err := commands.NewAcceptOfferCommandHandler(f.factory, f.runtime()).Handle(ctx, acceptCommand(t, o, courier.ID()))

			require.ErrorIs(t, err, offer.ErrOfferExpired)
			assert.Equal(t, offer.OutcomeExpired, o.Outcome())
			assert.Equal(t, delivery.Pending, d.Status())
			assert.Nil(t, courier.CurrentDeliveryID())
			assert.Equal(t, 0.0, courier.AcceptanceRate())
			f.deliveries.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			f.assertExpectations(t)
		})
	}
}

func TestAcceptOfferCommandHandler_Handle_OfferAlreadyResolved(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	d := newDelivery(t, kernel.NewUUID(), delivery.PaymentCashP2P)
	courier := newCourier(t, d.Pickup())
	o := newOffer(t, d, courier.ID(), startedAt)
	require.True(t, o.Withdraw(startedAt))

	f.expectRolledBack(ctx)
	f.offers.On("Get", ctx, o.ID()).Return(o, nil).Once()
	f.deliveries.On("GetForUpdate", ctx, d.ID()).Return(d, nil).Once()
	f.offers.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once()

	err := commands.NewAcceptOfferCommandHandler(f.factory, f.runtime()).Handle(ctx, acceptCommand(t, o, courier.ID()))

	require.ErrorIs(t, err, offer.ErrAlreadyAssigned)
	f.uow.AssertNotCalled(t, "Commit", ctx)
	f.scheduler.AssertNotCalled(t, "Cancel", mock.Anything)
}

func TestAcceptOfferCommandHandler_Handle_WrongCourier(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	d := newDelivery(t, kernel.NewUUID(), delivery.PaymentCashP2P)
	o := newOffer(t, d, kernel.NewUUID(), startedAt)

	f.expectRolledBack(ctx)
	f.offers.On("Get", ctx, o.ID()).Return(o, nil).Once()
	f.deliveries.On("GetForUpdate", ctx, d.ID()).Return(d, nil).Once()
	f.offers.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once()

	err := commands.NewAcceptOfferCommandHandler(f.factory, f.runtime()).Handle(ctx, acceptCommand(t, o, kernel.NewUUID()))

	require.ErrorIs(t, err, offer.ErrNotOfferee)
	assert.True(t, o.IsPending())
}

func TestAcceptOfferCommandHandler_Handle_CourierAlreadyBusy(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	courier := newCourier(t, location(t, 3.8480, 11.5021))
	_ = assignedDelivery(t, courier, delivery.PaymentCashP2P)
	d := newDelivery(t, kernel.NewUUID(), delivery.PaymentCashP2P)
	o := newOffer(t, d, courier.ID(), startedAt)

	f.expectRolledBack(ctx)
	f.offers.On("Get", ctx, o.ID()).Return(o, nil).Once()
	f.deliveries.On("GetForUpdate", ctx, d.ID()).Return(d, nil).Once()
	f.offers.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once()
	f.accounts.On("GetForUpdate", ctx, courier.ID()).Return(courier, nil).Once()

	err := commands.NewAcceptOfferCommandHandler(f.factory, f.runtime()).Handle(ctx, acceptCommand(t, o, courier.ID()))

	require.ErrorIs(t, err, offer.ErrAlreadyAssigned)
	assert.Equal(t, delivery.Pending, d.Status())
	f.offers.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestRejectOfferCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	d := newDelivery(t, kernel.NewUUID(), delivery.PaymentCashP2P)
	courier := newCourier(t, d.Pickup())
	o := newOffer(t, d, courier.ID(), startedAt)
	f.clock.Advance(5 * time.Second)

	f.expectTx(ctx)
	mock.InOrder(
		f.offers.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		f.deliveries.On("GetForUpdate", ctx, d.ID()).Return(d, nil).Once(),
		f.offers.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once(),
		f.offers.On("Update", ctx, o).Return(nil).Once(),
		f.accounts.On("GetForUpdate", ctx, courier.ID()).Return(courier, nil).Once(),
		f.accounts.On("Update", ctx, courier).Return(nil).Once(),
	)
	f.scheduler.On("Cancel", o.ID()).Once()
	f.trigger.On("Enqueue", d.ID()).Return(true).Once()

	cmd, err := commands.NewRejectOfferCommand(o.ID(), courier.ID())
	require.NoError(t, err)

	err = commands.NewRejectOfferCommandHandler(f.factory, f.runtime()).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, offer.OutcomeRejected, o.Outcome())
	assert.Equal(t, 1, courier.OffersReceived())
	assert.Equal(t, 0, courier.OffersAccepted())
	f.metrics.AssertCalled(t, "OfferResolved", "Rejected")
	f.assertExpectations(t)
}

func TestRejectOfferCommandHandler_Handle_AlreadyAccepted(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	d := newDelivery(t, kernel.NewUUID(), delivery.PaymentCashP2P)
	courierID := kernel.NewUUID()
	o := newOffer(t, d, courierID, startedAt)
	require.NoError(t, o.Accept(courierID, startedAt))

	f.expectRolledBack(ctx)
	f.offers.On("Get", ctx, o.ID()).Return(o, nil).Once()
	f.deliveries.On("GetForUpdate", ctx, d.ID()).Return(d, nil).Once()
	f.offers.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once()

	cmd, err := commands.NewRejectOfferCommand(o.ID(), courierID)
	require.NoError(t, err)

	err = commands.NewRejectOfferCommandHandler(f.factory, f.runtime()).Handle(ctx, cmd)

	require.ErrorIs(t, err, offer.ErrAlreadyAssigned)
	f.trigger.AssertNotCalled(t, "Enqueue", mock.Anything)
}
