package commands_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCreateDeliveryHandler(t *testing.T, f *fixture, route ports.RouteDistance) commands.CreateDeliveryCommandHandler {
	t.Helper()
	calc, err := services.NewPricingCalculator(services.DefaultPricingConfig())
	require.NoError(t, err)
	return commands.NewCreateDeliveryCommandHandler(f.factory, route, calc, f.runtime())
}

func newCreateDeliveryCommand(t *testing.T, senderID kernel.UUID, method delivery.PaymentMethod) commands.CreateDeliveryCommand {
	t.Helper()
	cmd, err := commands.NewCreateDeliveryCommand(
		senderID,
		location(t, 3.8480, 11.5021),
		location(t, 3.8667, 11.5167),
		method,
	)
	require.NoError(t, err)
	return cmd
}

func TestCreateDeliveryCommandHandler_Handle_CashUsesRouteDistance(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	sender := newBusiness(t, 0)
	cmd := newCreateDeliveryCommand(t, sender.ID(), delivery.PaymentCashP2P)

	route := new(MockRouteDistance)
	route.On("DistanceKm", ctx, cmd.Pickup(), cmd.Dropoff()).Return(5.47, nil).Once()

	var stored *delivery.Delivery
	f.expectTx(ctx)
	mock.InOrder(
		f.accounts.On("GetForUpdate", ctx, sender.ID()).Return(sender, nil).Once(),
		f.deliveries.On("Add", ctx, mock.AnythingOfType("*delivery.Delivery")).
			Run(func(args mock.Arguments) { stored = args.Get(1).(*delivery.Delivery) }).
			Return(nil).Once(),
	)
	f.trigger.On("Enqueue", mock.AnythingOfType("kernel.UUID")).Return(true).Once()

	id, err := newCreateDeliveryHandler(t, f, route).Handle(ctx, cmd)

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, id, stored.ID())
	assert.Equal(t, delivery.Pending, stored.Status())
	assert.Equal(t, startedAt, stored.CreatedAt())
	assert.Equal(t, "1400", stored.Pricing().TotalPrice().String())
	assert.Equal(t, "280", stored.Pricing().PlatformFee().String())
	assert.Equal(t, "1120", stored.Pricing().CourierEarning().String())
	assert.True(t, sender.Balance().IsZero())
	f.trigger.AssertCalled(t, "Enqueue", id)
	f.entries.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	f.accounts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.assertExpectations(t)
	route.AssertExpectations(t)
}

func TestCreateDeliveryCommandHandler_Handle_FallsBackToStraightLine(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	sender := newBusiness(t, 0)
	cmd := newCreateDeliveryCommand(t, sender.ID(), delivery.PaymentCashP2P)

	route := new(MockRouteDistance)
	route.On("DistanceKm", ctx, mock.Anything, mock.Anything).Return(0.0, ports.ErrRouteUnavailable).Once()

	var stored *delivery.Delivery
	f.expectTx(ctx)
	f.accounts.On("GetForUpdate", ctx, sender.ID()).Return(sender, nil).Once()
	f.deliveries.On("Add", ctx, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*delivery.Delivery) }).
		Return(nil).Once()
	f.trigger.On("Enqueue", mock.Anything).Return(true).Once()

	_, err := newCreateDeliveryHandler(t, f, route).Handle(ctx, cmd)

	require.NoError(t, err)
	straight, err := cmd.Pickup().DistanceKm(cmd.Dropoff())
	require.NoError(t, err)
	assert.InDelta(t, straight, stored.Pricing().DistanceKm(), 1e-9)
	assert.Equal(t, "1000", stored.Pricing().TotalPrice().String(), "short trips pay the minimum fare")
}

func TestCreateDeliveryCommandHandler_Handle_PrepaidEscrowsTotal(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	sender := newBusiness(t, 10000)
	cmd := newCreateDeliveryCommand(t, sender.ID(), delivery.PaymentPrepaidWallet)

	route := new(MockRouteDistance)
	route.On("DistanceKm", ctx, mock.Anything, mock.Anything).Return(5.47, nil).Once()

	f.expectTx(ctx)
	mock.InOrder(
		f.accounts.On("GetForUpdate", ctx, sender.ID()).Return(sender, nil).Once(),
		f.entries.On("Append", ctx, mock.MatchedBy(func(e *account.LedgerEntry) bool {
			return e.AccountID().IsEqual(sender.ID()) &&
				e.Reason() == account.ReasonPrepayEscrow &&
				e.Amount().String() == "-1400" &&
				e.ResultingBalance().String() == "8600"
		})).Return(nil).Once(),
		f.accounts.On("Update", ctx, sender).Return(nil).Once(),
		f.deliveries.On("Add", ctx, mock.Anything).Return(nil).Once(),
	)
	f.trigger.On("Enqueue", mock.Anything).Return(true).Once()

	_, err := newCreateDeliveryHandler(t, f, route).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, "8600", sender.Balance().String())
	f.metrics.AssertCalled(t, "LedgerPosted", account.ReasonPrepayEscrow, mock.Anything)
	f.assertExpectations(t)
}

func TestCreateDeliveryCommandHandler_Handle_PrepaidEscrowMayPassDebtCeiling(t *testing.T) {
	// Given a business with no funds and no debt allowance
	ctx := t.Context()
	f := newFixture()
	sender := newBusiness(t, 0)
	cmd := newCreateDeliveryCommand(t, sender.ID(), delivery.PaymentPrepaidWallet)

	route := new(MockRouteDistance)
	route.On("DistanceKm", ctx, mock.Anything, mock.Anything).Return(0.1, nil).Once()

	var stored *delivery.Delivery
	f.expectTx(ctx)
	mock.InOrder(
		f.accounts.On("GetForUpdate", ctx, sender.ID()).Return(sender, nil).Once(),
		f.entries.On("Append", ctx, mock.MatchedBy(func(e *account.LedgerEntry) bool {
			return e.Reason() == account.ReasonPrepayEscrow &&
				e.Amount().String() == "-1000" &&
				e.ResultingBalance().String() == "-1000"
		})).Return(nil).Once(),
		f.accounts.On("Update", ctx, sender).Return(nil).Once(),
		f.deliveries.On("Add", ctx, mock.AnythingOfType("*delivery.Delivery")).
			Run(func(args mock.Arguments) { stored = args.Get(1).(*delivery.Delivery) }).
			Return(nil).Once(),
	)
	f.trigger.On("Enqueue", mock.AnythingOfType("kernel.UUID")).Return(true).Once()

	// When
	id, err := newCreateDeliveryHandler(t, f, route).Handle(ctx, cmd)

	// Then the escrow commits and only future eligibility is affected
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, id, stored.ID())
	assert.Equal(t, "1000", stored.Pricing().TotalPrice().String())
	assert.Equal(t, "-1000", sender.Balance().String())
	assert.False(t, sender.IsEligibleForAssignment())
	f.assertExpectations(t)
}

func TestNewCreateDeliveryCommand_RejectsUnknownPaymentMethod(t *testing.T) {
	_, err := commands.NewCreateDeliveryCommand(
		kernel.NewUUID(),
		location(t, 3.8480, 11.5021),
		location(t, 3.8667, 11.5167),
		delivery.PaymentUnknown,
	)

	require.Error(t, err)
}
