package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/clock"
	"dispatch/internal/pkg/retry"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var startedAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type MockAccountRepository struct{ mock.Mock }

func (m *MockAccountRepository) Add(ctx context.Context, a *account.Account) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAccountRepository) Update(ctx context.Context, a *account.Account) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAccountRepository) Get(ctx context.Context, id kernel.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) FindDispatchable(
	ctx context.Context,
	center kernel.Location,
	radiusKm float64,
) ([]*account.Account, error) {
	args := m.Called(ctx, center, radiusKm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

type MockDeliveryRepository struct{ mock.Mock }

func (m *MockDeliveryRepository) Add(ctx context.Context, d *delivery.Delivery) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDeliveryRepository) Update(ctx context.Context, d *delivery.Delivery) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) FindAwaitingDispatch(
	ctx context.Context,
	createdBefore time.Time,
	limit int,
) ([]kernel.UUID, error) {
	args := m.Called(ctx, createdBefore, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

type MockOfferRepository struct{ mock.Mock }

func (m *MockOfferRepository) Add(ctx context.Context, o *offer.Offer) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOfferRepository) Update(ctx context.Context, o *offer.Offer) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOfferRepository) Get(ctx context.Context, id kernel.UUID) (*offer.Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*offer.Offer), args.Error(1)
}

func (m *MockOfferRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*offer.Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*offer.Offer), args.Error(1)
}

func (m *MockOfferRepository) GetPendingByDelivery(ctx context.Context, deliveryID kernel.UUID) (*offer.Offer, error) {
	args := m.Called(ctx, deliveryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*offer.Offer), args.Error(1)
}

func (m *MockOfferRepository) FindPendingByCourier(ctx context.Context, courierID kernel.UUID, now time.Time) ([]*offer.Offer, error) {
	args := m.Called(ctx, courierID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*offer.Offer), args.Error(1)
}

func (m *MockOfferRepository) FindCouriersWithPendingOffers(ctx context.Context, courierIDs []kernel.UUID) ([]kernel.UUID, error) {
	args := m.Called(ctx, courierIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

func (m *MockOfferRepository) FindCouriersOfferedInRound(ctx context.Context, deliveryID kernel.UUID, round int) ([]kernel.UUID, error) {
	args := m.Called(ctx, deliveryID, round)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

func (m *MockOfferRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]kernel.UUID, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

type MockLedgerRepository struct{ mock.Mock }

func (m *MockLedgerRepository) Append(ctx context.Context, e *account.LedgerEntry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockLedgerRepository) ListByAccount(ctx context.Context, id kernel.UUID, limit int) ([]*account.LedgerEntry, error) {
	args := m.Called(ctx, id, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) SumByAccount(ctx context.Context, id kernel.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *MockUoW) Commit(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *MockUoW) Rollback(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockUoW) AccountRepository() ports.AccountRepository {
	return m.Called().Get(0).(ports.AccountRepository)
}

func (m *MockUoW) DeliveryRepository() ports.DeliveryRepository {
	return m.Called().Get(0).(ports.DeliveryRepository)
}

func (m *MockUoW) OfferRepository() ports.OfferRepository {
	return m.Called().Get(0).(ports.OfferRepository)
}

func (m *MockUoW) LedgerRepository() ports.LedgerRepository {
	return m.Called().Get(0).(ports.LedgerRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	return m.Called().Get(0).(commands.UoW)
}

type MockAccountUoWFactory struct{ mock.Mock }

func (m *MockAccountUoWFactory) Create() commands.AccountUoW {
	return m.Called().Get(0).(commands.AccountUoW)
}

type MockMetrics struct{ mock.Mock }

func (m *MockMetrics) OfferCreated(tier int) { m.Called(tier) }
func (m *MockMetrics) OfferResolved(outcome string) { m.Called(outcome) }
func (m *MockMetrics) NoCourierAvailable() { m.Called() }
func (m *MockMetrics) DeliveryTransition(status string) { m.Called(status) }
func (m *MockMetrics) LedgerPosted(r account.Reason, a decimal.Decimal) { m.Called(r, a) }

type MockPush struct{ mock.Mock }

func (m *MockPush) Send(ctx context.Context, courierID kernel.UUID, eventType string, payload any) error {
	return m.Called(ctx, courierID, eventType, payload).Error(0)
}

type MockTrigger struct{ mock.Mock }

func (m *MockTrigger) Enqueue(id kernel.UUID) bool { return m.Called(id).Bool(0) }

type MockScheduler struct{ mock.Mock }

func (m *MockScheduler) Schedule(id kernel.UUID, at time.Time) { m.Called(id, at) }
func (m *MockScheduler) Cancel(id kernel.UUID) { m.Called(id) }

type MockLocker struct{ mock.Mock }

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(func(context.Context) error), args.Bool(1), args.Error(2)
}

type MockFleetOps struct{ mock.Mock }

func (m *MockFleetOps) NoCourierAvailable(ctx context.Context, event ports.NoCourierAvailableEvent) error {
	return m.Called(ctx, event).Error(0)
}

type MockRouteDistance struct{ mock.Mock }

func (m *MockRouteDistance) DistanceKm(ctx context.Context, pickup, dropoff kernel.Location) (float64, error) {
	args := m.Called(ctx, pickup, dropoff)
	return args.Get(0).(float64), args.Error(1)
}

type MockWalletLedger struct{ mock.Mock }

func (m *MockWalletLedger) Credit(
	ctx context.Context,
	accountID kernel.UUID,
	amount decimal.Decimal,
	reason account.Reason,
	deliveryID *kernel.UUID,
) (*account.LedgerEntry, error) {
	args := m.Called(ctx, accountID, amount, reason, deliveryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.LedgerEntry), args.Error(1)
}

func (m *MockWalletLedger) Debit(
	ctx context.Context,
	accountID kernel.UUID,
	amount decimal.Decimal,
	reason account.Reason,
	deliveryID *kernel.UUID,
) (*account.LedgerEntry, error) {
	args := m.Called(ctx, accountID, amount, reason, deliveryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.LedgerEntry), args.Error(1)
}

// fixture wires a unit of work whose repository getters can be called any
// number of times, plus the post-commit collaborators.
type fixture struct {
	accounts   *MockAccountRepository
	deliveries *MockDeliveryRepository
	offers     *MockOfferRepository
	entries    *MockLedgerRepository
	uow        *MockUoW
	factory    *MockUoWFactory
	metrics    *MockMetrics
	push       *MockPush
	trigger    *MockTrigger
	scheduler  *MockScheduler
	clock      *clock.Manual
}

func newFixture() *fixture {
	f := &fixture{
		accounts:   new(MockAccountRepository),
		deliveries: new(MockDeliveryRepository),
		offers:     new(MockOfferRepository),
		entries:    new(MockLedgerRepository),
		uow:        new(MockUoW),
		factory:    new(MockUoWFactory),
		metrics:    new(MockMetrics),
		push:       new(MockPush),
		trigger:    new(MockTrigger),
		scheduler:  new(MockScheduler),
		clock:      clock.NewManual(startedAt),
	}

	f.factory.On("Create").Return(f.uow).Maybe()
	f.uow.On("AccountRepository").Return(f.accounts).Maybe()
	f.uow.On("DeliveryRepository").Return(f.deliveries).Maybe()
	f.uow.On("OfferRepository").Return(f.offers).Maybe()
	f.uow.On("LedgerRepository").Return(f.entries).Maybe()

	f.metrics.On("OfferCreated", mock.Anything).Maybe()
	f.metrics.On("OfferResolved", mock.Anything).Maybe()
	f.metrics.On("NoCourierAvailable").Maybe()
	f.metrics.On("DeliveryTransition", mock.Anything).Maybe()
	f.metrics.On("LedgerPosted", mock.Anything, mock.Anything).Maybe()
	return f
}

func (f *fixture) runtime() commands.Runtime {
	return commands.Runtime{
		Clock:     f.clock,
		Trigger:   f.trigger,
		Scheduler: f.scheduler,
		Push:      f.push,
		Metrics:   f.metrics,
		Retry:     retry.Policy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// expectTx expects one committed transaction.
func (f *fixture) expectTx(ctx context.Context) {
	mock.InOrder(
		f.uow.On("Begin", ctx).Return(nil).Once(),
		f.uow.On("Commit", ctx).Return(nil).Once(),
	)
	f.uow.On("Rollback", ctx).Return(nil).Once()
}

// expectRolledBack expects one transaction that never commits.
func (f *fixture) expectRolledBack(ctx context.Context) {
	f.uow.On("Begin", ctx).Return(nil).Once()
	f.uow.On("Rollback", ctx).Return(nil).Once()
}

func (f *fixture) assertExpectations(t *testing.T) {
	t.Helper()
	f.accounts.AssertExpectations(t)
	f.deliveries.AssertExpectations(t)
	f.offers.AssertExpectations(t)
	f.entries.AssertExpectations(t)
	f.uow.AssertExpectations(t)
	f.push.AssertExpectations(t)
	f.trigger.AssertExpectations(t)
	f.scheduler.AssertExpectations(t)
}

func location(t *testing.T, lat, lon float64) kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation(lat, lon)
	require.NoError(t, err)
	return loc
}

func newCourier(t *testing.T, at kernel.Location) *account.Account {
	t.Helper()
	c, err := account.NewAccount(kernel.NewUUID(), account.RoleCourier, decimal.NewFromInt(5000))
	require.NoError(t, err)
	c.Verify()
	require.NoError(t, c.GoOnline(at))
	return c
}

func newBusiness(t *testing.T, balance int64) *account.Account {
	t.Helper()
	b, err := account.RestoreAccount(account.Snapshot{
		ID:          kernel.NewUUID(),
		Role:        account.RoleBusiness,
		Balance:     decimal.NewFromInt(balance),
		DebtCeiling: decimal.Zero,
		IsVerified:  true,
		Rating:      account.RatingMax,
	})
	require.NoError(t, err)
	return b
}

// newDelivery prices a 5 km trip at 1400 XAF: fee 280, earning 1120.
func newDelivery(t *testing.T, senderID kernel.UUID, method delivery.PaymentMethod) *delivery.Delivery {
	t.Helper()
	pricing, err := delivery.NewPricing(5, decimal.NewFromInt(1400), decimal.NewFromInt(280), decimal.NewFromInt(1120))
	require.NoError(t, err)
	d, err := delivery.NewDelivery(
		kernel.NewUUID(),
		senderID,
		location(t, 3.8480, 11.5021),
		location(t, 3.8667, 11.5167),
		method,
		pricing,
		startedAt,
	)
	require.NoError(t, err)
	return d
}

// assignedDelivery returns a delivery held by courier.
func assignedDelivery(t *testing.T, courier *account.Account, method delivery.PaymentMethod) *delivery.Delivery {
	t.Helper()
	d := newDelivery(t, kernel.NewUUID(), method)
	require.NoError(t, d.Assign(courier.ID(), startedAt))
	require.NoError(t, courier.AssignDelivery(d.ID()))
	return d
}

func newOffer(t *testing.T, d *delivery.Delivery, courierID kernel.UUID, createdAt time.Time) *offer.Offer {
	t.Helper()
	o, err := offer.NewOffer(kernel.NewUUID(), d.ID(), courierID, 0, 2, d.DispatchRound(), createdAt, offer.DefaultTimeout)
	require.NoError(t, err)
	return o
}
