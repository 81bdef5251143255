package ledger_test

import (
	"context"

	"dispatch/internal/core/application/ledger"
	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

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

func (m *MockUoW) LedgerRepository() ports.LedgerRepository {
	return m.Called().Get(0).(ports.LedgerRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() ledger.UoW {
	return m.Called().Get(0).(ledger.UoW)
}

type MockMetrics struct{ mock.Mock }

func (m *MockMetrics) OfferCreated(tier int) { m.Called(tier) }
func (m *MockMetrics) OfferResolved(outcome string) { m.Called(outcome) }
func (m *MockMetrics) NoCourierAvailable() { m.Called() }
func (m *MockMetrics) DeliveryTransition(status string) { m.Called(status) }
func (m *MockMetrics) LedgerPosted(r account.Reason, a decimal.Decimal) { m.Called(r, a) }
