package http_test

import (
	"context"

	"dispatch/internal/core/application/ledger"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/mock"
)

type MockCreateDeliveryHandler struct{ mock.Mock }

func (m *MockCreateDeliveryHandler) Handle(ctx context.Context, command commands.CreateDeliveryCommand) (kernel.UUID, error) {
	args := m.Called(ctx, command)
	return args.Get(0).(kernel.UUID), args.Error(1)
}

type MockConfirmPickupHandler struct{ mock.Mock }

func (m *MockConfirmPickupHandler) Handle(ctx context.Context, command commands.ConfirmPickupCommand) error {
	return m.Called(ctx, command).Error(0)
}

type MockAcceptOfferHandler struct{ mock.Mock }

func (m *MockAcceptOfferHandler) Handle(ctx context.Context, command commands.AcceptOfferCommand) error {
	return m.Called(ctx, command).Error(0)
}

type MockUpdateCourierPresenceHandler struct{ mock.Mock }

func (m *MockUpdateCourierPresenceHandler) Handle(ctx context.Context, command commands.UpdateCourierPresenceCommand) error {
	return m.Called(ctx, command).Error(0)
}

type MockAdjustBalanceHandler struct{ mock.Mock }

func (m *MockAdjustBalanceHandler) Handle(ctx context.Context, command commands.AdjustBalanceCommand) (*account.LedgerEntry, error) {
	args := m.Called(ctx, command)
	if entry := args.Get(0); entry != nil {
		return entry.(*account.LedgerEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockGetDeliveryHandler struct{ mock.Mock }

func (m *MockGetDeliveryHandler) Handle(ctx context.Context, query queries.GetDeliveryQuery) (queries.GetDeliveryQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.GetDeliveryQueryResponse), args.Error(1)
}

type MockGetPendingOffersHandler struct{ mock.Mock }

func (m *MockGetPendingOffersHandler) Handle(
	ctx context.Context,
	query queries.GetPendingOffersQuery,
) ([]queries.GetPendingOffersQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]queries.GetPendingOffersQueryResponse), args.Error(1)
}

type MockStatementReader struct{ mock.Mock }

func (m *MockStatementReader) Statement(ctx context.Context, accountID kernel.UUID, limit int) (ledger.Statement, error) {
	args := m.Called(ctx, accountID, limit)
	return args.Get(0).(ledger.Statement), args.Error(1)
}
