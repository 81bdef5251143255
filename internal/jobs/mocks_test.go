package jobs

import (
	"context"
	"io"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/stretchr/testify/mock"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type MockDispatchHandler struct{ mock.Mock }

func (m *MockDispatchHandler) Handle(ctx context.Context, command commands.DispatchDeliveryCommand) error {
	return m.Called(ctx, command).Error(0)
}

type MockExpireOfferHandler struct{ mock.Mock }

func (m *MockExpireOfferHandler) Handle(ctx context.Context, command commands.ExpireOfferCommand) (bool, error) {
	args := m.Called(ctx, command)
	return args.Bool(0), args.Error(1)
}

type MockExpireDueOffersHandler struct{ mock.Mock }

func (m *MockExpireDueOffersHandler) Handle(ctx context.Context, command commands.ExpireDueOffersCommand) (int, error) {
	args := m.Called(ctx, command)
	return args.Int(0), args.Error(1)
}

type MockRedispatchPendingHandler struct{ mock.Mock }

func (m *MockRedispatchPendingHandler) Handle(ctx context.Context, command commands.RedispatchPendingCommand) (int, error) {
	args := m.Called(ctx, command)
	return args.Int(0), args.Error(1)
}
