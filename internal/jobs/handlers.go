package jobs

import (
	"context"

	"dispatch/internal/core/application/usecases/commands"
)

type DispatchHandler interface {
	Handle(ctx context.Context, command commands.DispatchDeliveryCommand) error
}

type ExpireOfferHandler interface {
	Handle(ctx context.Context, command commands.ExpireOfferCommand) (bool, error)
}

type ExpireDueOffersHandler interface {
	Handle(ctx context.Context, command commands.ExpireDueOffersCommand) (int, error)
}

type RedispatchPendingHandler interface {
	Handle(ctx context.Context, command commands.RedispatchPendingCommand) (int, error)
}
