package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// RedispatchPendingCommandHandler feeds stalled deliveries back to the
// dispatch worker: those whose enqueue was dropped on a full queue, and those
// that exhausted every ring in an earlier round.
type RedispatchPendingCommandHandler struct {
	uowFactory UoWFactory
	trigger    ports.DispatchTrigger
	clock      ports.Clock
}

func NewRedispatchPendingCommandHandler(
	uowFactory UoWFactory,
	trigger ports.DispatchTrigger,
	clock ports.Clock,
) RedispatchPendingCommandHandler {
	return RedispatchPendingCommandHandler{uowFactory: uowFactory, trigger: trigger, clock: clock}
}

// Handle returns how many deliveries were accepted by the trigger.
func (h RedispatchPendingCommandHandler) Handle(ctx context.Context, command RedispatchPendingCommand) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	createdBefore := h.clock.Now().Add(-command.MinAge())
	ids, err := h.uowFactory.Create().DeliveryRepository().FindAwaitingDispatch(ctx, createdBefore, command.Limit())
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, id := range ids {
		if !h.trigger.Enqueue(id) {
			break
		}
		queued++
	}
	return queued, nil
}
