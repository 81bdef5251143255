package commands

import (
	"context"

	"dispatch/internal/core/application/ledger"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// CreateDeliveryCommandHandler prices and stores a new delivery.
//
// The delivery row and, for prepaid deliveries, the sender's escrow debit are
// committed together. Matching is never run inline: the delivery is handed to
// the dispatch trigger after commit.
//
// Example:
//
//	cmd, _ := NewCreateDeliveryCommand(senderID, pickup, dropoff, delivery.PaymentCashP2P)
//	id, err := handler.Handle(ctx, cmd)
type CreateDeliveryCommandHandler struct {
	uowFactory UoWFactory
	route      ports.RouteDistance
	pricing    *services.PricingCalculator
	settlement services.SettlementEngine
	rt         Runtime
}

func NewCreateDeliveryCommandHandler(
	uowFactory UoWFactory,
	route ports.RouteDistance,
	pricing *services.PricingCalculator,
	rt Runtime,
) CreateDeliveryCommandHandler {
	return CreateDeliveryCommandHandler{
		uowFactory: uowFactory,
		route:      route,
		pricing:    pricing,
		settlement: services.NewSettlementEngine(),
		rt:         rt,
	}
}

// Handle returns the id of the new Pending delivery. The prepaid escrow debit
// always commits; the debt ceiling only gates courier assignment.
func (h CreateDeliveryCommandHandler) Handle(ctx context.Context, command CreateDeliveryCommand) (kernel.UUID, error) {
	if err := command.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	distanceKm, err := h.distanceKm(ctx, command.Pickup(), command.Dropoff())
	if err != nil {
		return kernel.UUID{}, err
	}

	pricing, err := h.pricing.Quote(distanceKm)
	if err != nil {
		return kernel.UUID{}, err
	}

	d, err := delivery.NewDelivery(
		kernel.NewUUID(),
		command.SenderID(),
		command.Pickup(),
		command.Dropoff(),
		command.PaymentMethod(),
		pricing,
		h.rt.Clock.Now(),
	)
	if err != nil {
		return kernel.UUID{}, err
	}

	postings, err := h.settlement.OnCreated(d)
	if err != nil {
		return kernel.UUID{}, err
	}

	if err = h.rt.Retry.OnConflict(ctx, func() error {
		return h.persist(ctx, d, postings)
	}); err != nil {
		return kernel.UUID{}, err
	}

	h.rt.Metrics.DeliveryTransition(d.Status().String())
	for _, p := range postings {
		h.rt.Metrics.LedgerPosted(p.Reason, p.Amount)
	}
	h.rt.Trigger.Enqueue(d.ID())

	return d.ID(), nil
}

func (h CreateDeliveryCommandHandler) persist(ctx context.Context, d *delivery.Delivery, postings []services.Posting) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	accounts, err := ledger.Lock(ctx, uow.AccountRepository(), d.SenderID())
	if err != nil {
		return err
	}

	if len(postings) > 0 {
		if _, err = ledger.Post(ctx, uow.LedgerRepository(), accounts, d.CreatedAt(), postings...); err != nil {
			return err
		}

		if err = ledger.SaveAll(ctx, uow.AccountRepository(), accounts); err != nil {
			return err
		}
	}

	if err = uow.DeliveryRepository().Add(ctx, d); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// distanceKm asks the routing service and falls back to the straight line.
func (h CreateDeliveryCommandHandler) distanceKm(ctx context.Context, pickup, dropoff kernel.Location) (float64, error) {
	if h.route != nil {
		km, err := h.route.DistanceKm(ctx, pickup, dropoff)
		if err == nil {
			return km, nil
		}
		h.rt.Logger.WarnContext(ctx, "Route distance unavailable, using straight line",
			"pickup", pickup.String(),
			"dropoff", dropoff.String(),
			"error", err,
		)
	}
	return pickup.DistanceKm(dropoff)
}
