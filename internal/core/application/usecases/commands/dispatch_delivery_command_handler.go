package commands

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// dispatchLockTTL bounds how long one instance may hold a delivery's ring search.
const dispatchLockTTL = 10 * time.Second

// DispatchLockKey is the locker key guarding the ring search of a delivery.
func DispatchLockKey(deliveryID kernel.UUID) string {
	return "dispatch:" + deliveryID.String()
}

type dispatchResult struct {
	delivery       *delivery.Delivery
	created        *offer.Offer
	expired        *offer.Offer
	exhaustedRound int
	exhausted      bool
}

// DispatchDeliveryCommandHandler offers a Pending delivery to the best
// available courier.
//
// One pass:
//  1. takes the per-delivery dispatch lock
//  2. locks the delivery and returns quietly if it no longer awaits a courier
//  3. leaves a live pending offer alone, or expires it when its deadline passed
//  4. loads couriers within the widest ring and lets the matcher walk the rings
//  5. persists one pending offer, or starts the next dispatch round when every
//     ring was empty and returns ErrNoCourierAvailable
//
// The expiry timer, push notification and fleet escalation run after commit.
type DispatchDeliveryCommandHandler struct {
	uowFactory UoWFactory
	matcher    *services.CourierMatcher
	locker     ports.Locker
	fleet      ports.FleetOps
	rt         Runtime
}

func NewDispatchDeliveryCommandHandler(
	uowFactory UoWFactory,
	matcher *services.CourierMatcher,
	locker ports.Locker,
	fleet ports.FleetOps,
	rt Runtime,
) DispatchDeliveryCommandHandler {
	return DispatchDeliveryCommandHandler{
		uowFactory: uowFactory,
		matcher:    matcher,
		locker:     locker,
		fleet:      fleet,
		rt:         rt,
	}
}

func (h DispatchDeliveryCommandHandler) Handle(ctx context.Context, command DispatchDeliveryCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	key := DispatchLockKey(command.DeliveryID())
	release, ok, err := h.locker.TryLock(ctx, key, dispatchLockTTL)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDispatchInProgress
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			h.rt.Logger.WarnContext(ctx, "Dispatch lock release failed", "key", key, "error", err)
		}
	}()

	var result dispatchResult
	if err = h.rt.Retry.OnConflict(ctx, func() error {
		var err error
		result, err = h.dispatch(ctx, command.DeliveryID())
		return err
	}); err != nil {
		return err
	}

	h.afterCommit(ctx, result)

	if result.exhausted {
		return ErrNoCourierAvailable
	}
	return nil
}

func (h DispatchDeliveryCommandHandler) dispatch(ctx context.Context, deliveryID kernel.UUID) (dispatchResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return dispatchResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	d, err := uow.DeliveryRepository().GetForUpdate(ctx, deliveryID)
	if err != nil {
		return dispatchResult{}, err
	}
	if !d.IsAwaitingCourier() {
		return dispatchResult{}, nil
	}

	result := dispatchResult{delivery: d}
	now := h.rt.Clock.Now()
	offers := uow.OfferRepository()

	pending, err := offers.GetPendingByDelivery(ctx, deliveryID)
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
	case err != nil:
		return dispatchResult{}, err
	default:
		locked, err := offers.GetForUpdate(ctx, pending.ID())
		if err != nil {
			return dispatchResult{}, err
		}
		if !locked.ExpireIfDue(now) {
			return dispatchResult{}, nil
		}
		if err = persistMissedOffer(ctx, uow, locked); err != nil {
			return dispatchResult{}, err
		}
		result.expired = locked
	}

	couriers, err := uow.AccountRepository().FindDispatchable(ctx, d.Pickup(), h.matcher.MaxRadiusKm())
	if err != nil {
		return dispatchResult{}, err
	}

	excluded, err := h.excluded(ctx, offers, d, couriers)
	if err != nil {
		return dispatchResult{}, err
	}

	match, err := h.matcher.Select(d.Pickup(), couriers, excluded)
	if errors.Is(err, services.ErrCourierNotFound) {
		result.exhaustedRound = d.DispatchRound()
		result.exhausted = true
		if err = d.StartNextDispatchRound(); err != nil {
			return dispatchResult{}, err
		}
		if err = uow.DeliveryRepository().Update(ctx, d); err != nil {
			return dispatchResult{}, err
		}
		if err = uow.Commit(ctx); err != nil {
			return dispatchResult{}, err
		}
		return result, nil
	}
	if err != nil {
		return dispatchResult{}, err
	}

	o, err := offer.NewOffer(
		kernel.NewUUID(),
		d.ID(),
		match.Candidate.Courier.ID(),
		match.RadiusTier,
		match.RadiusKm,
		d.DispatchRound(),
		now,
		h.matcher.Config().OfferTimeout,
	)
	if err != nil {
		return dispatchResult{}, err
	}

	if err = offers.Add(ctx, o); err != nil {
		return dispatchResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return dispatchResult{}, err
	}

	result.created = o
	return result, nil
}

// excluded collects couriers that hold a pending offer elsewhere or were
// already offered this delivery in its current round.
func (h DispatchDeliveryCommandHandler) excluded(
	ctx context.Context,
	offers ports.OfferRepository,
	d *delivery.Delivery,
	couriers []*account.Account,
) (map[kernel.UUID]struct{}, error) {
	ids := make([]kernel.UUID, 0, len(couriers))
	for _, c := range couriers {
		ids = append(ids, c.ID())
	}

	busy, err := offers.FindCouriersWithPendingOffers(ctx, ids)
	if err != nil {
		return nil, err
	}
	offered, err := offers.FindCouriersOfferedInRound(ctx, d.ID(), d.DispatchRound())
	if err != nil {
		return nil, err
	}

	excluded := make(map[kernel.UUID]struct{}, len(busy)+len(offered))
	for _, id := range append(busy, offered...) {
		excluded[id] = struct{}{}
	}
	return excluded, nil
}

func (h DispatchDeliveryCommandHandler) afterCommit(ctx context.Context, r dispatchResult) {
	n := h.rt.notifier()

	if r.expired != nil {
		h.rt.Scheduler.Cancel(r.expired.ID())
		h.rt.Metrics.OfferResolved(r.expired.Outcome().String())
		n.send(ctx, r.expired.CourierID(), ports.EventOfferExpired, newOfferClosedPayload(r.expired))
	}

	if r.created != nil {
		h.rt.Scheduler.Schedule(r.created.ID(), r.created.ExpiresAt())
		h.rt.Metrics.OfferCreated(r.created.RadiusTier())
		n.send(ctx, r.created.CourierID(), ports.EventOfferCreated, newOfferCreatedPayload(r.created, r.delivery))
	}

	if r.exhausted {
		h.rt.Metrics.NoCourierAvailable()
		event := ports.NoCourierAvailableEvent{
			DeliveryID:    r.delivery.ID(),
			Pickup:        r.delivery.Pickup(),
			MaxRadiusKm:   h.matcher.MaxRadiusKm(),
			DispatchRound: r.exhaustedRound,
			OccurredAt:    h.rt.Clock.Now(),
		}
		if err := h.fleet.NoCourierAvailable(ctx, event); err != nil {
			h.rt.Logger.WarnContext(ctx, "Fleet ops escalation failed",
				"delivery_id", r.delivery.ID().String(),
				"error", err,
			)
		}
	}
}
