package http

import (
	"errors"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// CreateDelivery handles POST /api/v1/deliveries.
func (s *Server) CreateDelivery(ctx echo.Context) error {
	var req NewDelivery
	if err := bind(ctx, &req); err != nil {
		return err
	}

	senderID, err := parseID("sender_id", req.SenderID)
	if err != nil {
		return err
	}
	pickup, pickupErr := req.Pickup.toKernel()
	dropoff, dropoffErr := req.Dropoff.toKernel()
	method, methodErr := delivery.ParsePaymentMethod(req.PaymentMethod)
	if err = errors.Join(pickupErr, dropoffErr, methodErr); err != nil {
		return err
	}

	cmd, err := commands.NewCreateDeliveryCommand(senderID, pickup, dropoff, method)
	if err != nil {
		return err
	}

	id, err := s.h.CreateDelivery.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: id.String()})
}

// GetDelivery handles GET /api/v1/deliveries/:id.
func (s *Server) GetDelivery(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	query, err := queries.NewGetDeliveryQuery(id)
	if err != nil {
		return err
	}

	d, err := s.h.GetDelivery.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, deliveryFrom(d))
}

// ConfirmPickup handles POST /api/v1/deliveries/:id/pickup.
func (s *Server) ConfirmPickup(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var req OTPRequest
	if err = bind(ctx, &req); err != nil {
		return err
	}

	cmd, err := commands.NewConfirmPickupCommand(id, req.OTP)
	if err != nil {
		return err
	}
	if err = s.h.ConfirmPickup.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// StartTransit handles POST /api/v1/deliveries/:id/transit.
func (s *Server) StartTransit(ctx echo.Context) error {
	id, courierID, err := pathIDAndCourier(ctx)
	if err != nil {
		return err
	}

	cmd, err := commands.NewStartTransitCommand(id, courierID)
	if err != nil {
		return err
	}
	if err = s.h.StartTransit.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ConfirmDropoff handles POST /api/v1/deliveries/:id/dropoff.
func (s *Server) ConfirmDropoff(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var req OTPRequest
	if err = bind(ctx, &req); err != nil {
		return err
	}

	cmd, err := commands.NewConfirmDropoffCommand(id, req.OTP)
	if err != nil {
		return err
	}
	if err = s.h.ConfirmDropoff.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// CancelDelivery handles POST /api/v1/deliveries/:id/cancel.
func (s *Server) CancelDelivery(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var req CancelRequest
	if err = bind(ctx, &req); err != nil {
		return err
	}

	cmd, err := commands.NewCancelDeliveryCommand(id, req.Reason)
	if err != nil {
		return err
	}
	if err = s.h.CancelDelivery.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ReleaseDelivery handles POST /api/v1/deliveries/:id/release.
func (s *Server) ReleaseDelivery(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var req ReleaseRequest
	if err = bind(ctx, &req); err != nil {
		return err
	}
	courierID, err := parseID("courier_id", req.CourierID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewReleaseDeliveryCommand(id, courierID, req.Reason)
	if err != nil {
		return err
	}
	if err = s.h.ReleaseDelivery.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// pathIDAndCourier reads the :id path parameter and a CourierRequest body.
func pathIDAndCourier(ctx echo.Context) (kernel.UUID, kernel.UUID, error) {
	id, err := pathID(ctx)
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	var req CourierRequest
	if err = bind(ctx, &req); err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	courierID, err := parseID("courier_id", req.CourierID)
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	return id, courierID, nil
}
