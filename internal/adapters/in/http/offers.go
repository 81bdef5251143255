package http

import (
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"

	"github.com/labstack/echo/v4"
)

// AcceptOffer handles POST /api/v1/offers/:id/accept.
func (s *Server) AcceptOffer(ctx echo.Context) error {
	offerID, courierID, err := pathIDAndCourier(ctx)
	if err != nil {
		return err
	}

	cmd, err := commands.NewAcceptOfferCommand(offerID, courierID)
	if err != nil {
		return err
	}
	if err = s.h.AcceptOffer.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// RejectOffer handles POST /api/v1/offers/:id/reject.
func (s *Server) RejectOffer(ctx echo.Context) error {
	offerID, courierID, err := pathIDAndCourier(ctx)
	if err != nil {
		return err
	}

	cmd, err := commands.NewRejectOfferCommand(offerID, courierID)
	if err != nil {
		return err
	}
	if err = s.h.RejectOffer.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// GetPendingOffers handles GET /api/v1/couriers/:id/offers, the polling
// fallback for couriers whose push channel is down.
func (s *Server) GetPendingOffers(ctx echo.Context) error {
	courierID, err := pathID(ctx)
	if err != nil {
		return err
	}

	query, err := queries.NewGetPendingOffersQuery(courierID)
	if err != nil {
		return err
	}

	offers, err := s.h.GetPendingOffers.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}

	response := make([]PendingOffer, len(offers))
	for i, o := range offers {
		response[i] = pendingOfferFrom(o)
	}
	return ctx.JSON(http.StatusOK, response)
}
