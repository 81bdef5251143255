package http

import (
	"errors"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/pkg/errs"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// StatusFor maps a use case error onto an HTTP status code.
func StatusFor(err error) int {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs), errs.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, delivery.ErrOtpMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, offer.ErrNotOfferee), errors.Is(err, commands.ErrNotAssignedCourier):
		return http.StatusForbidden
	case errors.Is(err, offer.ErrOfferExpired),
		errors.Is(err, offer.ErrAlreadyAssigned),
		errors.Is(err, errs.ErrInvalidState),
		errors.Is(err, account.ErrCourierBusy),
		errors.Is(err, account.ErrNotACourier):
		return http.StatusConflict
	case errors.Is(err, errs.ErrConcurrentModification):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler renders errors returned by route handlers as Error bodies.
// Internal failures are logged and answered with a generic message.
func ErrorHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}

	var (
		code    int
		message string
		httpErr *echo.HTTPError
	)
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = http.StatusText(code)
		if m, ok := httpErr.Message.(string); ok {
			message = m
		}
	} else {
		code = StatusFor(err)
		message = err.Error()
	}

	if code >= http.StatusInternalServerError && code != http.StatusServiceUnavailable {
		ctx.Logger().Error(err)
		message = "Internal server error"
	}

	var writeErr error
	if ctx.Request().Method == http.MethodHead {
		writeErr = ctx.NoContent(code)
	} else {
		writeErr = ctx.JSON(code, Error{Code: code, Message: message})
	}
	if writeErr != nil {
		ctx.Logger().Error(writeErr)
	}
}

func parseID(name, raw string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}
