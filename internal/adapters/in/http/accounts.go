package http

import (
	"fmt"
	"net/http"
	"strconv"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const (
	defaultStatementLimit = 50
	maxStatementLimit     = 500
)

// CreateAccount handles POST /api/v1/accounts.
func (s *Server) CreateAccount(ctx echo.Context) error {
	var req NewAccount
	if err := bind(ctx, &req); err != nil {
		return err
	}

	var (
		id  kernel.UUID
		err error
	)
	if req.ID != "" {
		if id, err = parseID("id", req.ID); err != nil {
			return err
		}
	}
	role, err := account.ParseRole(req.Role)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCreateAccountCommand(id, role, req.DebtCeiling, req.Verified, req.Rating)
	if err != nil {
		return err
	}

	created, err := s.h.CreateAccount.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: created.String()})
}

// UpdateCourierPresence handles PUT /api/v1/couriers/:id/presence.
func (s *Server) UpdateCourierPresence(ctx echo.Context) error {
	courierID, err := pathID(ctx)
	if err != nil {
		return err
	}
	var req PresenceRequest
	if err = bind(ctx, &req); err != nil {
		return err
	}

	var location *kernel.Location
	if req.Location != nil {
		l, err := req.Location.toKernel()
		if err != nil {
			return err
		}
		location = &l
	}

	cmd, err := commands.NewUpdateCourierPresenceCommand(courierID, *req.Online, location)
	if err != nil {
		return err
	}
	if err = s.h.UpdateCourierPresence.Handle(ctx.Request().Context(), cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// GetBalance handles GET /api/v1/accounts/:id/balance.
func (s *Server) GetBalance(ctx echo.Context) error {
	accountID, err := pathID(ctx)
	if err != nil {
		return err
	}

	query, err := queries.NewGetBalanceQuery(accountID)
	if err != nil {
		return err
	}

	balance, err := s.h.GetBalance.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, balanceFrom(balance))
}

// GetStatement handles GET /api/v1/accounts/:id/ledger?limit=N.
func (s *Server) GetStatement(ctx echo.Context) error {
	accountID, err := pathID(ctx)
	if err != nil {
		return err
	}

	limit := defaultStatementLimit
	if raw := ctx.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return errs.NewValueIsInvalidErrorWithCause("limit", err)
		}
		if limit < 1 || limit > maxStatementLimit {
			return errs.NewValueIsOutOfRangeError("limit", limit, 1, maxStatementLimit)
		}
	}

	statement, err := s.h.Statements.Statement(ctx.Request().Context(), accountID, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, statementFrom(statement))
}

// CreditAccount handles POST /api/v1/accounts/:id/credit.
func (s *Server) CreditAccount(ctx echo.Context) error {
	return s.adjustBalance(ctx, services.Credit)
}

// DebitAccount handles POST /api/v1/accounts/:id/debit.
func (s *Server) DebitAccount(ctx echo.Context) error {
	return s.adjustBalance(ctx, services.Debit)
}

func (s *Server) adjustBalance(ctx echo.Context, direction services.Direction) error {
	accountID, err := pathID(ctx)
	if err != nil {
		return err
	}
	var req AmountRequest
	if err = bind(ctx, &req); err != nil {
		return err
	}

	cmd, err := commands.NewAdjustBalanceCommand(accountID, direction, req.Amount)
	if err != nil {
		return err
	}

	entry, err := s.h.AdjustBalance.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return fmt.Errorf("%s account %s: %w", direction, accountID, err)
	}
	return ctx.JSON(http.StatusCreated, ledgerEntryFrom(entry))
}
