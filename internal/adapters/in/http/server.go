package http

import (
	"context"
	"net/http"

	"dispatch/internal/core/application/ledger"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// Use case contracts the server depends on. The command and query handlers
// satisfy them directly.
type (
	CreateDeliveryHandler interface {
		Handle(ctx context.Context, command commands.CreateDeliveryCommand) (kernel.UUID, error)
	}
	ConfirmPickupHandler interface {
		Handle(ctx context.Context, command commands.ConfirmPickupCommand) error
	}
	StartTransitHandler interface {
		Handle(ctx context.Context, command commands.StartTransitCommand) error
	}
	ConfirmDropoffHandler interface {
		Handle(ctx context.Context, command commands.ConfirmDropoffCommand) error
	}
	CancelDeliveryHandler interface {
		Handle(ctx context.Context, command commands.CancelDeliveryCommand) error
	}
	ReleaseDeliveryHandler interface {
		Handle(ctx context.Context, command commands.ReleaseDeliveryCommand) error
	}
	AcceptOfferHandler interface {
		Handle(ctx context.Context, command commands.AcceptOfferCommand) error
	}
	RejectOfferHandler interface {
		Handle(ctx context.Context, command commands.RejectOfferCommand) error
	}
	UpdateCourierPresenceHandler interface {
		Handle(ctx context.Context, command commands.UpdateCourierPresenceCommand) error
	}
	CreateAccountHandler interface {
		Handle(ctx context.Context, command commands.CreateAccountCommand) (kernel.UUID, error)
	}
	AdjustBalanceHandler interface {
		Handle(ctx context.Context, command commands.AdjustBalanceCommand) (*account.LedgerEntry, error)
	}
	GetDeliveryHandler interface {
		Handle(ctx context.Context, query queries.GetDeliveryQuery) (queries.GetDeliveryQueryResponse, error)
	}
	GetPendingOffersHandler interface {
		Handle(ctx context.Context, query queries.GetPendingOffersQuery) ([]queries.GetPendingOffersQueryResponse, error)
	}
	GetBalanceHandler interface {
		Handle(ctx context.Context, query queries.GetBalanceQuery) (queries.GetBalanceQueryResponse, error)
	}
	StatementReader interface {
		Statement(ctx context.Context, accountID kernel.UUID, limit int) (ledger.Statement, error)
	}
)

// Handlers lists every use case exposed over HTTP.
type Handlers struct {
	CreateDelivery        CreateDeliveryHandler
	ConfirmPickup         ConfirmPickupHandler
	StartTransit          StartTransitHandler
	ConfirmDropoff        ConfirmDropoffHandler
	CancelDelivery        CancelDeliveryHandler
	ReleaseDelivery       ReleaseDeliveryHandler
	AcceptOffer           AcceptOfferHandler
	RejectOffer           RejectOfferHandler
	UpdateCourierPresence UpdateCourierPresenceHandler
	CreateAccount         CreateAccountHandler
	AdjustBalance         AdjustBalanceHandler
	GetDelivery           GetDeliveryHandler
	GetPendingOffers      GetPendingOffersHandler
	GetBalance            GetBalanceHandler
	Statements            StatementReader
}

// Server translates HTTP requests into commands and queries.
type Server struct {
	h Handlers
}

func NewServer(handlers Handlers) *Server {
	return &Server{h: handlers}
}

// NewEcho builds an echo instance with validation, error mapping and all routes.
func NewEcho(server *Server, metrics http.Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewRequestValidator()
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health", func(ctx echo.Context) error {
		return ctx.String(http.StatusOK, "Healthy")
	})
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}

	server.RegisterRoutes(e.Group("/api/v1"))
	return e
}

func (s *Server) RegisterRoutes(g *echo.Group) {
	g.POST("/deliveries", s.CreateDelivery)
	g.GET("/deliveries/:id", s.GetDelivery)
	g.POST("/deliveries/:id/pickup", s.ConfirmPickup)
	g.POST("/deliveries/:id/transit", s.StartTransit)
	g.POST("/deliveries/:id/dropoff", s.ConfirmDropoff)
	g.POST("/deliveries/:id/cancel", s.CancelDelivery)
	g.POST("/deliveries/:id/release", s.ReleaseDelivery)

	g.POST("/offers/:id/accept", s.AcceptOffer)
	g.POST("/offers/:id/reject", s.RejectOffer)

	g.GET("/couriers/:id/offers", s.GetPendingOffers)
	g.PUT("/couriers/:id/presence", s.UpdateCourierPresence)

	g.POST("/accounts", s.CreateAccount)
	g.GET("/accounts/:id/balance", s.GetBalance)
	g.GET("/accounts/:id/ledger", s.GetStatement)
	g.POST("/accounts/:id/credit", s.CreditAccount)
	g.POST("/accounts/:id/debit", s.DebitAccount)
}

// bind decodes and validates the request body.
func bind(ctx echo.Context, dst any) error {
	if err := ctx.Bind(dst); err != nil {
		return err
	}
	return ctx.Validate(dst)
}

func pathID(ctx echo.Context) (kernel.UUID, error) {
	return parseID("id", ctx.Param("id"))
}
