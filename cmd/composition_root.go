package cmd

import (
	"fmt"
	"log/slog"
	"time"

	api "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/fleetops"
	"dispatch/internal/adapters/out/lock"
	"dispatch/internal/adapters/out/metrics"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/push"
	"dispatch/internal/adapters/out/route"
	"dispatch/internal/core/application/ledger"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"
	"dispatch/internal/pkg/clock"
	"dispatch/internal/pkg/retry"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Infrastructure holds the connections opened by main. Redis and Kafka are
// optional; nil selects the in-process fallbacks.
type Infrastructure struct {
	GormDB     *gorm.DB
	Redis      redis.Cmdable
	Kafka      fleetops.MessageWriter
	Registerer prometheus.Registerer
	Logger     *slog.Logger
}

type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	logger     *slog.Logger

	clock   ports.Clock
	locker  ports.Locker
	push    ports.RealtimePush
	fleet   ports.FleetOps
	route   ports.RouteDistance
	metrics ports.Metrics
	retry   retry.Policy

	matcher *services.CourierMatcher
	pricing *services.PricingCalculator
	wallet  *ledger.WalletLedger

	worker *jobs.DispatchWorker
	timers *jobs.OfferTimers

	redispatchSchedule string
	redispatchMinAge   time.Duration
}

func NewCompositionRoot(cfg Config, infra Infrastructure) (*CompositionRoot, error) {
	matcher, err := services.NewCourierMatcher(cfg.DispatchConfig())
	if err != nil {
		return nil, fmt.Errorf("dispatch config: %w", err)
	}
	pricingConfig, err := cfg.PricingConfig()
	if err != nil {
		return nil, fmt.Errorf("pricing config: %w", err)
	}
	pricing, err := services.NewPricingCalculator(pricingConfig)
	if err != nil {
		return nil, fmt.Errorf("pricing config: %w", err)
	}

	c := &CompositionRoot{
		gormDB:     infra.GormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(infra.GormDB),
		logger:     infra.Logger,
		clock:      clock.System{},
		metrics:    metrics.NewPrometheus(infra.Registerer),
		retry:      retry.DefaultPolicy(),
		matcher:    matcher,
		pricing:    pricing,
		redispatchSchedule: cfg.RedispatchSchedule,
		redispatchMinAge:   cfg.RedispatchMinAge,
	}

	if !matcher.UsesWeightedRanking() {
		infra.Logger.Warn("Rank weights are invalid, ranking couriers by distance only",
			"distance", cfg.RankWeightDistance,
			"rating", cfg.RankWeightRating,
			"acceptance", cfg.RankWeightAcceptance,
		)
	}

	// A nil route leaves pricing on straight-line distance.
	if cfg.RouteServiceURL != "" {
		c.route = route.NewHTTPClient(route.Config{
			BaseURL:    cfg.RouteServiceURL,
			Timeout:    cfg.RouteTimeout,
			MaxRetries: cfg.RouteMaxRetries,
			RetryDelay: cfg.RouteRetryDelay,
		})
	}

	if infra.Redis != nil {
		c.locker = lock.NewRedisLocker(infra.Redis)
		c.push = push.NewRedisPublisher(infra.Redis, c.clock)
	} else {
		c.locker = lock.NewMemoryLocker(c.clock)
		c.push = push.NewLogPublisher(infra.Logger)
	}
	if infra.Kafka != nil {
		c.fleet = fleetops.NewKafkaPublisher(infra.Kafka)
	} else {
		c.fleet = fleetops.NewLogPublisher(infra.Logger)
	}

	c.wallet = ledger.NewWalletLedger(c.ledgerUoWFactory(), c.clock, c.metrics, c.retry)
	c.worker = jobs.NewDispatchWorker(cfg.DispatchQueueSize, cfg.DispatchWorkers, infra.Logger)
	c.timers = jobs.NewOfferTimers(c.clock, infra.Logger)
	return c, nil
}

// Runtime uses the dispatch worker and offer timers as trigger and scheduler.
func (c *CompositionRoot) Runtime() commands.Runtime {
	return commands.Runtime{
		Clock:     c.clock,
		Trigger:   c.worker,
		Scheduler: c.timers,
		Push:      c.push,
		Metrics:   c.metrics,
		Retry:     c.retry,
		Logger:    c.logger,
	}
}

func (c *CompositionRoot) CreateCreateDeliveryCommandHandler() commands.CreateDeliveryCommandHandler {
	return commands.NewCreateDeliveryCommandHandler(c.commandUoWFactory(), c.route, c.pricing, c.Runtime())
}

func (c *CompositionRoot) CreateDispatchDeliveryCommandHandler() commands.DispatchDeliveryCommandHandler {
	return commands.NewDispatchDeliveryCommandHandler(c.commandUoWFactory(), c.matcher, c.locker, c.fleet, c.Runtime())
}

func (c *CompositionRoot) CreateAcceptOfferCommandHandler() commands.AcceptOfferCommandHandler {
	return commands.NewAcceptOfferCommandHandler(c.commandUoWFactory(), c.Runtime())
}

func (c *CompositionRoot) CreateRejectOfferCommandHandler() commands.RejectOfferCommandHandler {
	return commands.NewRejectOfferCommandHandler(c.commandUoWFactory(), c.Runtime())
}

func (c *CompositionRoot) CreateExpireOfferCommandHandler() commands.ExpireOfferCommandHandler {
	return commands.NewExpireOfferCommandHandler(c.commandUoWFactory(), c.Runtime())
}

func (c *CompositionRoot) CreateExpireDueOffersCommandHandler() commands.ExpireDueOffersCommandHandler {
	return commands.NewExpireDueOffersCommandHandler(c.commandUoWFactory(), c.CreateExpireOfferCommandHandler(), c.clock)
}

func (c *CompositionRoot) CreateRedispatchPendingCommandHandler() commands.RedispatchPendingCommandHandler {
	return commands.NewRedispatchPendingCommandHandler(c.commandUoWFactory(), c.worker, c.clock)
}

func (c *CompositionRoot) CreateConfirmPickupCommandHandler() commands.ConfirmPickupCommandHandler {
	return commands.NewConfirmPickupCommandHandler(c.commandUoWFactory(), c.Runtime())
}

func (c *CompositionRoot) CreateStartTransitCommandHandler() commands.StartTransitCommandHandler {
	return commands.NewStartTransitCommandHandler(c.commandUoWFactory(), c.Runtime())
}

func (c *CompositionRoot) CreateConfirmDropoffCommandHandler() commands.ConfirmDropoffCommandHandler {
	return commands.NewConfirmDropoffCommandHandler(c.commandUoWFactory(), c.Runtime())
}

func (c *CompositionRoot) CreateCancelDeliveryCommandHandler() commands.CancelDeliveryCommandHandler {
	return commands.NewCancelDeliveryCommandHandler(c.commandUoWFactory(), c.Runtime())
}

func (c *CompositionRoot) CreateReleaseDeliveryCommandHandler() commands.ReleaseDeliveryCommandHandler {
	return commands.NewReleaseDeliveryCommandHandler(c.commandUoWFactory(), c.Runtime())
}

func (c *CompositionRoot) CreateCreateAccountCommandHandler() commands.CreateAccountCommandHandler {
	return commands.NewCreateAccountCommandHandler(c.accountUoWFactory())
}

func (c *CompositionRoot) CreateUpdateCourierPresenceCommandHandler() commands.UpdateCourierPresenceCommandHandler {
	return commands.NewUpdateCourierPresenceCommandHandler(c.accountUoWFactory())
}

func (c *CompositionRoot) CreateAdjustBalanceCommandHandler() commands.AdjustBalanceCommandHandler {
	return commands.NewAdjustBalanceCommandHandler(c.wallet)
}

func (c *CompositionRoot) CreateGetDeliveryQueryHandler() queries.GetDeliveryQueryHandler {
	return queries.NewGetDeliveryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetPendingOffersQueryHandler() queries.GetPendingOffersQueryHandler {
	return queries.NewGetPendingOffersQueryHandler(c.gormDB, c.clock)
}

func (c *CompositionRoot) CreateGetBalanceQueryHandler() queries.GetBalanceQueryHandler {
	return queries.NewGetBalanceQueryHandler(c.gormDB)
}

// HTTPHandlers wires every use case exposed by the REST API.
func (c *CompositionRoot) HTTPHandlers() api.Handlers {
	return api.Handlers{
		CreateDelivery:        c.CreateCreateDeliveryCommandHandler(),
		ConfirmPickup:         c.CreateConfirmPickupCommandHandler(),
		StartTransit:          c.CreateStartTransitCommandHandler(),
		ConfirmDropoff:        c.CreateConfirmDropoffCommandHandler(),
		CancelDelivery:        c.CreateCancelDeliveryCommandHandler(),
		ReleaseDelivery:       c.CreateReleaseDeliveryCommandHandler(),
		AcceptOffer:           c.CreateAcceptOfferCommandHandler(),
		RejectOffer:           c.CreateRejectOfferCommandHandler(),
		UpdateCourierPresence: c.CreateUpdateCourierPresenceCommandHandler(),
		CreateAccount:         c.CreateCreateAccountCommandHandler(),
		AdjustBalance:         c.CreateAdjustBalanceCommandHandler(),
		GetDelivery:           c.CreateGetDeliveryQueryHandler(),
		GetPendingOffers:      c.CreateGetPendingOffersQueryHandler(),
		GetBalance:            c.CreateGetBalanceQueryHandler(),
		Statements:            c.wallet,
	}
}

// JobManager returns the background jobs together with the handlers they are
// started with.
func (c *CompositionRoot) JobManager() (*jobs.JobManager, jobs.Handlers) {
	manager := jobs.NewJobManager(
		c.worker,
		c.timers,
		jobs.NewOfferExpirySweepJob(c.CreateExpireDueOffersCommandHandler(), c.logger),
		jobs.NewRedispatchJob(c.CreateRedispatchPendingCommandHandler(), c.redispatchSchedule, c.redispatchMinAge, c.logger),
	)
	return manager, jobs.Handlers{
		Dispatch:    c.CreateDispatchDeliveryCommandHandler(),
		ExpireOffer: c.CreateExpireOfferCommandHandler(),
	}
}

func (c *CompositionRoot) commandUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) accountUoWFactory() commands.AccountUoWFactory {
	return FuncAccountUoWFactory(func() commands.AccountUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) ledgerUoWFactory() ledger.UoWFactory {
	return FuncLedgerUoWFactory(func() ledger.UoW {
		return c.uowFactory.Create()
	})
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncAccountUoWFactory func() commands.AccountUoW

func (f FuncAccountUoWFactory) Create() commands.AccountUoW {
	return f()
}

type FuncLedgerUoWFactory func() ledger.UoW

func (f FuncLedgerUoWFactory) Create() ledger.UoW {
	return f()
}
