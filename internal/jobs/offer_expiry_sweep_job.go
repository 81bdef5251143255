package jobs

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

const sweepBatchSize = 100

// OfferExpirySweepJob expires overdue offers every second, covering timers
// lost to a restart or armed on another instance.
type OfferExpirySweepJob struct {
	handler ExpireDueOffersHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

func NewOfferExpirySweepJob(handler ExpireDueOffersHandler, logger *slog.Logger) *OfferExpirySweepJob {
	return &OfferExpirySweepJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "offer_expiry_sweep_job"),
	}
}

func (j *OfferExpirySweepJob) Start() error {
	_, err := j.cron.AddFunc("* * * * * *", func() { j.run(context.Background()) })
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Offer expiry sweep job started (running every second)")
	return nil
}

func (j *OfferExpirySweepJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Offer expiry sweep job stopped")
}

func (j *OfferExpirySweepJob) run(ctx context.Context) {
	cmd, err := commands.NewExpireDueOffersCommand(sweepBatchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Offer expiry sweep misconfigured", "error", err)
		return
	}

	expired, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Offer expiry sweep failed", "error", err)
	}
	if expired > 0 {
		j.logger.InfoContext(ctx, "Expired overdue offers", "count", expired)
	}
}
