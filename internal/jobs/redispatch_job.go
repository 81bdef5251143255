package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

const redispatchBatchSize = 200

// RedispatchJob re-queues Pending deliveries without an open offer: those
// dropped by a full dispatch queue and those whose last round found nobody.
type RedispatchJob struct {
	handler  RedispatchPendingHandler
	schedule string
	minAge   time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewRedispatchJob runs the handler on a cron schedule with seconds, for
// example "*/15 * * * * *". Deliveries younger than minAge are left to the
// trigger fired at creation.
func NewRedispatchJob(
	handler RedispatchPendingHandler,
	schedule string,
	minAge time.Duration,
	logger *slog.Logger,
) *RedispatchJob {
	return &RedispatchJob{
		handler:  handler,
		schedule: schedule,
		minAge:   minAge,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "redispatch_job"),
	}
}

func (j *RedispatchJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() { j.run(context.Background()) })
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Redispatch job started", "schedule", j.schedule)
	return nil
}

func (j *RedispatchJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Redispatch job stopped")
}

func (j *RedispatchJob) run(ctx context.Context) {
	cmd, err := commands.NewRedispatchPendingCommand(j.minAge, redispatchBatchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Redispatch job misconfigured", "error", err)
		return
	}

	queued, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Redispatch job failed", "error", err)
		return
	}
	if queued > 0 {
		j.logger.InfoContext(ctx, "Requeued pending deliveries", "count", queued)
	}
}
