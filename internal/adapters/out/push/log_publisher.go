package push

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

var _ ports.RealtimePush = (*LogPublisher)(nil)

// LogPublisher records push events at debug level instead of sending them.
// It stands in when no Redis is configured; couriers then rely on polling.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "push")}
}

func (p *LogPublisher) Send(ctx context.Context, courierID kernel.UUID, eventType string, _ any) error {
	p.logger.DebugContext(ctx, "Push event dropped", "courier_id", courierID.String(), "event", eventType)
	return nil
}
