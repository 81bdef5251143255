package fleetops

import (
	"context"
	"log/slog"

	"dispatch/internal/core/ports"
)

var _ ports.FleetOps = (*LogPublisher)(nil)

// LogPublisher writes escalations to the log when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "fleet_ops")}
}

func (p *LogPublisher) NoCourierAvailable(ctx context.Context, event ports.NoCourierAvailableEvent) error {
	p.logger.WarnContext(ctx, "No courier available",
		"delivery_id", event.DeliveryID.String(),
		"max_radius_km", event.MaxRadiusKm,
		"dispatch_round", event.DispatchRound,
	)
	return nil
}
