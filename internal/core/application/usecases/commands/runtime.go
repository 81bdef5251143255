package commands

import (
	"log/slog"

	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/retry"
)

// Runtime bundles the collaborators shared by delivery and offer handlers.
// Everything except Clock, Retry and Logger is only used after commit.
type Runtime struct {
	Clock     ports.Clock
	Trigger   ports.DispatchTrigger
	Scheduler ports.OfferExpiryScheduler
	Push      ports.RealtimePush
	Metrics   ports.Metrics
	Retry     retry.Policy
	Logger    *slog.Logger
}

func (r Runtime) notifier() notifier {
	return newNotifier(r.Push, r.Logger)
}
