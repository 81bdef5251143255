package commands_test

import (
	"strings"
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommands_ZeroValueIsNotConstructed(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"CreateDelivery", commands.CreateDeliveryCommand{}.Validate(), commands.ErrCreateDeliveryCommandIsNotConstructed},
		{"DispatchDelivery", commands.DispatchDeliveryCommand{}.Validate(), commands.ErrDispatchDeliveryCommandIsNotConstructed},
		{"AcceptOffer", commands.AcceptOfferCommand{}.Validate(), commands.ErrAcceptOfferCommandIsNotConstructed},
		{"RejectOffer", commands.RejectOfferCommand{}.Validate(), commands.ErrRejectOfferCommandIsNotConstructed},
		{"ExpireOffer", commands.ExpireOfferCommand{}.Validate(), commands.ErrExpireOfferCommandIsNotConstructed},
		{"ExpireDueOffers", commands.ExpireDueOffersCommand{}.Validate(), commands.ErrExpireDueOffersCommandIsNotConstructed},
		{"ConfirmPickup", commands.ConfirmPickupCommand{}.Validate(), commands.ErrConfirmPickupCommandIsNotConstructed},
		{"StartTransit", commands.StartTransitCommand{}.Validate(), commands.ErrStartTransitCommandIsNotConstructed},
		{"ConfirmDropoff", commands.ConfirmDropoffCommand{}.Validate(), commands.ErrConfirmDropoffCommandIsNotConstructed},
		{"CancelDelivery", commands.CancelDeliveryCommand{}.Validate(), commands.ErrCancelDeliveryCommandIsNotConstructed},
		{"ReleaseDelivery", commands.ReleaseDeliveryCommand{}.Validate(), commands.ErrReleaseDeliveryCommandIsNotConstructed},
		{"AdjustBalance", commands.AdjustBalanceCommand{}.Validate(), commands.ErrAdjustBalanceCommandIsNotConstructed},
		{"UpdateCourierPresence", commands.UpdateCourierPresenceCommand{}.Validate(), commands.ErrUpdateCourierPresenceCommandIsNotConstructed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.wantErr)
		})
	}
}

func TestCommands_RejectUnconstructedIDs(t *testing.T) {
	_, err := commands.NewAcceptOfferCommand(kernel.UUID{}, kernel.NewUUID())
	require.Error(t, err)

	_, err = commands.NewDispatchDeliveryCommand(kernel.UUID{})
	require.Error(t, err)

	_, err = commands.NewStartTransitCommand(kernel.NewUUID(), kernel.UUID{})
	require.Error(t, err)
}

func TestNewCancelDeliveryCommand_ReasonLength(t *testing.T) {
	long := strings.Repeat("x", delivery.MaxCancelReasonLength+1)

	_, err := commands.NewCancelDeliveryCommand(kernel.NewUUID(), long)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	cmd, err := commands.NewCancelDeliveryCommand(kernel.NewUUID(), "  "+long[:10]+"  ")
	require.NoError(t, err)
	assert.Equal(t, long[:10], cmd.Reason())
}

func TestNewExpireDueOffersCommand_LimitMustBePositive(t *testing.T) {
	_, err := commands.NewExpireDueOffersCommand(0)

	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
