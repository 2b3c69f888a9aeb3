package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/delivery"
)

func TestNewUpdateDeliveryStatusCommand(t *testing.T) {
	cmd, err := commands.NewUpdateDeliveryStatusCommand("order-123", "en_route")

	require.NoError(t, err)
	assert.NoError(t, cmd.Validate())
	assert.Equal(t, "order-123", cmd.OrderID())
	assert.Equal(t, delivery.EnRoute, cmd.Status())
}

func TestNewUpdateDeliveryStatusCommand_EmptyOrderID(t *testing.T) {
	_, err := commands.NewUpdateDeliveryStatusCommand("", "en_route")

	require.ErrorIs(t, err, commands.ErrOrderIDIsRequired)
}

func TestNewUpdateDeliveryStatusCommand_UnknownStatus(t *testing.T) {
	_, err := commands.NewUpdateDeliveryStatusCommand("order-123", "teleported")

	require.Error(t, err)
}

func TestUpdateDeliveryStatusCommand_ValidateZeroValue(t *testing.T) {
	var cmd commands.UpdateDeliveryStatusCommand

	require.ErrorIs(t, cmd.Validate(), commands.ErrUpdateDeliveryStatusCommandIsNotConstructed)
}
