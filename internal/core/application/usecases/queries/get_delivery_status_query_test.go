package queries_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/core/application/usecases/queries"
)

func TestNewGetDeliveryStatusQuery(t *testing.T) {
	query, err := queries.NewGetDeliveryStatusQuery("order-123")

	require.NoError(t, err)
	assert.NoError(t, query.Validate())
	assert.Equal(t, "order-123", query.OrderID())
}

func TestNewGetDeliveryStatusQuery_EmptyOrderID(t *testing.T) {
	_, err := queries.NewGetDeliveryStatusQuery("")

	require.ErrorIs(t, err, queries.ErrOrderIDIsRequired)
}

func TestGetDeliveryStatusQuery_ValidateZeroValue(t *testing.T) {
	var query queries.GetDeliveryStatusQuery

	require.ErrorIs(t, query.Validate(), queries.ErrGetDeliveryStatusQueryIsNotConstructed)
}
