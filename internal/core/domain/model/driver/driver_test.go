package driver_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPosition(t *testing.T) kernel.GeoPoint {
	t.Helper()
	position, err := kernel.NewGeoPoint(6.9271, 79.8612)
	require.NoError(t, err)
	return position
}

func TestNewDriver(t *testing.T) {
	t.Run("creates available driver", func(t *testing.T) {
		now := time.Now()

		d, err := driver.NewDriver(kernel.NewUUID(), "Nimal Perera", testPosition(t), now)

		require.NoError(t, err)
		assert.Equal(t, "Nimal Perera", d.Name())
		assert.True(t, d.IsAvailable())
		assert.Equal(t, now, d.LastPingAt())
		require.NoError(t, d.Validate())
	})

	t.Run("rejects invalid parameters", func(t *testing.T) {
		testCases := []struct {
			name     string
			id       kernel.UUID
			drvName  string
			position kernel.GeoPoint
		}{
			{"empty name", kernel.NewUUID(), "", testPosition(t)},
			{"zero id", kernel.UUID{}, "Nimal", testPosition(t)},
			{"unconstructed position", kernel.NewUUID(), "Nimal", kernel.GeoPoint{}},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := driver.NewDriver(tc.id, tc.drvName, tc.position, time.Now())
				require.Error(t, err)
			})
		}
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var d driver.Driver

		err := d.Validate()

		require.Error(t, err)
		assert.Equal(t, driver.ErrDriverIsNotConstructed, err)
	})
}

func TestDriver_ReserveRelease(t *testing.T) {
	t.Run("reserve flips availability once", func(t *testing.T) {
		d, _ := driver.NewDriver(kernel.NewUUID(), "Nimal", testPosition(t), time.Now())

		require.NoError(t, d.Reserve())
		assert.False(t, d.IsAvailable())

		err := d.Reserve()
		require.Error(t, err)
		assert.Equal(t, driver.ErrDriverNotAvailable, err)
	})

	t.Run("release restores availability once", func(t *testing.T) {
		d, _ := driver.NewDriver(kernel.NewUUID(), "Nimal", testPosition(t), time.Now())
		require.NoError(t, d.Reserve())

		require.NoError(t, d.Release())
		assert.True(t, d.IsAvailable())

		err := d.Release()
		require.Error(t, err)
		assert.Equal(t, driver.ErrDriverAlreadyAvailable, err)
	})

	t.Run("released driver can be reserved again", func(t *testing.T) {
		d, _ := driver.NewDriver(kernel.NewUUID(), "Nimal", testPosition(t), time.Now())

		require.NoError(t, d.Reserve())
		require.NoError(t, d.Release())
		require.NoError(t, d.Reserve())
		assert.False(t, d.IsAvailable())
	})
}

func TestDriver_UpdatePosition(t *testing.T) {
	t.Run("records position and ping time", func(t *testing.T) {
		d, _ := driver.NewDriver(kernel.NewUUID(), "Nimal", testPosition(t), time.Now().Add(-time.Minute))
		next, _ := kernel.NewGeoPoint(6.93, 79.87)
		at := time.Now()

		require.NoError(t, d.UpdatePosition(next, at))

		equal, err := d.Position().IsEqual(next)
		require.NoError(t, err)
		assert.True(t, equal)
		assert.Equal(t, at, d.LastPingAt())
	})

	t.Run("rejects unconstructed position", func(t *testing.T) {
		d, _ := driver.NewDriver(kernel.NewUUID(), "Nimal", testPosition(t), time.Now())
		before := d.LastPingAt()

		err := d.UpdatePosition(kernel.GeoPoint{}, time.Now())

		require.Error(t, err)
		assert.Equal(t, before, d.LastPingAt())
	})
}

func TestRestoreDriver(t *testing.T) {
	t.Run("restores persisted state", func(t *testing.T) {
		id := kernel.NewUUID()
		pingAt := time.Now().Add(-30 * time.Second)

		d, err := driver.RestoreDriver(id, "Kamala Silva", false, testPosition(t), pingAt)

		require.NoError(t, err)
		assert.True(t, d.ID().IsEqual(id))
		assert.False(t, d.IsAvailable())
		assert.Equal(t, pingAt, d.LastPingAt())
	})
}
