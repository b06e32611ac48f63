package service

import (
	"context"
	"errors"
	"testing"

	"mobility-rental-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func device(id string, status domain.DeviceStatus, loc domain.Location) domain.Device {
	t := domain.DeviceTypeWheelchair
	if id[0] == 'S' {
		t = domain.DeviceTypeScooter
	}
	return domain.Device{ID: id, Type: t, Status: status, Location: loc}
}

func TestInventoryService_Insert(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store := newMemStore()
		svc := NewInventoryService(store)

		err := svc.Insert(ctx, []domain.Device{
			{ID: " w01", Type: domain.DeviceTypeWheelchair, Status: domain.DeviceStatusAvailable, Location: domain.LocationPG},
			device("S01", domain.DeviceStatusBackup, domain.LocationBLC),
		})
		require.NoError(t, err)

		all, err := svc.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "S01", all[0].ID)
		assert.Equal(t, "W01", all[1].ID)
	})

	t.Run("ExistingIDRollsBackWholeBatch", func(t *testing.T) {
		store := newMemStore()
		store.seedDevices(device("W02", domain.DeviceStatusAvailable, domain.LocationPG))
		svc := NewInventoryService(store)

		err := svc.Insert(ctx, []domain.Device{
			device("W01", domain.DeviceStatusAvailable, domain.LocationPG),
			device("W02", domain.DeviceStatusAvailable, domain.LocationPG),
		})
		var conflict *domain.ConflictError
		assert.True(t, errors.As(err, &conflict))
		assert.Len(t, store.data.devices, 1)
		_, ok := store.data.devices["W01"]
		assert.False(t, ok)
	})

	t.Run("DuplicateInRequest", func(t *testing.T) {
		store := newMemStore()
		svc := NewInventoryService(store)

		err := svc.Insert(ctx, []domain.Device{
			device("W01", domain.DeviceStatusAvailable, domain.LocationPG),
			device("W01", domain.DeviceStatusBackup, domain.LocationBLC),
		})
		var conflict *domain.ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Contains(t, conflict.Message, "W01")
		assert.Empty(t, store.data.devices)
	})

	t.Run("InvalidRowNeverReachesStore", func(t *testing.T) {
		store := newMemStore()
		store.fail["devices.Insert"] = errors.New("should not be called")
		svc := NewInventoryService(store)

		err := svc.Insert(ctx, []domain.Device{
			device("W01", domain.DeviceStatusAvailable, domain.LocationPG),
			{ID: "S02", Type: domain.DeviceTypeWheelchair, Status: domain.DeviceStatusAvailable, Location: domain.LocationPG},
		})
		var invalid *domain.ValidationError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, "devices[1].id", invalid.Fields[0].Field)
		assert.Contains(t, store.fail, "devices.Insert")
	})

	t.Run("Empty", func(t *testing.T) {
		err := NewInventoryService(newMemStore()).Insert(ctx, nil)
		var invalid *domain.ValidationError
		assert.True(t, errors.As(err, &invalid))
	})
}

func TestInventoryService_UpsertAndReplace(t *testing.T) {
	ctx := context.Background()

	t.Run("UpsertOverwrites", func(t *testing.T) {
		store := newMemStore()
		store.seedDevices(device("W01", domain.DeviceStatusAvailable, domain.LocationPG))
		svc := NewInventoryService(store)

		err := svc.Upsert(ctx, []domain.Device{
			device("W01", domain.DeviceStatusOutOfService, domain.LocationBLC),
			device("W02", domain.DeviceStatusAvailable, domain.LocationPG),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.DeviceStatusOutOfService, store.device("W01").Status)
		assert.Equal(t, domain.LocationBLC, store.device("W01").Location)
		assert.Len(t, store.data.devices, 2)
	})

	t.Run("ReplaceRemovesMissing", func(t *testing.T) {
		store := newMemStore()
		store.seedDevices(
			device("W01", domain.DeviceStatusAvailable, domain.LocationPG),
			device("S01", domain.DeviceStatusAvailable, domain.LocationPG),
		)
		svc := NewInventoryService(store)

		require.NoError(t, svc.ReplaceAll(ctx, []domain.Device{device("W05", domain.DeviceStatusBackup, domain.LocationBLC)}))
		all, err := svc.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "W05", all[0].ID)
	})

	t.Run("ReplaceFailureKeepsOldInventory", func(t *testing.T) {
		store := newMemStore()
		store.seedDevices(device("W01", domain.DeviceStatusAvailable, domain.LocationPG))
		store.fail["devices.Insert"] = errors.New("connection reset")
		svc := NewInventoryService(store)

		err := svc.ReplaceAll(ctx, []domain.Device{device("W05", domain.DeviceStatusBackup, domain.LocationBLC)})
		assert.EqualError(t, err, "connection reset")
		assert.Len(t, store.data.devices, 1)
		assert.Equal(t, domain.DeviceStatusAvailable, store.device("W01").Status)
	})
}

func TestInventoryService_ListAvailable(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.seedDevices(
		device("W02", domain.DeviceStatusAvailable, domain.LocationPG),
		device("W01", domain.DeviceStatusAvailable, domain.LocationPG),
		device("W03", domain.DeviceStatusRented, domain.LocationPG),
		device("W04", domain.DeviceStatusAvailable, domain.LocationBLC),
		device("S01", domain.DeviceStatusAvailable, domain.LocationPG),
	)
	svc := NewInventoryService(store)

	ids, err := svc.ListAvailable(ctx, domain.DeviceTypeWheelchair, domain.LocationPG)
	require.NoError(t, err)
	assert.Equal(t, []string{"W01", "W02"}, ids)

	_, err = svc.ListAvailable(ctx, domain.DeviceType("Bicycle"), domain.Location("CN Tower"))
	var invalid *domain.ValidationError
	require.True(t, errors.As(err, &invalid))
	assert.Len(t, invalid.Fields, 2)
}

func TestInventoryService_UpdateLocations(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store := newMemStore()
		store.seedDevices(
			device("W01", domain.DeviceStatusAvailable, domain.LocationPG),
			device("S01", domain.DeviceStatusRented, domain.LocationPG),
		)
		svc := NewInventoryService(store)

		require.NoError(t, svc.UpdateLocations(ctx, []string{"w01", "S01"}, domain.LocationBLC))
		assert.Equal(t, domain.LocationBLC, store.device("W01").Location)
		assert.Equal(t, domain.LocationBLC, store.device("S01").Location)
		assert.Equal(t, domain.DeviceStatusRented, store.device("S01").Status)
	})

	t.Run("UnknownIDRollsBack", func(t *testing.T) {
		store := newMemStore()
		store.seedDevices(device("W01", domain.DeviceStatusAvailable, domain.LocationPG))
		svc := NewInventoryService(store)

		err := svc.UpdateLocations(ctx, []string{"W01", "W09"}, domain.LocationBLC)
		var notFound *domain.NotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "W09", notFound.ID)
		assert.Equal(t, domain.LocationPG, store.device("W01").Location)
	})

	t.Run("Invalid", func(t *testing.T) {
		err := NewInventoryService(newMemStore()).UpdateLocations(ctx, []string{"W1"}, domain.Location("Gate"))
		var invalid *domain.ValidationError
		require.True(t, errors.As(err, &invalid))
		assert.Len(t, invalid.Fields, 2)
	})
}
