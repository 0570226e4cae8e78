package console

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/25-26J-299/smartrose-admin/internal/adminapi"
	"github.com/25-26J-299/smartrose-admin/internal/parse"
)

var fixedNow = time.Date(2026, 2, 23, 18, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func seen(ago time.Duration) parse.Timestamp {
	return parse.Timestamp(fixedNow.Add(-ago).Format(time.RFC3339))
}

func TestUsersPage_PendingRow(t *testing.T) {
	backend := &mockBackend{
		FetchUsersFunc: func(ctx context.Context, status string) ([]adminapi.User, error) {
			assert.Equal(t, "pending", status)
			return []adminapi.User{{ID: "u1", FullName: "Jane Doe", Email: "jane@x.com", Role: "farmer", Status: "pending"}}, nil
		},
	}
	page := NewUsersPage(backend)

	snap := page.Load(context.Background(), "pending")
	require.Equal(t, StateReady, snap.State)
	require.Len(t, snap.Data, 1)
	row := snap.Data[0]
	assert.Equal(t, "pending", row.Status.Label)
	assert.True(t, row.CanApprove)
	assert.True(t, row.CanReject)

	page.Refresh(context.Background())
	assert.Equal(t, []string{"FetchUsers:pending", "FetchUsers:pending"}, backend.Calls())
}

func TestUsersPage_SessionExpired(t *testing.T) {
	page := NewUsersPage(&mockBackend{
		FetchUsersFunc: func(context.Context, string) ([]adminapi.User, error) {
			return nil, adminapi.ErrUnauthenticated
		},
	})

	snap := page.Load(context.Background(), "")
	assert.Equal(t, StateError, snap.State)
	require.NotNil(t, snap.Error)
	assert.True(t, snap.Error.SignInRequired)
	assert.False(t, snap.Error.Retryable)
}

func TestDevicesPage_DerivesStatusAgainstOneInstant(t *testing.T) {
	backend := &mockBackend{
		FetchDevicesFunc: func(ctx context.Context, filter adminapi.DeviceFilter) ([]adminapi.Device, error) {
			assert.Equal(t, "l1", filter.LocationID)
			return []adminapi.Device{
				{ID: "d1", Type: "INM", LastSeen: seen(time.Minute)},
				{ID: "d2", Type: "EOSM", LastSeen: seen(15 * time.Minute)},
				{ID: "d3", Type: "FM"},
			}, nil
		},
	}
	page := NewDevicesPage(backend, clock)

	snap := page.Load(context.Background(), adminapi.DeviceFilter{LocationID: "l1"})
	require.Equal(t, StateReady, snap.State)
	assert.Equal(t, fixedNow, snap.Data.AsOf)
	assert.Equal(t, 1, snap.Data.Summary.Online)
	assert.Equal(t, 1, snap.Data.Summary.Warning)
	assert.Equal(t, 1, snap.Data.Summary.Offline)

	page.Refresh(context.Background())
	assert.Len(t, backend.Calls(), 2)
}

func TestGreenhousesAndAuditLogs(t *testing.T) {
	backend := &mockBackend{
		FetchLocationsFunc: func(context.Context) ([]adminapi.Location, error) {
			return []adminapi.Location{{ID: "l1", Name: "North"}}, nil
		},
		FetchAuditLogsFunc: func(ctx context.Context, limit int) ([]adminapi.AuditLog, error) {
			assert.Equal(t, 25, limit)
			return nil, errors.New("Failed to fetch audit logs")
		},
	}

	greenhouses := NewGreenhousesPage(backend).Load(context.Background())
	require.Equal(t, StateReady, greenhouses.State)
	assert.Equal(t, "North", greenhouses.Data[0].Name)

	logs := NewAuditLogsPage(backend, 25).Load(context.Background())
	assert.Equal(t, StateError, logs.State)
	assert.Equal(t, "Failed to fetch audit logs", logs.Error.Message)
}

func TestOverviewPage(t *testing.T) {
	backend := &mockBackend{
		FetchUsersFunc: func(context.Context, string) ([]adminapi.User, error) {
			return []adminapi.User{
				{ID: "u1", Status: "approved", IsActive: true, CreatedAt: "2026-01-01T00:00:00Z"},
				{ID: "u2", Status: "pending", CreatedAt: "2026-02-01T00:00:00Z"},
				{ID: "u3", Status: "pending", IsActive: true, CreatedAt: "2026-01-15T00:00:00Z"},
			}, nil
		},
		FetchLocationsFunc: func(context.Context) ([]adminapi.Location, error) {
			return []adminapi.Location{{ID: "l1"}, {ID: "l2"}}, nil
		},
		FetchDevicesFunc: func(context.Context, adminapi.DeviceFilter) ([]adminapi.Device, error) {
			return []adminapi.Device{
				{ID: "d1", Type: "INM", LastSeen: seen(time.Minute)},
				{ID: "d2", Type: "INM", LastSeen: seen(2 * time.Hour)},
			}, nil
		},
	}

	snap := NewOverviewPage(backend, clock).Load(context.Background())
	require.Equal(t, StateReady, snap.State)
	o := snap.Data
	assert.Equal(t, 3, o.TotalUsers)
	assert.Equal(t, 2, o.PendingUsers)
	assert.Equal(t, 2, o.ActiveUsers)
	assert.Equal(t, 2, o.TotalGreenhouses)
	assert.Equal(t, 2, o.Devices.Total)
	require.Len(t, o.NeedsAttention, 1)
	assert.Equal(t, "d2", o.NeedsAttention[0].ID)
	require.Len(t, o.RecentUsers, 3)
	assert.Equal(t, []string{"u2", "u3", "u1"}, []string{o.RecentUsers[0].ID, o.RecentUsers[1].ID, o.RecentUsers[2].ID})
}

func TestOverviewPage_FirstFailureWins(t *testing.T) {
	backend := &mockBackend{
		FetchLocationsFunc: func(context.Context) ([]adminapi.Location, error) {
			return nil, adminapi.ErrForbidden
		},
	}

	snap := NewOverviewPage(backend, clock).Load(context.Background())
	assert.Equal(t, StateError, snap.State)
	assert.Equal(t, "Admin access required", snap.Error.Message)
	assert.Equal(t, []string{"FetchUsers:", "FetchLocations"}, backend.Calls(), "devices are not fetched after a failure")
}

func TestSensorDataModal(t *testing.T) {
	testCases := []struct {
		name     string
		device   adminapi.Device
		readings []adminapi.SensorReading
		wantHint string
	}{
		{name: "empty FM shows hint", device: adminapi.Device{ID: "dev1", Type: "FM"}, wantHint: FreshnessHint},
		{name: "empty INM has no hint", device: adminapi.Device{ID: "dev1", Type: "INM"}},
		{
			name:     "FM with readings has no hint",
			device:   adminapi.Device{ID: "dev1", Type: "FM"},
			readings: []adminapi.SensorReading{{Timestamp: "2026-02-23T17:59:00Z"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			backend := &mockBackend{
				FetchDeviceSensorDataFunc: func(ctx context.Context, deviceID string, limit int) (*adminapi.SensorData, error) {
					assert.Equal(t, "dev1", deviceID)
					assert.Equal(t, 50, limit)
					return &adminapi.SensorData{Device: tc.device, Readings: tc.readings, Count: len(tc.readings)}, nil
				},
			}
			modal := NewSensorDataModal(backend, 50, clock)

			snap := modal.Open(context.Background(), "dev1")
			require.Equal(t, StateReady, snap.State)
			assert.Equal(t, tc.wantHint, snap.Data.Hint)
			assert.Equal(t, len(tc.readings), snap.Data.Count)
			assert.NotNil(t, snap.Data.Readings)

			modal.Close()
			assert.Equal(t, StateLoading, modal.Snapshot().State)
		})
	}
}

func TestSensorDataModal_NotFound(t *testing.T) {
	modal := NewSensorDataModal(&mockBackend{
		FetchDeviceSensorDataFunc: func(context.Context, string, int) (*adminapi.SensorData, error) {
			return nil, &adminapi.NotFoundError{Entity: "Device"}
		},
	}, 50, clock)

	snap := modal.Open(context.Background(), "gone")
	assert.Equal(t, StateError, snap.State)
	assert.Equal(t, "Device not found", snap.Error.Message)
}

func TestConsole_SearchShortCircuits(t *testing.T) {
	backend := &mockBackend{}
	c := New(context.Background(), backend, Options{})

	for _, q := range []string{"", "a", "  b  ", "é", "薔"} {
		results, err := c.Search(context.Background(), q)
		require.NoError(t, err)
		assert.Empty(t, results)
	}
	assert.Empty(t, backend.Calls())

	_, err := c.Search(context.Background(), "  jane ")
	require.NoError(t, err)
	assert.Equal(t, []string{"SearchApprovedUsers:jane"}, backend.Calls())
}

func TestConsole_Reset(t *testing.T) {
	c := New(context.Background(), &mockBackend{}, Options{Now: clock})
	c.Users.Load(context.Background(), "")
	c.Review.Open(context.Background(), "u1")
	c.AddDevice.Open()

	c.Reset()

	assert.Equal(t, StateLoading, c.Users.Snapshot().State)
	assert.False(t, c.Review.Snapshot().Open)
	assert.False(t, c.AddDevice.Snapshot().Open)
}
