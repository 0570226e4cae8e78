package console

import (
	"context"
	"sync"

	"github.com/25-26J-299/smartrose-admin/internal/adminapi"
)

// mockBackend implements Backend; unset funcs return zero values.
type mockBackend struct {
	mu    sync.Mutex
	calls []string

	FetchUsersFunc             func(ctx context.Context, status string) ([]adminapi.User, error)
	FetchUserWithLocationsFunc func(ctx context.Context, userID string) (*adminapi.User, []adminapi.Location, error)
	UpdateUserFunc             func(ctx context.Context, userID string, update adminapi.UserUpdate) (*adminapi.User, error)
	UpdateUserStatusFunc       func(ctx context.Context, userID, status string) (*adminapi.User, error)
	UpdateLocationFunc         func(ctx context.Context, locationID string, update adminapi.LocationUpdate) (*adminapi.Location, error)
	FetchLocationsFunc         func(ctx context.Context) ([]adminapi.Location, error)
	SearchApprovedUsersFunc    func(ctx context.Context, query string) ([]adminapi.SearchResult, error)
	FetchDevicesFunc           func(ctx context.Context, filter adminapi.DeviceFilter) ([]adminapi.Device, error)
	CreateDeviceFunc           func(ctx context.Context, in adminapi.DeviceCreate) (*adminapi.Device, error)
	FetchDeviceSensorDataFunc  func(ctx context.Context, deviceID string, limit int) (*adminapi.SensorData, error)
	FetchAuditLogsFunc         func(ctx context.Context, limit int) ([]adminapi.AuditLog, error)
}

func (m *mockBackend) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

// Calls returns the recorded calls in order.
func (m *mockBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockBackend) FetchUsers(ctx context.Context, status string) ([]adminapi.User, error) {
	m.record("FetchUsers:" + status)
	if m.FetchUsersFunc != nil {
		return m.FetchUsersFunc(ctx, status)
	}
	return []adminapi.User{}, nil
}

func (m *mockBackend) FetchUserWithLocations(ctx context.Context, userID string) (*adminapi.User, []adminapi.Location, error) {
	m.record("FetchUserWithLocations:" + userID)
	if m.FetchUserWithLocationsFunc != nil {
		return m.FetchUserWithLocationsFunc(ctx, userID)
	}
	return &adminapi.User{ID: userID}, []adminapi.Location{}, nil
}

func (m *mockBackend) UpdateUser(ctx context.Context, userID string, update adminapi.UserUpdate) (*adminapi.User, error) {
	m.record("UpdateUser:" + userID)
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, userID, update)
	}
	return &adminapi.User{ID: userID}, nil
}

func (m *mockBackend) UpdateUserStatus(ctx context.Context, userID, status string) (*adminapi.User, error) {
	m.record("UpdateUserStatus:" + userID + ":" + status)
	if m.UpdateUserStatusFunc != nil {
		return m.UpdateUserStatusFunc(ctx, userID, status)
	}
	return &adminapi.User{ID: userID, Status: status}, nil
}

func (m *mockBackend) UpdateLocation(ctx context.Context, locationID string, update adminapi.LocationUpdate) (*adminapi.Location, error) {
	m.record("UpdateLocation:" + locationID)
	if m.UpdateLocationFunc != nil {
		return m.UpdateLocationFunc(ctx, locationID, update)
	}
	return &adminapi.Location{ID: locationID}, nil
}

func (m *mockBackend) FetchLocations(ctx context.Context) ([]adminapi.Location, error) {
	m.record("FetchLocations")
	if m.FetchLocationsFunc != nil {
		return m.FetchLocationsFunc(ctx)
	}
	return []adminapi.Location{}, nil
}

func (m *mockBackend) SearchApprovedUsers(ctx context.Context, query string) ([]adminapi.SearchResult, error) {
	m.record("SearchApprovedUsers:" + query)
	if m.SearchApprovedUsersFunc != nil {
		return m.SearchApprovedUsersFunc(ctx, query)
	}
	return []adminapi.SearchResult{}, nil
}

func (m *mockBackend) FetchDevices(ctx context.Context, filter adminapi.DeviceFilter) ([]adminapi.Device, error) {
	m.record("FetchDevices")
	if m.FetchDevicesFunc != nil {
		return m.FetchDevicesFunc(ctx, filter)
	}
	return []adminapi.Device{}, nil
}

func (m *mockBackend) CreateDevice(ctx context.Context, in adminapi.DeviceCreate) (*adminapi.Device, error) {
	m.record("CreateDevice")
	if m.CreateDeviceFunc != nil {
		return m.CreateDeviceFunc(ctx, in)
	}
	return &adminapi.Device{ID: "new", Name: in.Name}, nil
}

func (m *mockBackend) FetchDeviceSensorData(ctx context.Context, deviceID string, limit int) (*adminapi.SensorData, error) {
	m.record("FetchDeviceSensorData:" + deviceID)
	if m.FetchDeviceSensorDataFunc != nil {
		return m.FetchDeviceSensorDataFunc(ctx, deviceID, limit)
	}
	return &adminapi.SensorData{Device: adminapi.Device{ID: deviceID}, Readings: []adminapi.SensorReading{}}, nil
}

func (m *mockBackend) FetchAuditLogs(ctx context.Context, limit int) ([]adminapi.AuditLog, error) {
	m.record("FetchAuditLogs")
	if m.FetchAuditLogsFunc != nil {
		return m.FetchAuditLogsFunc(ctx, limit)
	}
	return []adminapi.AuditLog{}, nil
}
