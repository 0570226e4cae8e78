// Package console holds the state of the admin console: page loaders, the
// user review modal, the add device flow and the sensor data modal. All of it
// is driven by the HTTP handlers in internal/api.
package console

import (
	"context"
	"errors"

	"github.com/25-26J-299/smartrose-admin/internal/adminapi"
)

// Backend is the subset of the admin API the console needs.
type Backend interface {
	FetchUsers(ctx context.Context, status string) ([]adminapi.User, error)
	FetchUserWithLocations(ctx context.Context, userID string) (*adminapi.User, []adminapi.Location, error)
	UpdateUser(ctx context.Context, userID string, update adminapi.UserUpdate) (*adminapi.User, error)
	UpdateUserStatus(ctx context.Context, userID, status string) (*adminapi.User, error)
	UpdateLocation(ctx context.Context, locationID string, update adminapi.LocationUpdate) (*adminapi.Location, error)
	FetchLocations(ctx context.Context) ([]adminapi.Location, error)
	SearchApprovedUsers(ctx context.Context, query string) ([]adminapi.SearchResult, error)
	FetchDevices(ctx context.Context, filter adminapi.DeviceFilter) ([]adminapi.Device, error)
	CreateDevice(ctx context.Context, in adminapi.DeviceCreate) (*adminapi.Device, error)
	FetchDeviceSensorData(ctx context.Context, deviceID string, limit int) (*adminapi.SensorData, error)
	FetchAuditLogs(ctx context.Context, limit int) ([]adminapi.AuditLog, error)
}

var _ Backend = (*adminapi.Client)(nil)

// ValidationError is a problem detected before any request is sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

var (
	ErrNotOpen    = &ValidationError{Message: "Nothing is open"}
	ErrNotLoaded  = &ValidationError{Message: "User has not finished loading"}
	ErrNotPending = &ValidationError{Message: "Only pending users can be approved or rejected"}
	ErrBusy       = &ValidationError{Message: "Another action is in progress"}
)

// Failure is an error as shown to the operator.
type Failure struct {
	Message        string `json:"message"`
	Retryable      bool   `json:"retryable"`
	SignInRequired bool   `json:"sign_in_required"`
}

// NewFailure describes err. Retrying is never offered for an expired session
// or a missing admin role.
func NewFailure(err error, retryable bool) *Failure {
	if err == nil {
		return nil
	}
	f := &Failure{Message: err.Error(), Retryable: retryable}
	switch {
	case errors.Is(err, adminapi.ErrUnauthenticated):
		f.Retryable = false
		f.SignInRequired = true
	case errors.Is(err, adminapi.ErrForbidden):
		f.Retryable = false
	}
	return f
}
