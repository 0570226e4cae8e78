package console

import (
	"context"
	"log"
	"strings"
	"time"
)

// Options tunes a Console. Zero values fall back to defaults.
type Options struct {
	SearchDebounce     time.Duration
	SensorReadingLimit int
	AuditLogLimit      int
	Now                func() time.Time
}

// Console is every page and modal of the admin console for one operator.
type Console struct {
	Users       *UsersPage
	Devices     *DevicesPage
	Greenhouses *GreenhousesPage
	AuditLogs   *AuditLogsPage
	Overview    *OverviewPage
	Sensor      *SensorDataModal
	Review      *UserReviewModal
	AddDevice   *AddDeviceFlow

	backend Backend
	ctx     context.Context
}

// New wires the console to backend. ctx bounds background work such as
// debounced searches and list refreshes after a successful write.
func New(ctx context.Context, backend Backend, opts Options) *Console {
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = 300 * time.Millisecond
	}
	if opts.SensorReadingLimit <= 0 {
		opts.SensorReadingLimit = 50
	}
	if opts.AuditLogLimit <= 0 {
		opts.AuditLogLimit = 100
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &Console{
		Users:       NewUsersPage(backend),
		Devices:     NewDevicesPage(backend, opts.Now),
		Greenhouses: NewGreenhousesPage(backend),
		AuditLogs:   NewAuditLogsPage(backend, opts.AuditLogLimit),
		Overview:    NewOverviewPage(backend, opts.Now),
		Sensor:      NewSensorDataModal(backend, opts.SensorReadingLimit, opts.Now),
		backend:     backend,
		ctx:         ctx,
	}
	c.Review = NewUserReviewModal(backend, c.refreshUsers)
	c.AddDevice = NewAddDeviceFlow(ctx, backend, opts.SearchDebounce, c.refreshDevices)
	return c
}

func (c *Console) refreshUsers() {
	if snap := c.Users.Refresh(c.ctx); snap.Error != nil {
		log.Printf("Warning: failed to refresh users after review: %s", snap.Error.Message)
	}
}

func (c *Console) refreshDevices() {
	if snap := c.Devices.Refresh(c.ctx); snap.Error != nil {
		log.Printf("Warning: failed to refresh devices after registration: %s", snap.Error.Message)
	}
}

// Search is the stateless form of the approved-user search. Short queries
// return no results without a request.
func (c *Console) Search(ctx context.Context, query string) ([]SearchHit, error) {
	query = strings.TrimSpace(query)
	if shortQuery(query) {
		return []SearchHit{}, nil
	}
	results, err := c.backend.SearchApprovedUsers(ctx, query)
	if err != nil {
		return nil, err
	}
	return searchHits(results), nil
}

// Reset closes every modal and forgets all loaded pages. It runs when the
// session ends so nothing from the previous session stays on screen.
func (c *Console) Reset() {
	c.Review.Close()
	c.AddDevice.Close()
	c.Sensor.Close()
	c.Users.Unmount()
	c.Devices.Unmount()
	c.Greenhouses.Unmount()
	c.AuditLogs.Unmount()
	c.Overview.Unmount()
}
