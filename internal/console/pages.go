package console

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/25-26J-299/smartrose-admin/internal/adminapi"
	"github.com/25-26J-299/smartrose-admin/internal/view"
)

// UsersPage lists users, optionally filtered by approval status.
type UsersPage struct {
	*Loader[[]view.User]
	backend Backend

	mu     sync.Mutex
	status string
}

func NewUsersPage(backend Backend) *UsersPage {
	return &UsersPage{Loader: NewLoader[[]view.User](true), backend: backend}
}

// Load fetches users with the given status; empty means all.
func (p *UsersPage) Load(ctx context.Context, status string) Snapshot[[]view.User] {
	p.mu.Lock()
	p.status = status
	p.mu.Unlock()
	return p.Run(ctx, func(ctx context.Context) ([]view.User, error) {
		users, err := p.backend.FetchUsers(ctx, status)
		if err != nil {
			return nil, err
		}
		return view.NewUsers(users), nil
	})
}

// Refresh reloads with the last used filter.
func (p *UsersPage) Refresh(ctx context.Context) Snapshot[[]view.User] {
	p.mu.Lock()
	status := p.status
	p.mu.Unlock()
	return p.Load(ctx, status)
}

// DevicesView is the devices page: rows with derived status plus the
// summary cards, both computed against the same instant.
type DevicesView struct {
	Devices []view.Device      `json:"devices"`
	Summary view.DeviceSummary `json:"summary"`
	AsOf    time.Time          `json:"as_of"`
}

// DevicesPage lists registered devices.
type DevicesPage struct {
	*Loader[DevicesView]
	backend Backend
	now     func() time.Time

	mu     sync.Mutex
	filter adminapi.DeviceFilter
}

func NewDevicesPage(backend Backend, now func() time.Time) *DevicesPage {
	return &DevicesPage{Loader: NewLoader[DevicesView](true), backend: backend, now: now}
}

// Load fetches devices matching filter.
func (p *DevicesPage) Load(ctx context.Context, filter adminapi.DeviceFilter) Snapshot[DevicesView] {
	p.mu.Lock()
	p.filter = filter
	p.mu.Unlock()
	return p.Run(ctx, func(ctx context.Context) (DevicesView, error) {
		devices, err := p.backend.FetchDevices(ctx, filter)
		if err != nil {
			return DevicesView{}, err
		}
		now := p.now()
		rows := view.NewDevices(devices, now)
		return DevicesView{Devices: rows, Summary: view.Summarize(rows), AsOf: now}, nil
	})
}

// Refresh reloads with the last used filter.
func (p *DevicesPage) Refresh(ctx context.Context) Snapshot[DevicesView] {
	p.mu.Lock()
	filter := p.filter
	p.mu.Unlock()
	return p.Load(ctx, filter)
}

// GreenhousesPage lists every greenhouse and flower shop.
type GreenhousesPage struct {
	*Loader[[]view.Greenhouse]
	backend Backend
}

func NewGreenhousesPage(backend Backend) *GreenhousesPage {
	return &GreenhousesPage{Loader: NewLoader[[]view.Greenhouse](true), backend: backend}
}

func (p *GreenhousesPage) Load(ctx context.Context) Snapshot[[]view.Greenhouse] {
	return p.Run(ctx, func(ctx context.Context) ([]view.Greenhouse, error) {
		locations, err := p.backend.FetchLocations(ctx)
		if err != nil {
			return nil, err
		}
		return view.NewGreenhouses(locations), nil
	})
}

// AuditLogsPage shows the most recent admin actions.
type AuditLogsPage struct {
	*Loader[[]view.AuditLog]
	backend Backend
	limit   int
}

func NewAuditLogsPage(backend Backend, limit int) *AuditLogsPage {
	return &AuditLogsPage{Loader: NewLoader[[]view.AuditLog](true), backend: backend, limit: limit}
}

func (p *AuditLogsPage) Load(ctx context.Context) Snapshot[[]view.AuditLog] {
	return p.Run(ctx, func(ctx context.Context) ([]view.AuditLog, error) {
		logs, err := p.backend.FetchAuditLogs(ctx, p.limit)
		if err != nil {
			return nil, err
		}
		return view.NewAuditLogs(logs), nil
	})
}

const recentUserCount = 5

// Overview is the landing page summary.
type Overview struct {
	TotalUsers       int                `json:"total_users"`
	PendingUsers     int                `json:"pending_users"`
	ActiveUsers      int                `json:"active_users"`
	TotalGreenhouses int                `json:"total_greenhouses"`
	Devices          view.DeviceSummary `json:"devices"`
	NeedsAttention   []view.Device      `json:"needs_attention"`
	RecentUsers      []view.User        `json:"recent_users"`
	AsOf             time.Time          `json:"as_of"`
}

// OverviewPage aggregates users, greenhouses and devices.
type OverviewPage struct {
	*Loader[Overview]
	backend Backend
	now     func() time.Time
}

func NewOverviewPage(backend Backend, now func() time.Time) *OverviewPage {
	return &OverviewPage{Loader: NewLoader[Overview](true), backend: backend, now: now}
}

func (p *OverviewPage) Load(ctx context.Context) Snapshot[Overview] {
	return p.Run(ctx, p.fetch)
}

func (p *OverviewPage) fetch(ctx context.Context) (Overview, error) {
	users, err := p.backend.FetchUsers(ctx, "")
	if err != nil {
		return Overview{}, err
	}
	locations, err := p.backend.FetchLocations(ctx)
	if err != nil {
		return Overview{}, err
	}
	devices, err := p.backend.FetchDevices(ctx, adminapi.DeviceFilter{})
	if err != nil {
		return Overview{}, err
	}

	now := p.now()
	rows := view.NewDevices(devices, now)
	out := Overview{
		TotalUsers:       len(users),
		TotalGreenhouses: len(locations),
		Devices:          view.Summarize(rows),
		NeedsAttention:   []view.Device{},
		AsOf:             now,
	}
	for _, u := range users {
		if view.IsPending(u.Status) {
			out.PendingUsers++
		}
		if u.IsActive {
			out.ActiveUsers++
		}
	}
	for _, d := range rows {
		if d.Status != view.DeviceOnline {
			out.NeedsAttention = append(out.NeedsAttention, d)
		}
	}

	recent := append([]adminapi.User(nil), users...)
	sort.SliceStable(recent, func(i, j int) bool {
		a, _ := recent[i].CreatedAt.Time()
		b, _ := recent[j].CreatedAt.Time()
		return a.After(b)
	})
	if len(recent) > recentUserCount {
		recent = recent[:recentUserCount]
	}
	out.RecentUsers = view.NewUsers(recent)
	return out, nil
}
