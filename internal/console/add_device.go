package console

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/25-26J-299/smartrose-admin/internal/adminapi"
	"github.com/25-26J-299/smartrose-admin/internal/view"
)

// MinQueryLength is the shortest trimmed query, in characters, sent to the
// backend.
const MinQueryLength = 2

func shortQuery(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) < MinQueryLength
}

// SearchState is the state of the approved-user search.
type SearchState string

const (
	SearchIdle       SearchState = "idle"
	SearchDebouncing SearchState = "debouncing"
	SearchSearching  SearchState = "searching"
	SearchResults    SearchState = "results"
	SearchError      SearchState = "error"
)

// DeviceForm is the device being registered.
type DeviceForm struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	SerialNumber string `json:"device_serial_number"`
}

// Selection is the user and location a device will be registered to.
type Selection struct {
	UserID       string `json:"user_id"`
	UserName     string `json:"user_name"`
	LocationID   string `json:"location_id"`
	LocationName string `json:"location_name"`
}

// LocationOption is a location that can be picked from a search result.
type LocationOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// SearchHit is one approved user with the locations they own.
type SearchHit struct {
	UserID    string           `json:"user_id"`
	FullName  string           `json:"full_name"`
	Email     string           `json:"email"`
	Phone     string           `json:"phone,omitempty"`
	Locations []LocationOption `json:"locations"`
}

// AddDeviceSnapshot is the renderable state of the add device flow. Results
// are hidden while a selection is made.
type AddDeviceSnapshot struct {
	Open        bool              `json:"open"`
	Query       string            `json:"query"`
	State       SearchState       `json:"state"`
	Results     []SearchHit       `json:"results"`
	SearchError *Failure          `json:"search_error,omitempty"`
	Selection   *Selection        `json:"selection,omitempty"`
	Form        DeviceForm        `json:"form"`
	FormError   *Failure          `json:"form_error,omitempty"`
	Submitting  bool              `json:"submitting"`
	DeviceTypes []view.DeviceType `json:"device_types"`
}

// AddDeviceFlow finds an approved user by a debounced search and registers a
// device to one of their locations. Every keystroke re-arms the debounce
// timer; every issued search takes a sequence number and only the latest one
// may write results.
type AddDeviceFlow struct {
	backend   Backend
	debounce  time.Duration
	onSuccess func()
	baseCtx   context.Context

	mu         sync.Mutex
	open       bool
	query      string
	state      SearchState
	results    []adminapi.SearchResult
	searchErr  error
	timer      *time.Timer
	timerGen   uint64
	seq        uint64
	cancel     context.CancelFunc
	selection  *Selection
	form       DeviceForm
	formErr    error
	submitting bool
}

// NewAddDeviceFlow creates a closed flow. Searches run under ctx, which
// should live as long as the console.
func NewAddDeviceFlow(ctx context.Context, backend Backend, debounce time.Duration, onSuccess func()) *AddDeviceFlow {
	f := &AddDeviceFlow{backend: backend, debounce: debounce, onSuccess: onSuccess, baseCtx: ctx}
	f.resetLocked()
	return f
}

// Open starts a fresh flow.
func (f *AddDeviceFlow) Open() AddDeviceSnapshot {
	f.mu.Lock()
	f.resetLocked()
	f.open = true
	f.mu.Unlock()
	return f.Snapshot()
}

// Close abandons the flow. Pending timers and searches are discarded.
func (f *AddDeviceFlow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
}

func (f *AddDeviceFlow) resetLocked() {
	f.stopSearchLocked()
	f.open = false
	f.query = ""
	f.state = SearchIdle
	f.results = nil
	f.searchErr = nil
	f.selection = nil
	f.form = DeviceForm{Type: view.DefaultDeviceType}
	f.formErr = nil
	f.submitting = false
}

// stopSearchLocked disarms the timer and invalidates any search in flight.
func (f *AddDeviceFlow) stopSearchLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.timerGen++
	f.seq++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

// SetQuery records a keystroke. Short queries clear the results at once;
// anything else is searched once the input has been quiet for the debounce
// interval.
func (f *AddDeviceFlow) SetQuery(query string) (AddDeviceSnapshot, error) {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return f.Snapshot(), ErrNotOpen
	}
	f.stopSearchLocked()
	f.query = query
	f.searchErr = nil

	if shortQuery(query) {
		f.state = SearchIdle
		f.results = nil
		f.mu.Unlock()
		return f.Snapshot(), nil
	}

	f.state = SearchDebouncing
	gen := f.timerGen
	f.timer = time.AfterFunc(f.debounce, func() { f.fire(gen) })
	f.mu.Unlock()
	return f.Snapshot(), nil
}

func (f *AddDeviceFlow) fire(gen uint64) {
	f.mu.Lock()
	if gen != f.timerGen || !f.open {
		f.mu.Unlock()
		return
	}
	f.timer = nil
	f.seq++
	seq := f.seq
	query := strings.TrimSpace(f.query)
	ctx, cancel := context.WithCancel(f.baseCtx)
	f.cancel = cancel
	f.state = SearchSearching
	f.mu.Unlock()

	results, err := f.backend.SearchApprovedUsers(ctx, query)

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.seq {
		return
	}
	cancel()
	f.cancel = nil
	if err != nil {
		f.state, f.searchErr, f.results = SearchError, err, nil
		return
	}
	f.state, f.results = SearchResults, results
}

// Select picks a location from the current results and reveals the form.
func (f *AddDeviceFlow) Select(userID, locationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrNotOpen
	}
	for _, r := range f.results {
		if r.User.ID != userID {
			continue
		}
		for _, l := range r.Locations {
			if l.ID == locationID {
				f.selection = &Selection{
					UserID:       r.User.ID,
					UserName:     r.User.FullName,
					LocationID:   l.ID,
					LocationName: l.Name,
				}
				f.formErr = nil
				return nil
			}
		}
	}
	return &ValidationError{Message: "Location is not among the search results"}
}

// ChangeSelection drops the selection and shows the results again.
func (f *AddDeviceFlow) ChangeSelection() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrNotOpen
	}
	f.selection = nil
	return nil
}

// SetForm replaces the form fields. An empty type keeps the default.
func (f *AddDeviceFlow) SetForm(form DeviceForm) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrNotOpen
	}
	if form.Type == "" {
		form.Type = view.DefaultDeviceType
	}
	f.form = form
	return nil
}

// Submit validates the form locally and registers the device. On success
// the parent is notified and the flow is reset.
func (f *AddDeviceFlow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return ErrNotOpen
	}
	if f.submitting {
		f.mu.Unlock()
		return ErrBusy
	}
	in, err := f.validateLocked()
	if err != nil {
		f.formErr = err
		f.mu.Unlock()
		return err
	}
	f.submitting = true
	f.formErr = nil
	f.mu.Unlock()

	_, err = f.backend.CreateDevice(ctx, in)

	f.mu.Lock()
	if err != nil {
		if f.open {
			f.submitting = false
			f.formErr = err
		}
		f.mu.Unlock()
		return err
	}
	f.resetLocked()
	f.mu.Unlock()

	if f.onSuccess != nil {
		f.onSuccess()
	}
	return nil
}

func (f *AddDeviceFlow) validateLocked() (adminapi.DeviceCreate, error) {
	if f.selection == nil {
		return adminapi.DeviceCreate{}, &ValidationError{Message: "Please select a user and location"}
	}
	name := strings.TrimSpace(f.form.Name)
	if name == "" {
		return adminapi.DeviceCreate{}, &ValidationError{Message: "Please enter device name"}
	}
	serial := strings.TrimSpace(f.form.SerialNumber)
	if serial == "" {
		return adminapi.DeviceCreate{}, &ValidationError{Message: "Please enter device serial number"}
	}
	if _, ok := view.LookupDeviceType(f.form.Type); !ok {
		return adminapi.DeviceCreate{}, &ValidationError{Message: "Please select a valid device type"}
	}
	return adminapi.DeviceCreate{
		LocationID:   f.selection.LocationID,
		UserID:       f.selection.UserID,
		Name:         name,
		Type:         f.form.Type,
		SerialNumber: serial,
	}, nil
}

// Snapshot returns the current state.
func (f *AddDeviceFlow) Snapshot() AddDeviceSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := AddDeviceSnapshot{
		Open:        f.open,
		Query:       f.query,
		State:       f.state,
		Results:     []SearchHit{},
		SearchError: NewFailure(f.searchErr, false),
		Form:        f.form,
		FormError:   NewFailure(f.formErr, false),
		Submitting:  f.submitting,
		DeviceTypes: view.DeviceTypes,
	}
	if f.selection != nil {
		sel := *f.selection
		s.Selection = &sel
		return s
	}
	s.Results = searchHits(f.results)
	return s
}

func searchHits(results []adminapi.SearchResult) []SearchHit {
	hits := make([]SearchHit, 0, len(results))
	for _, r := range results {
		hit := SearchHit{
			UserID:    r.User.ID,
			FullName:  r.User.FullName,
			Email:     r.User.Email,
			Phone:     r.User.Phone,
			Locations: make([]LocationOption, 0, len(r.Locations)),
		}
		for _, l := range r.Locations {
			hit.Locations = append(hit.Locations, LocationOption{ID: l.ID, Name: l.Name, Type: l.Type})
		}
		hits = append(hits, hit)
	}
	return hits
}
