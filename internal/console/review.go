package console

import (
	"context"
	"sync"

	"github.com/25-26J-299/smartrose-admin/internal/adminapi"
	"github.com/25-26J-299/smartrose-admin/internal/view"
)

// UserDraft buffers edits to a user's profile.
type UserDraft struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// LocationDraft buffers edits to one location.
type LocationDraft struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Address string `json:"address"`
}

// LocationDraftRow is a location draft keyed by the location it edits.
type LocationDraftRow struct {
	ID string `json:"id"`
	LocationDraft
}

// DraftPatch replaces parts of the edit buffers. Nil or absent entries are
// left as they are.
type DraftPatch struct {
	User      *UserDraft               `json:"user,omitempty"`
	Locations map[string]LocationDraft `json:"locations,omitempty"`
}

// ReviewMode is read-only or editing.
type ReviewMode string

const (
	ModeView ReviewMode = "view"
	ModeEdit ReviewMode = "edit"
)

// ReviewSnapshot is the renderable state of the review modal.
type ReviewSnapshot struct {
	Open           bool               `json:"open"`
	UserID         string             `json:"user_id,omitempty"`
	State          State              `json:"state"`
	Error          *Failure           `json:"error,omitempty"`
	User           *view.User         `json:"user,omitempty"`
	Locations      []view.Greenhouse  `json:"locations"`
	Mode           ReviewMode         `json:"mode"`
	UserDraft      UserDraft          `json:"user_draft"`
	LocationDrafts []LocationDraftRow `json:"location_drafts"`
	Actioning      bool               `json:"actioning"`
	ActionError    *Failure           `json:"action_error,omitempty"`
	CanApprove     bool               `json:"can_approve"`
	CanReject      bool               `json:"can_reject"`

	loadErr error
}

// Err returns the load error behind Error, or nil.
func (s ReviewSnapshot) Err() error { return s.loadErr }

// UserReviewModal views, edits, approves or rejects one user. onSuccess runs
// after an approve or reject so the parent can refresh its list. gen counts
// loads; actionGen counts openings, so a reload does not orphan a save or
// decision that is still in flight.
type UserReviewModal struct {
	backend   Backend
	onSuccess func()

	mu        sync.Mutex
	open      bool
	userID    string
	gen       uint64
	actionGen uint64
	state     State
	loadErr   error
	user      *adminapi.User
	locations []adminapi.Location
	editing   bool
	userDraft UserDraft
	drafts    map[string]LocationDraft
	actioning bool
	actionErr error
}

func NewUserReviewModal(backend Backend, onSuccess func()) *UserReviewModal {
	return &UserReviewModal{backend: backend, onSuccess: onSuccess, state: StateLoading}
}

// Open shows userID and loads it with its locations.
func (m *UserReviewModal) Open(ctx context.Context, userID string) ReviewSnapshot {
	m.mu.Lock()
	m.open = true
	m.userID = userID
	m.actionGen++
	m.user, m.locations = nil, nil
	m.editing = false
	m.actioning, m.actionErr = false, nil
	m.mu.Unlock()

	m.load(ctx)
	return m.Snapshot()
}

// Reload fetches the open user again.
func (m *UserReviewModal) Reload(ctx context.Context) (ReviewSnapshot, error) {
	if !m.isOpen() {
		return m.Snapshot(), ErrNotOpen
	}
	m.load(ctx)
	return m.Snapshot(), nil
}

func (m *UserReviewModal) load(ctx context.Context) {
	m.mu.Lock()
	m.gen++
	gen, userID := m.gen, m.userID
	m.state, m.loadErr = StateLoading, nil
	m.mu.Unlock()

	user, locations, err := m.backend.FetchUserWithLocations(ctx, userID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen || !m.open {
		return
	}
	if err != nil {
		m.state, m.loadErr = StateError, err
		m.user, m.locations = nil, nil
		return
	}
	m.state = StateReady
	m.user, m.locations = user, locations
	m.resetDrafts()
}

// resetDrafts copies the last loaded server data into the edit buffers.
func (m *UserReviewModal) resetDrafts() {
	m.userDraft = UserDraft{}
	m.drafts = make(map[string]LocationDraft, len(m.locations))
	if m.user != nil {
		role := m.user.Role
		if role == "" {
			role = view.DefaultRole
		}
		m.userDraft = UserDraft{FullName: m.user.FullName, Phone: m.user.Phone, Role: role}
	}
	for _, l := range m.locations {
		typ := l.Type
		if typ == "" {
			typ = view.DefaultLocationType
		}
		m.drafts[l.ID] = LocationDraft{Name: l.Name, Type: typ, Address: l.Address}
	}
}

// Close hides the modal. Loads and writes still in flight no longer touch it.
func (m *UserReviewModal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	m.gen++
	m.actionGen++
	m.userID = ""
	m.state, m.loadErr = StateLoading, nil
	m.user, m.locations = nil, nil
	m.editing = false
	m.userDraft, m.drafts = UserDraft{}, nil
	m.actioning, m.actionErr = false, nil
}

// Edit switches to edit mode.
func (m *UserReviewModal) Edit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.readyLocked(); err != nil {
		return err
	}
	m.editing = true
	return nil
}

// Cancel leaves edit mode and discards every draft.
func (m *UserReviewModal) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return ErrNotOpen
	}
	m.editing = false
	m.actionErr = nil
	m.resetDrafts()
	return nil
}

// UpdateDraft merges patch into the edit buffers.
func (m *UserReviewModal) UpdateDraft(patch DraftPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.readyLocked(); err != nil {
		return err
	}
	if !m.editing {
		return &ValidationError{Message: "Not in edit mode"}
	}
	for id := range patch.Locations {
		if _, ok := m.drafts[id]; !ok {
			return &ValidationError{Message: "Unknown location " + id}
		}
	}
	if patch.User != nil {
		m.userDraft = *patch.User
	}
	for id, draft := range patch.Locations {
		m.drafts[id] = draft
	}
	return nil
}

// Save writes the user draft and then each location draft in order. The
// first failure stops the sequence and keeps edit mode. On success the modal
// reloads and returns to read-only mode.
func (m *UserReviewModal) Save(ctx context.Context) error {
	m.mu.Lock()
	if err := m.startActionLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	if !m.editing {
		m.actioning = false
		m.mu.Unlock()
		return &ValidationError{Message: "Not in edit mode"}
	}
	gen, userID := m.actionGen, m.user.ID
	userUpdate := adminapi.UserUpdate{
		FullName: m.userDraft.FullName,
		Phone:    m.userDraft.Phone,
		Role:     m.userDraft.Role,
	}
	type locationWrite struct {
		id     string
		update adminapi.LocationUpdate
	}
	writes := make([]locationWrite, 0, len(m.locations))
	for _, l := range m.locations {
		d := m.drafts[l.ID]
		writes = append(writes, locationWrite{id: l.ID, update: adminapi.LocationUpdate{Name: d.Name, Type: d.Type, Address: d.Address}})
	}
	m.mu.Unlock()

	err := func() error {
		if _, err := m.backend.UpdateUser(ctx, userID, userUpdate); err != nil {
			return err
		}
		for _, w := range writes {
			if _, err := m.backend.UpdateLocation(ctx, w.id, w.update); err != nil {
				return err
			}
		}
		return nil
	}()

	m.mu.Lock()
	if gen != m.actionGen || !m.open {
		m.mu.Unlock()
		return err
	}
	m.actioning = false
	if err != nil {
		m.actionErr = err
		m.mu.Unlock()
		return err
	}
	m.editing = false
	m.mu.Unlock()

	m.load(ctx)
	return nil
}

// Approve moves a pending user to approved.
func (m *UserReviewModal) Approve(ctx context.Context) error {
	return m.decide(ctx, view.StatusApproved)
}

// Reject moves a pending user to rejected.
func (m *UserReviewModal) Reject(ctx context.Context) error {
	return m.decide(ctx, view.StatusRejected)
}

func (m *UserReviewModal) decide(ctx context.Context, status string) error {
	m.mu.Lock()
	if err := m.startActionLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	if !view.IsPending(m.user.Status) {
		m.actioning = false
		m.mu.Unlock()
		return ErrNotPending
	}
	gen, userID := m.actionGen, m.user.ID
	m.mu.Unlock()

	_, err := m.backend.UpdateUserStatus(ctx, userID, status)

	m.mu.Lock()
	current := gen == m.actionGen && m.open
	if current {
		m.actioning = false
		m.actionErr = err
	}
	m.mu.Unlock()
	if err != nil {
		return err
	}

	if current {
		m.Close()
	}
	if m.onSuccess != nil {
		m.onSuccess()
	}
	return nil
}

func (m *UserReviewModal) readyLocked() error {
	if !m.open {
		return ErrNotOpen
	}
	if m.state != StateReady || m.user == nil {
		return ErrNotLoaded
	}
	return nil
}

func (m *UserReviewModal) startActionLocked() error {
	if err := m.readyLocked(); err != nil {
		return err
	}
	if m.actioning {
		return ErrBusy
	}
	m.actioning = true
	m.actionErr = nil
	return nil
}

func (m *UserReviewModal) isOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Snapshot returns the current state.
func (m *UserReviewModal) Snapshot() ReviewSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := ReviewSnapshot{
		Open:           m.open,
		UserID:         m.userID,
		State:          m.state,
		Error:          NewFailure(m.loadErr, true),
		loadErr:        m.loadErr,
		Locations:      []view.Greenhouse{},
		Mode:           ModeView,
		LocationDrafts: []LocationDraftRow{},
		Actioning:      m.actioning,
		ActionError:    NewFailure(m.actionErr, false),
	}
	if m.editing {
		s.Mode = ModeEdit
	}
	if m.state == StateReady && m.user != nil {
		u := view.NewUser(*m.user)
		s.User = &u
		s.Locations = view.NewGreenhouses(m.locations)
		s.CanApprove, s.CanReject = u.CanApprove, u.CanReject
		s.UserDraft = m.userDraft
		for _, l := range m.locations {
			s.LocationDrafts = append(s.LocationDrafts, LocationDraftRow{ID: l.ID, LocationDraft: m.drafts[l.ID]})
		}
	}
	return s
}
