package view

import "github.com/25-26J-299/smartrose-admin/internal/adminapi"

// DefaultLocationType is used when the backend omits a location's type.
const DefaultLocationType = "greenhouse"

// Greenhouse is a row of the greenhouses table. Device and member counts are
// maintained by the backend and shown read-only.
type Greenhouse struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Address     string `json:"address,omitempty"`
	Status      Badge  `json:"status"`
	DeviceCount int    `json:"device_count"`
	MemberCount int    `json:"member_count"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// NewGreenhouse adapts a backend location. A location without an explicit
// is_active flag counts as active.
func NewGreenhouse(l adminapi.Location) Greenhouse {
	typ := l.Type
	if typ == "" {
		typ = DefaultLocationType
	}
	status := Badge{Label: "active", Tone: ToneGreen}
	if l.IsActive != nil && !*l.IsActive {
		status = Badge{Label: "inactive", Tone: ToneGray}
	}
	return Greenhouse{
		ID:          l.ID,
		OwnerID:     l.UserID,
		Name:        l.Name,
		Type:        typ,
		Address:     l.Address,
		Status:      status,
		DeviceCount: l.DeviceCount,
		MemberCount: l.MemberCount,
		CreatedAt:   l.CreatedAt.String(),
	}
}

// NewGreenhouses adapts a list of backend locations.
func NewGreenhouses(locations []adminapi.Location) []Greenhouse {
	out := make([]Greenhouse, 0, len(locations))
	for _, l := range locations {
		out = append(out, NewGreenhouse(l))
	}
	return out
}
