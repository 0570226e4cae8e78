package view

import (
	"github.com/25-26J-299/smartrose-admin/internal/adminapi"
)

// Approval statuses a user moves through.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// DefaultRole is shown, and edited, when the backend omits a user's role.
const DefaultRole = "farmer"

var roleTones = map[string]Tone{
	"farmer":     ToneGreen,
	"florist":    TonePurple,
	"admin":      ToneBlue,
	"superadmin": ToneRed,
}

var statusTones = map[string]Tone{
	StatusPending:  ToneAmber,
	StatusApproved: ToneGreen,
	StatusRejected: ToneRed,
}

var tierTones = map[string]Tone{
	"basic":      ToneGray,
	"pro":        ToneBlue,
	"enterprise": ToneAmber,
}

// User is a row of the users table.
type User struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	Role             Badge  `json:"role"`
	Status           Badge  `json:"status"`
	Active           bool   `json:"is_active"`
	SubscriptionTier Badge  `json:"subscription_tier"`
	CreatedAt        string `json:"created_at"`
	LastLogin        string `json:"last_login,omitempty"`
	CanApprove       bool   `json:"can_approve"`
	CanReject        bool   `json:"can_reject"`
}

// NewUser adapts a backend user.
func NewUser(u adminapi.User) User {
	role := u.Role
	if role == "" {
		role = DefaultRole
	}
	tier := u.SubscriptionTier
	if tier == "" {
		tier = "basic"
	}
	pending := IsPending(u.Status)
	return User{
		ID:               u.ID,
		Name:             u.FullName,
		Email:            u.Email,
		Phone:            u.Phone,
		Role:             badge(role, roleTones),
		Status:           badge(u.Status, statusTones),
		Active:           u.IsActive,
		SubscriptionTier: badge(tier, tierTones),
		CreatedAt:        u.CreatedAt.String(),
		LastLogin:        u.LastLogin.String(),
		CanApprove:       pending,
		CanReject:        pending,
	}
}

// NewUsers adapts a list of backend users.
func NewUsers(users []adminapi.User) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		out = append(out, NewUser(u))
	}
	return out
}

// IsPending reports whether approve and reject are offered. Only the exact
// status "pending" qualifies.
func IsPending(status string) bool {
	return status == StatusPending
}
