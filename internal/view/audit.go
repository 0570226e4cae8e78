package view

import (
	"strings"

	"github.com/25-26J-299/smartrose-admin/internal/adminapi"
)

// AuditLog is a row of the audit log table.
type AuditLog struct {
	ID           string `json:"id"`
	AdminID      string `json:"admin_id"`
	AdminName    string `json:"admin_name"`
	Action       Badge  `json:"action"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	Details      string `json:"details,omitempty"`
	IPAddress    string `json:"ip_address,omitempty"`
	Timestamp    string `json:"timestamp"`
}

// ActionTone classifies an audit action: destructive actions are red, changes
// amber, reads gray and anything else blue.
func ActionTone(action string) Tone {
	switch {
	case containsAny(action, "DELETE", "REVOKE", "DEACTIVATE"):
		return ToneRed
	case containsAny(action, "CHANGE", "UPDATE"):
		return ToneAmber
	case containsAny(action, "VIEW", "LIST"):
		return ToneGray
	default:
		return ToneBlue
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// NewAuditLogs adapts backend audit entries.
func NewAuditLogs(logs []adminapi.AuditLog) []AuditLog {
	out := make([]AuditLog, 0, len(logs))
	for _, l := range logs {
		out = append(out, AuditLog{
			ID:           l.ID,
			AdminID:      l.AdminID,
			AdminName:    l.AdminName,
			Action:       Badge{Label: l.Action, Tone: ActionTone(l.Action)},
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			Details:      l.Details,
			IPAddress:    l.IPAddress,
			Timestamp:    l.Timestamp.String(),
		})
	}
	return out
}
