package adminapi

import "github.com/25-26J-299/smartrose-admin/internal/parse"

// User is a user record as returned by the backend.
type User struct {
	ID               string          `json:"_id"`
	FullName         string          `json:"full_name"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone,omitempty"`
	Role             string          `json:"role"`
	Status           string          `json:"status"`
	IsActive         bool            `json:"is_active"`
	SubscriptionTier string          `json:"subscription_tier,omitempty"`
	CreatedAt        parse.Timestamp `json:"created_at"`
	UpdatedAt        parse.Timestamp `json:"updated_at,omitempty"`
	LastLogin        parse.Timestamp `json:"last_login,omitempty"`
}

// Location is a greenhouse or flower shop owned by a user.
type Location struct {
	ID          string          `json:"_id"`
	UserID      string          `json:"user_id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Address     string          `json:"address"`
	IsActive    *bool           `json:"is_active,omitempty"`
	DeviceCount int             `json:"device_count,omitempty"`
	MemberCount int             `json:"member_count,omitempty"`
	CreatedAt   parse.Timestamp `json:"created_at,omitempty"`
	UpdatedAt   parse.Timestamp `json:"updated_at,omitempty"`
}

// Device is a registered IoT device.
type Device struct {
	ID           string          `json:"_id"`
	LocationID   string          `json:"location_id"`
	UserID       string          `json:"user_id"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	SerialNumber string          `json:"device_serial_number"`
	LocationName string          `json:"location_name,omitempty"`
	OwnerName    string          `json:"owner_name,omitempty"`
	LastSeen     parse.Timestamp `json:"last_seen,omitempty"`
	CreatedAt    parse.Timestamp `json:"created_at,omitempty"`
}

// SensorReading is one raw reading; absent measurements stay nil.
type SensorReading struct {
	DeviceID         string          `json:"device_id,omitempty"`
	Timestamp        parse.Timestamp `json:"timestamp"`
	AirTemperature   *float64        `json:"air_temperature,omitempty"`
	WaterTemperature *float64        `json:"water_temperature,omitempty"`
	Humidity         *float64        `json:"humidity,omitempty"`
	GasValue         *float64        `json:"gas_value,omitempty"`
	WaterLevel       *float64        `json:"water_level,omitempty"`
}

// SensorData is the payload of the device sensor-data endpoint.
type SensorData struct {
	Device   Device          `json:"device"`
	Readings []SensorReading `json:"readings"`
	Count    int             `json:"count"`
}

// SearchResult pairs an approved user with the locations a device could be
// registered to.
type SearchResult struct {
	User      User       `json:"user"`
	Locations []Location `json:"locations"`
}

// AuditLog is a server-generated record of an admin action.
type AuditLog struct {
	ID           string          `json:"_id"`
	AdminID      string          `json:"admin_id"`
	AdminName    string          `json:"admin_name,omitempty"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resource_type"`
	ResourceID   string          `json:"resource_id"`
	Details      string          `json:"details,omitempty"`
	IPAddress    string          `json:"ip_address,omitempty"`
	Timestamp    parse.Timestamp `json:"timestamp"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string `json:"-"`
	User  User   `json:"user"`
}

// UserUpdate is a partial user edit; empty fields are left untouched.
type UserUpdate struct {
	FullName string `json:"full_name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role,omitempty"`
}

// LocationUpdate is a partial location edit; empty fields are left untouched.
type LocationUpdate struct {
	Name    string `json:"name,omitempty"`
	Type    string `json:"type,omitempty"`
	Address string `json:"address,omitempty"`
}

// DeviceCreate registers a device to a user's location.
type DeviceCreate struct {
	LocationID   string `json:"location_id"`
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	SerialNumber string `json:"device_serial_number"`
}

// DeviceFilter narrows FetchDevices; empty fields are not sent.
type DeviceFilter struct {
	LocationID string
	UserID     string
}
