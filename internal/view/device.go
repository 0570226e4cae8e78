package view

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/25-26J-299/smartrose-admin/internal/adminapi"
	"github.com/25-26J-299/smartrose-admin/internal/parse"
)

// DeviceStatus is derived from how long ago a device last reported.
type DeviceStatus string

const (
	DeviceOnline  DeviceStatus = "online"
	DeviceWarning DeviceStatus = "warning"
	DeviceOffline DeviceStatus = "offline"
)

const (
	onlineWindow  = 15 * time.Minute
	warningWindow = 60 * time.Minute
)

// DeriveStatus maps a last-seen timestamp to a status relative to now.
// A missing or unparseable timestamp is offline. Timestamps in the future
// count as just seen.
func DeriveStatus(lastSeen string, now time.Time) DeviceStatus {
	if lastSeen == "" {
		return DeviceOffline
	}
	seen, err := parse.Time(lastSeen)
	if err != nil {
		return DeviceOffline
	}
	age := now.Sub(seen)
	switch {
	case age < onlineWindow:
		return DeviceOnline
	case age < warningWindow:
		return DeviceWarning
	default:
		return DeviceOffline
	}
}

var statusToneByDevice = map[DeviceStatus]Tone{
	DeviceOnline:  ToneGreen,
	DeviceWarning: ToneAmber,
	DeviceOffline: ToneRed,
}

// DeviceType describes one of the supported device kinds.
type DeviceType struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Tone        Tone   `json:"tone"`
}

// DeviceTypes lists the supported device kinds in display order.
var DeviceTypes = []DeviceType{
	{Code: "INM", Description: "Nutrient Management", Tone: ToneGreen},
	{Code: "EOSM", Description: "Stress Monitoring", Tone: ToneBlue},
	{Code: "EDAS", Description: "Disease Alerting", Tone: TonePurple},
	{Code: "FM", Description: "Freshness Monitoring", Tone: ToneAmber},
}

// DefaultDeviceType is preselected when registering a device.
const DefaultDeviceType = "INM"

// LookupDeviceType returns the kind registered under code.
func LookupDeviceType(code string) (DeviceType, bool) {
	for _, t := range DeviceTypes {
		if t.Code == code {
			return t, true
		}
	}
	return DeviceType{}, false
}

// Device is a row of the devices table.
type Device struct {
	ID           string       `json:"id"`
	LocationID   string       `json:"location_id"`
	LocationName string       `json:"location_name,omitempty"`
	OwnerID      string       `json:"owner_id"`
	OwnerName    string       `json:"owner_name,omitempty"`
	Name         string       `json:"name"`
	Type         Badge        `json:"type"`
	SerialNumber string       `json:"device_serial_number"`
	Status       DeviceStatus `json:"status"`
	StatusTone   Tone         `json:"status_tone"`
	LastSeen     string       `json:"last_seen,omitempty"`
	LastSeenText string       `json:"last_seen_text"`
}

// NewDevice adapts a backend device, deriving its status against now.
func NewDevice(d adminapi.Device, now time.Time) Device {
	status := DeriveStatus(d.LastSeen.String(), now)
	typeTone := ToneGray
	if t, ok := LookupDeviceType(d.Type); ok {
		typeTone = t.Tone
	}
	return Device{
		ID:           d.ID,
		LocationID:   d.LocationID,
		LocationName: d.LocationName,
		OwnerID:      d.UserID,
		OwnerName:    d.OwnerName,
		Name:         d.Name,
		Type:         Badge{Label: d.Type, Tone: typeTone},
		SerialNumber: d.SerialNumber,
		Status:       status,
		StatusTone:   statusToneByDevice[status],
		LastSeen:     d.LastSeen.String(),
		LastSeenText: LastSeenText(d.LastSeen, now),
	}
}

// NewDevices adapts a list of backend devices against a single now.
func NewDevices(devices []adminapi.Device, now time.Time) []Device {
	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		out = append(out, NewDevice(d, now))
	}
	return out
}

// LastSeenText renders a last-seen timestamp relative to now, e.g.
// "5 minutes ago". Unparseable values are shown as received.
func LastSeenText(ts parse.Timestamp, now time.Time) string {
	if ts == "" {
		return "never"
	}
	seen, ok := ts.Time()
	if !ok {
		return ts.String()
	}
	return humanize.RelTime(seen, now, "ago", "from now")
}

// TypeCount is the number of devices of one kind.
type TypeCount struct {
	DeviceType
	Count int `json:"count"`
}

// DeviceSummary aggregates the devices page header cards.
type DeviceSummary struct {
	Total   int         `json:"total"`
	Online  int         `json:"online"`
	Warning int         `json:"warning"`
	Offline int         `json:"offline"`
	ByType  []TypeCount `json:"by_type"`
}

// Summarize counts devices by derived status and by kind.
func Summarize(devices []Device) DeviceSummary {
	s := DeviceSummary{Total: len(devices)}
	counts := make(map[string]int, len(DeviceTypes))
	for _, d := range devices {
		switch d.Status {
		case DeviceOnline:
			s.Online++
		case DeviceWarning:
			s.Warning++
		default:
			s.Offline++
		}
		counts[d.Type.Label]++
	}
	for _, t := range DeviceTypes {
		s.ByType = append(s.ByType, TypeCount{DeviceType: t, Count: counts[t.Code]})
	}
	return s
}

// SensorReading is one row of the sensor data table. Absent measurements
// stay nil.
type SensorReading struct {
	Timestamp        string   `json:"timestamp"`
	AirTemperature   *float64 `json:"air_temperature"`
	WaterTemperature *float64 `json:"water_temperature"`
	Humidity         *float64 `json:"humidity"`
	GasValue         *float64 `json:"gas_value"`
	WaterLevel       *float64 `json:"water_level"`
}

// NewSensorReadings adapts backend readings.
func NewSensorReadings(readings []adminapi.SensorReading) []SensorReading {
	out := make([]SensorReading, 0, len(readings))
	for _, r := range readings {
		out = append(out, SensorReading{
			Timestamp:        r.Timestamp.String(),
			AirTemperature:   r.AirTemperature,
			WaterTemperature: r.WaterTemperature,
			Humidity:         r.Humidity,
			GasValue:         r.GasValue,
			WaterLevel:       r.WaterLevel,
		})
	}
	return out
}
