package console

import (
	"context"
	"time"

	"github.com/25-26J-299/smartrose-admin/internal/view"
)

// FreshnessHint is shown for a freshness monitor that has never reported.
const FreshnessHint = "No sensor data yet. ESP32 should send device_serial_number as device_id when posting to FM."

// SensorView is the content of the sensor data modal.
type SensorView struct {
	Device   view.Device          `json:"device"`
	Readings []view.SensorReading `json:"readings"`
	Count    int                  `json:"count"`
	Hint     string               `json:"hint,omitempty"`
}

// SensorDataModal shows a device's latest readings.
type SensorDataModal struct {
	*Loader[SensorView]
	backend Backend
	limit   int
	now     func() time.Time
}

func NewSensorDataModal(backend Backend, limit int, now func() time.Time) *SensorDataModal {
	return &SensorDataModal{Loader: NewLoader[SensorView](false), backend: backend, limit: limit, now: now}
}

// Open loads readings for deviceID, replacing whatever was shown before.
func (m *SensorDataModal) Open(ctx context.Context, deviceID string) Snapshot[SensorView] {
	return m.Run(ctx, func(ctx context.Context) (SensorView, error) {
		data, err := m.backend.FetchDeviceSensorData(ctx, deviceID, m.limit)
		if err != nil {
			return SensorView{}, err
		}
		out := SensorView{
			Device:   view.NewDevice(data.Device, m.now()),
			Readings: view.NewSensorReadings(data.Readings),
			Count:    len(data.Readings),
		}
		if data.Device.Type == "FM" && len(data.Readings) == 0 {
			out.Hint = FreshnessHint
		}
		return out, nil
	})
}

// Close discards the modal and any load still in flight.
func (m *SensorDataModal) Close() {
	m.Unmount()
}
