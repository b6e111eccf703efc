package model

// TelemetryColumns lists the user_data columns in table-definition order.
// Exports use it as their header row.
var TelemetryColumns = []string{
	"id",
	"user_id",
	"username",
	"session_id",
	"session_start",
	"session_end",
	"swipe_gesture_coordinates",
	"swipe_gesture_pattern",
	"gyroscope_pattern",
	"wifi_ssid",
	"wifi_bssid",
	"location_lat",
	"location_lon",
	"login_time",
	"screen_brightness",
	"consent",
	"timestamp",
}

// TelemetryRecord is one submitted batch of sensor and session attributes.
// Nil pointers are stored as NULL.
type TelemetryRecord struct {
	ID                      int64
	UserID                  *int64
	Username                string
	SessionID               *string
	SessionStart            *string
	SessionEnd              *string
	SwipeGestureCoordinates *string
	SwipeGesturePattern     *string
	GyroscopePattern        *string
	WifiSSID                *string
	WifiBSSID               *string
	LocationLat             *float64
	LocationLon             *float64
	LoginTime               *string
	ScreenBrightness        *float64
	Consent                 *bool
	Timestamp               string
}

// Values returns the record's fields in TelemetryColumns order, with nil for NULL.
func (r *TelemetryRecord) Values() []any {
	return []any{
		r.ID,
		deref(r.UserID),
		r.Username,
		deref(r.SessionID),
		deref(r.SessionStart),
		deref(r.SessionEnd),
		deref(r.SwipeGestureCoordinates),
		deref(r.SwipeGesturePattern),
		deref(r.GyroscopePattern),
		deref(r.WifiSSID),
		deref(r.WifiBSSID),
		deref(r.LocationLat),
		deref(r.LocationLon),
		deref(r.LoginTime),
		deref(r.ScreenBrightness),
		deref(r.Consent),
		r.Timestamp,
	}
}

// StructuredRecord is a telemetry row joined with its user's session column.
type StructuredRecord struct {
	SessionColumn *int64
	TelemetryRecord
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
