package dto

import "strings"

// CollectDataRequest is the body of POST /collect_data. Every field is a pointer
// so an absent field can be told apart from a zero value.
type CollectDataRequest struct {
	Username     *string `json:"username"`
	SessionStart *string `json:"session_start"`
	SessionEnd   *string `json:"session_end"`
	// SwipeGesture is the older single-field form of SwipeGestureCoordinates.
	SwipeGesture            *string  `json:"swipe_gesture"`
	SwipeGestureCoordinates *string  `json:"swipe_gesture_coordinates"`
	SwipeGesturePattern     *string  `json:"swipe_gesture_pattern"`
	GyroscopePattern        *string  `json:"gyroscope_pattern"`
	WifiSSID                *string  `json:"wifi_ssid"`
	WifiBSSID               *string  `json:"wifi_bssid"`
	LocationLat             *float64 `json:"location_lat"`
	LocationLon             *float64 `json:"location_lon"`
	LoginTime               *string  `json:"login_time"`
	ScreenBrightness        *float64 `json:"screen_brightness"`
	Consent                 *bool    `json:"consent"`
}

// PermissiveDefaults are applied to absent fields in permissive mode.
// Fields not listed here stay NULL.
var PermissiveDefaults = struct {
	LocationLat      float64
	LocationLon      float64
	ScreenBrightness float64
	Consent          bool
}{
	LocationLat:      0.0,
	LocationLon:      0.0,
	ScreenBrightness: 0.0,
	Consent:          true,
}

// StrictFields are the fields strict mode requires, in reporting order.
var StrictFields = []string{
	"username",
	"session_start",
	"session_end",
	"swipe_gesture",
	"gyroscope_pattern",
	"wifi_ssid",
	"wifi_bssid",
	"location_lat",
	"location_lon",
	"login_time",
	"screen_brightness",
	"consent",
}

// UsernameValue returns the username as sent, or "" when absent.
func (r *CollectDataRequest) UsernameValue() string {
	if r.Username == nil {
		return ""
	}
	return *r.Username
}

// HasUsername reports whether a non-blank username was sent.
func (r *CollectDataRequest) HasUsername() bool {
	return strings.TrimSpace(r.UsernameValue()) != ""
}

// Coordinates prefers swipe_gesture_coordinates and falls back to swipe_gesture.
func (r *CollectDataRequest) Coordinates() *string {
	if r.SwipeGestureCoordinates != nil {
		return r.SwipeGestureCoordinates
	}
	return r.SwipeGesture
}

// MissingStrictFields lists the StrictFields that are absent or null.
func (r *CollectDataRequest) MissingStrictFields() []string {
	present := map[string]bool{
		"username":          r.HasUsername(),
		"session_start":     r.SessionStart != nil,
		"session_end":       r.SessionEnd != nil,
		"swipe_gesture":     r.Coordinates() != nil,
		"gyroscope_pattern": r.GyroscopePattern != nil,
		"wifi_ssid":         r.WifiSSID != nil,
		"wifi_bssid":        r.WifiBSSID != nil,
		"location_lat":      r.LocationLat != nil,
		"location_lon":      r.LocationLon != nil,
		"login_time":        r.LoginTime != nil,
		"screen_brightness": r.ScreenBrightness != nil,
		"consent":           r.Consent != nil,
	}
	var missing []string
	for _, field := range StrictFields {
		if !present[field] {
			missing = append(missing, field)
		}
	}
	return missing
}

// ApplyPermissiveDefaults fills absent numeric and consent fields from
// PermissiveDefaults.
func (r *CollectDataRequest) ApplyPermissiveDefaults() {
	if r.LocationLat == nil {
		v := PermissiveDefaults.LocationLat
		r.LocationLat = &v
	}
	if r.LocationLon == nil {
		v := PermissiveDefaults.LocationLon
		r.LocationLon = &v
	}
	if r.ScreenBrightness == nil {
		v := PermissiveDefaults.ScreenBrightness
		r.ScreenBrightness = &v
	}
	if r.Consent == nil {
		v := PermissiveDefaults.Consent
		r.Consent = &v
	}
}

type CollectDataResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
}
