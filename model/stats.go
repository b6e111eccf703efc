package model

// StoreStats is the payload of GET /stats.
type StoreStats struct {
	Tables     map[string]int64 `json:"tables"`
	System     any              `json:"system"`
	StrictMode bool             `json:"strict_mode"`
}
