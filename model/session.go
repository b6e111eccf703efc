package model

// SessionTracking is the per-user login bookkeeping kept in user_sessions.
// SessionColumn is assigned on first login and never changes afterwards.
type SessionTracking struct {
	Username      string  `json:"username"`
	SessionColumn int64   `json:"session_column"`
	FirstLogin    string  `json:"first_login"`
	LastLogin     string  `json:"last_login"`
	TotalSessions int64   `json:"total_sessions"`
	LastDevice    *string `json:"last_device"`
}
