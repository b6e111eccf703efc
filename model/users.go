package model

// User is a row of the users table. PasswordHash is the hex SHA-256 digest.
type User struct {
	ID           int64  `json:"user_id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	CreatedAt    string `json:"created_at"`
}
