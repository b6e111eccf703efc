package dto

type RegisterRequest struct {
	Username string `json:"username" binding:"required,notblank"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required,notblank"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest resets a password by username. OldPassword is only
// checked when the server requires it.
type ForgotPasswordRequest struct {
	Username    string `json:"username" binding:"required,notblank"`
	NewPassword string `json:"new_password" binding:"required"`
	OldPassword string `json:"old_password"`
}

type RegisterResponse struct {
	Status string `json:"status"`
	UserID int64  `json:"user_id"`
}

type LoginResponse struct {
	Status        string `json:"status"`
	SessionColumn int64  `json:"session_column"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
