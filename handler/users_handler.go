package handler

import (
	"github.com/gin-gonic/gin"

	"bioauth/dto"
	"bioauth/middleware"
	"bioauth/usecase"
	"bioauth/utils"
)

type UserHandler struct {
	users    *usecase.UserService
	sessions *usecase.SessionService
}

func NewUserHandler(users *usecase.UserService, sessions *usecase.SessionService) *UserHandler {
	return &UserHandler{users: users, sessions: sessions}
}

// Register handles POST /register.
func (h *UserHandler) Register(c *gin.Context) {
	const badRequest = "Username and password required"

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.TrackAuthAttempt("failure", "register")
		respondError(c, "register", bindError(err), badRequest)
		return
	}

	id, err := h.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		utils.TrackAuthAttempt("failure", "register")
		respondError(c, "register", err, badRequest)
		return
	}

	utils.TrackAuthAttempt("success", "register")
	middleware.Logger(c).Info("user registered", "username", req.Username, "user_id", id)
	utils.Success(c, dto.RegisterResponse{Status: "registered", UserID: id})
}

// Login handles POST /login. A successful login updates session tracking and
// returns the user's session column.
func (h *UserHandler) Login(c *gin.Context) {
	const badRequest = "Username and password required"
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.TrackAuthAttempt("failure", "login")
		respondError(c, "login", bindError(err), badRequest)
		return
	}

	user, err := h.users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		utils.TrackAuthAttempt("failure", "login")
		middleware.Logger(c).Info("login rejected", "username", req.Username)
		respondError(c, "login", err, badRequest)
		return
	}

	device := utils.DeviceLabel(c.GetHeader("User-Agent"))
	column, err := h.sessions.RecordLogin(ctx, user.Username, device)
	if err != nil {
		respondError(c, "login", err, badRequest)
		return
	}

	utils.TrackAuthAttempt("success", "login")
	middleware.Logger(c).Info("login", "username", user.Username, "session_column", column, "device", device)
	utils.Success(c, dto.LoginResponse{Status: "login_success", SessionColumn: column})
}

// ForgotPassword handles POST /forgot_password.
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	const badRequest = "Username and new password required"

	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.TrackAuthAttempt("failure", "reset")
		respondError(c, "forgot_password", bindError(err), badRequest)
		return
	}

	if err := h.users.ResetPassword(c.Request.Context(), req.Username, req.NewPassword, req.OldPassword); err != nil {
		utils.TrackAuthAttempt("failure", "reset")
		respondError(c, "forgot_password", err, badRequest)
		return
	}

	utils.TrackAuthAttempt("success", "reset")
	middleware.Logger(c).Info("password updated", "username", req.Username)
	utils.Success(c, dto.StatusResponse{Status: "password_updated"})
}
