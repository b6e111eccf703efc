package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"bioauth/dto"
	"bioauth/middleware"
	"bioauth/usecase"
	"bioauth/utils"
)

type TelemetryHandler struct {
	telemetry *usecase.TelemetryService
}

func NewTelemetryHandler(telemetry *usecase.TelemetryService) *TelemetryHandler {
	return &TelemetryHandler{telemetry: telemetry}
}

// Collect handles POST /collect_data.
func (h *TelemetryHandler) Collect(c *gin.Context) {
	const badRequest = "Invalid telemetry payload"

	var req dto.CollectDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, "collect_data", bindError(err), badRequest)
		return
	}

	res, err := h.telemetry.Collect(c.Request.Context(), &req)
	if err != nil {
		middleware.Logger(c).Info("telemetry rejected",
			"username", req.UsernameValue(), "mode", h.telemetry.Mode(), "error", err)
		respondError(c, "collect_data", err, "Username required")
		return
	}

	middleware.Logger(c).Debug("telemetry stored",
		"username", req.UsernameValue(), "session_id", res.SessionID, "user_created", res.UserCreated)
	utils.Success(c, dto.CollectDataResponse{Status: "success", SessionID: res.SessionID})
}

type AuthenticateResult struct {
	Authenticated bool    `json:"authenticated"`
	Confidence    float64 `json:"confidence"`
	Note          string  `json:"note"`
}

type AuthenticateResponse struct {
	Input  any                `json:"input"`
	Result AuthenticateResult `json:"result"`
}

// Authenticate handles POST /authenticate. There is no model behind it yet;
// it echoes the input with a fixed negative result.
func (h *TelemetryHandler) Authenticate(c *gin.Context) {
	var input any
	if raw, err := c.GetRawData(); err == nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, &input); err != nil {
			input = nil
		}
	}

	utils.Success(c, AuthenticateResponse{
		Input: input,
		Result: AuthenticateResult{
			Authenticated: false,
			Confidence:    0.0,
			Note:          "ML model not integrated yet.",
		},
	})
}
