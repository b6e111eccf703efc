package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bioauth/dto"
	"bioauth/middleware"
	"bioauth/usecase"
	"bioauth/utils"
)

type AdminHandler struct {
	admin *usecase.AdminService
}

func NewAdminHandler(admin *usecase.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Home is the liveness probe.
func (h *AdminHandler) Home(c *gin.Context) {
	c.String(http.StatusOK, "Behavioral auth backend is running")
}

// ClearData handles POST /clear_data.
func (h *AdminHandler) ClearData(c *gin.Context) {
	if err := h.admin.ClearData(c.Request.Context()); err != nil {
		respondError(c, "clear_data", err, "")
		return
	}
	middleware.Logger(c).Warn("all data cleared")
	utils.Success(c, dto.StatusResponse{Status: "cleared"})
}

// Stats handles GET /stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		respondError(c, "stats", err, "")
		return
	}
	utils.Success(c, stats)
}
