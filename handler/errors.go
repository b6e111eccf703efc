package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bioauth/common"
	"bioauth/middleware"
	"bioauth/utils"
)

// respondError maps a service error to a status code and JSON body.
// badRequest is the message used for common.ErrInvalidInput.
func respondError(c *gin.Context, op string, err error, badRequest string) {
	var (
		missing  *common.MissingFieldsError
		tooLarge *http.MaxBytesError
	)

	switch {
	case errors.As(err, &missing):
		utils.MissingFields(c, missing.Fields)
	case errors.As(err, &tooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, utils.ErrorResponse{Error: "request body too large"})
	case errors.Is(err, common.ErrInvalidInput):
		utils.BadRequest(c, badRequest)
	case errors.Is(err, common.ErrDuplicateUser):
		utils.Conflict(c, "Username already exists")
	case errors.Is(err, common.ErrInvalidCredentials):
		utils.Unauthorized(c, "Invalid credentials")
	case errors.Is(err, common.ErrUserNotFound):
		utils.NotFound(c, "Username not found")
	case errors.Is(err, common.ErrConsentRequired):
		utils.Forbidden(c, "User consent required")
	case errors.Is(err, common.ErrUserNotRegistered):
		utils.Forbidden(c, "User not registered")
	case errors.Is(err, common.ErrStoreBusy):
		middleware.Logger(c).Warn("store busy", "op", op, "error", err)
		utils.TrackError("store", "busy")
		utils.ServiceUnavailable(c, "store busy, try again")
	default:
		middleware.Logger(c).Error("request failed", "op", op, "error", err)
		utils.TrackError("store", op)
		utils.InternalError(c, err.Error())
	}
}

// bindError turns a JSON binding failure into common.ErrInvalidInput unless
// the body was too large.
func bindError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return errors.Join(common.ErrInvalidInput, err)
}
