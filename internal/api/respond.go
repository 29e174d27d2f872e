package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	apperrors "ice-breakun/backend/pkg/errors"
	"ice-breakun/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// DataResponse is the envelope for every successful read or write
type DataResponse struct {
	Data any `json:"data"`
}

// MessageResponse confirms a deletion
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, DataResponse{Data: data})
}

// parseID reads a positive integer path parameter.
// Anything else is rejected as "Invalid <entity> ID".
func parseID(c *gin.Context, param, entity string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		_ = c.Error(apperrors.FromKind(apperrors.KindValidation, "Invalid "+entity+" ID", err))
		return 0, false
	}
	return uint(id), true
}

// bindJSON decodes the body into dst. An empty body decodes as {} so the
// field checks report what is missing. Trailing data after the document is
// rejected.
func bindJSON(c *gin.Context, dst any) bool {
	raw, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = c.Error(middleware.PayloadTooLarge().WithCause(err))
			return false
		}
		_ = c.Error(apperrors.FromKind(apperrors.KindValidation, "Invalid request body", err))
		return false
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return true
	}

	if !json.Valid(raw) {
		_ = c.Error(apperrors.FromKind(apperrors.KindValidation, "Invalid request body", nil))
		return false
	}
	if err := binding.JSON.BindBody(raw, dst); err != nil {
		_ = c.Error(apperrors.FromKind(apperrors.KindValidation, "Invalid request body", err))
		return false
	}
	return true
}

func validationFailed(c *gin.Context, message string) {
	_ = c.Error(apperrors.FromKind(apperrors.KindValidation, message, nil))
}

// failure maps a service error onto the response for one entity.
// action completes "Failed to ..." for unexpected errors, e.g. "fetch users".
func failure(c *gin.Context, err error, entity, action string) {
	kind := apperrors.KindOf(err)

	var message string
	switch kind {
	case apperrors.KindUniqueViolation:
		message = entity + " already exists"
	case apperrors.KindNotFound:
		message = entity + " not found"
	case apperrors.KindForeignKeyViolation:
		message = "Related record not found"
	default:
		kind = apperrors.KindInternal
		message = "Failed to " + action
	}

	_ = c.Error(apperrors.FromKind(kind, message, err))
}
