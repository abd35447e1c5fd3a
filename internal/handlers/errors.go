package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/imyashkale/shutdownmanager/internal/logger"
	"github.com/imyashkale/shutdownmanager/internal/models"
	"github.com/imyashkale/shutdownmanager/internal/store"
)

// Error kinds returned in ErrorResponse.Error
const (
	ErrKindValidation        = "validation_error"
	ErrKindConflict          = "conflict"
	ErrKindNotFound          = "not_found"
	ErrKindIllegalTransition = "illegal_transition"
	ErrKindPayloadTooLarge   = "payload_too_large"
	ErrKindInternal          = "internal_error"
)

// respondError maps store errors onto status codes
func respondError(c *gin.Context, err error) {
	var (
		validation *store.ValidationError
		conflict   *store.ConflictError
		notFound   *store.NotFoundError
		illegal    *store.IllegalTransitionError
		tooLarge   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &validation):
		abort(c, http.StatusBadRequest, ErrKindValidation, err.Error())
	case errors.As(err, &conflict):
		abort(c, http.StatusConflict, ErrKindConflict, err.Error())
	case errors.As(err, &notFound):
		abort(c, http.StatusNotFound, ErrKindNotFound, err.Error())
	case errors.As(err, &illegal):
		abort(c, http.StatusUnprocessableEntity, ErrKindIllegalTransition, err.Error())
	case errors.As(err, &tooLarge):
		abort(c, http.StatusRequestEntityTooLarge, ErrKindPayloadTooLarge, err.Error())
	default:
		logger.WithFields(map[string]interface{}{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"error":  err.Error(),
		}).Error("Request failed")
		abort(c, http.StatusInternalServerError, ErrKindInternal, "internal server error")
	}
}

// badRequest reports a malformed request body
func badRequest(c *gin.Context, err error) {
	abort(c, http.StatusBadRequest, ErrKindValidation, err.Error())
}

func abort(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error:   kind,
		Message: message,
	})
}
