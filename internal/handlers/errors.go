package handlers

import (
	"errors"
	"net/http"

	"pixelgate/internal/repository"
	"pixelgate/internal/validation"

	"github.com/gin-gonic/gin"
)

// respondError maps a repository or service error onto the admin API's
// {error, details} body. failStatus is used for anything that is neither a
// validation error nor a missing record: 500 for reads, 400 for writes.
func (h *Handler) respondError(c *gin.Context, err error, message string, failStatus int) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "details": verr.Details})
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrPixelNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request_failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(failStatus, gin.H{"error": message, "details": err.Error()})
	}
}
