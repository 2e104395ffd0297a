package handlers

import (
	"errors"
	"net/http"

	"pixelgate/internal/repository"
	"pixelgate/internal/validation"

	"github.com/gin-gonic/gin"
)

// TrackRedirect is the server-side mirror of a browser redirect or button
// event. It is public: the WhatsApp page calls it right before navigating.
func (h *Handler) TrackRedirect(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to track redirect event", "details": err.Error()})
		return
	}
	in, err := validation.ParseTrackRedirect(raw)
	if err != nil {
		h.respondError(c, err, "Failed to track redirect event", http.StatusBadRequest)
		return
	}

	res, err := h.mirror.TrackRedirect(c.Request.Context(), *in, h.origin(c), visitor(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
			return
		}
		h.logger.Error("track_redirect_failed", "page_id", in.PageID, "event", in.EventName, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to track redirect event", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "tracked": res.Tracked})
}
