package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"pixelgate/internal/models"
	"pixelgate/internal/repository"
	"pixelgate/internal/tracker"

	"github.com/gin-gonic/gin"
)

const (
	defaultPreviewHorizon = 30 * time.Second
	maxPreviewHorizon     = 10 * time.Minute
)

// PreviewWhatsAppPage simulates a visit to the page and returns what the
// browser would do, second by second.
func (h *Handler) PreviewWhatsAppPage(c *gin.Context) {
	ctx := c.Request.Context()
	page, err := h.pages.GetByID(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to load WhatsApp page", http.StatusInternalServerError)
		return
	}

	opts := tracker.SimulateOptions{Horizon: defaultPreviewHorizon}
	if v := c.Query("horizon"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid horizon", "details": v})
			return
		}
		opts.Horizon = min(d, maxPreviewHorizon)
	}
	if v := c.Query("clickAt"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid clickAt", "details": v})
			return
		}
		opts.ClickAt = d
	}
	opts.Seed, _ = strconv.ParseInt(c.Query("seed"), 10, 64)

	var pixel *models.Pixel
	if page.PixelConfigID != "" {
		if pixel, err = h.pixels.GetByID(ctx, page.PixelConfigID); err != nil {
			pixel = nil
		}
	}

	cfg := tracker.NewPageConfig(page, pixel, h.newEventID(), h.newEventID())
	c.JSON(http.StatusOK, tracker.Simulate(cfg, opts))
}

// DebugConfig returns the raw stored JSON under ?key=, defaulting to the
// WhatsApp page index.
func (h *Handler) DebugConfig(c *gin.Context) {
	key := c.DefaultQuery("key", repository.WhatsAppIndexKey)

	var raw json.RawMessage
	found, err := h.store.ReadValue(c.Request.Context(), key, &raw)
	if err != nil {
		h.respondError(c, err, "Failed to read config", http.StatusInternalServerError)
		return
	}

	resp := gin.H{"key": key, "found": found, "raw": raw}
	var obj map[string]json.RawMessage
	if found && json.Unmarshal(raw, &obj) == nil {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		resp["keys"] = keys
	}
	c.JSON(http.StatusOK, resp)
}
