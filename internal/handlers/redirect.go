package handlers

import (
	"errors"
	"net/http"

	"pixelgate/internal/models"
	"pixelgate/internal/repository"
	"pixelgate/internal/services"
	"pixelgate/internal/tracker"

	"github.com/gin-gonic/gin"
)

// ShowTransition serves /t/{slug}: server-side conversions for the
// product's events, then a page that fires the browser pixel and forwards
// the visitor to the affiliate URL.
func (h *Handler) ShowTransition(c *gin.Context) {
	ctx := c.Request.Context()

	// 1. Product Lookup
	product, err := h.products.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		h.renderLookupError(c, err)
		return
	}

	// 2. Validation
	if !product.IsActive() {
		c.HTML(http.StatusOK, "link_inactive.html", gin.H{"Title": product.Title})
		return
	}

	// 3. Pixel Lookup
	pixel, err := h.pixels.GetByID(ctx, product.PixelConfigID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.renderLookupError(c, err)
			return
		}
		h.logger.Error("transition_pixel_not_found", "product_id", product.ID, "pixel_config_id", product.PixelConfigID)
		c.HTML(http.StatusOK, "link_invalid.html", nil)
		return
	}

	// 4. Server-side events, best effort
	cfg := tracker.NewTransitionConfig(product, pixel, h.newEventID())
	sent := h.mirror.FirePageEvents(ctx, services.PageEvents{
		PixelID:   pixel.PixelID,
		Events:    cfg.Events,
		EventID:   cfg.EventID,
		SourceURL: services.SourceURL(h.origin(c), "t", product.Slug),
		Visitor:   visitor(c),
	})

	h.logger.Info("transition_page_render", "slug", product.Slug, "events", cfg.Events, "pixel_id", pixel.PixelID, "capi_sent", sent)

	// 5. Browser tracker and redirect
	c.HTML(http.StatusOK, "transition.html", gin.H{
		"Product": product,
		"Config":  cfg,
	})
}

// ShowWhatsAppPage serves /w/{slug}. A missing pixel never blocks the page;
// it only turns tracking off.
func (h *Handler) ShowWhatsAppPage(c *gin.Context) {
	ctx := c.Request.Context()

	page, err := h.pages.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		h.renderLookupError(c, err)
		return
	}
	if !page.IsActive() {
		c.HTML(http.StatusNotFound, "404.html", gin.H{"error": "Link not found"})
		return
	}

	var pixel *models.Pixel
	if page.PixelConfigID != "" {
		pixel, err = h.pixels.GetByID(ctx, page.PixelConfigID)
		if err != nil {
			h.logger.Error("whatsapp_pixel_not_found", "page_id", page.ID, "pixel_config_id", page.PixelConfigID, "error", err)
			pixel = nil
		}
	}

	cfg := tracker.NewPageConfig(page, pixel, h.newEventID(), h.newEventID())
	sent := 0
	if pixel != nil {
		sent = h.mirror.FirePageEvents(ctx, services.PageEvents{
			PixelID:   pixel.PixelID,
			Events:    page.Events,
			EventID:   cfg.EventID,
			SourceURL: services.SourceURL(h.origin(c), "w", page.Slug),
			Visitor:   visitor(c),
		})
	}

	appearance, err := h.appearance.Get(ctx)
	if err != nil {
		h.logger.Warn("appearance_load_failed", "error", err)
		appearance = models.Appearance{RedirectText: models.DefaultRedirectText}
	}

	h.logger.Info("whatsapp_page_render",
		"slug", page.Slug,
		"events", page.Events,
		"redirect_event", page.RedirectEvent,
		"mode", page.RedirectMode,
		"has_pixel", pixel != nil,
		"capi_sent", sent,
	)

	data := gin.H{
		"Page":       page,
		"Appearance": appearance,
		"Config":     cfg,
	}
	if page.SocialProofEnabled {
		data["Pool"] = tracker.DefaultNotificationPool()
	}
	c.HTML(http.StatusOK, "whatsapp.html", data)
}

func (h *Handler) renderLookupError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.HTML(http.StatusNotFound, "404.html", gin.H{"error": "Link not found"})
		return
	}
	h.logger.Error("public_page_lookup_failed", "path", c.Request.URL.Path, "error", err)
	c.HTML(http.StatusInternalServerError, "404.html", gin.H{"error": "Temporarily unavailable"})
}
