package handlers

import (
	"net/http"
	"strconv"

	"pixelgate/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ProductQR(c *gin.Context) {
	product, err := h.products.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to load product", http.StatusInternalServerError)
		return
	}
	h.writeQR(c, services.SourceURL(h.origin(c), "t", product.Slug))
}

func (h *Handler) WhatsAppQR(c *gin.Context) {
	page, err := h.pages.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to load WhatsApp page", http.StatusInternalServerError)
		return
	}
	h.writeQR(c, services.SourceURL(h.origin(c), "w", page.Slug))
}

// writeQR answers with a PNG, or SVG when ?format=svg. size, fg and bg are
// passed through to the QR service.
func (h *Handler) writeQR(c *gin.Context, link string) {
	size, _ := strconv.Atoi(c.Query("size"))
	opts := services.QROptions{
		Content: link,
		Size:    size,
		FgColor: c.Query("fg"),
		BgColor: c.Query("bg"),
	}

	if c.Query("format") == "svg" {
		svg, err := h.qrService.SVG(opts)
		if err != nil {
			h.respondError(c, err, "Failed to generate QR code", http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, "image/svg+xml", []byte(svg))
		return
	}

	png, err := h.qrService.PNG(opts)
	if err != nil {
		h.respondError(c, err, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
