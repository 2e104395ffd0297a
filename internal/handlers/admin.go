package handlers

import (
	"net/http"

	"pixelgate/internal/services"
	"pixelgate/internal/validation"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListPixels(c *gin.Context) {
	pixels, err := h.pixels.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to load pixels", http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, pixels)
}

func (h *Handler) UpsertPixel(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in, err := validation.ParsePixel(raw)
	if err != nil {
		h.respondError(c, err, "Validation or save failed", http.StatusBadRequest)
		return
	}

	pixel, err := h.pixels.Upsert(c.Request.Context(), *in)
	if err != nil {
		h.respondError(c, err, "Validation or save failed", http.StatusBadRequest)
		return
	}
	h.audit(c, services.ActionUpsertPixel, "pixel", pixel.ID, gin.H{"label": pixel.Label, "pixelId": pixel.PixelID})
	c.JSON(http.StatusOK, pixel)
}

func (h *Handler) DeletePixel(c *gin.Context) {
	id := c.Param("id")
	if err := h.pixels.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Failed to delete pixel", http.StatusBadRequest)
		return
	}
	h.audit(c, services.ActionDeletePixel, "pixel", id, nil)
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to load products", http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) UpsertProduct(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in, err := validation.ParseProduct(raw)
	if err != nil {
		h.respondError(c, err, "Validation or save failed", http.StatusBadRequest)
		return
	}

	product, err := h.products.Upsert(c.Request.Context(), *in)
	if err != nil {
		h.respondError(c, err, "Validation or save failed", http.StatusBadRequest)
		return
	}
	h.audit(c, services.ActionUpsertProduct, "product", product.ID, gin.H{"slug": product.Slug, "status": product.Status})
	c.JSON(http.StatusOK, product)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Failed to delete product", http.StatusBadRequest)
		return
	}
	h.audit(c, services.ActionDeleteProduct, "product", id, nil)
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListWhatsAppPages(c *gin.Context) {
	pages, err := h.pages.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to load WhatsApp pages", http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, pages)
}

func (h *Handler) UpsertWhatsAppPage(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in, err := validation.ParseWhatsAppPage(raw)
	if err != nil {
		h.respondError(c, err, "Validation or save failed", http.StatusBadRequest)
		return
	}

	page, err := h.pages.Upsert(c.Request.Context(), *in)
	if err != nil {
		h.respondError(c, err, "Validation or save failed", http.StatusBadRequest)
		return
	}
	h.audit(c, services.ActionUpsertWhatsApp, "whatsapp_page", page.ID, gin.H{"slug": page.Slug, "mode": page.RedirectMode})
	c.JSON(http.StatusOK, page)
}

func (h *Handler) DeleteWhatsAppPage(c *gin.Context) {
	id := c.Param("id")
	if err := h.pages.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Failed to delete WhatsApp page", http.StatusBadRequest)
		return
	}
	h.audit(c, services.ActionDeleteWhatsApp, "whatsapp_page", id, nil)
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetAppearance(c *gin.Context) {
	appearance, err := h.appearance.Get(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to load appearance", http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, appearance)
}

func (h *Handler) UpdateAppearance(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in, err := validation.ParseAppearance(raw)
	if err != nil {
		h.respondError(c, err, "Validation or save failed", http.StatusBadRequest)
		return
	}

	appearance, err := h.appearance.Update(c.Request.Context(), *in)
	if err != nil {
		h.respondError(c, err, "Validation or save failed", http.StatusBadRequest)
		return
	}
	h.audit(c, services.ActionUpdateAppearance, "appearance", "whatsapp_appearance", appearance)
	c.JSON(http.StatusOK, appearance)
}
