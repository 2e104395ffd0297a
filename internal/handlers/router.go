package handlers

import (
	"encoding/json"
	"html/template"

	"pixelgate/internal/metrics"
	"pixelgate/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *Handler) SetupRouter(rateLimiter *services.IPRateLimiter, templatePath string, staticPath string) *gin.Engine {
	r := gin.Default()

	r.SetFuncMap(template.FuncMap{
		"json": func(v interface{}) template.JS {
			a, _ := json.Marshal(v)
			return template.JS(a)
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	})

	if templatePath != "" {
		r.LoadHTMLGlob(templatePath)
	}
	if staticPath != "" {
		r.Static("/static", staticPath)
	}

	r.Use(metrics.HTTP())

	// Routes
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public Routes
	public := r.Group("/")
	if rateLimiter != nil {
		public.Use(h.RateLimitMiddleware(rateLimiter))
	}
	{
		public.GET("/t/:slug", h.ShowTransition)
		public.GET("/w/:slug", h.ShowWhatsAppPage)
		public.POST("/api/whatsapp/track-redirect", h.TrackRedirect)
	}

	// Admin Routes
	admin := r.Group("/api")
	admin.Use(h.AdminAuth())
	{
		admin.GET("/pixels", noStore(), h.ListPixels)
		admin.POST("/pixels", h.UpsertPixel)
		admin.DELETE("/pixels/:id", h.DeletePixel)

		admin.GET("/products", noStore(), h.ListProducts)
		admin.POST("/products", h.UpsertProduct)
		admin.DELETE("/products/:id", h.DeleteProduct)
		admin.GET("/products/:id/qr", h.ProductQR)

		admin.GET("/whatsapp", noStore(), h.ListWhatsAppPages)
		admin.POST("/whatsapp", h.UpsertWhatsAppPage)
		admin.GET("/whatsapp/appearance", h.GetAppearance)
		admin.PUT("/whatsapp/appearance", h.UpdateAppearance)
		admin.DELETE("/whatsapp/:id", h.DeleteWhatsAppPage)
		admin.GET("/whatsapp/:id/qr", h.WhatsAppQR)
		admin.GET("/whatsapp/:id/preview", h.PreviewWhatsAppPage)

		admin.GET("/debug/config", h.DebugConfig)
	}

	return r
}
