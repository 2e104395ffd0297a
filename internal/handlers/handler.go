package handlers

import (
	"log/slog"
	"strings"

	"pixelgate/internal/config"
	"pixelgate/internal/kvstore"
	"pixelgate/internal/repository"
	"pixelgate/internal/services"
	"pixelgate/pkg/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	cfg          config.Config
	logger       *slog.Logger
	store        kvstore.Store
	pixels       *repository.PixelRepository
	products     *repository.ProductRepository
	pages        *repository.WhatsAppRepository
	appearance   *repository.AppearanceRepository
	mirror       *services.EventMirror
	auditService *services.AuditService
	qrService    *services.QRService
	newEventID   func() string
}

func NewHandler(
	cfg config.Config,
	logger *slog.Logger,
	store kvstore.Store,
	pixels *repository.PixelRepository,
	products *repository.ProductRepository,
	pages *repository.WhatsAppRepository,
	appearance *repository.AppearanceRepository,
	mirror *services.EventMirror,
	auditService *services.AuditService,
	qrService *services.QRService,
) *Handler {
	return &Handler{
		cfg:          cfg,
		logger:       logger,
		store:        store,
		pixels:       pixels,
		products:     products,
		pages:        pages,
		appearance:   appearance,
		mirror:       mirror,
		auditService: auditService,
		qrService:    qrService,
		newEventID:   utils.NewEventID,
	}
}

// origin is scheme://host of the public site as the visitor reached it.
// Proxies set x-forwarded-proto; BASE_URL covers requests without a Host.
func (h *Handler) origin(c *gin.Context) string {
	proto := c.GetHeader("X-Forwarded-Proto")
	if proto == "" {
		proto = "https"
	}
	host := c.Request.Host
	if host == "" {
		host = h.cfg.BaseURL
		if i := strings.Index(host, "://"); i >= 0 {
			host = host[i+3:]
		}
		host = strings.TrimRight(host, "/")
	}
	return proto + "://" + host
}

func visitor(c *gin.Context) services.Visitor {
	return services.Visitor{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}

func (h *Handler) audit(c *gin.Context, action, entityType, entityID string, details any) {
	if h.auditService == nil {
		return
	}
	h.auditService.LogAction(action, entityType, entityID, details, c.ClientIP())
}
