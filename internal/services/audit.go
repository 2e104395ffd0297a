package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"pixelgate/internal/models"

	"gorm.io/gorm"
)

const (
	ActionUpsertPixel      = "UPSERT_PIXEL"
	ActionDeletePixel      = "DELETE_PIXEL"
	ActionUpsertProduct    = "UPSERT_PRODUCT"
	ActionDeleteProduct    = "DELETE_PRODUCT"
	ActionUpsertWhatsApp   = "UPSERT_WHATSAPP_PAGE"
	ActionDeleteWhatsApp   = "DELETE_WHATSAPP_PAGE"
	ActionUpdateAppearance = "UPDATE_APPEARANCE"
)

const auditChannelCapacity = 100

// AuditService records admin mutations off the request path. With a DB the
// entries go to audit_logs, otherwise they are only logged.
type AuditService struct {
	db      *gorm.DB
	logger  *slog.Logger
	entries chan models.AuditLog
	now     func() time.Time
}

func NewAuditService(db *gorm.DB, logger *slog.Logger) *AuditService {
	return &AuditService{
		db:      db,
		logger:  logger,
		entries: make(chan models.AuditLog, auditChannelCapacity),
		now:     time.Now,
	}
}

// Migrate creates audit_logs when it is missing.
func (s *AuditService) Migrate() error {
	if s.db == nil {
		return nil
	}
	return s.db.AutoMigrate(&models.AuditLog{})
}

func (s *AuditService) Start(ctx context.Context) {
	s.logger.Info("Audit worker starting", "persistent", s.db != nil)
	for {
		select {
		case entry := <-s.entries:
			s.write(entry)
		case <-ctx.Done():
			s.drain()
			s.logger.Info("Audit worker stopping")
			return
		}
	}
}

func (s *AuditService) drain() {
	for {
		select {
		case entry := <-s.entries:
			s.write(entry)
		default:
			return
		}
	}
}

func (s *AuditService) write(entry models.AuditLog) {
	if s.db == nil {
		s.logger.Info("audit", "action", entry.Action, "entity_type", entry.EntityType, "entity_id", entry.EntityID, "ip", entry.IPAddress)
		return
	}
	if err := s.db.Create(&entry).Error; err != nil {
		s.logger.Error("Failed to write audit log", "error", err, "action", entry.Action)
	}
}

// LogAction queues an entry and drops it when the queue is full.
func (s *AuditService) LogAction(action, entityType, entityID string, details any, ip string) {
	detailBytes, _ := json.Marshal(details)

	entry := models.AuditLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    string(detailBytes),
		IPAddress:  ip,
		Timestamp:  s.now().UTC(),
	}

	select {
	case s.entries <- entry:
	default:
		s.logger.Warn("Audit channel full, dropping log", "action", action)
	}
}
