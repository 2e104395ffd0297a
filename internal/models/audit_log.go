package models

import (
	"time"
)

type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Action     string    `gorm:"size:50;not null" json:"action"`   // e.g., "UPSERT_PIXEL", "DELETE_PRODUCT"
	EntityType string    `gorm:"size:30;index" json:"entity_type"` // pixel, product, whatsapp_page, appearance
	EntityID   string    `gorm:"size:64" json:"entity_id"`
	Details    string    `gorm:"type:text" json:"details"`
	IPAddress  string    `gorm:"size:45" json:"ip_address"`
	Timestamp  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"timestamp"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
