package models

import "time"

// Audit actions
const (
	AuditActionVerificationCompleted = "verification_completed"
	AuditActionVerificationQueued    = "verification_queued"
	AuditActionSettingsUpdated       = "settings_updated"
)

// PerformerType identifies who caused an audited action
type PerformerType string

const (
	PerformerSystem PerformerType = "system"
	PerformerAdmin  PerformerType = "admin"
	PerformerUser   PerformerType = "user"
)

// AuditLogEntry is an append-only history row. Rows are never updated or deleted.
type AuditLogEntry struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	ImageID         string        `gorm:"type:varchar(64);not null;index:idx_audit_image" json:"image_id"`
	ImageType       string        `gorm:"type:varchar(50);not null;index:idx_audit_image" json:"image_type"`
	Action          string        `gorm:"type:varchar(50);not null;index" json:"action"`
	OldStatus       *string       `gorm:"type:varchar(20)" json:"old_status"`
	NewStatus       *string       `gorm:"type:varchar(20)" json:"new_status"`
	PerformedBy     *uint         `json:"performed_by"`
	PerformedByType PerformerType `gorm:"type:varchar(20);not null;default:'system'" json:"performed_by_type"`
	Details         JSON          `gorm:"type:json" json:"details"`
	Timestamp       time.Time     `gorm:"column:timestamp;autoCreateTime;index" json:"timestamp"`
}

// TableName maps the model onto the shared schema
func (AuditLogEntry) TableName() string {
	return "authenticity_audit_log"
}
