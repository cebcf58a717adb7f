package models

import (
	"time"

	"gorm.io/datatypes"
)

// AdminDecision is the human verdict on a flagged image
type AdminDecision string

const (
	AdminDecisionPending         AdminDecision = "pending"
	AdminDecisionApproved        AdminDecision = "approved"
	AdminDecisionRejected        AdminDecision = "rejected"
	AdminDecisionRequestReupload AdminDecision = "request_reupload"
)

// AdminReviewItem is a flagged image waiting for a moderator.
// AdminDecision, AdminFeedback, ReviewedBy and ReviewedAt are written by the moderation UI only.
type AdminReviewItem struct {
	ID                uint                        `gorm:"primaryKey" json:"id"`
	ImageID           string                      `gorm:"type:varchar(64);not null;uniqueIndex:idx_review_image" json:"image_id"`
	ImageType         string                      `gorm:"type:varchar(50);not null;uniqueIndex:idx_review_image" json:"image_type"`
	UserID            uint                        `gorm:"index;not null" json:"user_id"`
	TutorialID        *uint                       `gorm:"index" json:"tutorial_id,omitempty"`
	AuthenticityScore int                         `gorm:"type:int;default:0" json:"authenticity_score"`
	RiskLevel         RiskLevel                   `gorm:"type:varchar(20)" json:"risk_level"`
	FlaggedReasons    datatypes.JSONSlice[string] `gorm:"column:flagged_reasons" json:"flagged_reasons"`
	AdminDecision     AdminDecision               `gorm:"type:varchar(20);default:'pending';index" json:"admin_decision"`
	AdminFeedback     *string                     `gorm:"type:text" json:"admin_feedback,omitempty"`
	ReviewedBy        *uint                       `json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time                  `json:"reviewed_at,omitempty"`
	FlaggedAt         time.Time                   `gorm:"index" json:"flagged_at"`
}

// TableName maps the model onto the shared schema
func (AdminReviewItem) TableName() string {
	return "admin_review_queue"
}
