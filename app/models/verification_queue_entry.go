package models

import (
	"fmt"
	"strings"
	"time"
)

// QueueStatus is the state of a verification queue entry
type QueueStatus string

const (
	QueueStatusQueued     QueueStatus = "queued"
	QueueStatusProcessing QueueStatus = "processing"
	QueueStatusCompleted  QueueStatus = "completed"
	QueueStatusFailed     QueueStatus = "failed"
)

// IsTerminal reports whether automated processing is finished for the status
func (s QueueStatus) IsTerminal() bool {
	return s == QueueStatusCompleted || s == QueueStatusFailed
}

// QueuePriority orders queue entries, higher runs first
type QueuePriority int

const (
	QueuePriorityLow    QueuePriority = 1
	QueuePriorityMedium QueuePriority = 2
	QueuePriorityHigh   QueuePriority = 3
)

// String returns the priority name
func (p QueuePriority) String() string {
	switch p {
	case QueuePriorityHigh:
		return "high"
	case QueuePriorityMedium:
		return "medium"
	case QueuePriorityLow:
		return "low"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// ParseQueuePriority parses "high", "medium" or "low"
func ParseQueuePriority(value string) (QueuePriority, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "high":
		return QueuePriorityHigh, nil
	case "medium", "":
		return QueuePriorityMedium, nil
	case "low":
		return QueuePriorityLow, nil
	default:
		return 0, fmt.Errorf("unknown queue priority %q", value)
	}
}

// VerificationQueueEntry is one pending verification
type VerificationQueueEntry struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	ImageID      string        `gorm:"type:varchar(64);not null;uniqueIndex:idx_queue_image" json:"image_id"`
	ImageType    string        `gorm:"type:varchar(50);not null;uniqueIndex:idx_queue_image" json:"image_type"`
	FilePath     string        `gorm:"type:varchar(512);not null" json:"file_path"`
	UserID       uint          `gorm:"not null" json:"user_id"`
	TutorialID   *uint         `json:"tutorial_id,omitempty"`
	Priority     QueuePriority `gorm:"type:int;default:2;index:idx_queue_pick,priority:2" json:"priority"`
	Status       QueueStatus   `gorm:"type:varchar(20);default:'queued';index:idx_queue_pick,priority:1" json:"status"`
	Attempts     int           `gorm:"type:int;default:0" json:"attempts"`
	QueuedAt     time.Time     `gorm:"index:idx_queue_pick,priority:3" json:"queued_at"`
	ClaimedAt    *time.Time    `json:"claimed_at,omitempty"`
	ProcessedAt  *time.Time    `json:"processed_at,omitempty"`
	ErrorMessage *string       `gorm:"type:text" json:"error_message,omitempty"`
}

// TableName maps the model onto the shared schema
func (VerificationQueueEntry) TableName() string {
	return "image_verification_queue"
}

// Submission returns the image submission the entry refers to
func (e *VerificationQueueEntry) Submission() ImageSubmission {
	return ImageSubmission{
		ImageID:    e.ImageID,
		ImageType:  e.ImageType,
		FilePath:   e.FilePath,
		UploaderID: e.UserID,
		TutorialID: e.TutorialID,
	}
}
