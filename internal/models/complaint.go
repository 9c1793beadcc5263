package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Complaint statuses. The transition graph is deliberately unrestricted:
// an admin may move a complaint between any two statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusResolved   = "resolved"
	StatusRejected   = "rejected"
)

// User types allowed to submit complaints.
const (
	UserTypeStudent = "student"
	UserTypeFaculty = "faculty"
)

// Complaint is the single persisted record type of the system.
// ComplaintID is the human-readable tracking identifier (CMP-YYYY-XXXXXXXX),
// assigned once at creation and never mutated; uniqueness is enforced by the
// unique index, with bounded regenerate-and-retry on collision.
type Complaint struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"-"`
	ComplaintID    string         `gorm:"size:20;not null;uniqueIndex" json:"id"`
	UserType       string         `gorm:"size:10;not null;index" json:"userType"`
	Name           string         `gorm:"size:100" json:"name,omitempty"`
	Department     string         `gorm:"size:20;not null;index" json:"department"`
	Year           string         `gorm:"size:10" json:"year,omitempty"`
	Category       string         `gorm:"size:30;not null;index" json:"category"`
	Title          string         `gorm:"size:200;not null" json:"title"`
	Description    string         `gorm:"size:2000;not null" json:"description"`
	FileURLs       datatypes.JSON `gorm:"type:jsonb" json:"fileUrls,omitempty"`
	Status         string         `gorm:"size:15;not null;default:'pending';index" json:"status"`
	ResolutionNote string         `gorm:"size:1000" json:"resolutionNote,omitempty"`
	SubmittedAt    time.Time      `gorm:"not null;index" json:"submittedAt"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns the primary key when the caller has not.
func (c *Complaint) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ValidStatus reports whether s is one of the four complaint statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}
