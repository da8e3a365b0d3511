package models

import "time"

// Canonical project status vocabulary.
const (
	ProjectStatusInProgress = "in progress"
	ProjectStatusWon        = "won"
	ProjectStatusLost       = "lost"
	ProjectStatusOnHold     = "on hold"
	ProjectStatusCanceled   = "canceled"
)

// ProjectStatuses lists the accepted status values in display order.
var ProjectStatuses = []string{
	ProjectStatusInProgress,
	ProjectStatusWon,
	ProjectStatusLost,
	ProjectStatusOnHold,
	ProjectStatusCanceled,
}

// ValidProjectStatus reports whether s is one of the canonical statuses.
func ValidProjectStatus(s string) bool {
	for _, v := range ProjectStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Project is a work item optionally linked to a Client or a Lead. Both parents
// may be null; no constraint enforces exactly one.
type Project struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null;index"`
	Description string `gorm:"type:text"`
	Status      string `gorm:"size:20;not null;default:'in progress'"`
	StartDate   *time.Time
	EndDate     *time.Time
	Worth       float64
	ClientID    *uint `gorm:"index"`
	LeadID      *uint `gorm:"index"`
	CreatedBy   uint  `gorm:"not null"`
	UpdatedBy   uint
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Contacts     []Contact     `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	ContactNotes []ContactNote `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}
