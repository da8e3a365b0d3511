package models

import "time"

// Lead is a pre-conversion prospect. Same shape as Client minus pricing/account,
// plus a free-text description. There is no automatic Lead -> Client promotion.
type Lead struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null;index"`
	Website     string `gorm:"size:255"`
	Email       string `gorm:"size:120"`
	Phone       string `gorm:"size:20"`
	Description string `gorm:"type:text"`
	UserID      uint   `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Addresses    []Address     `gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE"`
	Contacts     []Contact     `gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE"`
	ContactNotes []ContactNote `gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE"`
	// Projects may outlive the lead they originated from.
	Projects []Project `gorm:"foreignKey:LeadID;constraint:OnDelete:SET NULL"`
}
