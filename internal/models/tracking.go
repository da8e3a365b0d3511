package models

import "time"

// Client-scoped auxiliary records. Each cascade-deletes with its parent client.

type Sale struct {
	ID         uint `gorm:"primaryKey"`
	ClientID   uint `gorm:"not null;index"`
	SaleAmount float64
	SaleDate   time.Time
	ExtrasSold string `gorm:"type:text"`
	Notes      string `gorm:"type:text"`
	CreatedAt  time.Time
}

type BillingCycle struct {
	ID            uint   `gorm:"primaryKey"`
	ClientID      uint   `gorm:"not null;index"`
	Cycle         string `gorm:"size:10"` // monthly, yearly
	LastBilled    *time.Time
	NextBilling   *time.Time
	PaymentStatus string `gorm:"size:10"` // pending, paid, overdue
	CreatedAt     time.Time
}

type WebsiteUpdate struct {
	ID              uint `gorm:"primaryKey"`
	ClientID        uint `gorm:"not null;index"`
	UpdateDate      time.Time
	PagesUpdated    string `gorm:"type:text"` // JSON-encoded list
	SectionsUpdated string `gorm:"type:text"` // JSON-encoded list
	Notes           string `gorm:"type:text"`
	CreatedAt       time.Time
}

type MailingList struct {
	ID           uint   `gorm:"primaryKey"`
	ClientID     uint   `gorm:"not null;index"`
	Address      string `gorm:"size:255"`
	PostcardSent bool
	DateSent     *time.Time
	Notes        string `gorm:"type:text"`
	CreatedAt    time.Time
}

type ClientWebsite struct {
	ID          uint   `gorm:"primaryKey"`
	ClientID    uint   `gorm:"not null;index"`
	Domain      string `gorm:"size:100;not null"`
	HostingSite string `gorm:"size:100"`
	SSLStatus   string `gorm:"size:20"` // active, expiring, expired
	RenewalDate *time.Time
	HostingCost float64
	Notes       string `gorm:"type:text"`
	CreatedAt   time.Time
}

type Reminder struct {
	ID           uint   `gorm:"primaryKey"`
	ClientID     uint   `gorm:"not null;index"`
	ReminderType string `gorm:"size:50"` // follow-up, billing, site update
	ReminderDate *time.Time
	Notes        string `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
