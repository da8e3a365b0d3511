package models

import "time"

// Client is a converted business relationship. Every child collection below
// carries a DB-level ON DELETE CASCADE back to clients.id.
type Client struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null;index"`
	Website     string `gorm:"size:255"`
	PricingTier string `gorm:"size:20"`
	Email       string `gorm:"size:120"`
	Phone       string `gorm:"size:20"`
	UserID      uint   `gorm:"index"` // owning user; not cascaded on user delete
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Account        *Account        `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	Addresses      []Address       `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	Contacts       []Contact       `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	ContactNotes   []ContactNote   `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	Sales          []Sale          `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	BillingCycles  []BillingCycle  `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	WebsiteUpdates []WebsiteUpdate `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	MailingLists   []MailingList   `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	ClientWebsites []ClientWebsite `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	Reminders      []Reminder      `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
}
