package models

import "time"

// Account is the billing identity for a client. One per client by convention.
// AccountNumber is globally unique; when absent at insert time the service
// layer assigns the next "ACC" + zero-padded sequence number.
type Account struct {
	ID            uint   `gorm:"primaryKey"`
	AccountNumber string `gorm:"size:20;unique;not null"`
	AccountName   string `gorm:"size:100"`
	ClientID      uint   `gorm:"not null;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
