package models

import "time"

// Contact is a person attached to a client, lead and/or project. At least one
// parent key must be set; the service layer enforces this before insert.
type Contact struct {
	ID        uint   `gorm:"primaryKey"`
	FirstName string `gorm:"size:50;not null"`
	LastName  string `gorm:"size:50;not null"`
	Email     string `gorm:"size:120"`
	Phone     string `gorm:"size:20"`
	IsPrimary bool
	ClientID  *uint `gorm:"index"`
	LeadID    *uint `gorm:"index"`
	ProjectID *uint `gorm:"index"`
	CreatedBy uint  `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasParent reports whether the contact is linked to at least one entity.
func (c *Contact) HasParent() bool {
	return c.ClientID != nil || c.LeadID != nil || c.ProjectID != nil
}

// Address belongs to exactly one of Client or Lead.
type Address struct {
	ID        uint   `gorm:"primaryKey"`
	Street    string `gorm:"size:255;not null"`
	City      string `gorm:"size:100;not null"`
	State     string `gorm:"size:2;not null"` // uppercase 2-letter code
	ZipCode   string `gorm:"size:10;not null"`
	ClientID  *uint  `gorm:"index"`
	LeadID    *uint  `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Address) HasParent() bool {
	return a.ClientID != nil || a.LeadID != nil
}

// ContactNote is a free-text note linked to a client, lead or project.
type ContactNote struct {
	ID        uint   `gorm:"primaryKey"`
	Note      string `gorm:"type:text;not null"`
	ClientID  *uint  `gorm:"index"`
	LeadID    *uint  `gorm:"index"`
	ProjectID *uint  `gorm:"index"`
	CreatedAt time.Time
}

func (n *ContactNote) HasParent() bool {
	return n.ClientID != nil || n.LeadID != nil || n.ProjectID != nil
}
