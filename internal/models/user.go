package models

import "time"

// User & auth related models
type User struct {
	ID       uint   `gorm:"primaryKey"`
	Username string `gorm:"size:20;unique;not null;index"`
	Email    string `gorm:"size:120;unique;not null;index"`
	Password string `gorm:"size:60;not null"` // bcrypt hash
	// Per-user random handle; rotating it invalidates outstanding reset tokens.
	FsUniquifier string `gorm:"size:64;unique;not null"`
	Roles        []Role `gorm:"many2many:user_roles"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Role struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:50;unique;not null"` // admin, editor, user
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasRole reports whether the user carries the named role.
// Roles must be preloaded for this to be meaningful.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}
