package db

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/pathsixdesigns/pathsix-crm/internal/models"
)

// Seed inserts the baseline roles if they are missing. Safe to run repeatedly.
func Seed(conn *gorm.DB) {
	baseRoles := []models.Role{
		{Name: "admin", Description: "Full access including user administration"},
		{Name: "editor", Description: "Can manage clients, leads and projects"},
		{Name: "user", Description: "Default read/write CRM access"},
	}
	for _, role := range baseRoles {
		var existing models.Role
		if err := conn.Where("name = ?", role.Name).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			if err := conn.Create(&role).Error; err != nil {
				log.Printf("seed role %s: %v", role.Name, err)
			}
		}
	}
}
