package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pathsixdesigns/pathsix-crm/internal/models"
	"github.com/pathsixdesigns/pathsix-crm/internal/validation"
)

// ErrInvalidCredentials is returned for a bad email/password pair. Callers
// show one generic message so the response does not reveal which half failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService { return &UserService{DB: db} }

// CheckUnique appends per-field "already in use" violations for a taken
// username or email. excludeID skips the user's own row on self-edit.
func (s *UserService) CheckUnique(username, email string, excludeID uint, v validation.Violations) error {
	var count int64
	q := s.DB.Model(&models.User{}).Where("username = ?", username)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		v.Add("username", "Username Taken. Please choose another.")
	}
	count = 0
	q = s.DB.Model(&models.User{}).Where("email = ?", email)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		v.Add("email", "There is already an account using that email.")
	}
	return nil
}

// Create hashes the password and inserts the user with an optional role, as
// one transaction.
func (s *UserService) Create(username, email, password, roleName string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Username:     username,
		Email:        email,
		Password:     string(hash),
		FsUniquifier: uuid.NewString(),
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if roleName != "" {
			var role models.Role
			if err := tx.Where("name = ?", roleName).First(&role).Error; err != nil {
				return err
			}
			if err := tx.Model(&user).Association("Roles").Append(&role); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Get loads a user with roles.
func (s *UserService) Get(id uint) (*models.User, error) {
	var user models.User
	err := s.DB.Preload("Roles").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns every user with roles preloaded.
func (s *UserService) List() ([]models.User, error) {
	var users []models.User
	err := s.DB.Preload("Roles").Order("id").Find(&users).Error
	return users, err
}

// Roles returns every role, ordered by name.
func (s *UserService) Roles() ([]models.Role, error) {
	var roles []models.Role
	err := s.DB.Order("name").Find(&roles).Error
	return roles, err
}

// Update overwrites username/email and replaces the role set when roleID is
// non-zero.
func (s *UserService) Update(id uint, username, email string, roleID uint) error {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		user.Username = username
		user.Email = email
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		if roleID != 0 {
			var role models.Role
			if err := tx.First(&role, roleID).Error; err != nil {
				return err
			}
			if err := tx.Model(&user).Association("Roles").Replace(&role); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the user. Owned clients and leads keep their user_id; they
// are intentionally not cascaded.
func (s *UserService) Delete(id uint) error {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Association("Roles").Clear(); err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}

// Authenticate verifies the email/password pair and stamps last_login_at.
func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	if err := s.DB.Preload("Roles").Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	now := time.Now()
	user.LastLoginAt = &now
	if err := s.DB.Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail returns the user for a password-reset request.
func (s *UserService) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ResetPassword sets a new password hash and rotates the fs_uniquifier so
// every outstanding reset token is invalidated.
func (s *UserService) ResetPassword(id uint, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
			"password":      string(hash),
			"fs_uniquifier": uuid.NewString(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// UpdateProfile changes the user's own username/email.
func (s *UserService) UpdateProfile(id uint, username, email string) error {
	res := s.DB.Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
		"username": username,
		"email":    email,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
