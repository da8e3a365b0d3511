package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/pathsixdesigns/pathsix-crm/internal/models"
)

// LeadInput is the full-replace form payload for a lead aggregate.
type LeadInput struct {
	Name        string
	Website     string
	Email       string
	Phone       string
	Description string

	Street  string
	City    string
	State   string
	ZipCode string

	FirstName    string
	LastName     string
	ContactEmail string
	ContactPhone string

	ContactNote string
}

func (in *LeadInput) hasAddress() bool {
	return in.Street != "" && in.City != "" && in.State != "" && in.ZipCode != ""
}

func (in *LeadInput) hasContact() bool {
	return in.FirstName != "" && in.LastName != ""
}

type LeadService struct {
	DB *gorm.DB
}

func NewLeadService(db *gorm.DB) *LeadService { return &LeadService{DB: db} }

// Create persists the lead and its optional address/contact/note dependents
// in one transaction.
func (s *LeadService) Create(userID uint, in LeadInput) (*models.Lead, error) {
	lead := models.Lead{
		Name:        in.Name,
		Website:     in.Website,
		Email:       in.Email,
		Phone:       in.Phone,
		Description: in.Description,
		UserID:      userID,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lead).Error; err != nil {
			return err
		}
		if in.hasAddress() {
			addr := models.Address{
				LeadID:  &lead.ID,
				Street:  in.Street,
				City:    in.City,
				State:   strings.ToUpper(in.State),
				ZipCode: in.ZipCode,
			}
			if err := tx.Create(&addr).Error; err != nil {
				return err
			}
		}
		if in.hasContact() {
			contact := models.Contact{
				LeadID:    &lead.ID,
				FirstName: in.FirstName,
				LastName:  in.LastName,
				Email:     in.ContactEmail,
				Phone:     in.ContactPhone,
				IsPrimary: true,
				CreatedBy: userID,
			}
			if err := tx.Create(&contact).Error; err != nil {
				return err
			}
		}
		if in.ContactNote != "" {
			note := models.ContactNote{LeadID: &lead.ID, Note: in.ContactNote}
			if err := tx.Create(&note).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// Get loads a lead with children for the report view.
func (s *LeadService) Get(id uint) (*models.Lead, error) {
	var lead models.Lead
	err := s.DB.
		Preload("Addresses").
		Preload("Contacts").
		Preload("ContactNotes").
		Preload("Projects").
		First(&lead, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// Update overwrites every editable scalar and upserts the optional address.
func (s *LeadService) Update(id uint, in LeadInput) error {
	var lead models.Lead
	if err := s.DB.First(&lead, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		lead.Name = in.Name
		lead.Website = in.Website
		lead.Email = in.Email
		lead.Phone = in.Phone
		lead.Description = in.Description
		if err := tx.Save(&lead).Error; err != nil {
			return err
		}
		if in.hasAddress() {
			var addr models.Address
			switch err := tx.Where("lead_id = ?", id).First(&addr).Error; {
			case err == nil:
				addr.Street = in.Street
				addr.City = in.City
				addr.State = strings.ToUpper(in.State)
				addr.ZipCode = in.ZipCode
				if err := tx.Save(&addr).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				addr = models.Address{
					LeadID:  &lead.ID,
					Street:  in.Street,
					City:    in.City,
					State:   strings.ToUpper(in.State),
					ZipCode: in.ZipCode,
				}
				if err := tx.Create(&addr).Error; err != nil {
					return err
				}
			default:
				return err
			}
		}
		return nil
	})
}

// Delete removes the lead. Addresses/contacts/notes cascade; projects keep
// running with lead_id set to NULL.
func (s *LeadService) Delete(id uint) error {
	var lead models.Lead
	if err := s.DB.First(&lead, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&lead).Error
	})
}

// List returns one page of leads, newest first.
func (s *LeadService) List(page int) ([]models.Lead, int64, error) {
	if page < 1 {
		page = 1
	}
	var total int64
	if err := s.DB.Model(&models.Lead{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var leads []models.Lead
	err := s.DB.
		Order("created_at DESC, id DESC").
		Limit(PerPage).
		Offset((page - 1) * PerPage).
		Find(&leads).Error
	return leads, total, err
}

// AddContact attaches a new contact to the lead.
func (s *LeadService) AddContact(leadID, createdBy uint, c models.Contact) error {
	if err := s.ensureExists(leadID); err != nil {
		return err
	}
	c.LeadID = &leadID
	c.CreatedBy = createdBy
	if !c.HasParent() {
		return ErrNoParent
	}
	return s.DB.Create(&c).Error
}

// AddNote attaches a free-text note to the lead.
func (s *LeadService) AddNote(leadID uint, note string) error {
	if err := s.ensureExists(leadID); err != nil {
		return err
	}
	n := models.ContactNote{LeadID: &leadID, Note: note}
	return s.DB.Create(&n).Error
}

func (s *LeadService) ensureExists(id uint) error {
	var count int64
	if err := s.DB.Model(&models.Lead{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
