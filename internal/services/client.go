package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/pathsixdesigns/pathsix-crm/internal/models"
)

// ClientInput carries the full edit-form payload for a client aggregate.
// Edits are full-replace: every editable field is overwritten from the form.
type ClientInput struct {
	Name        string
	Website     string
	PricingTier string
	Email       string
	Phone       string

	AccountNumber string

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

func (in *ClientInput) hasAddress() bool {
	return in.Street != "" && in.City != "" && in.State != "" && in.ZipCode != ""
}

func (in *ClientInput) hasContact() bool {
	return in.FirstName != "" && in.LastName != ""
}

// ClientService executes validated client operations as atomic units.
type ClientService struct {
	DB *gorm.DB
}

func NewClientService(db *gorm.DB) *ClientService { return &ClientService{DB: db} }

// Create persists the client first to obtain its id, then the dependent
// account/address/contact/note rows, all inside one transaction.
func (s *ClientService) Create(userID uint, in ClientInput) (*models.Client, error) {
	var client models.Client
	err := retryAccountConflict(func() error {
		client = models.Client{
			Name:        in.Name,
			Website:     in.Website,
			PricingTier: in.PricingTier,
			Email:       in.Email,
			Phone:       in.Phone,
			UserID:      userID,
		}
		return s.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&client).Error; err != nil {
				return err
			}
			if _, err := createAccount(tx, client.ID, in.AccountNumber, in.Name); err != nil {
				return err
			}
			if in.hasAddress() {
				addr := models.Address{
					ClientID: &client.ID,
					Street:   in.Street,
					City:     in.City,
					State:    strings.ToUpper(in.State),
					ZipCode:  in.ZipCode,
				}
				if err := tx.Create(&addr).Error; err != nil {
					return err
				}
			}
			if in.hasContact() {
				contact := models.Contact{
					ClientID:  &client.ID,
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
				note := models.ContactNote{ClientID: &client.ID, Note: in.ContactNote}
				if err := tx.Create(&note).Error; err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// Get loads a client with every child collection for the report view.
func (s *ClientService) Get(id uint) (*models.Client, error) {
	var client models.Client
	err := s.DB.
		Preload("Account").
		Preload("Addresses").
		Preload("Contacts").
		Preload("ContactNotes").
		Preload("Sales").
		Preload("BillingCycles").
		Preload("WebsiteUpdates").
		Preload("MailingLists").
		Preload("ClientWebsites").
		Preload("Reminders").
		First(&client, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// Update overwrites every editable scalar field and upserts the optional
// account and address rows, committing as one unit.
func (s *ClientService) Update(id uint, in ClientInput) error {
	var client models.Client
	if err := s.DB.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return retryAccountConflict(func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			client.Name = in.Name
			client.Website = in.Website
			client.PricingTier = in.PricingTier
			client.Email = in.Email
			client.Phone = in.Phone
			if err := tx.Save(&client).Error; err != nil {
				return err
			}

			var account models.Account
			switch err := tx.Where("client_id = ?", id).First(&account).Error; {
			case err == nil:
				if in.AccountNumber != "" {
					account.AccountNumber = in.AccountNumber
				}
				account.AccountName = in.Name
				if err := tx.Save(&account).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				if _, err := createAccount(tx, id, in.AccountNumber, in.Name); err != nil {
					return err
				}
			default:
				return err
			}

			if in.hasAddress() {
				var addr models.Address
				switch err := tx.Where("client_id = ?", id).First(&addr).Error; {
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
						ClientID: &client.ID,
						Street:   in.Street,
						City:     in.City,
						State:    strings.ToUpper(in.State),
						ZipCode:  in.ZipCode,
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
	})
}

// Delete removes the client; the storage-level cascade removes every child row.
func (s *ClientService) Delete(id uint) error {
	var client models.Client
	if err := s.DB.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&client).Error
	})
}

// List returns one page of clients, newest first.
func (s *ClientService) List(page int) ([]models.Client, int64, error) {
	if page < 1 {
		page = 1
	}
	var total int64
	if err := s.DB.Model(&models.Client{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var clients []models.Client
	err := s.DB.
		Order("created_at DESC, id DESC").
		Limit(PerPage).
		Offset((page - 1) * PerPage).
		Find(&clients).Error
	return clients, total, err
}

// AddContact attaches a new contact to the client.
func (s *ClientService) AddContact(clientID, createdBy uint, c models.Contact) error {
	if err := s.ensureExists(clientID); err != nil {
		return err
	}
	c.ClientID = &clientID
	c.CreatedBy = createdBy
	if !c.HasParent() {
		return ErrNoParent
	}
	return s.DB.Create(&c).Error
}

// AddNote attaches a free-text note to the client.
func (s *ClientService) AddNote(clientID uint, note string) error {
	if err := s.ensureExists(clientID); err != nil {
		return err
	}
	n := models.ContactNote{ClientID: &clientID, Note: note}
	return s.DB.Create(&n).Error
}

func (s *ClientService) ensureExists(id uint) error {
	var count int64
	if err := s.DB.Model(&models.Client{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
