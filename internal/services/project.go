package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pathsixdesigns/pathsix-crm/internal/models"
)

// ProjectInput is the full-replace form payload for a project aggregate.
type ProjectInput struct {
	Name        string
	Description string
	Status      string
	StartDate   *time.Time
	EndDate     *time.Time
	Worth       float64
	ClientID    *uint
	LeadID      *uint

	FirstName    string
	LastName     string
	ContactEmail string
	ContactPhone string

	ContactNote string
}

func (in *ProjectInput) hasContact() bool {
	return in.FirstName != "" && in.LastName != ""
}

type ProjectService struct {
	DB *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService { return &ProjectService{DB: db} }

// Create persists the project and its optional primary contact and note in
// one transaction. An empty status defaults to "in progress".
func (s *ProjectService) Create(userID uint, in ProjectInput) (*models.Project, error) {
	status := in.Status
	if status == "" {
		status = models.ProjectStatusInProgress
	}
	if !models.ValidProjectStatus(status) {
		return nil, fmt.Errorf("invalid project status %q", status)
	}
	project := models.Project{
		Name:        in.Name,
		Description: in.Description,
		Status:      status,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Worth:       in.Worth,
		ClientID:    in.ClientID,
		LeadID:      in.LeadID,
		CreatedBy:   userID,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		if in.hasContact() {
			contact := models.Contact{
				ProjectID: &project.ID,
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
			note := models.ContactNote{ProjectID: &project.ID, Note: in.ContactNote}
			if err := tx.Create(&note).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Get loads a project with its contacts and notes.
func (s *ProjectService) Get(id uint) (*models.Project, error) {
	var project models.Project
	err := s.DB.
		Preload("Contacts").
		Preload("ContactNotes").
		First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Update overwrites every editable scalar field.
func (s *ProjectService) Update(id, userID uint, in ProjectInput) error {
	if in.Status != "" && !models.ValidProjectStatus(in.Status) {
		return fmt.Errorf("invalid project status %q", in.Status)
	}
	var project models.Project
	if err := s.DB.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		project.Name = in.Name
		project.Description = in.Description
		if in.Status != "" {
			project.Status = in.Status
		}
		project.StartDate = in.StartDate
		project.EndDate = in.EndDate
		project.Worth = in.Worth
		project.ClientID = in.ClientID
		project.LeadID = in.LeadID
		project.UpdatedBy = userID
		return tx.Save(&project).Error
	})
}

// Delete removes the project; its contacts and notes cascade.
func (s *ProjectService) Delete(id uint) error {
	var project models.Project
	if err := s.DB.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&project).Error
	})
}

// List returns one page of projects, newest first.
func (s *ProjectService) List(page int) ([]models.Project, int64, error) {
	if page < 1 {
		page = 1
	}
	var total int64
	if err := s.DB.Model(&models.Project{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var projects []models.Project
	err := s.DB.
		Order("created_at DESC, id DESC").
		Limit(PerPage).
		Offset((page - 1) * PerPage).
		Find(&projects).Error
	return projects, total, err
}

// AddContact attaches a new contact to the project.
func (s *ProjectService) AddContact(projectID, createdBy uint, c models.Contact) error {
	if err := s.ensureExists(projectID); err != nil {
		return err
	}
	c.ProjectID = &projectID
	c.CreatedBy = createdBy
	if !c.HasParent() {
		return ErrNoParent
	}
	return s.DB.Create(&c).Error
}

// AddNote attaches a free-text note to the project.
func (s *ProjectService) AddNote(projectID uint, note string) error {
	if err := s.ensureExists(projectID); err != nil {
		return err
	}
	n := models.ContactNote{ProjectID: &projectID, Note: note}
	return s.DB.Create(&n).Error
}

func (s *ProjectService) ensureExists(id uint) error {
	var count int64
	if err := s.DB.Model(&models.Project{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
