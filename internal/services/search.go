package services

import (
	"strings"

	"gorm.io/gorm"

	"github.com/pathsixdesigns/pathsix-crm/internal/models"
)

// SearchResults holds per-entity result lists for a single query; an entity
// only appears in the list matching its own columns.
type SearchResults struct {
	Clients   []models.Client
	Leads     []models.Lead
	Contacts  []models.Contact
	Addresses []models.Address
	Notes     []models.ContactNote
	Accounts  []models.Account
}

// Empty reports whether no entity matched.
func (r *SearchResults) Empty() bool {
	return len(r.Clients) == 0 && len(r.Leads) == 0 && len(r.Contacts) == 0 &&
		len(r.Addresses) == 0 && len(r.Notes) == 0 && len(r.Accounts) == 0
}

type SearchService struct {
	DB *gorm.DB
}

func NewSearchService(db *gorm.DB) *SearchService { return &SearchService{DB: db} }

// Search runs a case-insensitive substring match across a fixed set of text
// columns per entity and unions the result sets as parallel lists.
func (s *SearchService) Search(query string) (*SearchResults, error) {
	out := &SearchResults{}
	q := strings.TrimSpace(query)
	if q == "" {
		return out, nil
	}
	like := "%" + strings.ToLower(q) + "%"

	if err := s.DB.Where("LOWER(name) LIKE ?", like).Find(&out.Clients).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Where("LOWER(name) LIKE ?", like).Find(&out.Leads).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Where(
		"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?",
		like, like, like, like,
	).Find(&out.Contacts).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Where(
		"LOWER(street) LIKE ? OR LOWER(city) LIKE ? OR LOWER(state) LIKE ? OR LOWER(zip_code) LIKE ?",
		like, like, like, like,
	).Find(&out.Addresses).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Where("LOWER(note) LIKE ?", like).Find(&out.Notes).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Where(
		"LOWER(account_number) LIKE ? OR LOWER(account_name) LIKE ?",
		like, like,
	).Find(&out.Accounts).Error; err != nil {
		return nil, err
	}
	return out, nil
}
