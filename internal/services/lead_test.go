package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathsixdesigns/pathsix-crm/internal/models"
)

func TestLeadCreateRoundTrip(t *testing.T) {
	svc := NewLeadService(openTestDB(t))

	created, err := svc.Create(1, LeadInput{
		Name:        "Prospect LLC",
		Email:       "hello@prospect.example",
		Description: "Referred by Acme.",
		Street:      "5 Elm St",
		City:        "Lubbock",
		State:       "tx",
		ZipCode:     "79401",
		FirstName:   "Sam",
		LastName:    "Lee",
		ContactNote: "Left a voicemail.",
	})
	require.NoError(t, err)

	got, err := svc.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Referred by Acme.", got.Description)
	require.Len(t, got.Addresses, 1)
	assert.Equal(t, "TX", got.Addresses[0].State)
	require.Len(t, got.Contacts, 1)
	require.Len(t, got.ContactNotes, 1)
}

func TestLeadDeleteDetachesProjects(t *testing.T) {
	conn := openTestDB(t)
	leads := NewLeadService(conn)
	projects := NewProjectService(conn)

	lead, err := leads.Create(1, LeadInput{Name: "Prospect LLC", FirstName: "Sam", LastName: "Lee"})
	require.NoError(t, err)

	project, err := projects.Create(1, ProjectInput{Name: "New Site", LeadID: &lead.ID})
	require.NoError(t, err)

	require.NoError(t, leads.Delete(lead.ID))

	// Contacts cascade away, the project survives with its lead unset.
	var count int64
	require.NoError(t, conn.Model(&models.Contact{}).Where("lead_id = ?", lead.ID).Count(&count).Error)
	assert.Zero(t, count)

	got, err := projects.Get(project.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LeadID)
}
