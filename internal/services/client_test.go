package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathsixdesigns/pathsix-crm/internal/models"
)

func fullClientInput(name string) ClientInput {
	return ClientInput{
		Name:         name,
		Website:      "www.example.com",
		PricingTier:  "standard",
		Email:        "office@example.com",
		Phone:        "555-123-4567",
		Street:       "100 Main St",
		City:         "Amarillo",
		State:        "tx",
		ZipCode:      "79101",
		FirstName:    "Jane",
		LastName:     "Doe",
		ContactEmail: "jane@example.com",
		ContactPhone: "555-987-6543",
		ContactNote:  "Met at the chamber mixer.",
	}
}

func TestClientCreateRoundTrip(t *testing.T) {
	svc := NewClientService(openTestDB(t))

	created, err := svc.Create(1, fullClientInput("Acme Co"))
	require.NoError(t, err)

	got, err := svc.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Co", got.Name)
	require.NotNil(t, got.Account)
	assert.Equal(t, "ACC000001", got.Account.AccountNumber)
	assert.Equal(t, "Acme Co", got.Account.AccountName)
	require.Len(t, got.Addresses, 1)
	assert.Equal(t, "TX", got.Addresses[0].State, "state is stored uppercased")
	require.Len(t, got.Contacts, 1)
	assert.True(t, got.Contacts[0].IsPrimary)
	assert.Equal(t, uint(1), got.Contacts[0].CreatedBy)
	require.Len(t, got.ContactNotes, 1)
}

func TestClientCreateGeneratesDistinctAccountNumbers(t *testing.T) {
	svc := NewClientService(openTestDB(t))

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		c, err := svc.Create(1, ClientInput{Name: "Client"})
		require.NoError(t, err)
		got, err := svc.Get(c.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Account)
		assert.False(t, seen[got.Account.AccountNumber], "duplicate %s", got.Account.AccountNumber)
		seen[got.Account.AccountNumber] = true
	}
	assert.True(t, seen["ACC000003"])
}

func TestClientCreateConcurrentAccountNumbersDistinct(t *testing.T) {
	svc := NewClientService(openTestDB(t))

	const workers = 8
	var wg sync.WaitGroup
	ids := make(chan uint, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := svc.Create(1, ClientInput{Name: "Racer"})
			if err != nil {
				errs <- err
				return
			}
			ids <- c.ID
		}()
	}
	wg.Wait()
	close(ids)
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent create: %v", err)
	}

	seen := map[string]bool{}
	for id := range ids {
		got, err := svc.Get(id)
		require.NoError(t, err)
		require.NotNil(t, got.Account)
		assert.False(t, seen[got.Account.AccountNumber], "duplicate %s", got.Account.AccountNumber)
		seen[got.Account.AccountNumber] = true
	}
	assert.Len(t, seen, workers)
}

func TestClientCreateSkipsNonNumericAccountNumbers(t *testing.T) {
	svc := NewClientService(openTestDB(t))

	// A hand-entered number matches the ACC prefix but has no numeric suffix;
	// the generator must ignore it rather than choke on it.
	_, err := svc.Create(1, ClientInput{Name: "Legacy", AccountNumber: "ACCOUNT1"})
	require.NoError(t, err)

	c, err := svc.Create(1, ClientInput{Name: "Fresh"})
	require.NoError(t, err)
	got, err := svc.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACC000001", got.Account.AccountNumber)
}

func TestClientCreateExplicitAccountNumber(t *testing.T) {
	svc := NewClientService(openTestDB(t))

	c, err := svc.Create(1, ClientInput{Name: "Custom", AccountNumber: "ACC999999"})
	require.NoError(t, err)
	got, err := svc.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACC999999", got.Account.AccountNumber)

	// The generator continues past the highest existing suffix.
	c2, err := svc.Create(1, ClientInput{Name: "Next"})
	require.NoError(t, err)
	got2, err := svc.Get(c2.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACC1000000", got2.Account.AccountNumber)
}

func TestClientUpdateIsIdempotent(t *testing.T) {
	svc := NewClientService(openTestDB(t))

	c, err := svc.Create(1, fullClientInput("Acme Co"))
	require.NoError(t, err)

	in := fullClientInput("Acme Rebranded")
	in.Street = "200 Oak Ave"
	require.NoError(t, svc.Update(c.ID, in))
	require.NoError(t, svc.Update(c.ID, in))

	got, err := svc.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Rebranded", got.Name)
	assert.Equal(t, "Acme Rebranded", got.Account.AccountName)
	require.Len(t, got.Addresses, 1, "repeating the same edit must not duplicate the address")
	assert.Equal(t, "200 Oak Ave", got.Addresses[0].Street)
}

func TestClientDeleteCascades(t *testing.T) {
	conn := openTestDB(t)
	svc := NewClientService(conn)

	c, err := svc.Create(1, fullClientInput("Acme Co"))
	require.NoError(t, err)
	require.NoError(t, conn.Create(&models.Sale{ClientID: c.ID, SaleAmount: 100}).Error)
	require.NoError(t, conn.Create(&models.Reminder{ClientID: c.ID, ReminderType: "billing"}).Error)

	require.NoError(t, svc.Delete(c.ID))

	for _, child := range []struct {
		name  string
		model any
	}{
		{"accounts", &models.Account{}},
		{"addresses", &models.Address{}},
		{"contacts", &models.Contact{}},
		{"contact_notes", &models.ContactNote{}},
		{"sales", &models.Sale{}},
		{"reminders", &models.Reminder{}},
	} {
		var count int64
		require.NoError(t, conn.Model(child.model).Where("client_id = ?", c.ID).Count(&count).Error)
		assert.Zero(t, count, "%s rows must cascade with the client", child.name)
	}

	_, err = svc.Get(c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientAddContactAndNote(t *testing.T) {
	svc := NewClientService(openTestDB(t))

	c, err := svc.Create(1, ClientInput{Name: "Acme Co"})
	require.NoError(t, err)

	require.NoError(t, svc.AddContact(c.ID, 2, models.Contact{FirstName: "Bob", LastName: "Smith"}))
	require.NoError(t, svc.AddNote(c.ID, "Follow up next week."))

	got, err := svc.Get(c.ID)
	require.NoError(t, err)
	require.Len(t, got.Contacts, 1)
	assert.Equal(t, uint(2), got.Contacts[0].CreatedBy)
	require.Len(t, got.ContactNotes, 1)

	assert.ErrorIs(t, svc.AddNote(9999, "nope"), ErrNotFound)
}

func TestClientListPagination(t *testing.T) {
	svc := NewClientService(openTestDB(t))

	for i := 0; i < PerPage+2; i++ {
		_, err := svc.Create(1, ClientInput{Name: "Client"})
		require.NoError(t, err)
	}

	page1, total, err := svc.List(1)
	require.NoError(t, err)
	assert.EqualValues(t, PerPage+2, total)
	assert.Len(t, page1, PerPage)

	page2, _, err := svc.List(2)
	require.NoError(t, err)
	assert.Len(t, page2, 2)

	// Newest first: page 1 leads with the highest id.
	assert.Greater(t, page1[0].ID, page2[len(page2)-1].ID)
}
