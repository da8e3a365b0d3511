package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathsixdesigns/pathsix-crm/internal/mail"
	"github.com/pathsixdesigns/pathsix-crm/internal/view"
)

func postForm(t *testing.T, h http.HandlerFunc, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func flashesFrom(t *testing.T, rec *httptest.ResponseRecorder) []view.Flash {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name != "flash" || c.Value == "" {
			continue
		}
		raw, err := url.QueryUnescape(c.Value)
		require.NoError(t, err)
		var flashes []view.Flash
		require.NoError(t, json.Unmarshal([]byte(raw), &flashes))
		return flashes
	}
	return nil
}

func contactForm() url.Values {
	return url.Values{
		"name":    {"Jane Doe"},
		"email":   {"jane@example.com"},
		"subject": {"pathsixdesigns.com"},
		"message": {"Please update my hours."},
	}
}

func TestContactSubmitSendsMail(t *testing.T) {
	rec := &mail.Recorder{}
	h := NewSiteHandler(rec, "inbox@pathsixdesigns.com")

	resp := postForm(t, h.ContactSubmit, "/contact", contactForm())

	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/contact", resp.Header().Get("Location"))
	require.Len(t, rec.Sent, 1)
	assert.Equal(t, "inbox@pathsixdesigns.com", rec.Sent[0].To)
	assert.Equal(t, "pathsixdesigns.com", rec.Sent[0].Subject)
	assert.Contains(t, rec.Sent[0].Body, "Jane Doe")

	flashes := flashesFrom(t, resp)
	require.Len(t, flashes, 1)
	assert.Equal(t, "success", flashes[0].Category)
}

func TestContactSubmitSpamNameRejected(t *testing.T) {
	rec := &mail.Recorder{}
	h := NewSiteHandler(rec, "inbox@pathsixdesigns.com")

	form := contactForm()
	form.Set("name", "RobertHiene")
	resp := postForm(t, h.ContactSubmit, "/contact", form)

	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Empty(t, rec.Sent, "rejected submissions never reach the mailer")

	flashes := flashesFrom(t, resp)
	require.Len(t, flashes, 1)
	assert.Equal(t, "rejected", flashes[0].Category)
	assert.Equal(t, "Your message has been rejected. Please Stop.", flashes[0].Message)
}

func TestContactSubmitSpamKeywordRejected(t *testing.T) {
	rec := &mail.Recorder{}
	h := NewSiteHandler(rec, "inbox@pathsixdesigns.com")

	form := contactForm()
	form.Set("message", "I can be writing articles for you")
	resp := postForm(t, h.ContactSubmit, "/contact", form)

	assert.Empty(t, rec.Sent)
	flashes := flashesFrom(t, resp)
	require.Len(t, flashes, 1)
	assert.Equal(t, "rejected", flashes[0].Category)
	assert.Contains(t, flashes[0].Message, "marked as spam")
}

func TestContactSubmitValidationBeforeSpamCheck(t *testing.T) {
	rec := &mail.Recorder{}
	h := NewSiteHandler(rec, "inbox@pathsixdesigns.com")

	// Missing fields produce danger flashes, not the spam rejection, even
	// though the name would trip the block list.
	form := url.Values{"name": {"RobertHiene"}}
	resp := postForm(t, h.ContactSubmit, "/contact", form)

	assert.Empty(t, rec.Sent)
	flashes := flashesFrom(t, resp)
	require.NotEmpty(t, flashes)
	for _, f := range flashes {
		assert.Equal(t, "danger", f.Category)
	}
}

func TestContactSubmitMailFailure(t *testing.T) {
	rec := &mail.Recorder{Err: assert.AnError}
	h := NewSiteHandler(rec, "inbox@pathsixdesigns.com")

	resp := postForm(t, h.ContactSubmit, "/contact", contactForm())

	flashes := flashesFrom(t, resp)
	require.Len(t, flashes, 1)
	assert.Equal(t, "mail_error", flashes[0].Category)
}
