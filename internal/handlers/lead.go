package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/pathsixdesigns/pathsix-crm/internal/forms"
	"github.com/pathsixdesigns/pathsix-crm/internal/httpx"
	"github.com/pathsixdesigns/pathsix-crm/internal/models"
	"github.com/pathsixdesigns/pathsix-crm/internal/services"
	"github.com/pathsixdesigns/pathsix-crm/internal/validation"
	"github.com/pathsixdesigns/pathsix-crm/internal/view"
)

// LeadHandler serves the lead CRUD routes. Leads mirror clients minus the
// billing account, with a free-text description instead of a pricing tier.
type LeadHandler struct {
	Svc      *services.LeadService
	Registry *forms.Registry
}

func NewLeadHandler(svc *services.LeadService, registry *forms.Registry) *LeadHandler {
	return &LeadHandler{Svc: svc, Registry: registry}
}

// List: GET /leads - paginated, newest first, HTML or JSON.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	leads, total, err := h.Svc.List(page)
	if err != nil {
		serverError(w, r, "list leads", err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": leads, "total": total, "page": page, "per_page": services.PerPage})
		return
	}
	fields, err := h.Registry.Fields("lead")
	if err != nil {
		serverError(w, r, "lead form config", err)
		return
	}
	renderTemplate(w, r, "leads.html", map[string]any{
		"Leads":   leads,
		"Total":   total,
		"Page":    page,
		"PerPage": services.PerPage,
		"Fields":  fields,
	})
}

func (h *LeadHandler) parseInput(r *http.Request) (services.LeadInput, validation.Violations, error) {
	values, v, err := h.Registry.Parse("lead", r.Form)
	if err != nil {
		return services.LeadInput{}, nil, err
	}
	in := services.LeadInput{
		Name:         values.Strings["name"],
		Website:      values.Strings["website"],
		Email:        values.Strings["email"],
		Phone:        values.Strings["phone"],
		Description:  values.Strings["description"],
		Street:       values.Strings["street"],
		City:         values.Strings["city"],
		State:        values.Strings["state"],
		ZipCode:      values.Strings["zip_code"],
		FirstName:    values.Strings["first_name"],
		LastName:     values.Strings["last_name"],
		ContactEmail: values.Strings["contact_email"],
		ContactPhone: values.Strings["contact_phone"],
		ContactNote:  values.Strings["contact_note"],
	}
	validation.State("state", in.State, v)
	validation.Zip("zip_code", in.ZipCode, v)
	return in, v, nil
}

// Create: POST /leads/new
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		view.AddFlash(w, r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/leads", http.StatusSeeOther)
		return
	}
	in, v, err := h.parseInput(r)
	if err != nil {
		serverError(w, r, "lead form config", err)
		return
	}
	if !v.Empty() {
		flashViolations(w, r, v)
		http.Redirect(w, r, "/leads", http.StatusSeeOther)
		return
	}
	if _, err := h.Svc.Create(user.ID, in); err != nil {
		log.Printf("create lead: %v", err)
		view.AddFlash(w, r, "danger", "An error occurred while adding the lead.")
		http.Redirect(w, r, "/leads", http.StatusSeeOther)
		return
	}
	view.AddFlash(w, r, "success", "Lead created successfully!")
	http.Redirect(w, r, "/leads", http.StatusSeeOther)
}

// Report: GET /lead/{id}
func (h *LeadHandler) Report(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		NotFound(w, r)
		return
	}
	lead, err := h.Svc.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			NotFound(w, r)
			return
		}
		serverError(w, r, "lead report", err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, lead)
		return
	}
	leadFields, err := h.Registry.Fields("lead")
	if err != nil {
		serverError(w, r, "lead form config", err)
		return
	}
	contactFields, err := h.Registry.Fields("contact")
	if err != nil {
		serverError(w, r, "contact form config", err)
		return
	}
	noteFields, err := h.Registry.Fields("notes")
	if err != nil {
		serverError(w, r, "notes form config", err)
		return
	}
	renderTemplate(w, r, "lead_report.html", map[string]any{
		"Lead":          lead,
		"Addresses":     lead.Addresses,
		"Contacts":      lead.Contacts,
		"Notes":         lead.ContactNotes,
		"Projects":      lead.Projects,
		"LeadFields":    leadFields,
		"ContactFields": contactFields,
		"NoteFields":    noteFields,
	})
}

// Edit: POST /lead/{id}/edit
func (h *LeadHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		view.AddFlash(w, r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/lead/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	in, v, err := h.parseInput(r)
	if err != nil {
		serverError(w, r, "lead form config", err)
		return
	}
	if !v.Empty() {
		flashViolations(w, r, v)
		http.Redirect(w, r, "/lead/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	if err := h.Svc.Update(id, in); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			NotFound(w, r)
			return
		}
		log.Printf("update lead %d: %v", id, err)
		view.AddFlash(w, r, "danger", "An error occurred while updating the lead.")
		http.Redirect(w, r, "/lead/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	view.AddFlash(w, r, "success", "Lead updated successfully!")
	http.Redirect(w, r, "/lead/"+strconv.Itoa(int(id)), http.StatusSeeOther)
}

// Delete: POST /lead/{id}/delete - children cascade, projects are detached.
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		NotFound(w, r)
		return
	}
	if err := h.Svc.Delete(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			NotFound(w, r)
			return
		}
		serverError(w, r, "delete lead", err)
		return
	}
	view.AddFlash(w, r, "success", "Lead deleted successfully!")
	http.Redirect(w, r, "/leads", http.StatusSeeOther)
}

// AddContact: POST /lead/{id}/add_contact
func (h *LeadHandler) AddContact(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	id, ok := urlID(r)
	if !ok {
		NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		view.AddFlash(w, r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/lead/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	values, v, err := h.Registry.Parse("contact", r.Form)
	if err != nil {
		serverError(w, r, "contact form config", err)
		return
	}
	if !v.Empty() {
		flashViolations(w, r, v)
		http.Redirect(w, r, "/lead/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	contact := models.Contact{
		FirstName: values.Strings["first_name"],
		LastName:  values.Strings["last_name"],
		Email:     values.Strings["email"],
		Phone:     values.Strings["phone"],
		IsPrimary: r.Form.Get("is_primary") == "on",
	}
	if err := h.Svc.AddContact(id, user.ID, contact); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			NotFound(w, r)
			return
		}
		log.Printf("add contact to lead %d: %v", id, err)
		view.AddFlash(w, r, "danger", "Error adding contact.")
		http.Redirect(w, r, "/lead/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	view.AddFlash(w, r, "success", "Contact added successfully!")
	http.Redirect(w, r, "/lead/"+strconv.Itoa(int(id)), http.StatusSeeOther)
}

// AddNote: POST /lead/{id}/add_note
func (h *LeadHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		view.AddFlash(w, r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/lead/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	note := strings.TrimSpace(r.FormValue("note"))
	v := validation.Violations{}
	validation.Required("note", note, "Note is required.", v)
	validation.MaxLen("note", note, 500, v)
	if !v.Empty() {
		flashViolations(w, r, v)
		http.Redirect(w, r, "/lead/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	if err := h.Svc.AddNote(id, note); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			NotFound(w, r)
			return
		}
		log.Printf("add note to lead %d: %v", id, err)
		view.AddFlash(w, r, "danger", "Error adding note.")
		http.Redirect(w, r, "/lead/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	view.AddFlash(w, r, "success", "Note added successfully!")
	http.Redirect(w, r, "/lead/"+strconv.Itoa(int(id)), http.StatusSeeOther)
}
