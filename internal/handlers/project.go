package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pathsixdesigns/pathsix-crm/internal/forms"
	"github.com/pathsixdesigns/pathsix-crm/internal/httpx"
	"github.com/pathsixdesigns/pathsix-crm/internal/models"
	"github.com/pathsixdesigns/pathsix-crm/internal/services"
	"github.com/pathsixdesigns/pathsix-crm/internal/validation"
	"github.com/pathsixdesigns/pathsix-crm/internal/view"
)

// ProjectHandler serves the project CRUD routes. A project may belong to a
// client, a lead, both, or neither; the parent selects come from the list
// services so the dropdowns show live data.
type ProjectHandler struct {
	Svc      *services.ProjectService
	Clients  *services.ClientService
	Leads    *services.LeadService
	Registry *forms.Registry
}

func NewProjectHandler(svc *services.ProjectService, clients *services.ClientService, leads *services.LeadService, registry *forms.Registry) *ProjectHandler {
	return &ProjectHandler{Svc: svc, Clients: clients, Leads: leads, Registry: registry}
}

// List: GET /projects - paginated, newest first, HTML or JSON.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	projects, total, err := h.Svc.List(page)
	if err != nil {
		serverError(w, r, "list projects", err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": projects, "total": total, "page": page, "per_page": services.PerPage})
		return
	}
	fields, err := h.Registry.Fields("project")
	if err != nil {
		serverError(w, r, "project form config", err)
		return
	}
	clients, _, err := h.Clients.List(1)
	if err != nil {
		serverError(w, r, "list clients for project form", err)
		return
	}
	leads, _, err := h.Leads.List(1)
	if err != nil {
		serverError(w, r, "list leads for project form", err)
		return
	}
	renderTemplate(w, r, "projects.html", map[string]any{
		"Projects": projects,
		"Total":    total,
		"Page":     page,
		"PerPage":  services.PerPage,
		"Fields":   fields,
		"Clients":  clients,
		"Leads":    leads,
		"Statuses": models.ProjectStatuses,
	})
}

// parseInput maps the dynamic form values onto the service input. client_id
// and lead_id ride outside the registry because they are relational selects,
// not configurable fields.
func (h *ProjectHandler) parseInput(r *http.Request) (services.ProjectInput, validation.Violations, error) {
	values, v, err := h.Registry.Parse("project", r.Form)
	if err != nil {
		return services.ProjectInput{}, nil, err
	}
	in := services.ProjectInput{
		Name:         values.Strings["name"],
		Description:  values.Strings["description"],
		Status:       values.Strings["status"],
		Worth:        values.Numbers["worth"],
		FirstName:    values.Strings["first_name"],
		LastName:     values.Strings["last_name"],
		ContactEmail: values.Strings["contact_email"],
		ContactPhone: values.Strings["contact_phone"],
		ContactNote:  values.Strings["contact_note"],
	}
	if t, ok := values.Dates["start_date"]; ok {
		in.StartDate = timePtr(t)
	}
	if t, ok := values.Dates["end_date"]; ok {
		in.EndDate = timePtr(t)
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		v.Add("end_date", "End Date cannot be before Start Date.")
	}
	in.ClientID = optionalID(r.Form.Get("client_id"), "client_id", v)
	in.LeadID = optionalID(r.Form.Get("lead_id"), "lead_id", v)
	return in, v, nil
}

func timePtr(t time.Time) *time.Time { return &t }

// optionalID parses a parent select value; empty means unset.
func optionalID(raw, field string, v validation.Violations) *uint {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	id64, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id64 == 0 {
		v.Add(field, "Invalid selection.")
		return nil
	}
	id := uint(id64)
	return &id
}

// Create: POST /projects/new
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		view.AddFlash(w, r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/projects", http.StatusSeeOther)
		return
	}
	in, v, err := h.parseInput(r)
	if err != nil {
		serverError(w, r, "project form config", err)
		return
	}
	if !v.Empty() {
		flashViolations(w, r, v)
		http.Redirect(w, r, "/projects", http.StatusSeeOther)
		return
	}
	if _, err := h.Svc.Create(user.ID, in); err != nil {
		log.Printf("create project: %v", err)
		view.AddFlash(w, r, "danger", "An error occurred while adding the project.")
		http.Redirect(w, r, "/projects", http.StatusSeeOther)
		return
	}
	view.AddFlash(w, r, "success", "Project created successfully!")
	http.Redirect(w, r, "/projects", http.StatusSeeOther)
}

// Report: GET /project/{id}
func (h *ProjectHandler) Report(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		NotFound(w, r)
		return
	}
	project, err := h.Svc.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			NotFound(w, r)
			return
		}
		serverError(w, r, "project report", err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, project)
		return
	}
	projectFields, err := h.Registry.Fields("project")
	if err != nil {
		serverError(w, r, "project form config", err)
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
	clients, _, err := h.Clients.List(1)
	if err != nil {
		serverError(w, r, "list clients for project form", err)
		return
	}
	leads, _, err := h.Leads.List(1)
	if err != nil {
		serverError(w, r, "list leads for project form", err)
		return
	}
	renderTemplate(w, r, "project_report.html", map[string]any{
		"Project":       project,
		"Contacts":      project.Contacts,
		"Notes":         project.ContactNotes,
		"ProjectFields": projectFields,
		"ContactFields": contactFields,
		"NoteFields":    noteFields,
		"Clients":       clients,
		"Leads":         leads,
		"Statuses":      models.ProjectStatuses,
	})
}

// Edit: POST /project/{id}/edit
func (h *ProjectHandler) Edit(w http.ResponseWriter, r *http.Request) {
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
		http.Redirect(w, r, "/project/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	in, v, err := h.parseInput(r)
	if err != nil {
		serverError(w, r, "project form config", err)
		return
	}
	if !v.Empty() {
		flashViolations(w, r, v)
		http.Redirect(w, r, "/project/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	if err := h.Svc.Update(id, user.ID, in); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			NotFound(w, r)
			return
		}
		log.Printf("update project %d: %v", id, err)
		view.AddFlash(w, r, "danger", "An error occurred while updating the project.")
		http.Redirect(w, r, "/project/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	view.AddFlash(w, r, "success", "Project updated successfully!")
	http.Redirect(w, r, "/project/"+strconv.Itoa(int(id)), http.StatusSeeOther)
}

// Delete: POST /project/{id}/delete - contacts and notes cascade.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		serverError(w, r, "delete project", err)
		return
	}
	view.AddFlash(w, r, "success", "Project deleted successfully!")
	http.Redirect(w, r, "/projects", http.StatusSeeOther)
}

// AddContact: POST /project/{id}/add_contact
func (h *ProjectHandler) AddContact(w http.ResponseWriter, r *http.Request) {
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
		http.Redirect(w, r, "/project/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	values, v, err := h.Registry.Parse("contact", r.Form)
	if err != nil {
		serverError(w, r, "contact form config", err)
		return
	}
	if !v.Empty() {
		flashViolations(w, r, v)
		http.Redirect(w, r, "/project/"+strconv.Itoa(int(id)), http.StatusSeeOther)
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
		log.Printf("add contact to project %d: %v", id, err)
		view.AddFlash(w, r, "danger", "Error adding contact.")
		http.Redirect(w, r, "/project/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	view.AddFlash(w, r, "success", "Contact added successfully!")
	http.Redirect(w, r, "/project/"+strconv.Itoa(int(id)), http.StatusSeeOther)
}

// AddNote: POST /project/{id}/add_note
func (h *ProjectHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		view.AddFlash(w, r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/project/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	note := strings.TrimSpace(r.FormValue("note"))
	v := validation.Violations{}
	validation.Required("note", note, "Note is required.", v)
	validation.MaxLen("note", note, 500, v)
	if !v.Empty() {
		flashViolations(w, r, v)
		http.Redirect(w, r, "/project/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	if err := h.Svc.AddNote(id, note); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			NotFound(w, r)
			return
		}
		log.Printf("add note to project %d: %v", id, err)
		view.AddFlash(w, r, "danger", "Error adding note.")
		http.Redirect(w, r, "/project/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	view.AddFlash(w, r, "success", "Note added successfully!")
	http.Redirect(w, r, "/project/"+strconv.Itoa(int(id)), http.StatusSeeOther)
}
