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

// ClientHandler serves the client CRUD routes. Form field sets come from the
// dynamic form registry so per-entity forms stay adjustable without code
// changes.
type ClientHandler struct {
	Svc      *services.ClientService
	Registry *forms.Registry
}

func NewClientHandler(svc *services.ClientService, registry *forms.Registry) *ClientHandler {
	return &ClientHandler{Svc: svc, Registry: registry}
}

// List: GET /clients - paginated, newest first, HTML or JSON.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	clients, total, err := h.Svc.List(page)
	if err != nil {
		serverError(w, r, "list clients", err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": clients, "total": total, "page": page, "per_page": services.PerPage})
		return
	}
	fields, err := h.Registry.Fields("client")
	if err != nil {
		serverError(w, r, "client form config", err)
		return
	}
	renderTemplate(w, r, "clients.html", map[string]any{
		"Clients": clients,
		"Total":   total,
		"Page":    page,
		"PerPage": services.PerPage,
		"Fields":  fields,
	})
}

// parseInput validates the dynamic form submission and maps it onto the
// service input. Every violation is collected before returning.
func (h *ClientHandler) parseInput(r *http.Request) (services.ClientInput, validation.Violations, error) {
	values, v, err := h.Registry.Parse("client", r.Form)
	if err != nil {
		return services.ClientInput{}, nil, err
	}
	in := services.ClientInput{
		Name:          values.Strings["name"],
		Website:       values.Strings["website"],
		PricingTier:   values.Strings["pricing_tier"],
		Email:         values.Strings["email"],
		Phone:         values.Strings["phone"],
		AccountNumber: values.Strings["account_number"],
		Street:        values.Strings["street"],
		City:          values.Strings["city"],
		State:         values.Strings["state"],
		ZipCode:       values.Strings["zip_code"],
		FirstName:     values.Strings["first_name"],
		LastName:      values.Strings["last_name"],
		ContactEmail:  values.Strings["contact_email"],
		ContactPhone:  values.Strings["contact_phone"],
		ContactNote:   values.Strings["contact_note"],
	}
	validation.State("state", in.State, v)
	validation.Zip("zip_code", in.ZipCode, v)
	return in, v, nil
}

// Create: POST /clients/new - client plus optional account/address/contact/note
// in one transaction.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		view.AddFlash(w, r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/clients", http.StatusSeeOther)
		return
	}
	in, v, err := h.parseInput(r)
	if err != nil {
		serverError(w, r, "client form config", err)
		return
	}
	if !v.Empty() {
		flashViolations(w, r, v)
		http.Redirect(w, r, "/clients", http.StatusSeeOther)
		return
	}
	if _, err := h.Svc.Create(user.ID, in); err != nil {
		log.Printf("create client: %v", err)
		view.AddFlash(w, r, "danger", "An error occurred while adding the client.")
		http.Redirect(w, r, "/clients", http.StatusSeeOther)
		return
	}
	view.AddFlash(w, r, "success", "Client created successfully!")
	http.Redirect(w, r, "/clients", http.StatusSeeOther)
}

// Report: GET /client/{id} - detail view with all child collections.
func (h *ClientHandler) Report(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		NotFound(w, r)
		return
	}
	client, err := h.Svc.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			NotFound(w, r)
			return
		}
		serverError(w, r, "client report", err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, client)
		return
	}
	clientFields, err := h.Registry.Fields("client")
	if err != nil {
		serverError(w, r, "client form config", err)
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
	renderTemplate(w, r, "client_report.html", map[string]any{
		"Client":        client,
		"Account":       client.Account,
		"Addresses":     client.Addresses,
		"Contacts":      client.Contacts,
		"Notes":         client.ContactNotes,
		"ClientFields":  clientFields,
		"ContactFields": contactFields,
		"NoteFields":    noteFields,
	})
}

// Edit: POST /client/{id}/edit - full-replace update.
func (h *ClientHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		view.AddFlash(w, r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/client/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	in, v, err := h.parseInput(r)
	if err != nil {
		serverError(w, r, "client form config", err)
		return
	}
	if !v.Empty() {
		flashViolations(w, r, v)
		http.Redirect(w, r, "/client/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	if err := h.Svc.Update(id, in); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			NotFound(w, r)
			return
		}
		log.Printf("update client %d: %v", id, err)
		view.AddFlash(w, r, "danger", "An error occurred while updating the client.")
		http.Redirect(w, r, "/client/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	view.AddFlash(w, r, "success", "Client updated successfully!")
	http.Redirect(w, r, "/client/"+strconv.Itoa(int(id)), http.StatusSeeOther)
}

// Delete: POST /client/{id}/delete - cascade removes all children.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
		serverError(w, r, "delete client", err)
		return
	}
	view.AddFlash(w, r, "success", "Client deleted successfully!")
	http.Redirect(w, r, "/clients", http.StatusSeeOther)
}

// AddContact: POST /client/{id}/add_contact
func (h *ClientHandler) AddContact(w http.ResponseWriter, r *http.Request) {
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
		http.Redirect(w, r, "/client/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	values, v, err := h.Registry.Parse("contact", r.Form)
	if err != nil {
		serverError(w, r, "contact form config", err)
		return
	}
	if !v.Empty() {
		flashViolations(w, r, v)
		http.Redirect(w, r, "/client/"+strconv.Itoa(int(id)), http.StatusSeeOther)
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
		log.Printf("add contact to client %d: %v", id, err)
		view.AddFlash(w, r, "danger", "Error adding contact.")
		http.Redirect(w, r, "/client/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	view.AddFlash(w, r, "success", "Contact added successfully!")
	http.Redirect(w, r, "/client/"+strconv.Itoa(int(id)), http.StatusSeeOther)
}

// AddNote: POST /client/{id}/add_note
func (h *ClientHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		view.AddFlash(w, r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/client/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	note := strings.TrimSpace(r.FormValue("note"))
	v := validation.Violations{}
	validation.Required("note", note, "Note is required.", v)
	validation.MaxLen("note", note, 500, v)
	if !v.Empty() {
		flashViolations(w, r, v)
		http.Redirect(w, r, "/client/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	if err := h.Svc.AddNote(id, note); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			NotFound(w, r)
			return
		}
		log.Printf("add note to client %d: %v", id, err)
		view.AddFlash(w, r, "danger", "Error adding note.")
		http.Redirect(w, r, "/client/"+strconv.Itoa(int(id)), http.StatusSeeOther)
		return
	}
	view.AddFlash(w, r, "success", "Note added successfully!")
	http.Redirect(w, r, "/client/"+strconv.Itoa(int(id)), http.StatusSeeOther)
}
