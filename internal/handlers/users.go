package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/pathsixdesigns/pathsix-crm/internal/httpx"
	"github.com/pathsixdesigns/pathsix-crm/internal/services"
	"github.com/pathsixdesigns/pathsix-crm/internal/validation"
	"github.com/pathsixdesigns/pathsix-crm/internal/view"
)

// UsersHandler is the admin-only user administration surface. The router
// gates every route here behind the admin role.
type UsersHandler struct {
	Users *services.UserService
}

func NewUsersHandler(users *services.UserService) *UsersHandler {
	return &UsersHandler{Users: users}
}

// List: GET /users - all users with roles, plus the role set for the forms.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List()
	if err != nil {
		serverError(w, r, "list users", err)
		return
	}
	roles, err := h.Users.Roles()
	if err != nil {
		serverError(w, r, "list roles", err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": users})
		return
	}
	renderTemplate(w, r, "users.html", map[string]any{
		"Users": users,
		"Roles": roles,
	})
}

// Add: POST /users/add - create a user with an explicit role.
func (h *UsersHandler) Add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		view.AddFlash(w, r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	role := strings.TrimSpace(r.FormValue("role"))
	if role == "" {
		role = "user"
	}

	v := validation.Violations{}
	validation.Required("username", username, "Username is required.", v)
	validation.MaxLen("username", username, 20, v)
	validation.Required("email", email, "Email is required.", v)
	validation.Email("email", email, v)
	validation.Required("password", password, "Password is required.", v)
	if err := h.Users.CheckUnique(username, email, 0, v); err != nil {
		serverError(w, r, "user uniqueness check", err)
		return
	}
	if !v.Empty() {
		flashViolations(w, r, v)
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}
	if _, err := h.Users.Create(username, email, password, role); err != nil {
		log.Printf("add user: %v", err)
		view.AddFlash(w, r, "danger", "An error occurred while creating the user.")
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}
	view.AddFlash(w, r, "success", "User added successfully!")
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// Edit: POST /users/edit/{id} - update username/email and replace the role.
func (h *UsersHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		view.AddFlash(w, r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	roleID := uint(0)
	if raw := r.FormValue("role_id"); raw != "" {
		if id64, err := strconv.ParseUint(raw, 10, 64); err == nil {
			roleID = uint(id64)
		}
	}

	v := validation.Violations{}
	validation.Required("username", username, "Username is required.", v)
	validation.MaxLen("username", username, 20, v)
	validation.Required("email", email, "Email is required.", v)
	validation.Email("email", email, v)
	if err := h.Users.CheckUnique(username, email, id, v); err != nil {
		serverError(w, r, "user uniqueness check", err)
		return
	}
	if !v.Empty() {
		flashViolations(w, r, v)
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}
	if err := h.Users.Update(id, username, email, roleID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			NotFound(w, r)
			return
		}
		log.Printf("edit user %d: %v", id, err)
		view.AddFlash(w, r, "danger", "An error occurred while updating the user.")
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}
	view.AddFlash(w, r, "success", "User updated successfully!")
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// Delete: POST /users/delete/{id}. Self-deletion is refused so an admin
// cannot lock themselves out mid-session.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		NotFound(w, r)
		return
	}
	if me := UserFrom(r.Context()); me != nil && me.ID == id {
		view.AddFlash(w, r, "danger", "You cannot delete your own account.")
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}
	if err := h.Users.Delete(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			NotFound(w, r)
			return
		}
		serverError(w, r, "delete user", err)
		return
	}
	view.AddFlash(w, r, "success", "User deleted successfully!")
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}
