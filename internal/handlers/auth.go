package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pathsixdesigns/pathsix-crm/internal/auth"
	"github.com/pathsixdesigns/pathsix-crm/internal/mail"
	"github.com/pathsixdesigns/pathsix-crm/internal/services"
	"github.com/pathsixdesigns/pathsix-crm/internal/validation"
	"github.com/pathsixdesigns/pathsix-crm/internal/view"
)

// AuthHandler covers login/logout/registration and the password-reset flow.
type AuthHandler struct {
	Users   *services.UserService
	Mailer  mail.Mailer
	Secret  string
	BaseURL string // external base for reset links, e.g. https://crm.example.com
}

func NewAuthHandler(users *services.UserService, mailer mail.Mailer, secret, baseURL string) *AuthHandler {
	return &AuthHandler{Users: users, Mailer: mailer, Secret: secret, BaseURL: baseURL}
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if uid, ok := auth.UserIDFromContext(r.Context()); ok && uid != 0 {
		http.Redirect(w, r, "/clients", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "login.html", nil)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		view.AddFlash(w, r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		view.AddFlash(w, r, "danger", "Email and password are required.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	user, err := h.Users.Authenticate(email, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			view.AddFlash(w, r, "danger", "Login Unsuccessful. Please check email and password.")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		serverError(w, r, "login", err)
		return
	}
	auth.CreateSession(w, user.ID)
	http.Redirect(w, r, "/clients", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RegisterForm and Register are admin-gated by the router.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "register.html", nil)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		view.AddFlash(w, r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	v := validation.Violations{}
	validation.Required("username", username, "Username is required.", v)
	validation.MaxLen("username", username, 20, v)
	if username != "" && len(username) < 2 {
		v.Add("username", "Username must be at least 2 characters.")
	}
	validation.Required("email", email, "Email is required.", v)
	validation.Email("email", email, v)
	validation.Required("password", password, "Password is required.", v)
	if password != confirm {
		v.Add("confirm_password", "Passwords must match.")
	}
	if err := h.Users.CheckUnique(username, email, 0, v); err != nil {
		serverError(w, r, "register uniqueness check", err)
		return
	}
	if !v.Empty() {
		flashViolations(w, r, v)
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}
	user, err := h.Users.Create(username, email, password, "user")
	if err != nil {
		log.Printf("register: %v", err)
		view.AddFlash(w, r, "danger", "Could not create the account.")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}
	view.AddFlash(w, r, "success", fmt.Sprintf("Account created for %s!", user.Username))
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// ResetRequestForm shows the email entry form.
func (h *AuthHandler) ResetRequestForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "reset_request.html", nil)
}

// ResetRequest issues a signed, time-boxed token and mails the reset link.
func (h *AuthHandler) ResetRequest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		view.AddFlash(w, r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/reset_password", http.StatusSeeOther)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	user, err := h.Users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			view.AddFlash(w, r, "danger", "There is no account with that email. You must register first.")
			http.Redirect(w, r, "/reset_password", http.StatusSeeOther)
			return
		}
		serverError(w, r, "reset request", err)
		return
	}
	token, err := auth.NewResetToken(h.Secret, user.ID, user.FsUniquifier, auth.DefaultResetExpiry)
	if err != nil {
		serverError(w, r, "reset token", err)
		return
	}
	body := fmt.Sprintf(
		"To reset your password, visit the following link:\n%s/reset_password/%s\n\nIf you did not make this request, simply ignore this email and no changes will be made.\n",
		strings.TrimRight(h.BaseURL, "/"), token,
	)
	if err := h.Mailer.Send(r.Context(), mail.Message{To: user.Email, Subject: "Password Reset Request", Body: body}); err != nil {
		log.Printf("reset mail delivery: %v", err)
		view.AddFlash(w, r, "mail_error", "Could not send the reset email. Please try again later.")
		http.Redirect(w, r, "/reset_password", http.StatusSeeOther)
		return
	}
	view.AddFlash(w, r, "info", "An email has been sent with instructions to reset your password.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// verifyToken resolves the URL token to a user, checking signature, expiry
// and that the uniquifier still matches (rotated on every password change).
func (h *AuthHandler) verifyToken(r *http.Request) (uint, bool) {
	token := chi.URLParam(r, "token")
	uid, uniquifier, err := auth.VerifyResetToken(h.Secret, token)
	if err != nil {
		return 0, false
	}
	user, err := h.Users.Get(uid)
	if err != nil || user.FsUniquifier != uniquifier {
		return 0, false
	}
	return uid, true
}

func (h *AuthHandler) ResetTokenForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.verifyToken(r); !ok {
		view.AddFlash(w, r, "warning", "That is an invalid or expired token.")
		http.Redirect(w, r, "/reset_password", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "reset_token.html", map[string]any{"Token": chi.URLParam(r, "token")})
}

func (h *AuthHandler) ResetToken(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.verifyToken(r)
	if !ok {
		view.AddFlash(w, r, "warning", "That is an invalid or expired token.")
		http.Redirect(w, r, "/reset_password", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		view.AddFlash(w, r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/reset_password", http.StatusSeeOther)
		return
	}
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")
	v := validation.Violations{}
	validation.Required("password", password, "Password is required.", v)
	if password != confirm {
		v.Add("confirm_password", "Passwords must match.")
	}
	if !v.Empty() {
		flashViolations(w, r, v)
		http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
		return
	}
	if err := h.Users.ResetPassword(uid, password); err != nil {
		serverError(w, r, "reset password", err)
		return
	}
	view.AddFlash(w, r, "success", "Your password has been updated! You are now able to log in.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Account is the self-service profile edit for the signed-in user.
func (h *AuthHandler) AccountForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "account.html", nil)
}

func (h *AuthHandler) AccountUpdate(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		view.AddFlash(w, r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/account", http.StatusSeeOther)
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	v := validation.Violations{}
	validation.Required("username", username, "Username is required.", v)
	validation.MaxLen("username", username, 20, v)
	validation.Required("email", email, "Email is required.", v)
	validation.Email("email", email, v)
	if err := h.Users.CheckUnique(username, email, user.ID, v); err != nil {
		serverError(w, r, "account uniqueness check", err)
		return
	}
	if !v.Empty() {
		flashViolations(w, r, v)
		http.Redirect(w, r, "/account", http.StatusSeeOther)
		return
	}
	if err := h.Users.UpdateProfile(user.ID, username, email); err != nil {
		serverError(w, r, "account update", err)
		return
	}
	view.AddFlash(w, r, "success", "Your account has been updated.")
	http.Redirect(w, r, "/account", http.StatusSeeOther)
}
