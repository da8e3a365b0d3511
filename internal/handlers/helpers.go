package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pathsixdesigns/pathsix-crm/internal/auth"
	"github.com/pathsixdesigns/pathsix-crm/internal/httpx"
	"github.com/pathsixdesigns/pathsix-crm/internal/models"
	"github.com/pathsixdesigns/pathsix-crm/internal/services"
	"github.com/pathsixdesigns/pathsix-crm/internal/validation"
	"github.com/pathsixdesigns/pathsix-crm/internal/view"
)

type userCtxKey struct{}

// LoadUser resolves the session user (with roles) into the request context so
// downstream handlers and the gate can check roles without re-querying.
func LoadUser(users *services.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if uid, ok := auth.UserIDFromContext(r.Context()); ok {
				if user, err := users.Get(uid); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), userCtxKey{}, user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFrom returns the resolved session user, or nil.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userCtxKey{}).(*models.User)
	return u
}

// renderTemplate renders through the shared view layer; a template failure is
// a plain 500 with no internals leaked.
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["User"]; !ok {
		if u := UserFrom(r.Context()); u != nil {
			data["User"] = u
		}
	}
	if err := view.Render(w, r, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("template error"))
	}
}

// urlID parses the {id} route parameter.
func urlID(r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id64, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}

// flashViolations queues every validation message so the user sees the
// complete set in one pass.
func flashViolations(w http.ResponseWriter, r *http.Request, v validation.Violations) {
	view.AddFlashes(w, r, "danger", v.Messages())
}

// NotFound renders the 404 page, or a JSON error for JSON clients.
func NotFound(w http.ResponseWriter, r *http.Request) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusNotFound, "not found", nil)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	renderTemplate(w, r, "errors/404.html", nil)
}

// Forbidden renders the 403 page, or a JSON error for JSON clients.
func Forbidden(w http.ResponseWriter, r *http.Request) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	renderTemplate(w, r, "errors/403.html", nil)
}

// TooManyRequests renders the 429 page for rate-limited requests.
func TooManyRequests(w http.ResponseWriter, r *http.Request) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusTooManyRequests, "too many requests", nil)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusTooManyRequests)
	renderTemplate(w, r, "errors/429.html", nil)
}

// serverError logs the cause and shows a generic failure; the underlying
// error text is never echoed to the user.
func serverError(w http.ResponseWriter, r *http.Request, context string, err error) {
	log.Printf("%s: %v", context, err)
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	renderTemplate(w, r, "errors/500.html", nil)
}
