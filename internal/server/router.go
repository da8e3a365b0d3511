package server

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/pathsixdesigns/pathsix-crm/internal/auth"
	"github.com/pathsixdesigns/pathsix-crm/internal/gate"
	"github.com/pathsixdesigns/pathsix-crm/internal/handlers"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Site     *handlers.SiteHandler
	Auth     *handlers.AuthHandler
	Clients  *handlers.ClientHandler
	Leads    *handlers.LeadHandler
	Projects *handlers.ProjectHandler
	Users    *handlers.UsersHandler
	Search   *handlers.SearchHandler
}

// New builds the full route tree: public marketing pages, the auth flow with
// per-IP rate limits, and the authenticated CRM surface with gate checks.
func New(h Handlers, g *gate.Gate, loadUser func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(withRecover)
	r.Use(withLogging)
	r.Use(auth.Middleware)
	r.Use(loadUser)

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	r.Get("/health", healthz)
	r.Get("/healthz", healthz)

	fs := http.StripPrefix("/static/", http.FileServer(http.Dir("static")))
	r.Handle("/static/*", fs)

	// Public pages.
	r.Get("/", h.Site.Index)
	r.Get("/pricing", h.Site.Pricing)
	r.Get("/contact", h.Site.ContactForm)
	r.Post("/contact", h.Site.ContactSubmit)

	// Auth flow. Login and reset requests are brute-force targets, so both
	// carry a per-IP limit.
	r.Get("/login", h.Auth.LoginForm)
	r.With(rateLimit(5, time.Minute)).Post("/login", h.Auth.Login)
	r.Get("/logout", h.Auth.Logout)
	r.Get("/reset_password", h.Auth.ResetRequestForm)
	r.With(rateLimit(3, time.Minute)).Post("/reset_password", h.Auth.ResetRequest)
	r.Get("/reset_password/{token}", h.Auth.ResetTokenForm)
	r.Post("/reset_password/{token}", h.Auth.ResetToken)

	// Signed-in surface.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Get("/account", h.Auth.AccountForm)
		r.Post("/account", h.Auth.AccountUpdate)

		r.Get("/search", h.Search.Search)

		r.Route("/clients", func(r chi.Router) {
			r.Use(authorize(g, "clients", gate.ActionView))
			r.Get("/", h.Clients.List)
			r.Post("/new", h.Clients.Create)
		})
		r.Route("/client/{id}", func(r chi.Router) {
			r.Use(authorize(g, "clients", gate.ActionView))
			r.Get("/", h.Clients.Report)
			r.Post("/edit", h.Clients.Edit)
			r.Post("/delete", h.Clients.Delete)
			r.Post("/add_contact", h.Clients.AddContact)
			r.Post("/add_note", h.Clients.AddNote)
		})

		r.Route("/leads", func(r chi.Router) {
			r.Use(authorize(g, "leads", gate.ActionView))
			r.Get("/", h.Leads.List)
			r.Post("/new", h.Leads.Create)
		})
		r.Route("/lead/{id}", func(r chi.Router) {
			r.Use(authorize(g, "leads", gate.ActionView))
			r.Get("/", h.Leads.Report)
			r.Post("/edit", h.Leads.Edit)
			r.Post("/delete", h.Leads.Delete)
			r.Post("/add_contact", h.Leads.AddContact)
			r.Post("/add_note", h.Leads.AddNote)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Use(authorize(g, "projects", gate.ActionView))
			r.Get("/", h.Projects.List)
			r.Post("/new", h.Projects.Create)
		})
		r.Route("/project/{id}", func(r chi.Router) {
			r.Use(authorize(g, "projects", gate.ActionView))
			r.Get("/", h.Projects.Report)
			r.Post("/edit", h.Projects.Edit)
			r.Post("/delete", h.Projects.Delete)
			r.Post("/add_contact", h.Projects.AddContact)
			r.Post("/add_note", h.Projects.AddNote)
		})

		// User administration is admin-only, registration included.
		r.Group(func(r chi.Router) {
			r.Use(authorize(g, "users", gate.ActionManage))
			r.Get("/register", h.Auth.RegisterForm)
			r.Post("/register", h.Auth.Register)
			r.Get("/users", h.Users.List)
			r.Post("/users/add", h.Users.Add)
			r.Post("/users/edit/{id}", h.Users.Edit)
			r.Post("/users/delete/{id}", h.Users.Delete)
		})
	})

	return r
}

// rateLimit is a per-IP limiter that renders the 429 page on the HTML path.
func rateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(handlers.TooManyRequests),
	)
}

// authorize enforces the gate policy for a resource; a denied check renders
// the 403 page.
func authorize(g *gate.Gate, resource string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := handlers.UserFrom(r.Context())
			if err := g.Authorize(r.Context(), user, action, resource); err != nil {
				handlers.Forbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.Printf("%s %s -> %d (%s)", r.Method, r.URL.Path, sw.status, time.Since(start).Round(time.Millisecond))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
