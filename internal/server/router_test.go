package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pathsixdesigns/pathsix-crm/internal/auth"
	"github.com/pathsixdesigns/pathsix-crm/internal/db"
	"github.com/pathsixdesigns/pathsix-crm/internal/forms"
	"github.com/pathsixdesigns/pathsix-crm/internal/gate"
	"github.com/pathsixdesigns/pathsix-crm/internal/handlers"
	"github.com/pathsixdesigns/pathsix-crm/internal/mail"
	"github.com/pathsixdesigns/pathsix-crm/internal/services"
)

var testDBSeq atomic.Int64

type testApp struct {
	server *httptest.Server
	users  *services.UserService
	mailer *mail.Recorder
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, db.AutoMigrate(conn))
	db.Seed(conn)

	registry, err := forms.Load("../../config/form_fields.json")
	require.NoError(t, err)

	users := services.NewUserService(conn)
	clients := services.NewClientService(conn)
	leads := services.NewLeadService(conn)
	projects := services.NewProjectService(conn)
	search := services.NewSearchService(conn)

	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		_, err := users.Get(uid)
		return err == nil
	})

	mailer := &mail.Recorder{}
	router := New(Handlers{
		Site:     handlers.NewSiteHandler(mailer, "inbox@pathsixdesigns.com"),
		Auth:     handlers.NewAuthHandler(users, mailer, "testsecret", "http://example.com"),
		Clients:  handlers.NewClientHandler(clients, registry),
		Leads:    handlers.NewLeadHandler(leads, registry),
		Projects: handlers.NewProjectHandler(projects, clients, leads, registry),
		Users:    handlers.NewUsersHandler(users),
		Search:   handlers.NewSearchHandler(search),
	}, gate.Default(), handlers.LoadUser(users))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testApp{server: srv, users: users, mailer: mailer}
}

func (a *testApp) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (a *testApp) login(t *testing.T, c *http.Client, email, password string) *http.Response {
	t.Helper()
	resp, err := c.PostForm(a.server.URL+"/login", url.Values{
		"email":    {email},
		"password": {password},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp
}

func get(t *testing.T, c *http.Client, rawURL string) *http.Response {
	t.Helper()
	resp, err := c.Get(rawURL)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestPublicPages(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	for _, path := range []string{"/", "/pricing", "/contact", "/login", "/health"} {
		resp := get(t, c, app.server.URL+path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	resp := get(t, c, app.server.URL+"/clients")
	// The redirect chain lands on the login page.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/login", resp.Request.URL.Path)
}

func TestLoginAndRoleGating(t *testing.T) {
	app := newTestApp(t)
	_, err := app.users.Create("admin1", "admin@example.com", "pw", "admin")
	require.NoError(t, err)
	_, err = app.users.Create("user1", "user@example.com", "pw", "user")
	require.NoError(t, err)

	admin := app.client(t)
	resp := app.login(t, admin, "admin@example.com", "pw")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/clients", resp.Request.URL.Path)

	// Admin reaches every surface.
	for _, path := range []string{"/clients", "/leads", "/projects", "/users", "/search?q=x"} {
		r := get(t, admin, app.server.URL+path)
		assert.Equal(t, http.StatusOK, r.StatusCode, path)
	}

	// A plain user is gated out of projects and user administration.
	user := app.client(t)
	app.login(t, user, "user@example.com", "pw")

	r := get(t, user, app.server.URL+"/clients")
	assert.Equal(t, http.StatusOK, r.StatusCode)

	r = get(t, user, app.server.URL+"/projects")
	assert.Equal(t, http.StatusForbidden, r.StatusCode)

	r = get(t, user, app.server.URL+"/users")
	assert.Equal(t, http.StatusForbidden, r.StatusCode)
}

func TestBadLoginStaysOut(t *testing.T) {
	app := newTestApp(t)
	_, err := app.users.Create("admin1", "admin@example.com", "pw", "admin")
	require.NoError(t, err)

	c := app.client(t)
	resp := app.login(t, c, "admin@example.com", "wrong")
	assert.Equal(t, "/login", resp.Request.URL.Path)

	r := get(t, c, app.server.URL+"/clients")
	assert.Equal(t, "/login", r.Request.URL.Path)
}

func TestLoginRateLimit(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	var last int
	for i := 0; i < 6; i++ {
		resp, err := c.PostForm(app.server.URL+"/login", url.Values{
			"email":    {"x@example.com"},
			"password": {"wrong"},
		})
		require.NoError(t, err)
		last = resp.StatusCode
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestCreateClientThroughRouter(t *testing.T) {
	app := newTestApp(t)
	_, err := app.users.Create("admin1", "admin@example.com", "pw", "admin")
	require.NoError(t, err)

	c := app.client(t)
	app.login(t, c, "admin@example.com", "pw")

	resp, err := c.PostForm(app.server.URL+"/clients/new", url.Values{
		"name":  {"Acme Co"},
		"email": {"office@acme.example"},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Acme Co")
}

func TestJSONErrorResponses(t *testing.T) {
	app := newTestApp(t)
	_, err := app.users.Create("admin1", "admin@example.com", "pw", "admin")
	require.NoError(t, err)

	getJSON := func(c *http.Client, path string) (*http.Response, map[string]any) {
		req, err := http.NewRequest(http.MethodGet, app.server.URL+path, nil)
		require.NoError(t, err)
		req.Header.Set("Accept", "application/json")
		resp, err := c.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return resp, body
	}

	// Unauthenticated JSON clients get a 401 body instead of a login redirect.
	anon := app.client(t)
	resp, body := getJSON(anon, "/clients")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	assert.Equal(t, "unauthorized", body["error"])

	admin := app.client(t)
	app.login(t, admin, "admin@example.com", "pw")
	resp, body = getJSON(admin, "/client/999999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not found", body["error"])
}

func TestUnknownPageIs404(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	resp := get(t, c, app.server.URL+"/no-such-page")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
