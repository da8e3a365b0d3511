package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pathsixdesigns/pathsix-crm/internal/auth"
	"github.com/pathsixdesigns/pathsix-crm/internal/config"
	"github.com/pathsixdesigns/pathsix-crm/internal/db"
	"github.com/pathsixdesigns/pathsix-crm/internal/forms"
	"github.com/pathsixdesigns/pathsix-crm/internal/gate"
	"github.com/pathsixdesigns/pathsix-crm/internal/handlers"
	"github.com/pathsixdesigns/pathsix-crm/internal/mail"
	"github.com/pathsixdesigns/pathsix-crm/internal/server"
	"github.com/pathsixdesigns/pathsix-crm/internal/services"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Connect(db.Options{
		DSN:        cfg.DatabaseDSN,
		Migrations: cfg.Migrations,
		Seed:       cfg.Seed,
		Debug:      cfg.Env == "development",
	})
	if err != nil {
		log.Fatal(err)
	}

	registry, err := forms.Load(cfg.FormConfig)
	if err != nil {
		log.Fatal(err)
	}

	users := services.NewUserService(conn)
	clients := services.NewClientService(conn)
	leads := services.NewLeadService(conn)
	projects := services.NewProjectService(conn)
	search := services.NewSearchService(conn)

	// Sessions referencing a deleted user are rejected and cleared.
	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		_, err := users.Get(uid)
		return err == nil
	})

	mailer := mail.NewSMTPMailer(cfg.MailHost, cfg.MailPort, cfg.MailUsername, cfg.MailPassword, cfg.MailSender)

	router := server.New(server.Handlers{
		Site:     handlers.NewSiteHandler(mailer, cfg.ContactInbox),
		Auth:     handlers.NewAuthHandler(users, mailer, cfg.SessionSecret, cfg.BaseURL),
		Clients:  handlers.NewClientHandler(clients, registry),
		Leads:    handlers.NewLeadHandler(leads, registry),
		Projects: handlers.NewProjectHandler(projects, clients, leads, registry),
		Users:    handlers.NewUsersHandler(users),
		Search:   handlers.NewSearchHandler(search),
	}, gate.Default(), handlers.LoadUser(users))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
