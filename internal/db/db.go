package db

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pathsixdesigns/pathsix-crm/internal/models"
)

// AllModels lists every entity in dependency order for AutoMigrate.
var AllModels = []interface{}{
	&models.Role{}, &models.User{},
	&models.Client{}, &models.Lead{}, &models.Project{},
	&models.Account{}, &models.Address{}, &models.Contact{}, &models.ContactNote{},
	&models.Sale{}, &models.BillingCycle{}, &models.WebsiteUpdate{},
	&models.MailingList{}, &models.ClientWebsite{}, &models.Reminder{},
}

// Options controls how Connect sets up the database.
type Options struct {
	DSN        string
	Migrations bool // run SQL migrations from ./migrations instead of AutoMigrate
	Seed       bool
	Debug      bool
}

// Connect opens the database, runs migrations and optional seeding.
// A DSN starting with "file:" or ":memory:" selects the sqlite driver,
// anything else goes through postgres.
func Connect(opts Options) (*gorm.DB, error) {
	dsn := NormalizeDSN(opts.DSN)
	if dsn == "" {
		return nil, errors.New("empty DATABASE_DSN")
	}
	logLevel := logger.Silent
	if opts.Debug {
		logLevel = logger.Info
	}
	// TranslateError lets callers match gorm.ErrDuplicatedKey across drivers.
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel), TranslateError: true}

	var conn *gorm.DB
	var err error
	if isSQLite(dsn) {
		conn, err = gorm.Open(sqlite.Open(dsn), cfg)
		if err == nil {
			// gorm's sqlite driver leaves referential actions off by default.
			err = conn.Exec("PRAGMA foreign_keys = ON").Error
		}
	} else {
		for i := 0; i < 10; i++ {
			conn, err = gorm.Open(postgres.Open(dsn), cfg)
			if err == nil {
				break
			}
			log.Println("retrying DB connection...", err)
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if pingErr := conn.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	if opts.Migrations && !isSQLite(dsn) {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		if err := AutoMigrate(conn); err != nil {
			return nil, err
		}
	}

	for _, table := range []string{"roles", "users", "clients", "leads", "projects", "accounts"} {
		if !conn.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	if opts.Seed {
		Seed(conn)
	}
	return conn, nil
}

// AutoMigrate creates/updates every table via gorm. Cascade constraints come
// from the model tags, so sqlite callers must have foreign_keys enabled.
func AutoMigrate(conn *gorm.DB) error {
	for _, m := range AllModels {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

func isSQLite(dsn string) bool {
	return strings.HasPrefix(dsn, "file:") || strings.HasPrefix(dsn, ":memory:")
}

// runSQLMigrations executes migrations in ./migrations using golang-migrate.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
