// Package migration brings the schema up on startup so a fresh install is
// usable without manual steps. Postgres goes through versioned SQL files;
// other dialects fall back to AutoMigrate, which is also what the sqlite
// test databases use.
package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	artikaldomain "github.com/pausalko/pausalko/internal/artikal/domain"
	fakturadomain "github.com/pausalko/pausalko/internal/faktura/domain"
	firmadomain "github.com/pausalko/pausalko/internal/firma/domain"
	komitentdomain "github.com/pausalko/pausalko/internal/komitent/domain"
	kpodomain "github.com/pausalko/pausalko/internal/kpo/domain"
	userdomain "github.com/pausalko/pausalko/internal/user/domain"
	"gorm.io/gorm"
)

//go:embed sql
var embeddedMigrations embed.FS

const migrationsDir = "sql"

func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not close the migrator; it would close the shared *sql.DB.

	return nil
}

// AutoMigrate creates the schema straight from the models. Used for the
// non-postgres dialects and for in-memory test databases.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&firmadomain.Firma{},
		&userdomain.User{},
		&komitentdomain.Komitent{},
		&artikaldomain.Artikal{},
		&fakturadomain.Faktura{},
		&fakturadomain.FakturaStavka{},
		&kpodomain.KPOEntry{},
	)
}
