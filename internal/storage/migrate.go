package storage

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// migrate is a migrator that uses github.com/jmoiron/sqlx.
type migrate struct {
	Migrations []migration
}

// migrate runs the migrations using the provided db connection.
func (s *migrate) migrate(db *sqlx.DB) error {
	if err := s.createMigrationTable(db); err != nil {
		return err
	}

	for _, m := range s.Migrations {
		var found string
		err := db.Get(&found, "SELECT id FROM migrations WHERE id=$1", m.ID)
		switch err {
		case sql.ErrNoRows:
			log.Debug().Msgf("running migration ID: %v", m.ID)
		case nil:
			continue
		default:
			return fmt.Errorf("looking up migration by id: %w", err)
		}

		if err := s.runMigration(db, m); err != nil {
			return err
		}
	}

	return nil
}

func (s *migrate) createMigrationTable(db *sqlx.DB) error {
	_, err := db.Exec("CREATE TABLE IF NOT EXISTS migrations (id TEXT PRIMARY KEY)")
	if err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}
	return nil
}

func (s *migrate) runMigration(db *sqlx.DB, m migration) error {
	errorf := func(err error) error { return fmt.Errorf("running migration: %w", err) }

	tx, err := db.Beginx()
	if err != nil {
		return errorf(err)
	}

	if _, err := tx.Exec("INSERT INTO migrations (id) VALUES ($1)", m.ID); err != nil {
		_ = tx.Rollback()
		return errorf(err)
	}

	if err := m.Migrate(tx); err != nil {
		_ = tx.Rollback()
		return errorf(err)
	}

	if err := tx.Commit(); err != nil {
		return errorf(err)
	}

	return nil
}

// migration is a unique ID plus a function that uses a sqlx transaction to
// perform a database migration step.
type migration struct {
	ID      string
	Migrate func(tx *sqlx.Tx) error
}

// migrationQuery creates a migration from the provided id and query string.
func migrationQuery(id, query string) migration {
	queryFn := func(query string) func(tx *sqlx.Tx) error {
		if query == "" {
			return nil
		}
		return func(tx *sqlx.Tx) error {
			_, err := tx.Exec(query)
			return err
		}
	}

	return migration{ID: id, Migrate: queryFn(query)}
}
