// Package storage contains the data storage interface in which the service
// stores all pipeline, task, token, and event state (spec.md §3, §6).
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	qb "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

//go:embed migrations
var migrations embed.FS

var (
	// ErrEntityNotFound is returned when a certain entity could not be located.
	ErrEntityNotFound = errors.New("storage: entity not found")

	// ErrEntityExists is returned when a certain entity was located but not meant to be.
	ErrEntityExists = errors.New("storage: entity already exists")

	// ErrInternal is returned when there was an unknown internal DB error.
	ErrInternal = errors.New("storage: unknown db error")
)

// psql is the squirrel statement builder configured for Postgres's
// dollar-numbered placeholders ($1, $2, ...) instead of squirrel's default
// "?" — every query in this package is built from it.
var psql = qb.StatementBuilder.PlaceholderFormat(qb.Dollar)

// Queryable includes the methods shared by *sqlx.DB and *sqlx.Tx so storage
// functions can be handed either one interchangeably and run either inside
// or outside an explicit transaction.
type Queryable interface {
	sqlx.Queryer
	sqlx.Execer
	sqlx.ExecerContext
	GetContext(context.Context, interface{}, string, ...interface{}) error
	SelectContext(context.Context, interface{}, string, ...interface{}) error
	Get(interface{}, string, ...interface{}) error
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
	Select(interface{}, string, ...interface{}) error
	QueryRow(string, ...interface{}) *sql.Row
}

// DB is a representation of the datastore.
type DB struct {
	maxResultsLimit int
	*sqlx.DB
}

func mustReadFile(path string) []byte {
	file, err := migrations.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("could not read migrations file")
	}

	return file
}

// New creates a new DB connected to a Postgres instance at dsn, under the
// given schema, and runs embedded migrations against it.
func New(dsn string, schema string, maxResultsLimit int) (DB, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return DB{}, fmt.Errorf("storage: connecting to database: %w", err)
	}

	if schema != "" {
		if _, err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %q", schema)); err != nil {
			return DB{}, fmt.Errorf("storage: creating schema %q: %w", schema, err)
		}

		if _, err := db.Exec(fmt.Sprintf("SET search_path TO %q", schema)); err != nil {
			return DB{}, fmt.Errorf("storage: setting search_path to %q: %w", schema, err)
		}
	}

	migration := migrate{
		Migrations: []migration{
			migrationQuery("0", string(mustReadFile("migrations/0_init.sql"))),
		},
	}

	if err := migration.migrate(db); err != nil {
		return DB{}, fmt.Errorf("storage: running migrations: %w", err)
	}

	return DB{maxResultsLimit, db}, nil
}

// InsideTx is a convenience function so that callers can run multiple
// queries inside one transaction.
func InsideTx(db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}

	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()

	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w: rolling back transaction: %v", err, rerr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// InsideSavepoint runs fn inside a nested transaction (SQL SAVEPOINT) on tx.
// If fn returns an error, the savepoint is rolled back and the outer
// transaction tx is left usable for further statements — this is what
// CreateTask relies on to recover from a unique-constraint violation
// without aborting the whole request (spec.md §4.4.1, §9 "Savepoint use").
func InsideSavepoint(tx *sqlx.Tx, name string, fn func() error) error {
	if _, err := tx.Exec("SAVEPOINT " + name); err != nil {
		return fmt.Errorf("creating savepoint: %w", err)
	}

	if err := fn(); err != nil {
		if _, rerr := tx.Exec("ROLLBACK TO SAVEPOINT " + name); rerr != nil {
			return fmt.Errorf("%w: rolling back savepoint: %v", err, rerr)
		}
		return err
	}

	if _, err := tx.Exec("RELEASE SAVEPOINT " + name); err != nil {
		return fmt.Errorf("releasing savepoint: %w", err)
	}

	return nil
}

// IsUniqueViolation reports whether err represents a Postgres unique
// constraint violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// IsSerializationFailure reports whether err represents a Postgres
// serialization failure (SQLSTATE 40001) or deadlock (40P01), the two
// transient conditions claim_tasks absorbs by returning an empty list
// (spec.md §4.4.2 step 5, §4.6).
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
