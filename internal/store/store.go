package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/tesoro-dev/tesoro/internal/config"
	"github.com/tesoro-dev/tesoro/internal/model"
)

// pgForeignKeyViolation is the Postgres SQLSTATE for foreign_key_violation.
const pgForeignKeyViolation = "23503"

// Store owns the database handle. The embedded Queries run outside any
// transaction; use InTx for atomic multi-statement writes.
type Store struct {
	*Queries
	db *bun.DB
}

// Queries holds every query. It runs against either the database or a
// transaction.
type Queries struct {
	db bun.IDB
}

// New wraps an open bun database.
func New(db *bun.DB) *Store {
	return &Store{Queries: &Queries{db: db}, db: db}
}

// Open connects to the database described by cfg.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	switch cfg.Driver {
	case "postgres", "pg":
		return openPostgres(cfg)
	case "sqlite", "sqlite3", "":
		return OpenSQLite(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func openPostgres(cfg config.DatabaseConfig) (*Store, error) {
	var conn *pgdriver.Connector
	if cfg.DSN != "" {
		conn = pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN))
	} else {
		conn = pgdriver.NewConnector(
			pgdriver.WithAddr(cfg.Addr),
			pgdriver.WithInsecure(true),
			pgdriver.WithUser(cfg.User),
			pgdriver.WithPassword(cfg.Password),
			pgdriver.WithDatabase(cfg.Name),
		)
	}
	sqldb := sql.OpenDB(conn)
	if err := sqldb.Ping(); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return New(bun.NewDB(sqldb, pgdialect.New())), nil
}

// OpenSQLite opens a SQLite database. Foreign keys must be enabled in the DSN
// (_foreign_keys=on) for delete protection to work.
func OpenSQLite(dsn string) (*Store, error) {
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// SQLite allows a single writer.
	sqldb.SetMaxOpenConns(1)
	if err := sqldb.Ping(); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("connecting to sqlite: %w", err)
	}
	return New(bun.NewDB(sqldb, sqlitedialect.New())), nil
}

// DB returns the underlying bun database.
func (s *Store) DB() *bun.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InTx runs fn inside a database transaction. fn must only use the Queries it
// is given. The transaction is rolled back if fn returns an error.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, q *Queries) error) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &Queries{db: tx})
	})
}

// translate maps driver errors onto model errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return model.ErrNotFound
	case isForeignKeyViolation(err):
		return model.ErrHasDependents
	}
	return err
}

func isForeignKeyViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == pgForeignKeyViolation
	}
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		return sqErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

// affected returns ErrNotFound when a write touched no rows.
func affected(res sql.Result, err error) error {
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}
