package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is the sqlite handle behind the durable cache backend. The schema
// is owned by the embedded migration set, applied on every open.
type DB struct {
	SQL *sql.DB
}

// NewDB opens the database at dbPath, creating the parent directory and
// bringing the schema up to date first.
func NewDB(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create cache db directory: %w", err)
	}
	if err := applyMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping cache db: %w", err)
	}

	return &DB{SQL: conn}, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.SQL.Close()
}

// applyMigrations runs the embedded migrations on a connection of their
// own. Re-running against an up-to-date schema is a no-op.
func applyMigrations(dbPath string) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, "sqlite://"+dbPath)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
