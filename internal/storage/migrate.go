package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Migrator applies the embedded schema migrations through database/sql,
// which is what goose drives.
type Migrator struct {
	db *sql.DB
}

func NewMigrator(DbURL string) (*Migrator, error) {
	const op = "storage.NewMigrator"

	db, err := sql.Open("pgx", DbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Migrator{db: db}, nil
}

func (m *Migrator) Up(ctx context.Context) error {
	const op = "storage.Migrator.Up"

	if err := goose.UpContext(ctx, m.db, migrationsDir); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Reset rolls every applied migration back.
func (m *Migrator) Reset(ctx context.Context) error {
	const op = "storage.Migrator.Reset"

	if err := goose.ResetContext(ctx, m.db, migrationsDir); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (m *Migrator) Status(ctx context.Context) error {
	const op = "storage.Migrator.Status"

	if err := goose.StatusContext(ctx, m.db, migrationsDir); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (m *Migrator) Close() error {
	return m.db.Close()
}
