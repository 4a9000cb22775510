package pgdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// TestConnection validates the config and pings the server.
func TestConnection(ctx context.Context, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	return nil
}

// Admin runs administrative statements against the maintenance database.
type Admin struct {
	db *sql.DB
}

// Open connects to the server's postgres database for admin operations.
func Open(ctx context.Context, cfg *Config) (*Admin, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	admin := *cfg
	admin.DBName = "postgres"
	db, err := sql.Open("pgx", admin.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach server: %w", err)
	}
	return &Admin{db: db}, nil
}

func (a *Admin) Close() error {
	return a.db.Close()
}

// ListDatabases returns non-template database names.
func (a *Admin) ListDatabases(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, "SELECT datname FROM pg_database WHERE datistemplate = false ORDER BY datname")
	if err != nil {
		return nil, fmt.Errorf("failed to query databases: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan database name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (a *Admin) Create(ctx context.Context, name string) error {
	stmt := fmt.Sprintf("CREATE DATABASE %s", pgx.Identifier{name}.Sanitize())
	if _, err := a.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create database %q: %w", name, err)
	}
	return nil
}

// Drop removes a database, forcing out active connections.
func (a *Admin) Drop(ctx context.Context, name string) error {
	stmt := fmt.Sprintf("DROP DATABASE %s WITH (FORCE)", pgx.Identifier{name}.Sanitize())
	if _, err := a.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to drop database %q: %w", name, err)
	}
	return nil
}

// Clone creates a copy of a database using it as a template. The source
// must have no active connections while the copy runs.
func (a *Admin) Clone(ctx context.Context, source, target, owner string) error {
	stmt := fmt.Sprintf("CREATE DATABASE %s WITH TEMPLATE %s",
		pgx.Identifier{target}.Sanitize(), pgx.Identifier{source}.Sanitize())
	if owner != "" {
		stmt += fmt.Sprintf(" OWNER %s", pgx.Identifier{owner}.Sanitize())
	}
	if _, err := a.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to clone database %q: %w", source, err)
	}
	return nil
}

func (a *Admin) Rename(ctx context.Context, from, to string) error {
	stmt := fmt.Sprintf("ALTER DATABASE %s RENAME TO %s",
		pgx.Identifier{from}.Sanitize(), pgx.Identifier{to}.Sanitize())
	if _, err := a.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to rename database %q: %w", from, err)
	}
	return nil
}

func (a *Admin) SetOwner(ctx context.Context, name, owner string) error {
	stmt := fmt.Sprintf("ALTER DATABASE %s OWNER TO %s",
		pgx.Identifier{name}.Sanitize(), pgx.Identifier{owner}.Sanitize())
	if _, err := a.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to change owner of %q: %w", name, err)
	}
	return nil
}
