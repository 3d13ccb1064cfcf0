package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQL keeps keys in the local_storage table of a SQLite file or a Postgres database.
type SQL struct {
	db       *sql.DB
	getQuery string
	setQuery string
}

// NewSQLite opens (or creates) the SQLite file at path and migrates it.
func NewSQLite(path, migrationsPath string) (*SQL, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	// one writer at a time; the file is local to this process anyway
	db.SetMaxOpenConns(1)

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migration driver: %w", err)
	}
	if err := runMigrations(driver, "sqlite", migrationsPath); err != nil {
		db.Close()
		return nil, err
	}

	return &SQL{
		db:       db,
		getQuery: `SELECT value FROM local_storage WHERE storage_key = ?`,
		setQuery: `
			INSERT INTO local_storage (storage_key, value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT (storage_key) DO UPDATE
			SET value = excluded.value, updated_at = excluded.updated_at`,
	}, nil
}

// NewPostgres connects with a lib/pq DSN and migrates the schema.
func NewPostgres(dsn, migrationsPath string) (*SQL, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migration driver: %w", err)
	}
	if err := runMigrations(driver, "postgres", migrationsPath); err != nil {
		db.Close()
		return nil, err
	}

	return &SQL{
		db:       db,
		getQuery: `SELECT value FROM local_storage WHERE storage_key = $1`,
		setQuery: `
			INSERT INTO local_storage (storage_key, value, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (storage_key) DO UPDATE
			SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
	}, nil
}

func runMigrations(driver database.Driver, name, migrationsPath string) error {
	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		name,
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.getQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query key: %w", err)
	}
	return value, nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.setQuery, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert key: %w", err)
	}
	return nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}
