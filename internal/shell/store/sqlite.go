package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/gridplan/gridplan/internal/core/plan"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "failed to open database", ErrConnectionFailed)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// Plan Operations
// =============================================================================

// planRow represents a plan row in the database.
type planRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Source    string `db:"source"`
	NodeCount int    `db:"node_count"`
	Spec      string `db:"spec"`
	CreatedAt string `db:"created_at"`
}

// CreatePlan persists a new plan.
func (s *SQLiteStore) CreatePlan(ctx context.Context, p *StoredPlan) error {
	specJSON, err := json.Marshal(p.Spec)
	if err != nil {
		return NewStoreError("CreatePlan", p.ID, "failed to serialize spec", ErrInvalidData)
	}

	row := planRow{
		ID:        p.ID,
		Name:      p.Name,
		Source:    p.Source,
		NodeCount: p.NodeCount,
		Spec:      string(specJSON),
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO plans (id, name, source, node_count, spec, created_at)
		VALUES (:id, :name, :source, :node_count, :spec, :created_at)`, row)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return NewStoreError("CreatePlan", p.ID, "plan already exists", ErrDuplicateID)
		}
		return NewStoreError("CreatePlan", p.ID, err.Error(), err)
	}

	return nil
}

// GetPlan returns the plan with the given ID.
func (s *SQLiteStore) GetPlan(ctx context.Context, id string) (*StoredPlan, error) {
	var row planRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM plans WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStoreError("GetPlan", id, "plan not found", ErrNotFound)
	}
	if err != nil {
		return nil, NewStoreError("GetPlan", id, err.Error(), err)
	}

	return rowToPlan(row)
}

// ListPlans returns all plans, newest first.
func (s *SQLiteStore) ListPlans(ctx context.Context) ([]*StoredPlan, error) {
	var rows []planRow
	err := s.db.SelectContext(ctx, &rows, `SELECT * FROM plans ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, NewStoreError("ListPlans", "", err.Error(), err)
	}

	plans := make([]*StoredPlan, 0, len(rows))
	for _, row := range rows {
		p, err := rowToPlan(row)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}

	return plans, nil
}

// DeletePlan removes the plan with the given ID.
func (s *SQLiteStore) DeletePlan(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
	if err != nil {
		return NewStoreError("DeletePlan", id, err.Error(), err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return NewStoreError("DeletePlan", id, err.Error(), err)
	}
	if affected == 0 {
		return NewStoreError("DeletePlan", id, "plan not found", ErrNotFound)
	}

	return nil
}

func rowToPlan(row planRow) (*StoredPlan, error) {
	var spec plan.NixDeploymentSpec
	if err := json.Unmarshal([]byte(row.Spec), &spec); err != nil {
		return nil, NewStoreError("rowToPlan", row.ID, "failed to deserialize spec", ErrInvalidData)
	}

	createdAt, err := time.Parse(time.RFC3339, row.CreatedAt)
	if err != nil {
		return nil, NewStoreError("rowToPlan", row.ID, "invalid created_at timestamp", ErrInvalidData)
	}

	return &StoredPlan{
		ID:        row.ID,
		Name:      row.Name,
		Source:    row.Source,
		NodeCount: row.NodeCount,
		Spec:      &spec,
		CreatedAt: createdAt,
	}, nil
}
