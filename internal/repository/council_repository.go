package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skillhub/evidence-api/internal/models"
)

// CouncilRepository manages persistence for sector skill councils.
type CouncilRepository struct {
	db *sqlx.DB
}

// NewCouncilRepository constructs a CouncilRepository.
func NewCouncilRepository(db *sqlx.DB) *CouncilRepository {
	return &CouncilRepository{db: db}
}

// List returns all councils ordered by name.
func (r *CouncilRepository) List(ctx context.Context) ([]models.Council, error) {
	const query = `SELECT id, name, created_at, updated_at FROM councils ORDER BY name ASC`
	var councils []models.Council
	if err := r.db.SelectContext(ctx, &councils, query); err != nil {
		return nil, fmt.Errorf("list councils: %w", err)
	}
	return councils, nil
}

// FindByID fetches a council by ID.
func (r *CouncilRepository) FindByID(ctx context.Context, id string) (*models.Council, error) {
	const query = `SELECT id, name, created_at, updated_at FROM councils WHERE id = $1`
	var council models.Council
	if err := r.db.GetContext(ctx, &council, query, id); err != nil {
		return nil, err
	}
	return &council, nil
}

// ExistsByName checks whether a council with the given name exists.
func (r *CouncilRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	const query = `SELECT 1 FROM councils WHERE LOWER(name) = LOWER($1) LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, name); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check council name: %w", err)
	}
	return true, nil
}

// Create inserts a new council.
func (r *CouncilRepository) Create(ctx context.Context, council *models.Council) error {
	if council.ID == "" {
		council.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if council.CreatedAt.IsZero() {
		council.CreatedAt = now
	}
	council.UpdatedAt = now
	const query = `INSERT INTO councils (id, name, created_at, updated_at)
        VALUES (:id, :name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, council); err != nil {
		return fmt.Errorf("create council: %w", err)
	}
	return nil
}

// Delete removes a council.
func (r *CouncilRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM councils WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete council: %w", err)
	}
	return nil
}
