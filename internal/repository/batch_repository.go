package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skillhub/evidence-api/internal/models"
)

// BatchRepository manages persistence for training batches.
type BatchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository constructs a BatchRepository.
func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// List returns batches matching the provided filters.
func (r *BatchRepository) List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, error) {
	query := `SELECT id, council_id, batch_id, job_role, skill_hub, sr, day, month, created_at, updated_at FROM batches`
	conditions := []string{}
	args := []interface{}{}

	if filter.CouncilID != "" {
		conditions = append(conditions, fmt.Sprintf("council_id = $%d", len(args)+1))
		args = append(args, filter.CouncilID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(batch_id) LIKE $%d OR LOWER(job_role) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	var batches []models.Batch
	if err := r.db.SelectContext(ctx, &batches, query, args...); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}

// FindByID fetches a batch by its primary key.
func (r *BatchRepository) FindByID(ctx context.Context, id string) (*models.Batch, error) {
	const query = `SELECT id, council_id, batch_id, job_role, skill_hub, sr, day, month, created_at, updated_at FROM batches WHERE id = $1`
	var batch models.Batch
	if err := r.db.GetContext(ctx, &batch, query, id); err != nil {
		return nil, err
	}
	return &batch, nil
}

// FindByBatchID fetches a batch by its human-facing batch ID.
func (r *BatchRepository) FindByBatchID(ctx context.Context, batchID string) (*models.Batch, error) {
	const query = `SELECT id, council_id, batch_id, job_role, skill_hub, sr, day, month, created_at, updated_at FROM batches WHERE batch_id = $1`
	var batch models.Batch
	if err := r.db.GetContext(ctx, &batch, query, batchID); err != nil {
		return nil, err
	}
	return &batch, nil
}

// FindByCredentials looks up a batch by the assessor sign-in pair, where
// the job role is the username and the batch ID the password.
func (r *BatchRepository) FindByCredentials(ctx context.Context, jobRole, batchID string) (*models.Batch, error) {
	const query = `SELECT id, council_id, batch_id, job_role, skill_hub, sr, day, month, created_at, updated_at FROM batches
        WHERE job_role = $1 AND batch_id = $2`
	var batch models.Batch
	if err := r.db.GetContext(ctx, &batch, query, jobRole, batchID); err != nil {
		return nil, err
	}
	return &batch, nil
}

// ExistsByBatchID checks whether a batch ID is already registered.
func (r *BatchRepository) ExistsByBatchID(ctx context.Context, batchID string) (bool, error) {
	const query = `SELECT 1 FROM batches WHERE batch_id = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, batchID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check batch id: %w", err)
	}
	return true, nil
}

// Create inserts a new batch.
func (r *BatchRepository) Create(ctx context.Context, batch *models.Batch) error {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = now
	}
	batch.UpdatedAt = now
	const query = `INSERT INTO batches (id, council_id, batch_id, job_role, skill_hub, sr, day, month, created_at, updated_at)
        VALUES (:id, :council_id, :batch_id, :job_role, :skill_hub, :sr, :day, :month, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, batch); err != nil {
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// Delete removes a batch.
func (r *BatchRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM batches WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	return nil
}
