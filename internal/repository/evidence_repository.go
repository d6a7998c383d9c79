package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skillhub/evidence-api/internal/models"
)

// EvidenceRepository manages persistence for evidence records.
type EvidenceRepository struct {
	db *sqlx.DB
}

// NewEvidenceRepository constructs an EvidenceRepository.
func NewEvidenceRepository(db *sqlx.DB) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

// Create inserts a submitted evidence record.
func (r *EvidenceRepository) Create(ctx context.Context, record *models.EvidenceRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO evidence (id, batch_id, type, username, photos, lat, lng, town, region, created_at)
        VALUES (:id, :batch_id, :type, :username, :photos, :lat, :lng, :town, :region, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create evidence: %w", err)
	}
	return nil
}

// FindByID fetches a single evidence record.
func (r *EvidenceRepository) FindByID(ctx context.Context, id string) (*models.EvidenceRecord, error) {
	const query = `SELECT id, batch_id, type, username, photos, lat, lng, town, region, created_at FROM evidence WHERE id = $1`
	var record models.EvidenceRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByBatch returns all evidence for a batch in capture order.
func (r *EvidenceRepository) ListByBatch(ctx context.Context, batchID string) ([]models.EvidenceRecord, error) {
	const query = `SELECT id, batch_id, type, username, photos, lat, lng, town, region, created_at FROM evidence
        WHERE batch_id = $1 ORDER BY created_at ASC`
	var records []models.EvidenceRecord
	if err := r.db.SelectContext(ctx, &records, query, batchID); err != nil {
		return nil, fmt.Errorf("list evidence: %w", err)
	}
	return records, nil
}

// ListByBatchAndType returns a batch's evidence of one assessment type.
func (r *EvidenceRepository) ListByBatchAndType(ctx context.Context, batchID string, assessmentType models.AssessmentType) ([]models.EvidenceRecord, error) {
	const query = `SELECT id, batch_id, type, username, photos, lat, lng, town, region, created_at FROM evidence
        WHERE batch_id = $1 AND type = $2 ORDER BY created_at ASC`
	var records []models.EvidenceRecord
	if err := r.db.SelectContext(ctx, &records, query, batchID, assessmentType); err != nil {
		return nil, fmt.Errorf("list evidence by type: %w", err)
	}
	return records, nil
}

// Delete removes one evidence record.
func (r *EvidenceRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM evidence WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete evidence: %w", err)
	}
	return nil
}

// DeleteByBatch removes all evidence for a batch.
func (r *EvidenceRepository) DeleteByBatch(ctx context.Context, batchID string) error {
	const query = `DELETE FROM evidence WHERE batch_id = $1`
	if _, err := r.db.ExecContext(ctx, query, batchID); err != nil {
		return fmt.Errorf("delete batch evidence: %w", err)
	}
	return nil
}
