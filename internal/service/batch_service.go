package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/skillhub/evidence-api/internal/dto"
	"github.com/skillhub/evidence-api/internal/models"
	appErrors "github.com/skillhub/evidence-api/pkg/errors"
)

type batchRepository interface {
	List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, error)
	FindByID(ctx context.Context, id string) (*models.Batch, error)
	FindByBatchID(ctx context.Context, batchID string) (*models.Batch, error)
	ExistsByBatchID(ctx context.Context, batchID string) (bool, error)
	Create(ctx context.Context, batch *models.Batch) error
	Delete(ctx context.Context, id string) error
}

type batchEvidenceRepository interface {
	ListByBatch(ctx context.Context, batchID string) ([]models.EvidenceRecord, error)
	DeleteByBatch(ctx context.Context, batchID string) error
}

type photoCleaner interface {
	EnqueueURLs(urls []string)
}

// BatchService manages training batches. Deleting a batch removes its
// evidence rows and schedules the stored photos for removal.
type BatchService struct {
	repo      batchRepository
	evidence  batchEvidenceRepository
	cleanup   photoCleaner
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBatchService constructs a BatchService.
func NewBatchService(repo batchRepository, evidence batchEvidenceRepository, cleanup photoCleaner, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *BatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BatchService{repo: repo, evidence: evidence, cleanup: cleanup, cache: cache, validator: validate, logger: logger}
}

// List returns batches matching the filter.
func (s *BatchService) List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, error) {
	batches, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batches")
	}
	return batches, nil
}

// Get fetches a single batch.
func (s *BatchService) Get(ctx context.Context, id string) (*models.Batch, error) {
	batch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch batch")
	}
	return batch, nil
}

// Create registers a batch under a council.
func (s *BatchService) Create(ctx context.Context, councilID string, req dto.CreateBatchRequest) (*models.Batch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}

	exists, err := s.repo.ExistsByBatchID(ctx, req.BatchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check batch id")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "batch id already registered")
	}

	batch := &models.Batch{
		CouncilID: councilID,
		BatchID:   req.BatchID,
		JobRole:   req.JobRole,
		SkillHub:  req.SkillHub,
		Sr:        req.Sr,
		Day:       req.Day,
		Month:     req.Month,
	}
	if err := s.repo.Create(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create batch")
	}

	s.logger.Info("batch created",
		zap.String("batch_id", batch.BatchID),
		zap.String("job_role", batch.JobRole),
		zap.String("council_id", councilID),
	)
	return batch, nil
}

// Credentials returns the assessor sign-in pair bound to a batch.
func (s *BatchService) Credentials(ctx context.Context, id string) (*dto.BatchCredentialsResponse, error) {
	batch, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	username, password := batch.Credentials()
	return &dto.BatchCredentialsResponse{Username: username, Password: password}, nil
}

// Delete removes a batch, its evidence rows and the stored photos.
func (s *BatchService) Delete(ctx context.Context, id string) error {
	batch, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	records, err := s.evidence.ListByBatch(ctx, batch.BatchID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batch evidence")
	}

	var urls []string
	for _, record := range records {
		urls = append(urls, record.Photos...)
	}
	s.cleanup.EnqueueURLs(urls)

	if err := s.evidence.DeleteByBatch(ctx, batch.BatchID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete batch evidence")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete batch")
	}

	_ = s.cache.Invalidate(ctx, evidenceCacheKey(batch.BatchID))

	s.logger.Info("batch deleted",
		zap.String("batch_id", batch.BatchID),
		zap.Int("evidence_records", len(records)),
		zap.Int("photos_scheduled", len(urls)),
	)
	return nil
}
