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

type councilRepository interface {
	List(ctx context.Context) ([]models.Council, error)
	FindByID(ctx context.Context, id string) (*models.Council, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, council *models.Council) error
	Delete(ctx context.Context, id string) error
}

type councilBatchLister interface {
	List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, error)
}

type batchCascadeDeleter interface {
	Delete(ctx context.Context, id string) error
}

// CouncilService manages sector skill councils. Deleting a council
// cascades through its batches so their evidence and photos go too.
type CouncilService struct {
	repo      councilRepository
	batches   councilBatchLister
	deleter   batchCascadeDeleter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCouncilService constructs a CouncilService.
func NewCouncilService(repo councilRepository, batches councilBatchLister, deleter batchCascadeDeleter, validate *validator.Validate, logger *zap.Logger) *CouncilService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CouncilService{repo: repo, batches: batches, deleter: deleter, validator: validate, logger: logger}
}

// List returns all councils.
func (s *CouncilService) List(ctx context.Context) ([]models.Council, error) {
	councils, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list councils")
	}
	return councils, nil
}

// Get fetches a single council.
func (s *CouncilService) Get(ctx context.Context, id string) (*models.Council, error) {
	council, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "council not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch council")
	}
	return council, nil
}

// Create registers a new council.
func (s *CouncilService) Create(ctx context.Context, req dto.CreateCouncilRequest) (*models.Council, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid council payload")
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check council name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "council already exists")
	}

	council := &models.Council{Name: req.Name}
	if err := s.repo.Create(ctx, council); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create council")
	}

	s.logger.Info("council created", zap.String("council_id", council.ID), zap.String("name", council.Name))
	return council, nil
}

// Delete removes a council and everything under it.
func (s *CouncilService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	batches, err := s.batches.List(ctx, models.BatchFilter{CouncilID: id})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list council batches")
	}
	for _, batch := range batches {
		if err := s.deleter.Delete(ctx, batch.ID); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete council")
	}

	s.logger.Info("council deleted", zap.String("council_id", id), zap.Int("batches", len(batches)))
	return nil
}
