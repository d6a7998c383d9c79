package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/skillhub/evidence-api/internal/dto"
	appErrors "github.com/skillhub/evidence-api/pkg/errors"
	"github.com/skillhub/evidence-api/pkg/storage"
)

// PhotoService deletes stored photos on behalf of clients that only
// hold delivery URLs. The signing credentials never leave the server.
type PhotoService struct {
	store     storage.ObjectStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPhotoService constructs a PhotoService.
func NewPhotoService(store storage.ObjectStore, validate *validator.Validate, logger *zap.Logger) *PhotoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PhotoService{store: store, validator: validate, logger: logger}
}

// Delete removes each URL from object storage and reports per-URL
// outcomes. The call fails outright only when the payload is malformed
// or the storage credentials are missing.
func (s *PhotoService) Delete(ctx context.Context, req dto.DeletePhotosRequest) (*dto.DeletePhotosResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid delete payload")
	}
	if err := s.store.Ready(); err != nil {
		return nil, err
	}

	results := make([]dto.DeletePhotoResult, 0, len(req.URLs))
	for _, url := range req.URLs {
		result := dto.DeletePhotoResult{URL: url, Deleted: true}
		if err := s.store.DeleteByURL(ctx, url); err != nil {
			result.Deleted = false
			result.Error = err.Error()
			s.logger.Warn("photo delete failed", zap.String("url", url), zap.Error(err))
		}
		results = append(results, result)
	}
	return &dto.DeletePhotosResponse{Results: results}, nil
}
