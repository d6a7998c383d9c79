package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/skillhub/evidence-api/internal/capture"
	"github.com/skillhub/evidence-api/internal/models"
	"github.com/skillhub/evidence-api/pkg/config"
	appErrors "github.com/skillhub/evidence-api/pkg/errors"
	"github.com/skillhub/evidence-api/pkg/storage"
)

type evidenceRepository interface {
	Create(ctx context.Context, record *models.EvidenceRecord) error
	FindByID(ctx context.Context, id string) (*models.EvidenceRecord, error)
	ListByBatch(ctx context.Context, batchID string) ([]models.EvidenceRecord, error)
	ListByBatchAndType(ctx context.Context, batchID string, assessmentType models.AssessmentType) ([]models.EvidenceRecord, error)
	Delete(ctx context.Context, id string) error
}

type sessionCloser interface {
	Get(id string) (*capture.Session, error)
	Close(id string) error
}

func evidenceCacheKey(batchID string) string {
	return fmt.Sprintf("evidence:%s", batchID)
}

// EvidenceService turns completed capture sessions into persisted
// evidence records and serves evidence listings through the cache.
type EvidenceService struct {
	repo     evidenceRepository
	sessions sessionCloser
	store    storage.ObjectStore
	cleanup  photoCleaner
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	storeCfg config.StorageConfig
	cacheTTL time.Duration
}

// NewEvidenceService constructs an EvidenceService.
func NewEvidenceService(repo evidenceRepository, sessions sessionCloser, store storage.ObjectStore, cleanup photoCleaner, cache *CacheService, metrics *MetricsService, logger *zap.Logger, storeCfg config.StorageConfig, cacheTTL time.Duration) *EvidenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvidenceService{
		repo:     repo,
		sessions: sessions,
		store:    store,
		cleanup:  cleanup,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		storeCfg: storeCfg,
		cacheTTL: cacheTTL,
	}
}

// Submit uploads a session's photos and persists the evidence record.
// Uploads run in parallel and the submission is all-or-nothing: if any
// upload fails, the ones that succeeded are scheduled for removal and no
// record is written. On success the session is closed.
func (s *EvidenceService) Submit(ctx context.Context, sessionID, username string) (*models.EvidenceRecord, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Username != username {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "session belongs to another user")
	}
	if !session.CanSubmit() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("need %d photos before submitting", session.Quota()))
	}

	photos := session.Photos()
	urls, err := s.uploadAll(ctx, session.ID, photos)
	if err != nil {
		return nil, err
	}

	fix := session.Tracker().Snapshot()
	record := &models.EvidenceRecord{
		BatchID:  session.BatchID,
		Type:     session.Type,
		Username: username,
		Photos:   urls,
		Lat:      fix.RawLat,
		Lng:      fix.RawLng,
		Town:     fix.Town,
		Region:   fix.Region,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		s.cleanup.EnqueueURLs(urls)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist evidence")
	}

	if err := s.sessions.Close(session.ID); err != nil {
		s.logger.Warn("close submitted session", zap.String("session_id", session.ID), zap.Error(err))
	}
	_ = s.cache.Invalidate(ctx, evidenceCacheKey(record.BatchID))

	s.logger.Info("evidence submitted",
		zap.String("record_id", record.ID),
		zap.String("batch_id", record.BatchID),
		zap.String("type", string(record.Type)),
		zap.Int("photos", len(urls)),
	)
	return record, nil
}

// uploadAll pushes every photo to object storage concurrently, keeping
// the result slice in capture order.
func (s *EvidenceService) uploadAll(ctx context.Context, sessionID string, photos []capture.Photo) ([]string, error) {
	urls := make([]string, len(photos))
	g, gctx := errgroup.WithContext(ctx)

	for i, photo := range photos {
		i, photo := i, photo
		g.Go(func() error {
			uploadCtx, cancel := context.WithTimeout(gctx, s.storeCfg.UploadTimeout)
			defer cancel()

			name := fmt.Sprintf("%s-%d-%s.jpg", sessionID, i, uuid.NewString())
			start := time.Now()
			url, err := s.store.Upload(uploadCtx, name, photo.Data, "image/jpeg")
			s.metrics.ObserveUpload(err == nil, time.Since(start))
			if err != nil {
				return fmt.Errorf("upload photo %d: %w", i, err)
			}
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var uploaded []string
		for _, url := range urls {
			if url != "" {
				uploaded = append(uploaded, url)
			}
		}
		s.cleanup.EnqueueURLs(uploaded)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upload photos")
	}
	return urls, nil
}

// List returns a batch's evidence, read through the cache. A type
// filter bypasses the cache since filtered listings are rare.
func (s *EvidenceService) List(ctx context.Context, batchID string, typeFilter models.AssessmentType) ([]models.EvidenceRecord, error) {
	if typeFilter != "" {
		if !typeFilter.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown assessment type")
		}
		records, err := s.repo.ListByBatchAndType(ctx, batchID, typeFilter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evidence")
		}
		return records, nil
	}

	key := evidenceCacheKey(batchID)

	var cached []models.EvidenceRecord
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	records, err := s.repo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evidence")
	}
	_ = s.cache.Set(ctx, key, records, s.cacheTTL)
	return records, nil
}

// Delete removes an evidence record and schedules its photos for
// removal from object storage.
func (s *EvidenceService) Delete(ctx context.Context, id string) error {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "evidence record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch evidence")
	}

	s.cleanup.EnqueueURLs(record.Photos)

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete evidence")
	}
	_ = s.cache.Invalidate(ctx, evidenceCacheKey(record.BatchID))

	s.logger.Info("evidence deleted", zap.String("record_id", id), zap.String("batch_id", record.BatchID))
	return nil
}
