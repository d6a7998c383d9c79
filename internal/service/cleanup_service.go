package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skillhub/evidence-api/pkg/config"
	"github.com/skillhub/evidence-api/pkg/jobs"
	"github.com/skillhub/evidence-api/pkg/storage"
)

const jobTypeDeletePhoto = "delete_photo"

// CleanupService removes photos from object storage in the background.
// Deletions are best effort with retries; a photo that cannot be removed
// is logged and dropped rather than blocking the caller.
type CleanupService struct {
	store   storage.ObjectStore
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
}

// NewCleanupService constructs the cleanup worker pool.
func NewCleanupService(store storage.ObjectStore, cfg config.CleanupConfig, metrics *MetricsService, logger *zap.Logger) *CleanupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CleanupService{store: store, metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue("photo-cleanup", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the workers.
func (s *CleanupService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *CleanupService) Stop() {
	s.queue.Stop()
}

// EnqueueURLs schedules each URL for deletion.
func (s *CleanupService) EnqueueURLs(urls []string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		job := jobs.Job{ID: uuid.NewString(), Type: jobTypeDeletePhoto, Payload: url}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("failed to enqueue photo cleanup", zap.String("url", url), zap.Error(err))
		}
	}
}

func (s *CleanupService) handle(ctx context.Context, job jobs.Job) error {
	url, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	if err := s.store.DeleteByURL(ctx, url); err != nil {
		s.metrics.RecordCleanup(false)
		return fmt.Errorf("delete photo %s: %w", url, err)
	}
	s.metrics.RecordCleanup(true)
	s.logger.Debug("photo removed from storage", zap.String("url", url))
	return nil
}
