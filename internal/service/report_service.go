package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/skillhub/evidence-api/internal/models"
	"github.com/skillhub/evidence-api/internal/report"
	"github.com/skillhub/evidence-api/pkg/config"
	appErrors "github.com/skillhub/evidence-api/pkg/errors"
)

type reportBatchRepository interface {
	FindByBatchID(ctx context.Context, batchID string) (*models.Batch, error)
}

type reportEvidenceRepository interface {
	ListByBatch(ctx context.Context, batchID string) ([]models.EvidenceRecord, error)
}

// ReportService assembles evidence and attendance reports for download.
type ReportService struct {
	batches  reportBatchRepository
	evidence reportEvidenceRepository
	fetcher  *report.Fetcher
	cfg      config.ReportsConfig
	logger   *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(batches reportBatchRepository, evidence reportEvidenceRepository, fetcher *report.Fetcher, cfg config.ReportsConfig, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{batches: batches, evidence: evidence, fetcher: fetcher, cfg: cfg, logger: logger}
}

// EvidenceReport renders the photo grid for a batch in the requested
// format, "doc" or "pdf".
func (s *ReportService) EvidenceReport(ctx context.Context, batchID, format string) (*report.Document, error) {
	if format != "doc" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be doc or pdf")
	}

	header, records, err := s.load(ctx, batchID)
	if err != nil {
		return nil, err
	}

	items := report.FlattenPhotos(records)
	if len(items) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no evidence photos found")
	}
	items = s.fetcher.Fill(ctx, items)

	var doc report.Document
	if format == "doc" {
		doc = report.RenderDoc(header, items)
	} else {
		doc, err = report.RenderPDF(header, items)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
		}
	}

	s.logger.Info("evidence report generated",
		zap.String("batch_id", batchID),
		zap.String("format", format),
		zap.Int("photos", len(items)),
	)
	return &doc, nil
}

// AttendanceReport renders the attendance sheet for a batch.
func (s *ReportService) AttendanceReport(ctx context.Context, batchID string) (*report.Document, error) {
	header, records, err := s.load(ctx, batchID)
	if err != nil {
		return nil, err
	}

	items := report.AttendancePhotos(records)
	if len(items) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no attendance photos found")
	}
	items = s.fetcher.Fill(ctx, items)

	doc, err := report.RenderAttendancePDF(header, items)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render attendance report")
	}

	s.logger.Info("attendance report generated", zap.String("batch_id", batchID), zap.Int("photos", len(items)))
	return &doc, nil
}

func (s *ReportService) load(ctx context.Context, batchID string) (report.Header, []models.EvidenceRecord, error) {
	batch, err := s.batches.FindByBatchID(ctx, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return report.Header{}, nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return report.Header{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch batch")
	}

	records, err := s.evidence.ListByBatch(ctx, batchID)
	if err != nil {
		return report.Header{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evidence")
	}

	skillHub := batch.SkillHub
	if skillHub == "" {
		skillHub = s.cfg.SkillHubFallback
	}
	header := report.Header{
		SkillHub: skillHub,
		BatchID:  batch.BatchID,
		JobRole:  batch.JobRole,
	}
	return header, records, nil
}
