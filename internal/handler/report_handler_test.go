package handler

import (
	"bytes"
	"context"
	"database/sql"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skillhub/evidence-api/internal/models"
	"github.com/skillhub/evidence-api/internal/report"
	"github.com/skillhub/evidence-api/internal/service"
	"github.com/skillhub/evidence-api/pkg/config"
)

type staticReportRepos struct {
	batch   *models.Batch
	records []models.EvidenceRecord
}

func (r *staticReportRepos) FindByBatchID(ctx context.Context, batchID string) (*models.Batch, error) {
	if r.batch != nil && r.batch.BatchID == batchID {
		return r.batch, nil
	}
	return nil, sql.ErrNoRows
}

func (r *staticReportRepos) ListByBatch(ctx context.Context, batchID string) ([]models.EvidenceRecord, error) {
	return r.records, nil
}

func newReportRouter(t *testing.T, repos *staticReportRepos) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewReportService(repos, repos, report.NewFetcher(2*time.Second, zap.NewNop()),
		config.ReportsConfig{SkillHubFallback: "NAC-Bhimavaram"}, zap.NewNop())
	h := NewReportHandler(svc)

	router := gin.New()
	router.GET("/reports/evidence/:batchId", h.Evidence)
	router.GET("/reports/attendance/:batchId", h.Attendance)
	return router
}

func photoServer(t *testing.T) *httptest.Server {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 6)), nil))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(buf.Bytes())
	}))
	t.Cleanup(server.Close)
	return server
}

func TestEvidenceReportDownload(t *testing.T) {
	server := photoServer(t)
	repos := &staticReportRepos{
		batch: &models.Batch{BatchID: "B100", JobRole: "Fitter"},
		records: []models.EvidenceRecord{
			{Type: models.AssessmentTheory, Photos: []string{server.URL + "/p1.jpg"}, CreatedAt: time.Now()},
		},
	}
	router := newReportRouter(t, repos)

	w := perform(router, httptest.NewRequest(http.MethodGet, "/reports/evidence/B100?format=doc", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="Evidence_Report_B100.doc"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/msword", w.Header().Get("Content-Type"))
	// The empty skill hub falls back to the configured default.
	assert.Contains(t, w.Body.String(), "Name of the Skill Hub: NAC-Bhimavaram")

	w = perform(router, httptest.NewRequest(http.MethodGet, "/reports/evidence/B100?format=pdf", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="Evidence_Report_B100.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

func TestEvidenceReportErrors(t *testing.T) {
	repos := &staticReportRepos{batch: &models.Batch{BatchID: "B100", JobRole: "Fitter"}}
	router := newReportRouter(t, repos)

	w := perform(router, httptest.NewRequest(http.MethodGet, "/reports/evidence/UNKNOWN", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Batch exists but has no photos.
	w = perform(router, httptest.NewRequest(http.MethodGet, "/reports/evidence/B100", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no evidence photos found")

	w = perform(router, httptest.NewRequest(http.MethodGet, "/reports/evidence/B100?format=xlsx", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttendanceReportDownload(t *testing.T) {
	server := photoServer(t)
	repos := &staticReportRepos{
		batch: &models.Batch{BatchID: "B100", JobRole: "Fitter", SkillHub: "NAC-Vijayawada"},
		records: []models.EvidenceRecord{
			{Type: models.AssessmentAttendance, Photos: []string{server.URL + "/att.jpg"}, CreatedAt: time.Now()},
		},
	}
	router := newReportRouter(t, repos)

	w := perform(router, httptest.NewRequest(http.MethodGet, "/reports/attendance/B100", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="Attendance_B100.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}
