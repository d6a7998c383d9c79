package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skillhub/evidence-api/internal/capture"
	"github.com/skillhub/evidence-api/internal/geo"
	"github.com/skillhub/evidence-api/internal/middleware"
	"github.com/skillhub/evidence-api/internal/models"
	"github.com/skillhub/evidence-api/internal/service"
	"github.com/skillhub/evidence-api/pkg/config"
)

type stubGeocoder struct{}

func (stubGeocoder) Reverse(ctx context.Context, lat, lng float64) (geo.Place, error) {
	return geo.Place{Town: "Bhimavaram", Region: "Andhra Pradesh"}, nil
}

type fakeObjectStore struct {
	mu      sync.Mutex
	uploads []string
	deleted []string
}

func (f *fakeObjectStore) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	url := "https://cdn.test/" + name
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeObjectStore) DeleteByURL(ctx context.Context, rawURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, rawURL)
	return nil
}

func (f *fakeObjectStore) Ready() error { return nil }

type fakeEvidenceRepo struct {
	mu      sync.Mutex
	created []*models.EvidenceRecord
}

func (f *fakeEvidenceRepo) Create(ctx context.Context, record *models.EvidenceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record.ID = fmt.Sprintf("rec-%d", len(f.created)+1)
	record.CreatedAt = time.Now().UTC()
	f.created = append(f.created, record)
	return nil
}

func (f *fakeEvidenceRepo) FindByID(ctx context.Context, id string) (*models.EvidenceRecord, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeEvidenceRepo) ListByBatch(ctx context.Context, batchID string) ([]models.EvidenceRecord, error) {
	return nil, nil
}

func (f *fakeEvidenceRepo) ListByBatchAndType(ctx context.Context, batchID string, assessmentType models.AssessmentType) ([]models.EvidenceRecord, error) {
	return nil, nil
}

func (f *fakeEvidenceRepo) Delete(ctx context.Context, id string) error { return nil }

type noopCleaner struct{}

func (noopCleaner) EnqueueURLs(urls []string) {}

func testAuth(username string, role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{Username: username, Role: role})
		c.Next()
	}
}

func newCaptureRouter(t *testing.T) (*gin.Engine, *fakeEvidenceRepo, *fakeObjectStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager := capture.NewManager(capture.PushProvider{}, stubGeocoder{}, time.Hour, time.Second, zap.NewNop())
	captureSvc := service.NewCaptureService(manager, nil, zap.NewNop())

	repo := &fakeEvidenceRepo{}
	store := &fakeObjectStore{}
	cache := service.NewCacheService(nil, nil, time.Minute, zap.NewNop(), false)
	evidenceSvc := service.NewEvidenceService(repo, manager, store, noopCleaner{}, cache, nil, zap.NewNop(),
		config.StorageConfig{UploadTimeout: 5 * time.Second}, time.Minute)

	h := NewCaptureHandler(captureSvc, evidenceSvc)

	router := gin.New()
	authed := router.Group("/", testAuth("Fitter", models.RoleAssessor))
	authed.POST("/capture/sessions", h.Open)
	authed.GET("/capture/sessions/:id", h.Get)
	authed.POST("/capture/sessions/:id/capture", h.Capture)
	authed.POST("/capture/sessions/:id/position", h.Position)
	authed.DELETE("/capture/sessions/:id/photos/:index", h.DeletePhoto)
	authed.DELETE("/capture/sessions/:id", h.Close)
	authed.POST("/capture/sessions/:id/submit", h.Submit)
	return router, repo, store
}

func perform(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func openSession(t *testing.T, router *gin.Engine, assessmentType string) string {
	t.Helper()
	body := fmt.Sprintf(`{"batch_id":"B100","type":"%s"}`, assessmentType)
	req := httptest.NewRequest(http.MethodPost, "/capture/sessions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := perform(router, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var envelope struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.ID)
	return envelope.Data.ID
}

func postFrame(t *testing.T, router *gin.Engine, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("frame", "frame.jpg")
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(part, image.NewRGBA(image.Rect(0, 0, 40, 30)), nil))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/capture/sessions/"+sessionID+"/capture", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return perform(router, req)
}

func TestCaptureFlow(t *testing.T) {
	router, repo, store := newCaptureRouter(t)
	sessionID := openSession(t, router, "Viva")

	// Feed a position before capturing.
	posReq := httptest.NewRequest(http.MethodPost, "/capture/sessions/"+sessionID+"/position",
		strings.NewReader(`{"lat":16.544123,"lng":81.521}`))
	posReq.Header.Set("Content-Type", "application/json")
	w := perform(router, posReq)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"lat":"16.544123"`)

	w = postFrame(t, router, sessionID)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"photo_count":1`)
	assert.Contains(t, w.Body.String(), `"can_submit":true`)

	// Viva's quota is one photo, a second frame must be refused.
	w = postFrame(t, router, sessionID)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = perform(router, httptest.NewRequest(http.MethodPost, "/capture/sessions/"+sessionID+"/submit", nil))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.Len(t, repo.created, 1)
	record := repo.created[0]
	assert.Equal(t, "B100", record.BatchID)
	assert.Equal(t, models.AssessmentViva, record.Type)
	require.Len(t, record.Photos, 1)
	assert.Equal(t, store.uploads[0], record.Photos[0])

	// The closed session is gone.
	w = perform(router, httptest.NewRequest(http.MethodGet, "/capture/sessions/"+sessionID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCaptureDeletePhotoAndClose(t *testing.T) {
	router, _, _ := newCaptureRouter(t)
	sessionID := openSession(t, router, "Theory")

	w := postFrame(t, router, sessionID)
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(router, httptest.NewRequest(http.MethodDelete, "/capture/sessions/"+sessionID+"/photos/0", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"photo_count":0`)

	w = perform(router, httptest.NewRequest(http.MethodDelete, "/capture/sessions/"+sessionID+"/photos/3", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(router, httptest.NewRequest(http.MethodDelete, "/capture/sessions/"+sessionID, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCaptureSubmitBeforeQuota(t *testing.T) {
	router, repo, _ := newCaptureRouter(t)
	sessionID := openSession(t, router, "Theory")

	w := perform(router, httptest.NewRequest(http.MethodPost, "/capture/sessions/"+sessionID+"/submit", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Empty(t, repo.created)
}

func TestCaptureRejectsBadFrame(t *testing.T) {
	router, _, _ := newCaptureRouter(t)
	sessionID := openSession(t, router, "Theory")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("frame", "frame.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("not an image"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/capture/sessions/"+sessionID+"/capture", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := perform(router, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
