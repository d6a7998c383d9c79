package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"image"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skillhub/evidence-api/internal/capture"
	"github.com/skillhub/evidence-api/internal/geo"
	"github.com/skillhub/evidence-api/internal/models"
	"github.com/skillhub/evidence-api/pkg/config"
	appErrors "github.com/skillhub/evidence-api/pkg/errors"
)

type fakeStore struct {
	mu       sync.Mutex
	uploads  []string
	deleted  []string
	failName string
	readyErr error
}

func (f *fakeStore) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failName != "" && strings.Contains(name, f.failName) {
		return "", errors.New("upload rejected")
	}
	url := "https://cdn.test/" + name
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeStore) DeleteByURL(ctx context.Context, rawURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, rawURL)
	return nil
}

func (f *fakeStore) Ready() error { return f.readyErr }

type fakeCleaner struct {
	mu   sync.Mutex
	urls []string
}

func (f *fakeCleaner) EnqueueURLs(urls []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, urls...)
}

type mockEvidenceRepo struct {
	mu      sync.Mutex
	created []*models.EvidenceRecord
	records []models.EvidenceRecord
	byID    map[string]*models.EvidenceRecord
	listErr error
	deleted []string
	lists   int
}

func (m *mockEvidenceRepo) Create(ctx context.Context, record *models.EvidenceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record.ID = "rec-1"
	record.CreatedAt = time.Now().UTC()
	m.created = append(m.created, record)
	return nil
}

func (m *mockEvidenceRepo) FindByID(ctx context.Context, id string) (*models.EvidenceRecord, error) {
	if record, ok := m.byID[id]; ok {
		return record, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEvidenceRepo) ListByBatch(ctx context.Context, batchID string) ([]models.EvidenceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.records, nil
}

func (m *mockEvidenceRepo) ListByBatchAndType(ctx context.Context, batchID string, assessmentType models.AssessmentType) ([]models.EvidenceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.EvidenceRecord
	for _, record := range m.records {
		if record.Type == assessmentType {
			out = append(out, record)
		}
	}
	return out, nil
}

func (m *mockEvidenceRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = make(map[string][]byte)
	}
	c.data[key] = raw
	return nil
}

func (c *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.data {
		if strings.HasPrefix(key, strings.TrimSuffix(pattern, "*")) {
			delete(c.data, key)
		}
	}
	return nil
}

type evidenceFixture struct {
	svc     *EvidenceService
	repo    *mockEvidenceRepo
	store   *fakeStore
	cleaner *fakeCleaner
	manager *capture.Manager
}

func newEvidenceFixture(t *testing.T, store *fakeStore, cacheRepo CacheRepository) *evidenceFixture {
	t.Helper()
	repo := &mockEvidenceRepo{}
	cleaner := &fakeCleaner{}
	manager := capture.NewManager(capture.PushProvider{}, stubGeocoder{}, time.Hour, time.Second, zap.NewNop())
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), cacheRepo != nil)
	svc := NewEvidenceService(repo, manager, store, cleaner, cache, nil, zap.NewNop(),
		config.StorageConfig{UploadTimeout: 5 * time.Second}, time.Minute)
	return &evidenceFixture{svc: svc, repo: repo, store: store, cleaner: cleaner, manager: manager}
}

type stubGeocoder struct{}

func (stubGeocoder) Reverse(ctx context.Context, lat, lng float64) (geo.Place, error) {
	return geo.Place{Town: "Bhimavaram", Region: "Andhra Pradesh"}, nil
}

func fillSession(t *testing.T, fx *evidenceFixture, assessmentType models.AssessmentType) *capture.Session {
	t.Helper()
	session, err := fx.manager.Open(context.Background(), "Fitter", "B100", assessmentType)
	require.NoError(t, err)

	session.Tracker().Update(16.544123, 81.521)
	require.Eventually(t, func() bool { return session.Tracker().Snapshot().Resolved }, time.Second, 5*time.Millisecond)
	push := session.Source().(*capture.PushFrameSource)
	for i := 0; i < session.Quota(); i++ {
		require.NoError(t, push.Push(image.NewRGBA(image.Rect(0, 0, 40, 30))))
		_, err := session.Capture(context.Background())
		require.NoError(t, err)
	}
	return session
}

func TestSubmitUploadsAllAndPersists(t *testing.T) {
	store := &fakeStore{}
	fx := newEvidenceFixture(t, store, nil)
	session := fillSession(t, fx, models.AssessmentTheory)

	record, err := fx.svc.Submit(context.Background(), session.ID, "Fitter")
	require.NoError(t, err)

	require.Len(t, record.Photos, 2)
	for _, url := range record.Photos {
		assert.True(t, strings.HasPrefix(url, "https://cdn.test/"))
	}
	assert.Equal(t, "B100", record.BatchID)
	assert.Equal(t, models.AssessmentTheory, record.Type)
	assert.Equal(t, "Fitter", record.Username)
	assert.Equal(t, 16.544123, record.Lat)
	assert.Equal(t, "Bhimavaram", record.Town)

	// The session is gone after a successful submit.
	_, err = fx.manager.Get(session.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, fx.cleaner.urls)
}

func TestSubmitAllOrNothing(t *testing.T) {
	store := &fakeStore{}
	fx := newEvidenceFixture(t, store, nil)
	session := fillSession(t, fx, models.AssessmentTheory)

	// Fail the second upload by name.
	store.failName = session.ID + "-1-"

	_, err := fx.svc.Submit(context.Background(), session.ID, "Fitter")
	require.Error(t, err)

	assert.Empty(t, fx.repo.created, "no record may be written when an upload fails")
	// The photo that did upload is scheduled for cleanup.
	assert.Equal(t, fx.store.uploads, fx.cleaner.urls)

	// The session survives so the assessor can retry.
	_, err = fx.manager.Get(session.ID)
	assert.NoError(t, err)
}

func TestSubmitRequiresQuota(t *testing.T) {
	fx := newEvidenceFixture(t, &fakeStore{}, nil)
	session, err := fx.manager.Open(context.Background(), "Fitter", "B100", models.AssessmentTheory)
	require.NoError(t, err)

	_, err = fx.svc.Submit(context.Background(), session.ID, "Fitter")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSubmitRejectsOtherUser(t *testing.T) {
	fx := newEvidenceFixture(t, &fakeStore{}, nil)
	session := fillSession(t, fx, models.AssessmentViva)

	_, err := fx.svc.Submit(context.Background(), session.ID, "Electrician")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestListReadsThroughCache(t *testing.T) {
	cache := &memoryCache{}
	fx := newEvidenceFixture(t, &fakeStore{}, cache)
	fx.repo.records = []models.EvidenceRecord{{ID: "rec-1", BatchID: "B100", Type: models.AssessmentTheory}}

	first, err := fx.svc.List(context.Background(), "B100", "")
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := fx.svc.List(context.Background(), "B100", "")
	require.NoError(t, err)
	require.Len(t, second, 1)

	assert.Equal(t, 1, fx.repo.lists, "second read must come from cache")
}

func TestListTypeFilterBypassesCache(t *testing.T) {
	cache := &memoryCache{}
	fx := newEvidenceFixture(t, &fakeStore{}, cache)
	fx.repo.records = []models.EvidenceRecord{
		{ID: "rec-1", BatchID: "B100", Type: models.AssessmentTheory},
		{ID: "rec-2", BatchID: "B100", Type: models.AssessmentAttendance},
	}

	records, err := fx.svc.List(context.Background(), "B100", models.AssessmentAttendance)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "rec-2", records[0].ID)

	_, err = fx.svc.List(context.Background(), "B100", models.AssessmentType("Karaoke"))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestDeleteSchedulesPhotoCleanup(t *testing.T) {
	fx := newEvidenceFixture(t, &fakeStore{}, nil)
	fx.repo.byID = map[string]*models.EvidenceRecord{
		"rec-1": {ID: "rec-1", BatchID: "B100", Photos: []string{"https://cdn.test/p1.jpg", "https://cdn.test/p2.jpg"}},
	}

	require.NoError(t, fx.svc.Delete(context.Background(), "rec-1"))
	assert.Equal(t, []string{"rec-1"}, fx.repo.deleted)
	assert.Equal(t, []string{"https://cdn.test/p1.jpg", "https://cdn.test/p2.jpg"}, fx.cleaner.urls)

	err := fx.svc.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
