package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skillhub/evidence-api/internal/service"
	appErrors "github.com/skillhub/evidence-api/pkg/errors"
)

type flakyStore struct {
	fakeObjectStore
	failURL  string
	readyErr error
}

func (f *flakyStore) Ready() error { return f.readyErr }

func (f *flakyStore) DeleteByURL(ctx context.Context, rawURL string) error {
	if rawURL == f.failURL {
		return errors.New("destroy rejected")
	}
	return f.fakeObjectStore.DeleteByURL(ctx, rawURL)
}

func newPhotoRouter(store *flakyStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPhotoHandler(service.NewPhotoService(store, nil, zap.NewNop()))
	router := gin.New()
	router.POST("/photos/delete", h.Delete)
	return router
}

func deleteRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/photos/delete", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestPhotoDeleteReportsPerURLResults(t *testing.T) {
	store := &flakyStore{failURL: "https://cdn.test/bad.jpg"}
	router := newPhotoRouter(store)

	w := perform(router, deleteRequest(`{"urls":["https://cdn.test/ok.jpg","https://cdn.test/bad.jpg"]}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := w.Body.String()
	assert.Contains(t, body, `"url":"https://cdn.test/ok.jpg","deleted":true`)
	assert.Contains(t, body, `"url":"https://cdn.test/bad.jpg","deleted":false`)
	assert.Contains(t, body, "destroy rejected")
}

func TestPhotoDeleteMalformedPayload(t *testing.T) {
	router := newPhotoRouter(&flakyStore{})

	w := perform(router, deleteRequest(`{"urls":[]}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(router, deleteRequest(`not json`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPhotoDeleteMissingCredentials(t *testing.T) {
	store := &flakyStore{readyErr: appErrors.ErrStorageUnavailable}
	router := newPhotoRouter(store)

	w := perform(router, deleteRequest(`{"urls":["https://cdn.test/ok.jpg"]}`))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
