package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/skillhub/evidence-api/internal/models"
	"github.com/skillhub/evidence-api/internal/service"
	"github.com/skillhub/evidence-api/pkg/config"
)

type staticBatchRepo struct {
	batch *models.Batch
}

func (r *staticBatchRepo) FindByCredentials(ctx context.Context, jobRole, batchID string) (*models.Batch, error) {
	if r.batch != nil && r.batch.JobRole == jobRole && r.batch.BatchID == batchID {
		return r.batch, nil
	}
	return nil, sql.ErrNoRows
}

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.MinCost)
	require.NoError(t, err)

	svc := service.NewAuthService(
		&staticBatchRepo{batch: &models.Batch{BatchID: "B100", JobRole: "Fitter"}},
		nil, nil,
		config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "evidence-api"},
		config.AuthConfig{AdminUsername: "admin", AdminPasswordHash: string(hash)},
	)

	router := gin.New()
	router.POST("/auth/login", NewAuthHandler(svc).Login)
	return router
}

func loginRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestLoginEndpointAssessor(t *testing.T) {
	router := newAuthRouter(t)

	w := perform(router, loginRequest(`{"username":"Fitter","password":"B100"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"role":"assessor"`)
	assert.Contains(t, w.Body.String(), `"batch_id":"B100"`)
}

func TestLoginEndpointRejectsBadCredentials(t *testing.T) {
	router := newAuthRouter(t)

	w := perform(router, loginRequest(`{"username":"Fitter","password":"nope"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(router, loginRequest(`{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
