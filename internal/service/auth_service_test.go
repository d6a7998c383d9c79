package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/skillhub/evidence-api/internal/models"
	"github.com/skillhub/evidence-api/pkg/config"
	appErrors "github.com/skillhub/evidence-api/pkg/errors"
)

type mockBatchAuthRepo struct {
	batch       *models.Batch
	err         error
	gotJobRole  string
	gotBatchID  string
	lookupCalls int
}

func (m *mockBatchAuthRepo) FindByCredentials(ctx context.Context, jobRole, batchID string) (*models.Batch, error) {
	m.lookupCalls++
	m.gotJobRole = jobRole
	m.gotBatchID = batchID
	if m.err != nil {
		return nil, m.err
	}
	return m.batch, nil
}

func newAuthService(t *testing.T, repo *mockBatchAuthRepo) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(repo, nil, nil,
		config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "evidence-api"},
		config.AuthConfig{AdminUsername: "admin", AdminPasswordHash: string(hash)},
	)
}

func TestLoginAdmin(t *testing.T) {
	repo := &mockBatchAuthRepo{}
	svc := newAuthService(t, repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "admin"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Zero(t, repo.lookupCalls)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLoginAdminWrongPassword(t *testing.T) {
	svc := newAuthService(t, &mockBatchAuthRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "nope"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestLoginAssessorByBatchCredentials(t *testing.T) {
	repo := &mockBatchAuthRepo{batch: &models.Batch{ID: "id-1", BatchID: "B100", JobRole: "Fitter"}}
	svc := newAuthService(t, repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "Fitter", Password: "B100"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAssessor, resp.Role)
	assert.Equal(t, "B100", resp.BatchID)
	assert.Equal(t, "Fitter", resp.JobRole)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "B100", claims.BatchID)
}

func TestLoginTrimsWhitespace(t *testing.T) {
	repo := &mockBatchAuthRepo{batch: &models.Batch{BatchID: "B100", JobRole: "Fitter"}}
	svc := newAuthService(t, repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "  Fitter ", Password: " B100  "})
	require.NoError(t, err)
	assert.Equal(t, "Fitter", repo.gotJobRole)
	assert.Equal(t, "B100", repo.gotBatchID)
}

func TestLoginAssessorUnknownBatch(t *testing.T) {
	repo := &mockBatchAuthRepo{err: sql.ErrNoRows}
	svc := newAuthService(t, repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "Fitter", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestLoginValidatesPayload(t *testing.T) {
	svc := newAuthService(t, &mockBatchAuthRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "", Password: ""})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(t, &mockBatchAuthRepo{})

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
