package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/skillhub/evidence-api/internal/models"
	"github.com/skillhub/evidence-api/pkg/config"
	appErrors "github.com/skillhub/evidence-api/pkg/errors"
)

type authBatchRepository interface {
	FindByCredentials(ctx context.Context, jobRole, batchID string) (*models.Batch, error)
}

// AuthService authenticates administrators and field assessors.
// Assessors have no accounts of their own; the batch registry is the
// credential store, with the job role acting as username and the batch
// ID as password.
type AuthService struct {
	batches   authBatchRepository
	validator *validator.Validate
	logger    *zap.Logger
	jwt       config.JWTConfig
	auth      config.AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(batches authBatchRepository, validate *validator.Validate, logger *zap.Logger, jwtCfg config.JWTConfig, authCfg config.AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{batches: batches, validator: validate, logger: logger, jwt: jwtCfg, auth: authCfg}
}

// Login authenticates the credentials and returns an issued token.
// Credentials are trimmed before comparison so copy-pasted values with
// stray whitespace still match.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	username := strings.TrimSpace(req.Username)
	password := strings.TrimSpace(req.Password)

	if username == s.auth.AdminUsername {
		return s.loginAdmin(username, password)
	}
	return s.loginAssessor(ctx, username, password)
}

func (s *AuthService) loginAdmin(username, password string) (*models.LoginResponse, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(s.auth.AdminPasswordHash), []byte(password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	token, err := s.generateToken(username, models.RoleAdmin, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.logger.Info("admin login", zap.String("username", username))
	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.jwt.Expiration.Seconds()),
		Role:        models.RoleAdmin,
		IssuedAt:    time.Now().UTC(),
	}, nil
}

func (s *AuthService) loginAssessor(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	// Floating credentials let field teams sign in before their batch
	// is registered, when enabled.
	if s.auth.AllowFloating && username == s.auth.FloatingUsername && password == s.auth.FloatingPassword {
		token, err := s.generateToken(username, models.RoleAssessor, "")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
		}
		return &models.LoginResponse{
			AccessToken: token,
			ExpiresIn:   int64(s.jwt.Expiration.Seconds()),
			Role:        models.RoleAssessor,
			JobRole:     username,
			IssuedAt:    time.Now().UTC(),
		}, nil
	}

	batch, err := s.batches.FindByCredentials(ctx, username, password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch batch")
	}

	token, err := s.generateToken(username, models.RoleAssessor, batch.BatchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.logger.Info("assessor login",
		zap.String("job_role", batch.JobRole),
		zap.String("batch_id", batch.BatchID),
	)
	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.jwt.Expiration.Seconds()),
		Role:        models.RoleAssessor,
		BatchID:     batch.BatchID,
		JobRole:     batch.JobRole,
		IssuedAt:    time.Now().UTC(),
	}, nil
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unexpected signing method")
		}
		return []byte(s.jwt.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

func (s *AuthService) generateToken(username string, role models.UserRole, batchID string) (string, error) {
	now := time.Now().UTC()
	claims := models.JWTClaims{
		Username: username,
		Role:     role,
		BatchID:  batchID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.jwt.Issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwt.Expiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwt.Secret))
}
