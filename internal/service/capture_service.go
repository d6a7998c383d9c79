package service

import (
	"context"
	"image"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/skillhub/evidence-api/internal/capture"
	"github.com/skillhub/evidence-api/internal/dto"
	appErrors "github.com/skillhub/evidence-api/pkg/errors"
)

// CaptureService drives the capture session lifecycle for field
// assessors.
type CaptureService struct {
	manager   *capture.Manager
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCaptureService constructs a CaptureService.
func NewCaptureService(manager *capture.Manager, validate *validator.Validate, logger *zap.Logger) *CaptureService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CaptureService{manager: manager, validator: validate, logger: logger}
}

// Open starts a capture session for the assessor.
func (s *CaptureService) Open(ctx context.Context, username string, req dto.OpenSessionRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SessionResponse{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	session, err := s.manager.Open(ctx, username, req.BatchID, req.Type)
	if err != nil {
		return dto.SessionResponse{}, err
	}
	return sessionResponse(session), nil
}

// Get returns the session state.
func (s *CaptureService) Get(sessionID, username string) (dto.SessionResponse, error) {
	session, err := s.owned(sessionID, username)
	if err != nil {
		return dto.SessionResponse{}, err
	}
	return sessionResponse(session), nil
}

// Capture processes a posted frame through the session pipeline.
func (s *CaptureService) Capture(ctx context.Context, sessionID, username string, frame image.Image) (dto.SessionResponse, error) {
	session, err := s.owned(sessionID, username)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	if push, ok := session.Source().(*capture.PushFrameSource); ok {
		if err := push.Push(frame); err != nil {
			return dto.SessionResponse{}, err
		}
	}
	if _, err := session.Capture(ctx); err != nil {
		return dto.SessionResponse{}, err
	}
	return sessionResponse(session), nil
}

// DeletePhoto removes a captured photo before submission.
func (s *CaptureService) DeletePhoto(sessionID, username string, index int) (dto.SessionResponse, error) {
	session, err := s.owned(sessionID, username)
	if err != nil {
		return dto.SessionResponse{}, err
	}
	if err := session.DeletePhoto(index); err != nil {
		return dto.SessionResponse{}, err
	}
	return sessionResponse(session), nil
}

// UpdatePosition feeds a GPS fix into the session's tracker.
func (s *CaptureService) UpdatePosition(sessionID, username string, req dto.PositionUpdate) (dto.PositionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.PositionResponse{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid position payload")
	}

	session, err := s.owned(sessionID, username)
	if err != nil {
		return dto.PositionResponse{}, err
	}

	fix := session.Tracker().Update(req.Lat, req.Lng)
	return dto.PositionResponse{
		Lat:    fix.Lat,
		Lng:    fix.Lng,
		Town:   fix.Town,
		Region: fix.Region,
		Fixed:  fix.HasCoords(),
	}, nil
}

// Close abandons the session without submitting.
func (s *CaptureService) Close(sessionID, username string) error {
	if _, err := s.owned(sessionID, username); err != nil {
		return err
	}
	return s.manager.Close(sessionID)
}

func (s *CaptureService) owned(sessionID, username string) (*capture.Session, error) {
	session, err := s.manager.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Username != username {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "session belongs to another user")
	}
	return session, nil
}

func sessionResponse(session *capture.Session) dto.SessionResponse {
	return dto.SessionResponse{
		ID:         session.ID,
		BatchID:    session.BatchID,
		Type:       session.Type,
		Quota:      session.Quota(),
		PhotoCount: session.PhotoCount(),
		CanCapture: session.CanCapture(),
		CanSubmit:  session.CanSubmit(),
	}
}
