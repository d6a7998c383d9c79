package dto

import "github.com/skillhub/evidence-api/internal/models"

// OpenSessionRequest starts a capture session for one assessment type.
type OpenSessionRequest struct {
	BatchID string                `json:"batch_id" validate:"required"`
	Type    models.AssessmentType `json:"type" validate:"required"`
}

// SessionResponse describes the state of a capture session.
type SessionResponse struct {
	ID         string                `json:"id"`
	BatchID    string                `json:"batch_id"`
	Type       models.AssessmentType `json:"type"`
	Quota      int                   `json:"quota"`
	PhotoCount int                   `json:"photo_count"`
	CanCapture bool                  `json:"can_capture"`
	CanSubmit  bool                  `json:"can_submit"`
}

// PositionUpdate feeds a GPS fix from the capture device into the tracker.
type PositionUpdate struct {
	Lat float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}

// PositionResponse reports the tracker state after an update.
type PositionResponse struct {
	Lat    string `json:"lat"`
	Lng    string `json:"lng"`
	Town   string `json:"town"`
	Region string `json:"region"`
	Fixed  bool   `json:"fixed"`
}

// SubmitResponse returns the evidence record created from a session.
type SubmitResponse struct {
	Record models.EvidenceRecord `json:"record"`
}
