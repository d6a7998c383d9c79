package handler

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skillhub/evidence-api/internal/dto"
	"github.com/skillhub/evidence-api/internal/middleware"
	"github.com/skillhub/evidence-api/internal/service"
	appErrors "github.com/skillhub/evidence-api/pkg/errors"
	"github.com/skillhub/evidence-api/pkg/response"
)

// CaptureHandler exposes the capture session endpoints used by field
// kiosks.
type CaptureHandler struct {
	capture  *service.CaptureService
	evidence *service.EvidenceService
}

// NewCaptureHandler creates a new handler.
func NewCaptureHandler(captureSvc *service.CaptureService, evidenceSvc *service.EvidenceService) *CaptureHandler {
	return &CaptureHandler{capture: captureSvc, evidence: evidenceSvc}
}

func currentUsername(c *gin.Context) (string, bool) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return "", false
	}
	return claims.Username, true
}

// Open godoc
// @Summary Open a capture session
// @Tags Capture
// @Accept json
// @Produce json
// @Param payload body dto.OpenSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /capture/sessions [post]
func (h *CaptureHandler) Open(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}

	session, err := h.capture.Open(c.Request.Context(), username, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Get godoc
// @Summary Fetch capture session state
// @Tags Capture
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /capture/sessions/{id} [get]
func (h *CaptureHandler) Get(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	session, err := h.capture.Get(c.Param("id"), username)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

// Capture godoc
// @Summary Capture a photo from a posted frame
// @Description Accepts a multipart "frame" image, stamps it and stores it in the session.
// @Tags Capture
// @Accept mpfd
// @Produce json
// @Param id path string true "Session ID"
// @Param frame formData file true "Camera frame"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /capture/sessions/{id}/capture [post]
func (h *CaptureHandler) Capture(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	file, _, err := c.Request.FormFile("frame")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "missing frame upload"))
		return
	}
	defer file.Close()

	frame, _, err := image.Decode(file)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "frame is not a decodable image"))
		return
	}

	session, err := h.capture.Capture(c.Request.Context(), c.Param("id"), username, frame)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

// Position godoc
// @Summary Feed a GPS fix into the session tracker
// @Tags Capture
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.PositionUpdate true "Position payload"
// @Success 200 {object} response.Envelope
// @Router /capture/sessions/{id}/position [post]
func (h *CaptureHandler) Position(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.PositionUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid position payload"))
		return
	}

	fix, err := h.capture.UpdatePosition(c.Param("id"), username, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fix)
}

// DeletePhoto godoc
// @Summary Discard a captured photo before submission
// @Tags Capture
// @Produce json
// @Param id path string true "Session ID"
// @Param index path int true "Photo index"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /capture/sessions/{id}/photos/{index} [delete]
func (h *CaptureHandler) DeletePhoto(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "photo index must be a number"))
		return
	}

	session, err := h.capture.DeletePhoto(c.Param("id"), username, index)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

// Close godoc
// @Summary Abandon a capture session
// @Tags Capture
// @Param id path string true "Session ID"
// @Success 204
// @Router /capture/sessions/{id} [delete]
func (h *CaptureHandler) Close(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.capture.Close(c.Param("id"), username); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Submit godoc
// @Summary Submit a completed session as an evidence record
// @Tags Capture
// @Produce json
// @Param id path string true "Session ID"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /capture/sessions/{id}/submit [post]
func (h *CaptureHandler) Submit(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	record, err := h.evidence.Submit(c.Request.Context(), c.Param("id"), username)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.SubmitResponse{Record: *record})
}
