package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillhub/evidence-api/internal/models"
	"github.com/skillhub/evidence-api/internal/service"
	"github.com/skillhub/evidence-api/pkg/response"
)

// EvidenceHandler exposes persisted evidence records.
type EvidenceHandler struct {
	service *service.EvidenceService
}

// NewEvidenceHandler creates a new handler.
func NewEvidenceHandler(svc *service.EvidenceService) *EvidenceHandler {
	return &EvidenceHandler{service: svc}
}

// List godoc
// @Summary List a batch's evidence records
// @Tags Evidence
// @Produce json
// @Param batchId path string true "Batch ID"
// @Param type query string false "Assessment type filter"
// @Success 200 {object} response.Envelope
// @Router /evidence/{batchId} [get]
func (h *EvidenceHandler) List(c *gin.Context) {
	typeFilter := models.AssessmentType(c.Query("type"))
	records, err := h.service.List(c.Request.Context(), c.Param("batchId"), typeFilter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records)
}

// Delete godoc
// @Summary Delete an evidence record and its stored photos
// @Tags Evidence
// @Param id path string true "Record ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /evidence/records/{id} [delete]
func (h *EvidenceHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
