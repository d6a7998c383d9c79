package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillhub/evidence-api/internal/dto"
	"github.com/skillhub/evidence-api/internal/service"
	appErrors "github.com/skillhub/evidence-api/pkg/errors"
	"github.com/skillhub/evidence-api/pkg/response"
)

// CouncilHandler exposes council management endpoints.
type CouncilHandler struct {
	service *service.CouncilService
}

// NewCouncilHandler creates a new handler.
func NewCouncilHandler(svc *service.CouncilService) *CouncilHandler {
	return &CouncilHandler{service: svc}
}

// List godoc
// @Summary List councils
// @Tags Councils
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /councils [get]
func (h *CouncilHandler) List(c *gin.Context) {
	councils, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, councils)
}

// Create godoc
// @Summary Register a council
// @Tags Councils
// @Accept json
// @Produce json
// @Param payload body dto.CreateCouncilRequest true "Council payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /councils [post]
func (h *CouncilHandler) Create(c *gin.Context) {
	var req dto.CreateCouncilRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid council payload"))
		return
	}

	council, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, council)
}

// Delete godoc
// @Summary Delete a council and everything under it
// @Tags Councils
// @Param id path string true "Council ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /councils/{id} [delete]
func (h *CouncilHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
