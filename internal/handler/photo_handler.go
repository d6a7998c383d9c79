package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillhub/evidence-api/internal/dto"
	"github.com/skillhub/evidence-api/internal/service"
	appErrors "github.com/skillhub/evidence-api/pkg/errors"
	"github.com/skillhub/evidence-api/pkg/response"
)

// PhotoHandler proxies storage deletions so signing credentials stay on
// the server.
type PhotoHandler struct {
	service *service.PhotoService
}

// NewPhotoHandler creates a new handler.
func NewPhotoHandler(svc *service.PhotoService) *PhotoHandler {
	return &PhotoHandler{service: svc}
}

// Delete godoc
// @Summary Delete stored photos by delivery URL
// @Description Removes each URL from object storage. Responds 200 with per-URL results even when some deletions fail.
// @Tags Photos
// @Accept json
// @Produce json
// @Param payload body dto.DeletePhotosRequest true "URLs to delete"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /photos/delete [post]
func (h *PhotoHandler) Delete(c *gin.Context) {
	var req dto.DeletePhotosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid delete payload"))
		return
	}

	res, err := h.service.Delete(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}
