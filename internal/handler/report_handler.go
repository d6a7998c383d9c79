package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/skillhub/evidence-api/internal/service"
	"github.com/skillhub/evidence-api/pkg/response"
)

// ReportHandler serves generated report downloads.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Evidence godoc
// @Summary Download the evidence photo grid for a batch
// @Tags Reports
// @Produce application/msword
// @Produce application/pdf
// @Param batchId path string true "Batch ID"
// @Param format query string false "doc or pdf" default(doc)
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /reports/evidence/{batchId} [get]
func (h *ReportHandler) Evidence(c *gin.Context) {
	format := c.DefaultQuery("format", "doc")

	doc, err := h.service.EvidenceReport(c.Request.Context(), c.Param("batchId"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDocument(c, doc.Filename, doc.ContentType, doc.Data)
}

// Attendance godoc
// @Summary Download the attendance sheet for a batch
// @Tags Reports
// @Produce application/pdf
// @Param batchId path string true "Batch ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /reports/attendance/{batchId} [get]
func (h *ReportHandler) Attendance(c *gin.Context) {
	doc, err := h.service.AttendanceReport(c.Request.Context(), c.Param("batchId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDocument(c, doc.Filename, doc.ContentType, doc.Data)
}

func serveDocument(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(200, contentType, data)
}
