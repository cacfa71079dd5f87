package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/talent-eval-api/internal/dto"
	"github.com/noah-isme/talent-eval-api/internal/models"
	"github.com/noah-isme/talent-eval-api/internal/service"
	appErrors "github.com/noah-isme/talent-eval-api/pkg/errors"
	"github.com/noah-isme/talent-eval-api/pkg/jobs"
	"github.com/noah-isme/talent-eval-api/pkg/response"
)

type analysisEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// AnalysisHandler exposes candidate analysis endpoints.
type AnalysisHandler struct {
	analyses *service.AnalysisService
	queue    analysisEnqueuer
}

// NewAnalysisHandler constructs handler. queue may be nil; async requests
// then fall back to synchronous generation.
func NewAnalysisHandler(analyses *service.AnalysisService, queue analysisEnqueuer) *AnalysisHandler {
	return &AnalysisHandler{analyses: analyses, queue: queue}
}

// Generate godoc
// @Summary Generate a new analysis version for a candidate
// @Tags Analyses
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param payload body dto.GenerateAnalysisRequest true "Analysis request"
// @Success 201 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Router /candidates/{id}/analyses [post]
func (h *AnalysisHandler) Generate(c *gin.Context) {
	candidateID := c.Param("id")
	var req dto.GenerateAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	analysisType := models.AnalysisType(req.AnalysisType)
	if !analysisType.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown analysis type"))
		return
	}

	if req.Async && h.queue != nil {
		jobID := uuid.NewString()
		err := h.queue.Enqueue(jobs.Job{
			ID:   jobID,
			Type: service.JobTypeGenerateAnalysis,
			Payload: service.AnalysisJobPayload{
				CandidateID:  candidateID,
				AnalysisType: analysisType,
				Trigger:      req.Trigger,
			},
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusAccepted, dto.AsyncAccepted{JobID: jobID}, nil)
		return
	}

	version, err := h.analyses.GenerateAnalysis(c.Request.Context(), candidateID, analysisType, req.Trigger)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, version)
}

// List godoc
// @Summary List all analysis versions for a candidate, newest first
// @Tags Analyses
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} response.Envelope
// @Router /candidates/{id}/analyses [get]
func (h *AnalysisHandler) List(c *gin.Context) {
	versions, err := h.analyses.ListVersions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, versions, nil)
}

// Latest godoc
// @Summary Get the current analysis version for a candidate
// @Tags Analyses
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} response.Envelope
// @Router /candidates/{id}/analyses/latest [get]
func (h *AnalysisHandler) Latest(c *gin.Context) {
	version, err := h.analyses.GetLatest(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, version, nil)
}

// TabSummary godoc
// @Summary Generate a short summary for one profile tab
// @Tags Analyses
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param payload body dto.TabSummaryRequest true "Tab request"
// @Success 200 {object} response.Envelope
// @Router /candidates/{id}/analyses/tab-summary [post]
func (h *AnalysisHandler) TabSummary(c *gin.Context) {
	var req dto.TabSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	summary, err := h.analyses.GenerateTabSummary(c.Request.Context(), c.Param("id"), req.Tab)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// ExportHistory godoc
// @Summary Export a candidate's analysis history as CSV
// @Tags Analyses
// @Produce text/csv
// @Param id path string true "Candidate ID"
// @Success 200 {string} string "CSV payload"
// @Router /candidates/{id}/analyses/export [get]
func (h *AnalysisHandler) ExportHistory(c *gin.Context) {
	data, err := h.analyses.ExportHistoryCSV(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="analysis-history.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}
