package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/talent-eval-api/internal/dto"
	"github.com/noah-isme/talent-eval-api/internal/service"
	appErrors "github.com/noah-isme/talent-eval-api/pkg/errors"
	"github.com/noah-isme/talent-eval-api/pkg/response"
)

// AssessmentHandler exposes the AI assessment operations.
type AssessmentHandler struct {
	assessments *service.AssessmentAnalysisService
}

// NewAssessmentHandler constructs handler.
func NewAssessmentHandler(assessments *service.AssessmentAnalysisService) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments}
}

// GenerateQuestions godoc
// @Summary Generate assessment questions for a position
// @Tags Assessments
// @Accept json
// @Produce json
// @Param payload body dto.GenerateQuestionsRequest true "Generation request"
// @Success 200 {object} response.Envelope
// @Router /assessments/questions/generate [post]
func (h *AssessmentHandler) GenerateQuestions(c *gin.Context) {
	var req dto.GenerateQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.assessments.GenerateQuestions(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// GradeResponses godoc
// @Summary Grade candidate responses against their questions
// @Tags Assessments
// @Accept json
// @Produce json
// @Param payload body dto.GradeResponsesRequest true "Grading request"
// @Success 200 {object} response.Envelope
// @Router /assessments/responses/grade [post]
func (h *AssessmentHandler) GradeResponses(c *gin.Context) {
	var req dto.GradeResponsesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.assessments.GradeResponses(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// AnalyzeResults godoc
// @Summary Analyze a completed assessment and persist the result
// @Tags Assessments
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {object} response.Envelope
// @Router /assessments/{id}/analyze [post]
func (h *AssessmentHandler) AnalyzeResults(c *gin.Context) {
	result, err := h.assessments.AnalyzeResults(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// PredictPerformance godoc
// @Summary Predict on-the-job performance for a candidate
// @Tags Assessments
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} response.Envelope
// @Router /candidates/{id}/predict-performance [post]
func (h *AssessmentHandler) PredictPerformance(c *gin.Context) {
	result, err := h.assessments.PredictPerformance(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// AnalyzeTeamFit godoc
// @Summary Compare a personality assessment against a team profile
// @Tags Assessments
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param payload body dto.TeamFitRequest true "Team profile"
// @Success 200 {object} response.Envelope
// @Router /assessments/{id}/team-fit [post]
func (h *AssessmentHandler) AnalyzeTeamFit(c *gin.Context) {
	var req dto.TeamFitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.assessments.AnalyzeTeamFit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
