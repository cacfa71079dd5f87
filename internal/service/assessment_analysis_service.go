package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/talent-eval-api/internal/dto"
	"github.com/noah-isme/talent-eval-api/internal/models"
	appErrors "github.com/noah-isme/talent-eval-api/pkg/errors"
)

type assessmentStore interface {
	Get(ctx context.Context, id string) (*models.Assessment, error)
	SaveAnalysis(ctx context.Context, id string, analysis models.JSONMap) error
	SaveTeamFitScore(ctx context.Context, id string, score float64) error
}

type historyReader interface {
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
	GetJob(ctx context.Context, id string) (*models.Job, error)
	ListInterviews(ctx context.Context, candidateID string) ([]models.Interview, error)
}

// AssessmentAnalysisService hosts the five stateless assessment AI
// operations. Each builds a dedicated prompt and calls the gateway; each
// absorbs provider failures into a clearly flagged low-confidence
// placeholder rather than an error.
type AssessmentAnalysisService struct {
	gateway     analysisGateway
	assessments assessmentStore
	history     historyReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAssessmentAnalysisService constructs the service.
func NewAssessmentAnalysisService(gateway analysisGateway, assessments assessmentStore, history historyReader, validate *validator.Validate, logger *zap.Logger) *AssessmentAnalysisService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentAnalysisService{
		gateway:     gateway,
		assessments: assessments,
		history:     history,
		validator:   validate,
		logger:      logger,
	}
}

type generatedQuestionsSchema struct {
	Questions []dto.GeneratedQuestion `json:"questions"`
}

// GenerateQuestions asks the provider for structured assessment questions.
// On provider failure it returns an empty list with Available=false, which
// callers must treat as "generation unavailable", never "zero questions".
func (s *AssessmentAnalysisService) GenerateQuestions(ctx context.Context, req dto.GenerateQuestionsRequest) (*dto.GenerateQuestionsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid question generation request")
	}
	job, err := s.history.GetJob(ctx, req.JobID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d %s assessment questions for the position below.\n\n", req.Count, req.Type)
	fmt.Fprintf(&b, "Position: %s (%s)\n%s\n", job.Title, job.Department, job.Description)
	if len(job.Requirements) > 0 {
		fmt.Fprintf(&b, "Requirements: %s\n", strings.Join(job.Requirements, "; "))
	}
	if len(req.DifficultyMix) > 0 {
		fmt.Fprintf(&b, "Difficulty mix: %v\n", req.DifficultyMix)
	}
	b.WriteString(`
Respond with ONLY a JSON object (no markdown, no backticks):
{"questions": [{"id": "q1", "text": "...", "type": "...", "category": "...", "difficulty": "easy|medium|hard", "options": [], "max_score": 10, "time_limit_seconds": null, "rubric": "..."}]}`)

	var out generatedQuestionsSchema
	if _, err := s.gateway.GenerateInto(ctx, b.String(), 0, &out); err != nil {
		if appErrors.Is(err, appErrors.ErrConfiguration) {
			return nil, err
		}
		s.logger.Warn("question generation unavailable", zap.String("job_id", req.JobID), zap.Error(err))
		return &dto.GenerateQuestionsResponse{Questions: []dto.GeneratedQuestion{}, Available: false}, nil
	}
	return &dto.GenerateQuestionsResponse{Questions: out.Questions, Available: true}, nil
}

type responseGradesSchema struct {
	Grades []dto.ResponseGrade `json:"grades"`
}

// GradeResponses grades question/response pairs. On provider failure it
// returns zero-scored placeholders flagged for manual review.
func (s *AssessmentAnalysisService) GradeResponses(ctx context.Context, req dto.GradeResponsesRequest) (*dto.GradeResponsesResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grading request")
	}

	var b strings.Builder
	b.WriteString("Grade each candidate response against its question. Be specific in feedback.\n\n")
	for _, pair := range req.Pairs {
		fmt.Fprintf(&b, "Question %s (max score %d): %s\nResponse: %s\n\n", pair.QuestionID, pair.MaxScore, pair.Question, pair.Response)
	}
	b.WriteString(`Respond with ONLY a JSON object (no markdown, no backticks):
{"grades": [{"question_id": "...", "score": 0.0, "feedback": "...", "strengths": [], "improvements": [], "confidence": 0.0, "needs_manual_review": false}]}`)

	var out responseGradesSchema
	if _, err := s.gateway.GenerateInto(ctx, b.String(), 0, &out); err != nil {
		if appErrors.Is(err, appErrors.ErrConfiguration) {
			return nil, err
		}
		s.logger.Warn("grading degraded to manual review placeholders", zap.Error(err))
		grades := make([]dto.ResponseGrade, 0, len(req.Pairs))
		for _, pair := range req.Pairs {
			grades = append(grades, dto.ResponseGrade{
				QuestionID:        pair.QuestionID,
				Feedback:          "Automated grading unavailable; requires manual review.",
				Strengths:         []string{},
				Improvements:      []string{},
				NeedsManualReview: true,
			})
		}
		return &dto.GradeResponsesResponse{Grades: grades}, nil
	}
	return &dto.GradeResponsesResponse{Grades: out.Grades}, nil
}

type assessmentAnalysisSchema struct {
	OverallScore      float64            `json:"overall_score"`
	DimensionScores   map[string]float64 `json:"dimension_scores"`
	Recommendation    string             `json:"recommendation"`
	Reasoning         string             `json:"reasoning"`
	FollowUpQuestions []string           `json:"follow_up_questions"`
	Confidence        float64            `json:"confidence"`
}

// AnalyzeResults synthesizes an overall result for a completed assessment.
// On success the analysis is persisted onto the assessment record; this is
// the one operation in this module with a side effect.
func (s *AssessmentAnalysisService) AnalyzeResults(ctx context.Context, assessmentID string) (*dto.AssessmentAnalysis, error) {
	assessment, err := s.assessments.Get(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	job, err := s.history.GetJob(ctx, assessment.JobID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the candidate's completed %s assessment %q for the %s position.\n\n", assessment.Type, assessment.Title, job.Title)
	if assessment.Questions != nil {
		fmt.Fprintf(&b, "Questions: %s\n", jsonBlock(assessment.Questions))
	}
	if assessment.Responses != nil {
		fmt.Fprintf(&b, "Responses: %s\n", jsonBlock(assessment.Responses))
	}
	b.WriteString(`
Respond with ONLY a JSON object (no markdown, no backticks):
{"overall_score": 0-100, "dimension_scores": {"...": 0-100}, "recommendation": "hire|hold|no-hire", "reasoning": "...", "follow_up_questions": [], "confidence": 0.0-1.0}`)

	var out assessmentAnalysisSchema
	if _, err := s.gateway.GenerateInto(ctx, b.String(), 0, &out); err != nil {
		if appErrors.Is(err, appErrors.ErrConfiguration) {
			return nil, err
		}
		s.logger.Warn("results analysis degraded", zap.String("assessment_id", assessmentID), zap.Error(err))
		return &dto.AssessmentAnalysis{
			Recommendation: "hold",
			Reasoning:      "Automated analysis unavailable; review assessment manually.",
			Degraded:       true,
		}, nil
	}

	analysis := dto.AssessmentAnalysis{
		OverallScore:      out.OverallScore,
		DimensionScores:   out.DimensionScores,
		Recommendation:    out.Recommendation,
		Reasoning:         out.Reasoning,
		FollowUpQuestions: out.FollowUpQuestions,
		Confidence:        out.Confidence,
	}
	persisted := models.JSONMap{}
	if data, err := json.Marshal(analysis); err == nil {
		_ = json.Unmarshal(data, &persisted)
	}
	if err := s.assessments.SaveAnalysis(ctx, assessmentID, persisted); err != nil {
		return nil, err
	}
	return &analysis, nil
}

type performancePredictionSchema struct {
	PredictedPerformance string   `json:"predicted_performance"`
	PredictedTenure      string   `json:"predicted_tenure"`
	RiskFactors          []string `json:"risk_factors"`
	SuccessFactors       []string `json:"success_factors"`
	Confidence           float64  `json:"confidence"`
}

// PredictPerformance estimates performance and tenure from aggregated
// assessment and interview history. Purely advisory; nothing is persisted.
func (s *AssessmentAnalysisService) PredictPerformance(ctx context.Context, candidateID string) (*dto.PerformancePrediction, error) {
	candidate, err := s.history.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	job, err := s.history.GetJob(ctx, candidate.JobID)
	if err != nil {
		return nil, err
	}
	interviews, err := s.history.ListInterviews(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Estimate likely on-the-job performance and tenure for %s, candidate for %s.\n\n", candidate.FullName, job.Title)
	fmt.Fprintf(&b, "Resume:\n%s\n\n", candidate.ResumeText)
	for _, iv := range interviews {
		fmt.Fprintf(&b, "Interview (%s): %s\n", iv.Stage, iv.Notes)
	}
	b.WriteString(`
Respond with ONLY a JSON object (no markdown, no backticks):
{"predicted_performance": "high|medium|low", "predicted_tenure": "e.g. 2-4 years", "risk_factors": [], "success_factors": [], "confidence": 0.0-1.0}`)

	var out performancePredictionSchema
	if _, err := s.gateway.GenerateInto(ctx, b.String(), 0, &out); err != nil {
		if appErrors.Is(err, appErrors.ErrConfiguration) {
			return nil, err
		}
		s.logger.Warn("performance prediction degraded", zap.String("candidate_id", candidateID), zap.Error(err))
		return &dto.PerformancePrediction{
			RiskFactors:    []string{},
			SuccessFactors: []string{},
			Degraded:       true,
		}, nil
	}
	return &dto.PerformancePrediction{
		PredictedPerformance: out.PredictedPerformance,
		PredictedTenure:      out.PredictedTenure,
		RiskFactors:          out.RiskFactors,
		SuccessFactors:       out.SuccessFactors,
		Confidence:           out.Confidence,
	}, nil
}

type teamFitSchema struct {
	FitScore            float64  `json:"fit_score"`
	ComplementaryTraits []string `json:"complementary_traits"`
	FrictionRisks       []string `json:"friction_risks"`
	Recommendations     []string `json:"recommendations"`
	Confidence          float64  `json:"confidence"`
}

// AnalyzeTeamFit compares a candidate's personality assessment against the
// team profile. On success only the scalar fit score is written back onto
// the assessment.
func (s *AssessmentAnalysisService) AnalyzeTeamFit(ctx context.Context, assessmentID string, req dto.TeamFitRequest) (*dto.TeamFitAnalysis, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid team fit request")
	}
	assessment, err := s.assessments.Get(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if assessment.Type != models.AssessmentTypePersonality {
		return nil, appErrors.Clone(appErrors.ErrValidation, "team fit analysis requires a personality assessment")
	}

	var b strings.Builder
	b.WriteString("Compare the candidate's personality assessment against the existing team profile.\n\n")
	fmt.Fprintf(&b, "Candidate assessment responses: %s\n", jsonBlock(assessment.Responses))
	fmt.Fprintf(&b, "Team profile (trait averages): %v\n", req.TeamProfile)
	b.WriteString(`
Respond with ONLY a JSON object (no markdown, no backticks):
{"fit_score": 0-100, "complementary_traits": [], "friction_risks": [], "recommendations": [], "confidence": 0.0-1.0}`)

	var out teamFitSchema
	if _, err := s.gateway.GenerateInto(ctx, b.String(), 0, &out); err != nil {
		if appErrors.Is(err, appErrors.ErrConfiguration) {
			return nil, err
		}
		s.logger.Warn("team fit analysis degraded", zap.String("assessment_id", assessmentID), zap.Error(err))
		return &dto.TeamFitAnalysis{
			ComplementaryTraits: []string{},
			FrictionRisks:       []string{},
			Recommendations:     []string{},
			Degraded:            true,
		}, nil
	}

	if err := s.assessments.SaveTeamFitScore(ctx, assessmentID, out.FitScore); err != nil {
		return nil, err
	}
	return &dto.TeamFitAnalysis{
		FitScore:            out.FitScore,
		ComplementaryTraits: out.ComplementaryTraits,
		FrictionRisks:       out.FrictionRisks,
		Recommendations:     out.Recommendations,
		Confidence:          out.Confidence,
	}, nil
}

func jsonBlock(m models.JSONMap) string {
	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(data)
}
