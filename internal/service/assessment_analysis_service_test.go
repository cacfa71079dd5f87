package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/talent-eval-api/internal/dto"
	"github.com/noah-isme/talent-eval-api/internal/models"
	appErrors "github.com/noah-isme/talent-eval-api/pkg/errors"
)

type assessmentStoreStub struct {
	assessment    *models.Assessment
	savedAnalysis models.JSONMap
	savedFitScore *float64
}

func (s *assessmentStoreStub) Get(ctx context.Context, id string) (*models.Assessment, error) {
	if s.assessment == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
	}
	return s.assessment, nil
}

func (s *assessmentStoreStub) SaveAnalysis(ctx context.Context, id string, analysis models.JSONMap) error {
	s.savedAnalysis = analysis
	return nil
}

func (s *assessmentStoreStub) SaveTeamFitScore(ctx context.Context, id string, score float64) error {
	s.savedFitScore = &score
	return nil
}

type historyReaderStub struct {
	candidate  *models.Candidate
	job        *models.Job
	interviews []models.Interview
}

func (s *historyReaderStub) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	if s.candidate == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "candidate not found")
	}
	return s.candidate, nil
}

func (s *historyReaderStub) GetJob(ctx context.Context, id string) (*models.Job, error) {
	if s.job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
	}
	return s.job, nil
}

func (s *historyReaderStub) ListInterviews(ctx context.Context, candidateID string) ([]models.Interview, error) {
	return s.interviews, nil
}

func intPtr(v int) *int { return &v }

func newHistoryStub() *historyReaderStub {
	return &historyReaderStub{
		candidate: &models.Candidate{
			ID:         "cand-1",
			JobID:      "job-1",
			FullName:   "Dana Reyes",
			ResumeText: "Ten years of distributed systems work.",
		},
		job: &models.Job{
			ID:           "job-1",
			Title:        "Staff Engineer",
			Department:   "Platform",
			Description:  "Own the evaluation pipeline.",
			Requirements: models.StringList{"Go", "PostgreSQL"},
		},
		interviews: []models.Interview{
			{Stage: "TECHNICAL", Notes: "Strong systems depth.", Rating: intPtr(4)},
		},
	}
}

func TestGenerateQuestions(t *testing.T) {
	gateway := &gatewayStub{result: `{"questions": [
		{"id": "q1", "text": "Explain goroutine scheduling.", "type": "technical", "category": "concurrency", "difficulty": "medium", "max_score": 10},
		{"id": "q2", "text": "Design a rate limiter.", "type": "technical", "category": "design", "difficulty": "hard", "max_score": 10}
	]}`}
	svc := NewAssessmentAnalysisService(gateway, &assessmentStoreStub{}, newHistoryStub(), nil, nil)

	out, err := svc.GenerateQuestions(context.Background(), dto.GenerateQuestionsRequest{
		JobID: "job-1",
		Type:  "technical",
		Count: 2,
	})
	require.NoError(t, err)
	require.True(t, out.Available)
	require.Len(t, out.Questions, 2)
	require.Equal(t, "q1", out.Questions[0].ID)
	require.Equal(t, "hard", out.Questions[1].Difficulty)
	require.Contains(t, gateway.prompts[0], "Staff Engineer")
}

func TestGenerateQuestionsRejectsInvalidRequest(t *testing.T) {
	svc := NewAssessmentAnalysisService(&gatewayStub{}, &assessmentStoreStub{}, newHistoryStub(), nil, nil)

	_, err := svc.GenerateQuestions(context.Background(), dto.GenerateQuestionsRequest{
		JobID: "job-1",
		Type:  "astrological",
		Count: 2,
	})
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestGenerateQuestionsDegradesUnavailable(t *testing.T) {
	gateway := &gatewayStub{err: appErrors.Clone(appErrors.ErrProvider, "provider timeout")}
	svc := NewAssessmentAnalysisService(gateway, &assessmentStoreStub{}, newHistoryStub(), nil, nil)

	out, err := svc.GenerateQuestions(context.Background(), dto.GenerateQuestionsRequest{
		JobID: "job-1",
		Type:  "behavioral",
		Count: 5,
	})
	require.NoError(t, err)
	require.False(t, out.Available)
	require.NotNil(t, out.Questions)
	require.Empty(t, out.Questions)
}

func TestGenerateQuestionsConfigurationErrorBubbles(t *testing.T) {
	gateway := &gatewayStub{err: appErrors.Clone(appErrors.ErrConfiguration, "no provider configured")}
	svc := NewAssessmentAnalysisService(gateway, &assessmentStoreStub{}, newHistoryStub(), nil, nil)

	_, err := svc.GenerateQuestions(context.Background(), dto.GenerateQuestionsRequest{
		JobID: "job-1",
		Type:  "technical",
		Count: 3,
	})
	require.True(t, appErrors.Is(err, appErrors.ErrConfiguration))
}

func TestGradeResponses(t *testing.T) {
	gateway := &gatewayStub{result: `{"grades": [
		{"question_id": "q1", "score": 8.5, "feedback": "Solid.", "strengths": ["clarity"], "improvements": [], "confidence": 0.9}
	]}`}
	svc := NewAssessmentAnalysisService(gateway, &assessmentStoreStub{}, newHistoryStub(), nil, nil)

	out, err := svc.GradeResponses(context.Background(), dto.GradeResponsesRequest{
		Pairs: []dto.QuestionResponsePair{
			{QuestionID: "q1", Question: "Explain channels.", Response: "Typed conduits.", MaxScore: 10},
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Grades, 1)
	require.Equal(t, 8.5, out.Grades[0].Score)
	require.False(t, out.Grades[0].NeedsManualReview)
}

func TestGradeResponsesDegradesToManualReview(t *testing.T) {
	gateway := &gatewayStub{err: appErrors.Clone(appErrors.ErrProvider, "provider down")}
	svc := NewAssessmentAnalysisService(gateway, &assessmentStoreStub{}, newHistoryStub(), nil, nil)

	out, err := svc.GradeResponses(context.Background(), dto.GradeResponsesRequest{
		Pairs: []dto.QuestionResponsePair{
			{QuestionID: "q1", Question: "A?", Response: "B", MaxScore: 10},
			{QuestionID: "q2", Question: "C?", Response: "D", MaxScore: 5},
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Grades, 2)
	for _, grade := range out.Grades {
		require.True(t, grade.NeedsManualReview)
		require.Zero(t, grade.Score)
		require.Contains(t, grade.Feedback, "manual review")
	}
	require.Equal(t, "q2", out.Grades[1].QuestionID)
}

func TestAnalyzeResultsPersists(t *testing.T) {
	gateway := &gatewayStub{result: `{"overall_score": 82, "dimension_scores": {"problem_solving": 85}, "recommendation": "hire", "reasoning": "Consistent strong answers.", "follow_up_questions": [], "confidence": 0.8}`}
	store := &assessmentStoreStub{assessment: &models.Assessment{
		ID:        "assess-1",
		JobID:     "job-1",
		Type:      models.AssessmentTypeCognitive,
		Title:     "Cognitive screen",
		Questions: models.JSONMap{"q1": "pattern"},
		Responses: models.JSONMap{"q1": "answer"},
	}}
	svc := NewAssessmentAnalysisService(gateway, store, newHistoryStub(), nil, nil)

	out, err := svc.AnalyzeResults(context.Background(), "assess-1")
	require.NoError(t, err)
	require.Equal(t, "hire", out.Recommendation)
	require.False(t, out.Degraded)
	require.NotNil(t, store.savedAnalysis)
	require.Equal(t, "hire", store.savedAnalysis["recommendation"])
}

func TestAnalyzeResultsDegradesWithoutPersisting(t *testing.T) {
	gateway := &gatewayStub{err: appErrors.Clone(appErrors.ErrProvider, "provider down")}
	store := &assessmentStoreStub{assessment: &models.Assessment{
		ID: "assess-1", JobID: "job-1", Type: models.AssessmentTypeCognitive, Title: "Cognitive screen",
	}}
	svc := NewAssessmentAnalysisService(gateway, store, newHistoryStub(), nil, nil)

	out, err := svc.AnalyzeResults(context.Background(), "assess-1")
	require.NoError(t, err)
	require.True(t, out.Degraded)
	require.Equal(t, "hold", out.Recommendation)
	require.Nil(t, store.savedAnalysis)
}

func TestPredictPerformance(t *testing.T) {
	gateway := &gatewayStub{result: `{"predicted_performance": "high", "predicted_tenure": "3-5 years", "risk_factors": ["narrow domain exposure"], "success_factors": ["systems depth"], "confidence": 0.7}`}
	svc := NewAssessmentAnalysisService(gateway, &assessmentStoreStub{}, newHistoryStub(), nil, nil)

	out, err := svc.PredictPerformance(context.Background(), "cand-1")
	require.NoError(t, err)
	require.Equal(t, "high", out.PredictedPerformance)
	require.Equal(t, "3-5 years", out.PredictedTenure)
	require.False(t, out.Degraded)
	require.Contains(t, gateway.prompts[0], "Dana Reyes")
}

func TestPredictPerformanceDegrades(t *testing.T) {
	gateway := &gatewayStub{err: appErrors.Clone(appErrors.ErrProvider, "provider down")}
	svc := NewAssessmentAnalysisService(gateway, &assessmentStoreStub{}, newHistoryStub(), nil, nil)

	out, err := svc.PredictPerformance(context.Background(), "cand-1")
	require.NoError(t, err)
	require.True(t, out.Degraded)
	require.Empty(t, out.PredictedPerformance)
}

func TestAnalyzeTeamFit(t *testing.T) {
	gateway := &gatewayStub{result: `{"fit_score": 74, "complementary_traits": ["steadiness"], "friction_risks": [], "recommendations": ["pair with senior mentor"], "confidence": 0.6}`}
	store := &assessmentStoreStub{assessment: &models.Assessment{
		ID:        "assess-1",
		JobID:     "job-1",
		Type:      models.AssessmentTypePersonality,
		Responses: models.JSONMap{"openness": 72},
	}}
	svc := NewAssessmentAnalysisService(gateway, store, newHistoryStub(), nil, nil)

	out, err := svc.AnalyzeTeamFit(context.Background(), "assess-1", dto.TeamFitRequest{
		TeamProfile: map[string]float64{"openness": 65},
	})
	require.NoError(t, err)
	require.Equal(t, 74.0, out.FitScore)
	require.NotNil(t, store.savedFitScore)
	require.Equal(t, 74.0, *store.savedFitScore)
}

func TestAnalyzeTeamFitRequiresPersonalityAssessment(t *testing.T) {
	store := &assessmentStoreStub{assessment: &models.Assessment{
		ID: "assess-1", JobID: "job-1", Type: models.AssessmentTypeCoding,
	}}
	svc := NewAssessmentAnalysisService(&gatewayStub{}, store, newHistoryStub(), nil, nil)

	_, err := svc.AnalyzeTeamFit(context.Background(), "assess-1", dto.TeamFitRequest{
		TeamProfile: map[string]float64{"openness": 65},
	})
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestAnalyzeTeamFitDegradesWithoutScore(t *testing.T) {
	gateway := &gatewayStub{err: appErrors.Clone(appErrors.ErrProvider, "provider down")}
	store := &assessmentStoreStub{assessment: &models.Assessment{
		ID: "assess-1", JobID: "job-1", Type: models.AssessmentTypePersonality,
	}}
	svc := NewAssessmentAnalysisService(gateway, store, newHistoryStub(), nil, nil)

	out, err := svc.AnalyzeTeamFit(context.Background(), "assess-1", dto.TeamFitRequest{
		TeamProfile: map[string]float64{"openness": 65},
	})
	require.NoError(t, err)
	require.True(t, out.Degraded)
	require.Nil(t, store.savedFitScore)
}
