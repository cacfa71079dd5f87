package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/talent-eval-api/internal/ai"
	"github.com/noah-isme/talent-eval-api/internal/dto"
	"github.com/noah-isme/talent-eval-api/internal/models"
	appErrors "github.com/noah-isme/talent-eval-api/pkg/errors"
	"github.com/noah-isme/talent-eval-api/pkg/export"
)

const sentimentReasonThreshold = 10

type analysisGateway interface {
	GenerateInto(ctx context.Context, prompt string, maxTokens int, dest interface{}) (ai.Provenance, error)
	GenerateText(ctx context.Context, prompt string, maxTokens int) (string, ai.Provenance, error)
}

type analysisVersionStore interface {
	GetLatest(ctx context.Context, candidateID string) (*models.AnalysisVersion, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]models.AnalysisVersion, error)
	InsertNextVersion(ctx context.Context, v *models.AnalysisVersion) error
}

type candidateContextReader interface {
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
	GetJob(ctx context.Context, id string) (*models.Job, error)
	GetInterview(ctx context.Context, id string) (*models.Interview, error)
}

type assessmentContextReader interface {
	Get(ctx context.Context, id string) (*models.Assessment, error)
}

type analysisObserver interface {
	IncAnalysisVersions(analysisType string)
}

// keyedMutex serializes work per candidate while leaving different
// candidates fully concurrent. Entries are refcounted and removed once the
// last holder releases, keeping the map bounded by in-flight candidates
// rather than total candidate cardinality.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &keyedLock{}
		k.locks[key] = lock
	}
	lock.refs++
	k.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		k.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// AnalysisService is the candidate analysis versioning engine. It builds
// evaluation prompts from candidate/job/interview/assessment context, calls
// the provider gateway, computes the sentiment delta against the previous
// version and persists an immutable, monotonically versioned record while
// maintaining the single-current-version invariant.
type AnalysisService struct {
	gateway     analysisGateway
	versions    analysisVersionStore
	candidates  candidateContextReader
	assessments assessmentContextReader
	logger      *zap.Logger
	observer    analysisObserver
	locks       *keyedMutex
}

// NewAnalysisService constructs the engine.
func NewAnalysisService(gateway analysisGateway, versions analysisVersionStore, candidates candidateContextReader, assessments assessmentContextReader, logger *zap.Logger, observer analysisObserver) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{
		gateway:     gateway,
		versions:    versions,
		candidates:  candidates,
		assessments: assessments,
		logger:      logger,
		observer:    observer,
		locks:       newKeyedMutex(),
	}
}

// GenerateAnalysis produces and persists the candidate's next analysis
// version. Provider failures degrade to a deterministic neutral result so a
// flaky provider never blocks the hiring workflow that triggered the call;
// configuration and not-found errors bubble to the caller unchanged.
func (s *AnalysisService) GenerateAnalysis(ctx context.Context, candidateID string, analysisType models.AnalysisType, trigger dto.AnalysisTrigger) (*models.AnalysisVersion, error) {
	if !analysisType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown analysis type %q", analysisType))
	}

	unlock := s.locks.Lock(candidateID)
	defer unlock()

	pctx, err := s.loadContext(ctx, candidateID, trigger)
	if err != nil {
		return nil, err
	}

	prompt := buildAnalysisPrompt(analysisType, pctx)

	var result analysisResult
	prov, err := s.gateway.GenerateInto(ctx, prompt, 0, &result)
	degraded := false
	if err != nil {
		if appErrors.Is(err, appErrors.ErrConfiguration) {
			return nil, err
		}
		s.logger.Error("analysis generation degraded to neutral fallback",
			zap.String("candidate_id", candidateID),
			zap.String("analysis_type", string(analysisType)),
			zap.Error(err))
		result = neutralAnalysisResult()
		degraded = true
	}
	clampAnalysisResult(&result)

	version := &models.AnalysisVersion{
		ID:                 uuid.NewString(),
		CandidateID:        candidateID,
		AnalysisType:       analysisType,
		TriggerStage:       trigger.Stage,
		TriggerEvent:       trigger.Event,
		InterviewID:        trigger.InterviewID,
		AssessmentID:       trigger.AssessmentID,
		Summary:            result.Summary,
		Strengths:          result.Strengths,
		Concerns:           result.Concerns,
		Recommendations:    result.Recommendations,
		OverallScore:       result.OverallScore,
		ScoreBreakdown:     result.ScoreBreakdown,
		SentimentScore:     result.SentimentScore,
		ValuesAlignment:    result.ValuesAlignment,
		Recommendation:     models.RecommendationLevel(result.Recommendation),
		Confidence:         result.Confidence,
		MustValidatePoints: result.MustValidatePoints,
		NextStageQuestions: result.NextStageQuestions,
		ProviderName:       prov.Provider,
		ProviderModel:      prov.Model,
	}

	if prev := pctx.Previous; prev != nil {
		delta := result.SentimentScore - prev.SentimentScore
		version.SentimentChange = &delta
		if delta >= sentimentReasonThreshold || delta <= -sentimentReasonThreshold {
			reason := sentimentReason(delta, prev.Version)
			version.SentimentReason = &reason
		}
	}

	if err := s.versions.InsertNextVersion(ctx, version); err != nil {
		return nil, err
	}

	if s.observer != nil {
		s.observer.IncAnalysisVersions(string(analysisType))
	}
	s.logger.Info("analysis version created",
		zap.String("candidate_id", candidateID),
		zap.Int("version", version.Version),
		zap.String("analysis_type", string(analysisType)),
		zap.Bool("degraded", degraded))
	return version, nil
}

// GenerateTabSummary builds a short tab-specific plain-text summary. It
// persists nothing and is not versioned.
func (s *AnalysisService) GenerateTabSummary(ctx context.Context, candidateID, tab string) (*dto.TabSummaryResponse, error) {
	if _, ok := tabSummaryFocus[tab]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown tab %q", tab))
	}

	pctx, err := s.loadContext(ctx, candidateID, dto.AnalysisTrigger{})
	if err != nil {
		return nil, err
	}

	text, _, err := s.gateway.GenerateText(ctx, buildTabSummaryPrompt(tab, pctx), 512)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrConfiguration) {
			return nil, err
		}
		s.logger.Warn("tab summary degraded",
			zap.String("candidate_id", candidateID),
			zap.String("tab", tab),
			zap.Error(err))
		return &dto.TabSummaryResponse{Tab: tab, Summary: "Summary temporarily unavailable.", Degraded: true}, nil
	}
	return &dto.TabSummaryResponse{Tab: tab, Summary: text}, nil
}

// ListVersions returns the candidate's full analysis history, newest first.
func (s *AnalysisService) ListVersions(ctx context.Context, candidateID string) ([]models.AnalysisVersion, error) {
	if _, err := s.candidates.GetCandidate(ctx, candidateID); err != nil {
		return nil, err
	}
	return s.versions.ListByCandidate(ctx, candidateID)
}

// GetLatest returns the candidate's current version.
func (s *AnalysisService) GetLatest(ctx context.Context, candidateID string) (*models.AnalysisVersion, error) {
	latest, err := s.versions.GetLatest(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "candidate has no analysis yet")
	}
	return latest, nil
}

// ExportHistoryCSV renders the candidate's history as CSV for audit export.
func (s *AnalysisService) ExportHistoryCSV(ctx context.Context, candidateID string) ([]byte, error) {
	versions, err := s.ListVersions(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"version", "analysis_type", "trigger_event", "overall_score", "sentiment_score", "sentiment_change", "recommendation", "confidence", "provider", "created_at"},
	}
	for _, v := range versions {
		change := ""
		if v.SentimentChange != nil {
			change = strconv.Itoa(*v.SentimentChange)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"version":         strconv.Itoa(v.Version),
			"analysis_type":   string(v.AnalysisType),
			"trigger_event":   v.TriggerEvent,
			"overall_score":   strconv.Itoa(v.OverallScore),
			"sentiment_score": strconv.Itoa(v.SentimentScore),
			"sentiment_change": change,
			"recommendation":  string(v.Recommendation),
			"confidence":      strconv.FormatFloat(v.Confidence, 'f', 2, 64),
			"provider":        v.ProviderName,
			"created_at":      v.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	return export.NewCSVExporter().Render(dataset)
}

func (s *AnalysisService) loadContext(ctx context.Context, candidateID string, trigger dto.AnalysisTrigger) (promptContext, error) {
	candidate, err := s.candidates.GetCandidate(ctx, candidateID)
	if err != nil {
		return promptContext{}, err
	}
	job, err := s.candidates.GetJob(ctx, candidate.JobID)
	if err != nil {
		return promptContext{}, err
	}
	previous, err := s.versions.GetLatest(ctx, candidateID)
	if err != nil {
		return promptContext{}, err
	}

	pctx := promptContext{Candidate: candidate, Job: job, Previous: previous}

	if trigger.InterviewID != nil {
		interview, err := s.candidates.GetInterview(ctx, *trigger.InterviewID)
		if err != nil {
			return promptContext{}, err
		}
		pctx.Interview = interview
	}
	if trigger.AssessmentID != nil {
		assessment, err := s.assessments.Get(ctx, *trigger.AssessmentID)
		if err != nil {
			return promptContext{}, err
		}
		pctx.Assessment = assessment
	}
	return pctx, nil
}

// neutralAnalysisResult is the deterministic fallback substituted when the
// provider fails: all scores zero, MAYBE, confidence zero, empty lists.
func neutralAnalysisResult() analysisResult {
	return analysisResult{
		Summary:            "Automated analysis unavailable; the AI provider could not be reached. This version is a neutral placeholder.",
		Strengths:          []string{},
		Concerns:           []string{},
		Recommendations:    []string{},
		ScoreBreakdown:     map[string]float64{},
		ValuesAlignment:    map[string]float64{},
		Recommendation:     string(models.RecommendationMaybe),
		MustValidatePoints: []string{},
		NextStageQuestions: []string{},
	}
}

func clampAnalysisResult(r *analysisResult) {
	r.OverallScore = clampInt(r.OverallScore, 0, 100)
	r.SentimentScore = clampInt(r.SentimentScore, -100, 100)
	if r.Confidence < 0 {
		r.Confidence = 0
	}
	if r.Confidence > 1 {
		r.Confidence = 1
	}
	if !models.RecommendationLevel(r.Recommendation).Valid() {
		r.Recommendation = string(models.RecommendationMaybe)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sentimentReason(delta, prevVersion int) string {
	direction := "improved"
	magnitude := delta
	if delta < 0 {
		direction = "declined"
		magnitude = -delta
	}
	return fmt.Sprintf("Sentiment %s by %d points since version %d", direction, magnitude, prevVersion)
}
