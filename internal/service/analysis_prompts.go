package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/talent-eval-api/internal/models"
)

// analysisResult is the JSON shape every analysis prompt instructs the
// model to return.
type analysisResult struct {
	Summary            string             `json:"summary"`
	Strengths          []string           `json:"strengths"`
	Concerns           []string           `json:"concerns"`
	Recommendations    []string           `json:"recommendations"`
	OverallScore       int                `json:"overall_score"`
	ScoreBreakdown     map[string]float64 `json:"score_breakdown"`
	SentimentScore     int                `json:"sentiment_score"`
	ValuesAlignment    map[string]float64 `json:"values_alignment"`
	Recommendation     string             `json:"recommendation"`
	Confidence         float64            `json:"confidence"`
	MustValidatePoints []string           `json:"must_validate_points"`
	NextStageQuestions []string           `json:"next_stage_questions"`
}

const analysisResponseShape = `Respond with ONLY a JSON object (no markdown, no backticks, no explanation) with exactly these fields:
{
  "summary": "3-5 sentence evaluation summary",
  "strengths": ["..."],
  "concerns": ["..."],
  "recommendations": ["..."],
  "overall_score": 0-100,
  "score_breakdown": {"technical": 0-100, "experience": 0-100, "communication": 0-100, "culture": 0-100},
  "sentiment_score": -100 to 100,
  "values_alignment": {"<company value>": 0-100},
  "recommendation": "STRONG_YES | YES | MAYBE | NO | STRONG_NO",
  "confidence": 0.0-1.0,
  "must_validate_points": ["claims to verify in later stages"],
  "next_stage_questions": ["questions for the next interview stage"]
}`

// promptContext aggregates everything folded into an analysis prompt.
type promptContext struct {
	Candidate  *models.Candidate
	Job        *models.Job
	Previous   *models.AnalysisVersion
	Interview  *models.Interview
	Assessment *models.Assessment
}

var analysisAngles = map[models.AnalysisType]string{
	models.AnalysisTypeApplicationReview: `Evaluate the candidate's initial fit for the role based on their application.
Focus on how the resume and cover letter match the job requirements, relevant experience, and any gaps worth probing.`,
	models.AnalysisTypeInterviewAnalysis: `Evaluate the candidate's interview performance in the context of their overall profile.
Weigh the interviewer's notes and rating heavily, and reconcile them with the application materials.`,
	models.AnalysisTypeAssessmentReview: `Evaluate what the completed assessment reveals about the candidate's fit.
Focus on measured skills versus claimed skills and how the scores change the overall picture.`,
	models.AnalysisTypeStageSummary: `Summarize everything known about the candidate at the end of the current hiring stage.
Focus on what was learned in this stage and what the next stage must establish.`,
	models.AnalysisTypeComprehensive: `Produce an end-to-end synthesis of the candidate across application, interviews and assessments.
Weigh all signals together and give a final hiring-committee-ready evaluation.`,
	models.AnalysisTypeSentimentChange: `Focus on drift: compare the candidate's current standing against the previous evaluation.
Identify what changed, whether the trajectory is improving or declining, and why.`,
}

// buildAnalysisPrompt assembles the type-specific evaluation prompt ending
// in the fixed JSON response-shape instruction.
func buildAnalysisPrompt(analysisType models.AnalysisType, pctx promptContext) string {
	var b strings.Builder

	b.WriteString("You are evaluating a candidate for a hiring decision.\n\n")
	b.WriteString(analysisAngles[analysisType])
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "## Position\nTitle: %s\nDepartment: %s\nDescription: %s\n",
		pctx.Job.Title, pctx.Job.Department, pctx.Job.Description)
	if len(pctx.Job.Requirements) > 0 {
		fmt.Fprintf(&b, "Requirements: %s\n", strings.Join(pctx.Job.Requirements, "; "))
	}
	if len(pctx.Job.Values) > 0 {
		fmt.Fprintf(&b, "Company values: %s\n", strings.Join(pctx.Job.Values, "; "))
	}

	fmt.Fprintf(&b, "\n## Candidate\nName: %s\nCurrent stage: %s\nResume:\n%s\n",
		pctx.Candidate.FullName, pctx.Candidate.CurrentStage, pctx.Candidate.ResumeText)
	if pctx.Candidate.CoverLetter != nil && *pctx.Candidate.CoverLetter != "" {
		fmt.Fprintf(&b, "Cover letter:\n%s\n", *pctx.Candidate.CoverLetter)
	}

	if prev := pctx.Previous; prev != nil {
		fmt.Fprintf(&b, "\n## Previous evaluation (version %d, %s)\nSummary: %s\nOverall score: %d\nSentiment: %d\nRecommendation: %s\n",
			prev.Version, prev.AnalysisType, prev.Summary, prev.OverallScore, prev.SentimentScore, prev.Recommendation)
		if len(prev.Concerns) > 0 {
			fmt.Fprintf(&b, "Open concerns: %s\n", strings.Join(prev.Concerns, "; "))
		}
	}

	if iv := pctx.Interview; iv != nil {
		fmt.Fprintf(&b, "\n## Interview (%s stage)\nNotes:\n%s\n", iv.Stage, iv.Notes)
		if iv.Rating != nil {
			fmt.Fprintf(&b, "Interviewer rating: %d/5\n", *iv.Rating)
		}
	}

	if a := pctx.Assessment; a != nil {
		fmt.Fprintf(&b, "\n## Assessment: %s (%s)\n", a.Title, a.Type)
		if a.Analysis != nil {
			fmt.Fprintf(&b, "Assessment analysis: %v\n", map[string]interface{}(a.Analysis))
		}
	}

	b.WriteString("\n")
	b.WriteString(analysisResponseShape)
	return b.String()
}

var tabSummaryFocus = map[string]string{
	"overview":    "Give a 2-3 sentence overall status of this candidate: where they are in the process and the single most important open question.",
	"interviews":  "Give a 2-3 sentence summary of the candidate's interview history: overall trajectory and the strongest and weakest signals.",
	"assessments": "Give a 2-3 sentence summary of the candidate's assessment results and what they confirm or contradict in the rest of the profile.",
	"timeline":    "Give a 2-3 sentence recap of how this candidate's evaluation has evolved across stages.",
}

// buildTabSummaryPrompt builds the short stateless prompt for one UI tab.
func buildTabSummaryPrompt(tab string, pctx promptContext) string {
	var b strings.Builder
	b.WriteString(tabSummaryFocus[tab])
	fmt.Fprintf(&b, "\n\nCandidate: %s, applying for %s (stage: %s).\n",
		pctx.Candidate.FullName, pctx.Job.Title, pctx.Candidate.CurrentStage)
	if prev := pctx.Previous; prev != nil {
		fmt.Fprintf(&b, "Latest evaluation: score %d, sentiment %d, recommendation %s. %s\n",
			prev.OverallScore, prev.SentimentScore, prev.Recommendation, prev.Summary)
	}
	b.WriteString("\nRespond with plain prose only. No JSON, no markdown.")
	return b.String()
}
