// Package scoring evaluates resumes with LLM assistance: an ATS-style
// readability score for a resume on its own, and a match score for a resume
// against a specific job description.
package scoring

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/jobtrack/internal/llm"
	"github.com/jonathan/jobtrack/internal/prompts"
	"github.com/jonathan/jobtrack/internal/schemas"
)

// maxPromptChars caps the text sent to the model. Resumes and postings past
// this point add cost without changing the score.
const maxPromptChars = 24000

// ATSReport is the result of scoring a resume the way ATS software would.
type ATSReport struct {
	Overall     int      `json:"overall"`
	Format      int      `json:"format"`
	Keywords    int      `json:"keywords"`
	Clarity     int      `json:"clarity"`
	Suggestions []string `json:"suggestions"`
	// Degraded is true when the model response could not be parsed and the
	// scores above are zeroed placeholders.
	Degraded bool `json:"degraded"`
}

// MatchReport is the result of comparing a resume against a job description.
type MatchReport struct {
	Score          int      `json:"score"`
	MatchingSkills []string `json:"matching_skills"`
	MissingSkills  []string `json:"missing_skills"`
	Summary        string   `json:"summary"`
	// Degraded is true when the model response could not be parsed and the
	// report above is a zeroed placeholder.
	Degraded bool `json:"degraded"`
}

// Scorer runs LLM scoring prompts and decodes their JSON output.
type Scorer struct {
	client llm.Client
}

// NewScorer creates a Scorer backed by the given LLM client.
func NewScorer(client llm.Client) *Scorer {
	return &Scorer{client: client}
}

// ScoreResume produces an ATS report for the given resume text.
// A report with Degraded=true is returned when the model responds but its
// output cannot be decoded; an error is returned only when the model call
// itself fails.
func (s *Scorer) ScoreResume(ctx context.Context, resumeText string) (*ATSReport, error) {
	if resumeText == "" {
		return nil, fmt.Errorf("resume text is empty")
	}

	template := prompts.MustGet("scoring.json", "ats-score")
	prompt := prompts.Format(template, map[string]string{
		"ResumeText": truncate(resumeText, maxPromptChars),
	})

	raw, err := s.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("ats scoring failed: %w", err)
	}

	report := &ATSReport{}
	if err := decodeValidated(raw, atsReportSchema, report); err != nil {
		// Keep the resume usable even when the model misbehaves.
		return &ATSReport{Suggestions: []string{}, Degraded: true}, nil
	}
	report.clamp()
	return report, nil
}

// ScoreMatch produces a match report for the given resume text against a
// job description. Same degraded-fallback contract as ScoreResume.
func (s *Scorer) ScoreMatch(ctx context.Context, resumeText, jobDescription string) (*MatchReport, error) {
	if resumeText == "" {
		return nil, fmt.Errorf("resume text is empty")
	}
	if jobDescription == "" {
		return nil, fmt.Errorf("job description is empty")
	}

	template := prompts.MustGet("scoring.json", "match-score")
	prompt := prompts.Format(template, map[string]string{
		"ResumeText":     truncate(resumeText, maxPromptChars),
		"JobDescription": truncate(jobDescription, maxPromptChars),
	})

	raw, err := s.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("match scoring failed: %w", err)
	}

	report := &MatchReport{}
	if err := decodeValidated(raw, matchReportSchema, report); err != nil {
		return &MatchReport{
			MatchingSkills: []string{},
			MissingSkills:  []string{},
			Degraded:       true,
		}, nil
	}
	report.clamp()
	return report, nil
}

// decodeValidated validates raw JSON against a schema and decodes it into v.
func decodeValidated(raw, schema string, v any) error {
	cleaned := llm.CleanJSONBlock(raw)
	if err := schemas.ValidateJSONString(schema, cleaned); err != nil {
		return err
	}
	return json.Unmarshal([]byte(cleaned), v)
}

func (r *ATSReport) clamp() {
	r.Overall = clampScore(r.Overall)
	r.Format = clampScore(r.Format)
	r.Keywords = clampScore(r.Keywords)
	r.Clarity = clampScore(r.Clarity)
	if r.Suggestions == nil {
		r.Suggestions = []string{}
	}
}

func (r *MatchReport) clamp() {
	r.Score = clampScore(r.Score)
	if r.MatchingSkills == nil {
		r.MatchingSkills = []string{}
	}
	if r.MissingSkills == nil {
		r.MissingSkills = []string{}
	}
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
