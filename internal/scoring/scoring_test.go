package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobtrack/internal/llm"
)

// fakeClient returns canned responses so tests never hit the network.
type fakeClient struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeClient) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeClient) GenerateStream(_ context.Context, prompt string, _ llm.ModelTier, onChunk func(string)) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err == nil && onChunk != nil {
		onChunk(f.response)
	}
	return f.response, f.err
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "fake-model" }
func (f *fakeClient) Close() error                  { return nil }

func TestScoreResume_Valid(t *testing.T) {
	client := &fakeClient{response: `{
		"overall": 82,
		"format": 90,
		"keywords": 75,
		"clarity": 80,
		"suggestions": ["Quantify achievements", "Add a skills section"]
	}`}
	scorer := NewScorer(client)

	report, err := scorer.ScoreResume(context.Background(), "Senior engineer with 8 years of Go experience")
	require.NoError(t, err)
	assert.Equal(t, 82, report.Overall)
	assert.Equal(t, 90, report.Format)
	assert.Len(t, report.Suggestions, 2)
	assert.False(t, report.Degraded)
}

func TestScoreResume_PromptIncludesResumeText(t *testing.T) {
	client := &fakeClient{response: `{"overall":50,"format":50,"keywords":50,"clarity":50,"suggestions":[]}`}
	scorer := NewScorer(client)

	_, err := scorer.ScoreResume(context.Background(), "unique-marker-text")
	require.NoError(t, err)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "unique-marker-text")
}

func TestScoreResume_MarkdownFences(t *testing.T) {
	client := &fakeClient{response: "```json\n{\"overall\":70,\"format\":70,\"keywords\":70,\"clarity\":70,\"suggestions\":[]}\n```"}
	scorer := NewScorer(client)

	report, err := scorer.ScoreResume(context.Background(), "resume text")
	require.NoError(t, err)
	assert.Equal(t, 70, report.Overall)
	assert.False(t, report.Degraded)
}

func TestScoreResume_MalformedResponse_Degrades(t *testing.T) {
	client := &fakeClient{response: "Sorry, I cannot score this resume."}
	scorer := NewScorer(client)

	report, err := scorer.ScoreResume(context.Background(), "resume text")
	require.NoError(t, err)
	assert.True(t, report.Degraded)
	assert.Equal(t, 0, report.Overall)
	assert.Empty(t, report.Suggestions)
}

func TestScoreResume_SchemaViolation_Degrades(t *testing.T) {
	// Valid JSON but the wrong shape must not half-populate a report.
	client := &fakeClient{response: `{"overall":"very good","suggestions":[]}`}
	scorer := NewScorer(client)

	report, err := scorer.ScoreResume(context.Background(), "resume text")
	require.NoError(t, err)
	assert.True(t, report.Degraded)
}

func TestScoreResume_EmptyText(t *testing.T) {
	scorer := NewScorer(&fakeClient{})

	_, err := scorer.ScoreResume(context.Background(), "")
	assert.Error(t, err)
}

func TestScoreResume_ClientError(t *testing.T) {
	client := &fakeClient{err: errors.New("rate limited")}
	scorer := NewScorer(client)

	_, err := scorer.ScoreResume(context.Background(), "resume text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ats scoring failed")
}

func TestScoreMatch_Valid(t *testing.T) {
	client := &fakeClient{response: `{
		"score": 64,
		"matching_skills": ["Go", "PostgreSQL"],
		"missing_skills": ["Kubernetes"],
		"summary": "Solid backend fit, lighter on infrastructure."
	}`}
	scorer := NewScorer(client)

	report, err := scorer.ScoreMatch(context.Background(), "resume text", "job description")
	require.NoError(t, err)
	assert.Equal(t, 64, report.Score)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, report.MatchingSkills)
	assert.Equal(t, []string{"Kubernetes"}, report.MissingSkills)
	assert.NotEmpty(t, report.Summary)
	assert.False(t, report.Degraded)
}

func TestScoreMatch_PromptIncludesBothTexts(t *testing.T) {
	client := &fakeClient{response: `{"score":10,"matching_skills":[],"missing_skills":[],"summary":"x"}`}
	scorer := NewScorer(client)

	_, err := scorer.ScoreMatch(context.Background(), "resume-marker", "job-marker")
	require.NoError(t, err)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "resume-marker")
	assert.Contains(t, client.prompts[0], "job-marker")
}

func TestScoreMatch_MissingInputs(t *testing.T) {
	scorer := NewScorer(&fakeClient{})

	_, err := scorer.ScoreMatch(context.Background(), "", "job")
	assert.Error(t, err)

	_, err = scorer.ScoreMatch(context.Background(), "resume", "")
	assert.Error(t, err)
}

func TestScoreMatch_MalformedResponse_Degrades(t *testing.T) {
	client := &fakeClient{response: `{"score": 101.5}`}
	scorer := NewScorer(client)

	report, err := scorer.ScoreMatch(context.Background(), "resume", "job")
	require.NoError(t, err)
	assert.True(t, report.Degraded)
	assert.Equal(t, 0, report.Score)
	assert.Empty(t, report.MatchingSkills)
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, clampScore(-5))
	assert.Equal(t, 100, clampScore(250))
	assert.Equal(t, 42, clampScore(42))
}
