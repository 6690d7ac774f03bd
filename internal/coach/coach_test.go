package coach

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobtrack/internal/llm"
)

type fakeClient struct {
	response string
	err      error
	prompts  []string
	streamed bool
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
	f.streamed = true
	if f.err == nil && onChunk != nil {
		// Deliver in two chunks to exercise reassembly.
		half := len(f.response) / 2
		onChunk(f.response[:half])
		onChunk(f.response[half:])
	}
	return f.response, f.err
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "fake-model" }
func (f *fakeClient) Close() error                  { return nil }

func TestApplicationReply(t *testing.T) {
	client := &fakeClient{response: "Lead with your Go experience in the first bullet."}
	svc := NewService(client)

	actx := ApplicationContext{
		Company:        "Initech",
		Title:          "Backend Engineer",
		Status:         "applied",
		JobDescription: "Go, PostgreSQL, AWS",
		ResumeText:     "8 years of Go",
	}
	reply, err := svc.ApplicationReply(context.Background(), actx, nil, "How should I tailor my resume?", nil)
	require.NoError(t, err)
	assert.Equal(t, "Lead with your Go experience in the first bullet.", reply)

	require.Len(t, client.prompts, 1)
	prompt := client.prompts[0]
	assert.Contains(t, prompt, "Initech")
	assert.Contains(t, prompt, "Backend Engineer")
	assert.Contains(t, prompt, "Go, PostgreSQL, AWS")
	assert.Contains(t, prompt, "How should I tailor my resume?")
	assert.False(t, client.streamed)
}

func TestApplicationReply_Streaming(t *testing.T) {
	client := &fakeClient{response: "Practice the system design round."}
	svc := NewService(client)

	var chunks []string
	reply, err := svc.ApplicationReply(context.Background(), ApplicationContext{}, nil, "Interview tips?", func(text string) {
		chunks = append(chunks, text)
	})
	require.NoError(t, err)
	assert.True(t, client.streamed)
	assert.Equal(t, "Practice the system design round.", reply)
	assert.Equal(t, reply, strings.Join(chunks, ""))
}

func TestApplicationReply_EmptyMessage(t *testing.T) {
	svc := NewService(&fakeClient{})

	_, err := svc.ApplicationReply(context.Background(), ApplicationContext{}, nil, "   ", nil)
	assert.Error(t, err)
}

func TestApplicationReply_ClientError(t *testing.T) {
	svc := NewService(&fakeClient{err: errors.New("quota exceeded")})

	_, err := svc.ApplicationReply(context.Background(), ApplicationContext{}, nil, "hello", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coach reply failed")
}

func TestApplicationReply_MissingContextUsesPlaceholders(t *testing.T) {
	client := &fakeClient{response: "ok"}
	svc := NewService(client)

	_, err := svc.ApplicationReply(context.Background(), ApplicationContext{}, nil, "hi", nil)
	require.NoError(t, err)
	prompt := client.prompts[0]
	assert.Contains(t, prompt, "(unknown)")
	assert.Contains(t, prompt, "(no resume attached)")
	assert.NotContains(t, prompt, "{{.")
}

func TestOutreachReply(t *testing.T) {
	client := &fakeClient{response: "Mention the conference you both attended."}
	svc := NewService(client)

	octx := OutreachContext{
		Name:    "Dana Reyes",
		Company: "Globex",
		Title:   "Engineering Manager",
		Warmth:  "warm",
		Interactions: []string{
			"2026-08-10 coffee: talked about their platform team",
			"2026-07-02 email: intro through a mutual friend",
		},
	}
	reply, err := svc.OutreachReply(context.Background(), octx, nil, "What should my follow-up say?", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, reply)

	prompt := client.prompts[0]
	assert.Contains(t, prompt, "Dana Reyes")
	assert.Contains(t, prompt, "warm")
	assert.Contains(t, prompt, "coffee: talked about their platform team")
}

func TestOutreachReply_NoInteractions(t *testing.T) {
	client := &fakeClient{response: "ok"}
	svc := NewService(client)

	_, err := svc.OutreachReply(context.Background(), OutreachContext{Name: "Sam"}, nil, "hi", nil)
	require.NoError(t, err)
	assert.Contains(t, client.prompts[0], "(none logged)")
}

func TestFormatHistory(t *testing.T) {
	history := []Message{
		{Role: "user", Content: "Should I follow up?"},
		{Role: "assistant", Content: "Yes, wait a week first."},
	}
	got := formatHistory(history)
	assert.Equal(t, "User: Should I follow up?\nCoach: Yes, wait a week first.", got)
}

func TestFormatHistory_Empty(t *testing.T) {
	assert.Equal(t, "(no prior messages)", formatHistory(nil))
}

func TestFormatHistory_TrimsToLimit(t *testing.T) {
	history := make([]Message, HistoryLimit+5)
	for i := range history {
		history[i] = Message{Role: "user", Content: "msg"}
	}
	history[len(history)-1].Content = "last"
	history[0].Content = "first"

	got := formatHistory(history)
	assert.Equal(t, HistoryLimit, strings.Count(got, "User:"))
	assert.Contains(t, got, "last")
	assert.NotContains(t, got, "first")
}
