// Package coach powers the two chat assistants: a job-application coach
// grounded in an application and its resume, and a networking outreach
// coach grounded in a contact and its interaction log.
package coach

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/jobtrack/internal/llm"
	"github.com/jonathan/jobtrack/internal/prompts"
)

// HistoryLimit is how many prior messages are folded into the prompt.
// Older messages stay in the store but the model never sees them.
const HistoryLimit = 20

// maxContextChars caps each context block sent to the model.
const maxContextChars = 12000

// Message is one prior turn of a chat thread.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// ApplicationContext is what the application coach knows about the
// application under discussion.
type ApplicationContext struct {
	Company        string
	Title          string
	Status         string
	JobDescription string
	ResumeText     string
}

// OutreachContext is what the outreach coach knows about the contact.
type OutreachContext struct {
	Name         string
	Company      string
	Title        string
	Warmth       string
	Interactions []string // pre-formatted, newest first
}

// Service generates coach replies.
type Service struct {
	client llm.Client
}

// NewService creates a coach Service backed by the given LLM client.
func NewService(client llm.Client) *Service {
	return &Service{client: client}
}

// ApplicationReply generates the application coach's reply to message.
// When onChunk is non-nil the reply is streamed through it as it arrives;
// either way the full reply is returned.
func (s *Service) ApplicationReply(ctx context.Context, actx ApplicationContext, history []Message, message string, onChunk func(string)) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("message is empty")
	}
	return s.reply(ctx, buildApplicationPrompt(actx, history, message), onChunk)
}

// OutreachReply generates the outreach coach's reply to message. Same
// streaming contract as ApplicationReply.
func (s *Service) OutreachReply(ctx context.Context, octx OutreachContext, history []Message, message string, onChunk func(string)) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("message is empty")
	}
	return s.reply(ctx, buildOutreachPrompt(octx, history, message), onChunk)
}

func (s *Service) reply(ctx context.Context, prompt string, onChunk func(string)) (string, error) {
	var text string
	var err error
	if onChunk != nil {
		text, err = s.client.GenerateStream(ctx, prompt, llm.TierLite, onChunk)
	} else {
		text, err = s.client.GenerateContent(ctx, prompt, llm.TierLite)
	}
	if err != nil {
		return "", fmt.Errorf("coach reply failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func buildApplicationPrompt(actx ApplicationContext, history []Message, message string) string {
	template := prompts.MustGet("coach.json", "application-coach")
	return prompts.Format(template, map[string]string{
		"Company":        orUnknown(actx.Company),
		"Title":          orUnknown(actx.Title),
		"Status":         orUnknown(actx.Status),
		"JobDescription": truncate(orDefault(actx.JobDescription, "(not provided)"), maxContextChars),
		"ResumeText":     truncate(orDefault(actx.ResumeText, "(no resume attached)"), maxContextChars),
		"History":        formatHistory(history),
		"Message":        message,
	})
}

func buildOutreachPrompt(octx OutreachContext, history []Message, message string) string {
	interactions := "(none logged)"
	if len(octx.Interactions) > 0 {
		interactions = "- " + strings.Join(octx.Interactions, "\n- ")
	}
	template := prompts.MustGet("coach.json", "outreach-coach")
	return prompts.Format(template, map[string]string{
		"Name":         orUnknown(octx.Name),
		"Company":      orUnknown(octx.Company),
		"Title":        orUnknown(octx.Title),
		"Warmth":       orDefault(octx.Warmth, "cold"),
		"Interactions": truncate(interactions, maxContextChars),
		"History":      formatHistory(history),
		"Message":      message,
	})
}

// formatHistory renders prior turns oldest first, trimmed to HistoryLimit.
func formatHistory(history []Message) string {
	if len(history) == 0 {
		return "(no prior messages)"
	}
	if len(history) > HistoryLimit {
		history = history[len(history)-HistoryLimit:]
	}
	var sb strings.Builder
	for _, msg := range history {
		label := "User"
		if msg.Role == "assistant" {
			label = "Coach"
		}
		sb.WriteString(label)
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func orUnknown(s string) string {
	return orDefault(s, "(unknown)")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
