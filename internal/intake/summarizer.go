package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

const systemPrompt = "You are a clinical intake assistant for a women's health booking service. " +
	"Summarise the patient's questionnaire answers for the doctor in plain clinical language. " +
	"Never diagnose and never give the patient medical advice. " +
	"Respond with a JSON object containing exactly these keys: " +
	`"summary" (2-4 sentences), "recommendation" (one sentence of preparation advice for the doctor), ` +
	`"priority" (one of "routine", "soon", "urgent").`

// Priority buckets a questionnaire submission for triage display.
const (
	PriorityRoutine = "routine"
	PrioritySoon    = "soon"
	PriorityUrgent  = "urgent"
)

// Answer is a single question/answer pair from the intake questionnaire.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Request carries a patient's structured questionnaire submission.
type Request struct {
	Reason  string   `json:"reason,omitempty"`
	Answers []Answer `json:"answers"`
}

// Summary is the doctor-facing digest of a questionnaire submission.
type Summary struct {
	Summary        string `json:"summary"`
	Recommendation string `json:"recommendation,omitempty"`
	Priority       string `json:"priority"`
	Fallback       bool   `json:"fallback,omitempty"`
}

// ErrNoAnswers is returned when a submission contains nothing to summarise.
var ErrNoAnswers = errors.New("intake: no answers provided")

type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Summarizer turns questionnaire answers into a doctor-facing summary via
// OpenAI, degrading to a deterministic template when the provider misbehaves.
type Summarizer struct {
	client  chatClient
	model   string
	timeout time.Duration
	logger  *logging.Logger
}

// NewSummarizer builds a summarizer. A nil client puts it permanently in
// fallback mode, which keeps local dev working without an API key.
func NewSummarizer(client chatClient, model string, logger *logging.Logger) *Summarizer {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Summarizer{
		client:  client,
		model:   model,
		timeout: 15 * time.Second,
		logger:  logger,
	}
}

// WithTimeout overrides the per-call provider timeout.
func (s *Summarizer) WithTimeout(timeout time.Duration) *Summarizer {
	if timeout > 0 {
		s.timeout = timeout
	}
	return s
}

// Summarize produces a digest of the submission. Provider failures never
// surface to the caller; the deterministic fallback is returned instead so
// the booking flow is never blocked on OpenAI.
func (s *Summarizer) Summarize(ctx context.Context, req Request) (*Summary, error) {
	if len(req.Answers) == 0 && strings.TrimSpace(req.Reason) == "" {
		return nil, ErrNoAnswers
	}
	if s.client == nil {
		return fallbackSummary(req), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: formatAnswers(req)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		s.logger.Warn("intake summarization failed, using fallback", "error", err)
		return fallbackSummary(req), nil
	}
	if len(resp.Choices) == 0 {
		s.logger.Warn("intake summarization returned no choices, using fallback")
		return fallbackSummary(req), nil
	}

	summary, err := parseSummary(resp.Choices[0].Message.Content)
	if err != nil {
		s.logger.Warn("intake summary unparseable, using fallback", "error", err)
		return fallbackSummary(req), nil
	}
	return summary, nil
}

func formatAnswers(req Request) string {
	var b strings.Builder
	b.WriteString("Patient questionnaire:\n")
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		fmt.Fprintf(&b, "Reason for consultation: %s\n", reason)
	}
	for _, a := range req.Answers {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n", strings.TrimSpace(a.Question), strings.TrimSpace(a.Answer))
	}
	return b.String()
}

func parseSummary(content string) (*Summary, error) {
	// Models sometimes wrap JSON in a code fence despite the response format.
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var out Summary
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &out); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	if strings.TrimSpace(out.Summary) == "" {
		return nil, errors.New("summary field empty")
	}
	switch out.Priority {
	case PriorityRoutine, PrioritySoon, PriorityUrgent:
	default:
		out.Priority = PriorityRoutine
	}
	return &out, nil
}

// fallbackSummary is deterministic: the same submission always renders the
// same text, so the doctor sees a stable digest even when OpenAI is down.
func fallbackSummary(req Request) *Summary {
	var b strings.Builder
	b.WriteString("Patient-reported intake")
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		fmt.Fprintf(&b, " for %s", reason)
	}
	b.WriteString(".")
	for _, a := range req.Answers {
		answer := strings.TrimSpace(a.Answer)
		if answer == "" {
			continue
		}
		fmt.Fprintf(&b, " %s: %s.", strings.TrimSpace(a.Question), answer)
	}
	return &Summary{
		Summary:        b.String(),
		Recommendation: "Review the patient's answers before the consultation.",
		Priority:       PriorityRoutine,
		Fallback:       true,
	}
}
