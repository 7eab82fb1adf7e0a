// Package nlp wraps the remote language model as the two narrow capabilities
// the message pipeline needs: intent classification and translation.
package nlp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dkl-health/chatbot-backend/internal/apperr"
	"github.com/dkl-health/chatbot-backend/internal/llm"
	"github.com/dkl-health/chatbot-backend/pkg/metrics"
)

// Known intent labels. Anything else the model replies is passed through as
// free text and handled by the pipeline's default branch.
const (
	IntentService     = "service"
	IntentFAQ         = "faq"
	IntentAppointment = "appointment"
)

const classifyPrompt = `Classify the intent of this user query for a lab chatbot. Possible intents: "service" (for lab tests/services), "faq" (general questions), "appointment" (booking). Respond with only the intent word. Query: %s`

// Classifier assigns a coarse intent to a user message via a single prompt
// against the remote model.
type Classifier struct {
	client llm.Client
	model  string
}

// NewClassifier creates a new intent classifier.
func NewClassifier(client llm.Client, model string) *Classifier {
	return &Classifier{client: client, model: model}
}

// KnownIntent reports whether label is one of the closed label set.
func KnownIntent(label string) bool {
	switch label {
	case IntentService, IntentFAQ, IntentAppointment:
		return true
	}
	return false
}

// Classify returns the intent label for text. The first line of the model
// reply, lower-cased and trimmed, is the label; replies outside the known set
// are returned verbatim for the caller to display. Returns a
// ClassificationError when the remote call itself fails.
func (c *Classifier) Classify(ctx context.Context, text string) (string, error) {
	start := time.Now()

	resp, err := c.client.Complete(ctx, &llm.CompletionRequest{
		Model: c.model,
		Messages: []llm.ChatMessage{
			{Role: "user", Content: fmt.Sprintf(classifyPrompt, text)},
		},
		MaxTokens: 16,
	})
	if err != nil {
		metrics.LLMCallDuration.WithLabelValues("classify", "error").Observe(time.Since(start).Seconds())
		return "", &apperr.ClassificationError{Cause: err}
	}
	metrics.LLMCallDuration.WithLabelValues("classify", "success").Observe(time.Since(start).Seconds())

	label := firstLine(resp.Content)
	if label == "" {
		return "", &apperr.ClassificationError{Cause: fmt.Errorf("empty reply from %s", c.client.Name())}
	}

	return label, nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.ToLower(strings.TrimSpace(line))
}
