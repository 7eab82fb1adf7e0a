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

const (
	detectPrompt = `Identify the language of the following text. Respond with only the two-letter ISO 639-1 code, for example "en", "fr" or "sw". Text: %s`

	translatePrompt = `Translate the following text from %s to %s. Respond with only the translation, nothing else.

%s`
)

// Translator wraps language detection and bidirectional translation. It is
// stateless and performs no retries; callers own the fallback on failure.
type Translator struct {
	client llm.Client
	model  string
}

// NewTranslator creates a new translation gateway.
func NewTranslator(client llm.Client, model string) *Translator {
	return &Translator{client: client, model: model}
}

// DetectLanguage returns the ISO 639-1 code for text. An ambiguous or empty
// result is a DetectionError; the caller assumes the default language.
func (t *Translator) DetectLanguage(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &apperr.DetectionError{Cause: fmt.Errorf("empty input")}
	}

	start := time.Now()
	resp, err := t.client.Complete(ctx, &llm.CompletionRequest{
		Model: t.model,
		Messages: []llm.ChatMessage{
			{Role: "user", Content: fmt.Sprintf(detectPrompt, text)},
		},
		MaxTokens: 8,
	})
	if err != nil {
		metrics.LLMCallDuration.WithLabelValues("detect", "error").Observe(time.Since(start).Seconds())
		return "", &apperr.DetectionError{Cause: err}
	}
	metrics.LLMCallDuration.WithLabelValues("detect", "success").Observe(time.Since(start).Seconds())

	code := firstLine(resp.Content)
	code = strings.Trim(code, `"'.`)
	if !validLanguageCode(code) {
		return "", &apperr.DetectionError{Cause: fmt.Errorf("ambiguous detection result %q", resp.Content)}
	}

	return code, nil
}

// Translate translates text between two language codes.
func (t *Translator) Translate(ctx context.Context, text, from, to string) (string, error) {
	start := time.Now()
	resp, err := t.client.Complete(ctx, &llm.CompletionRequest{
		Model: t.model,
		Messages: []llm.ChatMessage{
			{Role: "user", Content: fmt.Sprintf(translatePrompt, from, to, text)},
		},
		MaxTokens: 1024,
	})
	if err != nil {
		metrics.LLMCallDuration.WithLabelValues("translate", "error").Observe(time.Since(start).Seconds())
		return "", &apperr.TranslationError{Cause: err}
	}
	metrics.LLMCallDuration.WithLabelValues("translate", "success").Observe(time.Since(start).Seconds())

	out := strings.TrimSpace(resp.Content)
	if out == "" {
		return "", &apperr.TranslationError{Cause: fmt.Errorf("empty reply from %s", t.client.Name())}
	}

	return out, nil
}

func validLanguageCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for _, r := range code {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
