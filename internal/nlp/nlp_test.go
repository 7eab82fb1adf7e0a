package nlp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkl-health/chatbot-backend/internal/apperr"
	"github.com/dkl-health/chatbot-backend/internal/llm"
)

type fakeLLM struct {
	reply string
	err   error
	last  *llm.CompletionRequest
}

func (f *fakeLLM) Complete(_ context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.reply}, nil
}

func (f *fakeLLM) Name() string     { return "fake" }
func (f *fakeLLM) Models() []string { return nil }

func TestClassifyParsesFirstLine(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"plain label", "service", "service"},
		{"upper case with noise", "FAQ\nBecause the user asked a question.", "faq"},
		{"padded", "  appointment  ", "appointment"},
		{"free text passthrough", "Chitchat about the weather", "chitchat about the weather"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(&fakeLLM{reply: tt.reply}, "")
			got, err := c.Classify(context.Background(), "hello")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyFailure(t *testing.T) {
	c := NewClassifier(&fakeLLM{err: errors.New("quota exceeded")}, "")
	_, err := c.Classify(context.Background(), "hello")

	var cerr *apperr.ClassificationError
	require.ErrorAs(t, err, &cerr)
}

func TestClassifyEmptyReplyIsFailure(t *testing.T) {
	c := NewClassifier(&fakeLLM{reply: "   \n"}, "")
	_, err := c.Classify(context.Background(), "hello")

	var cerr *apperr.ClassificationError
	require.ErrorAs(t, err, &cerr)
}

func TestKnownIntent(t *testing.T) {
	assert.True(t, KnownIntent(IntentService))
	assert.True(t, KnownIntent(IntentFAQ))
	assert.True(t, KnownIntent(IntentAppointment))
	assert.False(t, KnownIntent("weather"))
	assert.False(t, KnownIntent(""))
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    string
		wantErr bool
	}{
		{"bare code", "fr", "fr", false},
		{"quoted code", `"sw"`, "sw", false},
		{"code with explanation", "EN\nThe text is English.", "en", false},
		{"sentence reply", "The language is French", "", true},
		{"empty reply", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTranslator(&fakeLLM{reply: tt.reply}, "")
			got, err := tr.DetectLanguage(context.Background(), "bonjour")
			if tt.wantErr {
				var derr *apperr.DetectionError
				require.ErrorAs(t, err, &derr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectLanguageEmptyInput(t *testing.T) {
	f := &fakeLLM{reply: "en"}
	tr := NewTranslator(f, "")

	_, err := tr.DetectLanguage(context.Background(), "   ")

	var derr *apperr.DetectionError
	require.ErrorAs(t, err, &derr)
	assert.Nil(t, f.last, "empty input must not hit the provider")
}

func TestTranslate(t *testing.T) {
	tr := NewTranslator(&fakeLLM{reply: "  Bonjour le monde  "}, "")
	got, err := tr.Translate(context.Background(), "Hello world", "en", "fr")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour le monde", got)
}

func TestTranslateFailure(t *testing.T) {
	tr := NewTranslator(&fakeLLM{err: errors.New("timeout")}, "")
	_, err := tr.Translate(context.Background(), "Hello", "en", "fr")

	var terr *apperr.TranslationError
	require.ErrorAs(t, err, &terr)
}
