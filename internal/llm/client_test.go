package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientSelection(t *testing.T) {
	tests := []struct {
		name         string
		preferred    Provider
		openAIKey    string
		anthropicKey string
		wantProvider string
		wantErr      bool
	}{
		{"openai preferred with key", ProviderOpenAI, "sk-1", "", "openai", false},
		{"anthropic preferred with key", ProviderAnthropic, "", "ak-1", "anthropic", false},
		{"anthropic preferred falls back to openai", ProviderAnthropic, "sk-1", "", "openai", false},
		{"openai preferred falls back to anthropic", ProviderOpenAI, "", "ak-1", "anthropic", false},
		{"unknown provider uses any key", Provider("gemini"), "sk-1", "", "openai", false},
		{"no keys at all", ProviderOpenAI, "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.preferred, tt.openAIKey, tt.anthropicKey)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantProvider, client.Name())
			assert.NotEmpty(t, client.Models())
		})
	}
}
