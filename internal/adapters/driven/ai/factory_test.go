package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name     string
		settings *EmbeddingSettings
		wantNil  bool
		wantErr  bool
	}{
		{
			name:     "not configured returns nil",
			settings: &EmbeddingSettings{},
			wantNil:  true,
		},
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantNil:  true,
		},
		{
			name:     "ollama",
			settings: &EmbeddingSettings{Provider: ProviderOllama, Model: "nomic-embed-text"},
		},
		{
			name:     "openai",
			settings: &EmbeddingSettings{Provider: ProviderOpenAI, APIKey: "sk-test"},
		},
		{
			name:     "openai without key fails",
			settings: &EmbeddingSettings{Provider: ProviderOpenAI},
			wantErr:  true,
		},
		{
			name:     "anthropic has no embeddings",
			settings: &EmbeddingSettings{Provider: ProviderAnthropic, APIKey: "sk-test"},
			wantErr:  true,
		},
		{
			name:     "unknown provider fails",
			settings: &EmbeddingSettings{Provider: "bedrock"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
			} else {
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *LLMSettings
		wantNil  bool
		wantErr  bool
	}{
		{
			name:     "not configured returns nil",
			settings: &LLMSettings{},
			wantNil:  true,
		},
		{
			name:     "ollama",
			settings: &LLMSettings{Provider: ProviderOllama},
		},
		{
			name:     "openai",
			settings: &LLMSettings{Provider: ProviderOpenAI, APIKey: "sk-test"},
		},
		{
			name:     "anthropic",
			settings: &LLMSettings{Provider: ProviderAnthropic, APIKey: "sk-test"},
		},
		{
			name:     "anthropic without key fails",
			settings: &LLMSettings{Provider: ProviderAnthropic},
			wantErr:  true,
		},
		{
			name:     "unknown provider fails",
			settings: &LLMSettings{Provider: "vertex"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
			} else {
				assert.NotNil(t, svc)
				assert.NotEmpty(t, svc.ModelName())
			}
		})
	}
}

func TestSettingsFromConfig(t *testing.T) {
	store := stubConfig{
		strings: map[string]string{
			"embedding.provider": "ollama",
			"embedding.model":    "nomic-embed-text",
			"llm.provider":       "anthropic",
			"llm.api_key":        "sk-test",
		},
		ints: map[string]int{
			"embedding.dimensions": 768,
		},
	}

	embed := EmbeddingSettingsFromConfig(store)
	assert.Equal(t, ProviderOllama, embed.Provider)
	assert.Equal(t, "nomic-embed-text", embed.Model)
	assert.Equal(t, 768, embed.Dimensions)
	assert.True(t, embed.IsConfigured())

	llm := LLMSettingsFromConfig(store)
	assert.Equal(t, ProviderAnthropic, llm.Provider)
	assert.Equal(t, "sk-test", llm.APIKey)
	assert.True(t, llm.IsConfigured())
}

// stubConfig is a minimal in-memory driven.ConfigStore for factory tests.
type stubConfig struct {
	strings map[string]string
	ints    map[string]int
}

func (s stubConfig) Get(key string) (any, bool) {
	if v, ok := s.strings[key]; ok {
		return v, true
	}
	if v, ok := s.ints[key]; ok {
		return v, true
	}
	return nil, false
}

func (s stubConfig) GetString(key string) string        { return s.strings[key] }
func (s stubConfig) GetInt(key string) int              { return s.ints[key] }
func (s stubConfig) GetFloat(key string) float64        { return float64(s.ints[key]) }
func (s stubConfig) GetBool(key string) bool            { return false }
func (s stubConfig) GetStringSlice(key string) []string { return nil }
func (s stubConfig) Set(key string, value any) error    { return nil }
func (s stubConfig) Save() error                        { return nil }
func (s stubConfig) Load() error                        { return nil }
func (s stubConfig) Path() string                       { return "" }
