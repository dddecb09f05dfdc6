package aiconnectors

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/personachat/pkg/models"
)

// HistoryWindow is the fixed number of trailing messages sent to a provider for context
const HistoryWindow = 10

// ModelConfig contains the configuration for a specific model
type ModelConfig struct {
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Model       string  `json:"model,omitempty"`
}

// ConnectorOptions contains options for creating an adapter
type ConnectorOptions struct {
	Provider    models.Provider `json:"provider"`
	APIKey      string          `json:"api_key"`
	BaseURL     string          `json:"base_url,omitempty"`
	ModelConfig ModelConfig     `json:"model_config,omitempty"`
}

// NewAdapter creates the adapter for the provider named in options
func NewAdapter(options ConnectorOptions) (Adapter, error) {
	log.Debug().
		Str("provider", string(options.Provider)).
		Str("model", options.ModelConfig.Model).
		Bool("configured", options.APIKey != "").
		Msg("Creating provider adapter")

	switch options.Provider {
	case models.ProviderOpenAI:
		return NewOpenAIAdapter(options), nil
	case models.ProviderGemini:
		return NewGeminiAdapter(options), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", options.Provider)
	}
}

// GetDefaultModel returns the default model for a provider
func GetDefaultModel(provider models.Provider) string {
	switch provider {
	case models.ProviderOpenAI:
		return "gpt-4"
	case models.ProviderGemini:
		return "gemini-1.5-flash"
	default:
		return ""
	}
}

// DefaultModelConfig returns the generation parameters used when none are configured
func DefaultModelConfig(provider models.Provider) ModelConfig {
	switch provider {
	case models.ProviderOpenAI:
		return ModelConfig{Model: GetDefaultModel(provider), MaxTokens: 1000, Temperature: 0.7}
	case models.ProviderGemini:
		return ModelConfig{Model: GetDefaultModel(provider)}
	default:
		return ModelConfig{}
	}
}

// CredentialName returns the environment variable holding a provider's API key
func CredentialName(provider models.Provider) string {
	switch provider {
	case models.ProviderOpenAI:
		return "OPENAI_API_KEY"
	case models.ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// Helper functions to create models for specific providers

func createOpenAIModel(_ context.Context, options ConnectorOptions) (llms.Model, error) {
	opts := []openai.Option{
		openai.WithModel(options.ModelConfig.Model),
		openai.WithToken(options.APIKey),
	}

	// Add custom base URL if provided
	if options.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(options.BaseURL))
	}

	return openai.New(opts...)
}

func createGeminiModel(ctx context.Context, options ConnectorOptions) (llms.Model, error) {
	log.Debug().
		Str("api_key_prefix", MaskKey(options.APIKey)).
		Str("model", options.ModelConfig.Model).
		Msg("Creating Gemini model with options")

	opts := []googleai.Option{
		googleai.WithAPIKey(options.APIKey),
		googleai.WithDefaultModel(options.ModelConfig.Model),
	}
	if options.ModelConfig.MaxTokens > 0 {
		opts = append(opts, googleai.WithDefaultMaxTokens(options.ModelConfig.MaxTokens))
	}

	model, err := googleai.New(ctx, opts...)
	if err != nil {
		log.Error().Err(err).
			Str("model", options.ModelConfig.Model).
			Str("error_type", fmt.Sprintf("%T", err)).
			Msg("Failed to create Gemini model")
		return nil, fmt.Errorf("failed to create Gemini model: %w", err)
	}

	return model, nil
}

// callOptions turns the model configuration into per-call langchain options
func callOptions(cfg ModelConfig) []llms.CallOption {
	var opts []llms.CallOption
	if cfg.Model != "" {
		opts = append(opts, llms.WithModel(cfg.Model))
	}
	if cfg.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(cfg.MaxTokens))
	}
	if cfg.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(cfg.Temperature))
	}
	return opts
}

// MaskKey returns a short prefix of a secret, safe for logs
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	return key[:min(len(key), 5)] + "..."
}
