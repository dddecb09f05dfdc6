package aiconnectors

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"github.com/personachat/pkg/models"
)

// OpenAIAdapter sends role-tagged chat completions to OpenAI
type OpenAIAdapter struct {
	connector
}

// NewOpenAIAdapter creates an OpenAI adapter. Missing model settings fall back to the defaults.
func NewOpenAIAdapter(options ConnectorOptions) *OpenAIAdapter {
	options.Provider = models.ProviderOpenAI
	options.ModelConfig = withDefaults(models.ProviderOpenAI, options.ModelConfig)

	return &OpenAIAdapter{connector: connector{
		options: options,
		factory: createOpenAIModel,
	}}
}

// WithModel makes the adapter use m instead of building a client from its options
func (a *OpenAIAdapter) WithModel(m llms.Model) *OpenAIAdapter {
	a.setModel(m)
	return a
}

// GenerateResponse implements Adapter
func (a *OpenAIAdapter) GenerateResponse(ctx context.Context, systemPrompt string, history []models.Message, userMessage string) (string, error) {
	recent := Window(history, HistoryWindow)
	messages := BuildOpenAIMessages(systemPrompt, recent, userMessage)

	log.Info().
		Str("provider", string(models.ProviderOpenAI)).
		Str("model", a.options.ModelConfig.Model).
		Int("messages", len(messages)).
		Int("system_prompt_len", len(systemPrompt)).
		Msg("OpenAI request")

	llm, err := a.model(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize OpenAI client")
		return "", classifyOpenAI(err)
	}

	resp, err := llm.GenerateContent(ctx, messages, callOptions(a.options.ModelConfig)...)
	if err != nil {
		log.Error().Err(err).Str("provider", string(models.ProviderOpenAI)).Msg("OpenAI API error")
		return "", classifyOpenAI(err)
	}

	text, err := finish(models.ProviderOpenAI, firstText(resp))
	if err != nil {
		return "", err
	}

	log.Info().Int("response_len", len(text)).Msg("OpenAI response generated successfully")
	return text, nil
}

// BuildOpenAIMessages lays out the system prompt, the history and the new user turn
// as langchain chat messages. An empty system prompt is left out.
func BuildOpenAIMessages(systemPrompt string, history []models.Message, userMessage string) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(history)+2)

	if systemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	}

	for _, msg := range history {
		role := llms.ChatMessageTypeAI
		if msg.Role == models.RoleUser {
			role = llms.ChatMessageTypeHuman
		}
		messages = append(messages, llms.TextParts(role, msg.Content))
	}

	return append(messages, llms.TextParts(llms.ChatMessageTypeHuman, userMessage))
}

func withDefaults(provider models.Provider, cfg ModelConfig) ModelConfig {
	def := DefaultModelConfig(provider)
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = def.Temperature
	}
	return cfg
}
