package aiconnectors

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"github.com/personachat/pkg/models"
)

// GeminiAdapter sends the whole conversation to Gemini as one context string
type GeminiAdapter struct {
	connector
}

// NewGeminiAdapter creates a Gemini adapter. Missing model settings fall back to the defaults.
func NewGeminiAdapter(options ConnectorOptions) *GeminiAdapter {
	options.Provider = models.ProviderGemini
	options.ModelConfig = withDefaults(models.ProviderGemini, options.ModelConfig)

	return &GeminiAdapter{connector: connector{
		options: options,
		factory: createGeminiModel,
	}}
}

// WithModel makes the adapter use m instead of building a client from its options
func (a *GeminiAdapter) WithModel(m llms.Model) *GeminiAdapter {
	a.setModel(m)
	return a
}

// GenerateResponse implements Adapter
func (a *GeminiAdapter) GenerateResponse(ctx context.Context, systemPrompt string, history []models.Message, userMessage string) (string, error) {
	recent := Window(history, HistoryWindow)
	prompt := BuildGeminiPrompt(systemPrompt, recent, userMessage)

	log.Info().
		Str("provider", string(models.ProviderGemini)).
		Str("model", a.options.ModelConfig.Model).
		Int("messages", len(recent)).
		Int("system_prompt_len", len(systemPrompt)).
		Msg("Gemini request")

	llm, err := a.model(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize Gemini client")
		return "", classifyGemini(err)
	}

	resp, err := llm.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)},
		callOptions(a.options.ModelConfig)...)
	if err != nil {
		log.Error().Err(err).Str("provider", string(models.ProviderGemini)).Msg("Gemini API error")
		return "", classifyGemini(err)
	}

	text, err := finish(models.ProviderGemini, firstText(resp))
	if err != nil {
		return "", err
	}

	log.Info().Int("response_len", len(text)).Msg("Gemini response generated successfully")
	return text, nil
}

// BuildGeminiPrompt renders the system prompt and the transcript into a single
// Human/Assistant context ending with an open assistant turn
func BuildGeminiPrompt(systemPrompt string, history []models.Message, userMessage string) string {
	var b strings.Builder

	b.WriteString(systemPrompt)
	b.WriteString("\n\nConversation History:\n")

	for _, msg := range history {
		speaker := "Assistant"
		if msg.Role == models.RoleUser {
			speaker = "Human"
		}
		b.WriteString(speaker)
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}

	b.WriteString("\nHuman: ")
	b.WriteString(userMessage)
	b.WriteString("\nAssistant:")

	return b.String()
}
