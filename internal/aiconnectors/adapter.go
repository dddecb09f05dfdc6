package aiconnectors

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"

	"github.com/personachat/pkg/models"
)

// Adapter wraps one external text-generation API behind a uniform call
type Adapter interface {
	// Provider returns the provider this adapter talks to
	Provider() models.Provider

	// CredentialName returns the environment variable that configures the adapter
	CredentialName() string

	// IsConfigured reports whether the provider's credential is present
	IsConfigured() bool

	// GenerateResponse produces a reply for userMessage given the persona's
	// system prompt and the conversation so far
	GenerateResponse(ctx context.Context, systemPrompt string, history []models.Message, userMessage string) (string, error)
}

// Window returns the last n entries of history, oldest first
func Window(history []models.Message, n int) []models.Message {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

type modelFactory func(ctx context.Context, options ConnectorOptions) (llms.Model, error)

// connector holds what both adapters share: options and a lazily built model
type connector struct {
	options ConnectorOptions
	factory modelFactory

	mu  sync.Mutex
	llm llms.Model
}

func (c *connector) Provider() models.Provider {
	return c.options.Provider
}

func (c *connector) CredentialName() string {
	return CredentialName(c.options.Provider)
}

func (c *connector) IsConfigured() bool {
	return c.options.APIKey != ""
}

// setModel replaces the underlying model; used to inject fakes
func (c *connector) setModel(m llms.Model) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.llm = m
	c.factory = nil
}

func (c *connector) model(ctx context.Context) (llms.Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.llm != nil {
		return c.llm, nil
	}
	if c.factory == nil {
		return nil, fmt.Errorf("%s model not initialized", c.options.Provider.DisplayName())
	}

	m, err := c.factory(ctx, c.options)
	if err != nil {
		return nil, err
	}
	c.llm = m
	return m, nil
}

// firstText extracts the first choice of a langchain response
func firstText(resp *llms.ContentResponse) string {
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return ""
	}
	return resp.Choices[0].Content
}

// finish enforces the non-empty, trimmed result contract
func finish(provider models.Provider, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", newEmptyResponseError(provider)
	}
	return text, nil
}
