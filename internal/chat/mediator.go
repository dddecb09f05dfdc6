package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/personachat/internal/aiconnectors"
	"github.com/personachat/internal/personas"
	"github.com/personachat/pkg/models"
)

// DefaultMaxMessageLength is the longest accepted user message, in characters
const DefaultMaxMessageLength = 2000

// Options tunes the mediator
type Options struct {
	MaxMessageLength int
}

// Mediator validates chat requests, resolves the persona and dispatches to the
// matching provider adapter. It holds no mutable state and is safe for concurrent use.
type Mediator struct {
	registry *personas.Registry
	adapters map[models.Provider]aiconnectors.Adapter
	opts     Options
}

// NewMediator creates a Mediator over the given registry and adapters
func NewMediator(registry *personas.Registry, adapters []aiconnectors.Adapter, opts Options) *Mediator {
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = DefaultMaxMessageLength
	}

	byProvider := make(map[models.Provider]aiconnectors.Adapter, len(adapters))
	for _, a := range adapters {
		byProvider[a.Provider()] = a
	}

	return &Mediator{
		registry: registry,
		adapters: byProvider,
		opts:     opts,
	}
}

// Result is the outcome of one chat request: either a response or a classified error
type Result struct {
	Response  string
	PersonaID string
	Provider  models.Provider
	Err       *Error
}

// OK reports whether the request succeeded
func (r Result) OK() bool {
	return r.Err == nil
}

func failed(err *Error) Result {
	return Result{Err: err}
}

// Reply runs the request through persona resolution, length check, provider
// dispatch and response validation, in that order
func (m *Mediator) Reply(ctx context.Context, req models.ChatRequest) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("persona", req.PersonaID).Msg("Chat request panicked")
			result = failed(internalError("An unexpected error occurred", fmt.Errorf("panic: %v", r)))
		}
	}()

	if req.Message == "" {
		return failed(validationError(msgMessageRequired))
	}
	if req.PersonaID == "" {
		return failed(validationError(msgPersonaRequired))
	}

	persona, ok := m.registry.GetByID(req.PersonaID)
	if !ok {
		return failed(notFoundError("Persona '%s' not found", req.PersonaID))
	}

	log.Info().
		Str("persona", persona.Name).
		Str("provider", string(persona.Provider)).
		Int("message_length", utf8.RuneCountInString(req.Message)).
		Int("history_length", len(req.History)).
		Msg("Processing chat request")

	if utf8.RuneCountInString(req.Message) > m.opts.MaxMessageLength {
		return failed(validationError("Message is too long. Please keep it under %d characters.", m.opts.MaxMessageLength))
	}

	adapter, known := m.adapters[persona.Provider]
	if !known {
		return failed(validationError("Unsupported AI provider: %s", persona.Provider))
	}
	if !adapter.IsConfigured() {
		return failed(configurationError("%s is not configured. Please set your %s environment variable.",
			persona.Provider.DisplayName(), adapter.CredentialName()))
	}

	text, err := adapter.GenerateResponse(ctx, persona.SystemPrompt, req.History, req.Message)
	if err != nil {
		log.Error().Err(err).
			Str("persona", persona.ID).
			Str("provider", string(persona.Provider)).
			Msg("Provider call failed")

		var ue *aiconnectors.UpstreamError
		if errors.As(err, &ue) {
			return failed(upstreamError(err))
		}
		return failed(internalError(err.Error(), err))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return failed(internalError("Invalid response generated from AI provider", nil))
	}

	log.Info().
		Str("persona", persona.Name).
		Str("provider", string(persona.Provider)).
		Int("response_length", len(text)).
		Msg("Successfully generated response")

	return Result{
		Response:  text,
		PersonaID: persona.ID,
		Provider:  persona.Provider,
	}
}

// Envelope maps a result to the outward HTTP status and response body. In
// development mode failures carry the wrapped error chain in Details.
func Envelope(result Result, devMode bool) (int, models.ChatResponse) {
	if result.OK() {
		return http.StatusOK, models.ChatResponse{
			Success:   true,
			Response:  result.Response,
			PersonaID: result.PersonaID,
			Provider:  result.Provider,
		}
	}

	resp := models.ChatResponse{
		Success: false,
		Error:   result.Err.Message,
	}
	if devMode {
		resp.Details = details(result.Err)
	}
	return result.Err.Kind.Status(), resp
}

func details(e *Error) string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %+v", e.Kind, e.Err)
}
