package models

import (
	"encoding/json"
)

// Provider identifies the external text-generation API behind a persona
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// DisplayName returns the human-facing provider name used in error messages
func (p Provider) DisplayName() string {
	switch p {
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderGemini:
		return "Gemini"
	default:
		return string(p)
	}
}

// Persona represents a chatbot identity bound to one provider
type Persona struct {
	ID           string   `json:"id" koanf:"id"`
	Name         string   `json:"name" koanf:"name"`
	Description  string   `json:"description" koanf:"description"`
	Avatar       string   `json:"avatar" koanf:"avatar"`
	Color        string   `json:"color" koanf:"color"`
	Provider     Provider `json:"provider" koanf:"provider"`
	SystemPrompt string   `json:"systemPrompt" koanf:"system_prompt"`
}

// PersonaSummary is the public view of a persona, without its system prompt
type PersonaSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Avatar      string   `json:"avatar"`
	Color       string   `json:"color"`
	Provider    Provider `json:"provider"`
}

// Summary strips the system prompt from a persona
func (p Persona) Summary() PersonaSummary {
	return PersonaSummary{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Avatar:      p.Avatar,
		Color:       p.Color,
		Provider:    p.Provider,
	}
}

// Role is the author of a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a conversation. Messages are never mutated after creation.
type Message struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
	PersonaID string `json:"personaId,omitempty"`
}

// UnmarshalJSON accepts the legacy "persona" key in place of "personaId"
func (m *Message) UnmarshalJSON(data []byte) error {
	type plain Message
	var aux struct {
		plain
		LegacyPersona string `json:"persona"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*m = Message(aux.plain)
	if m.PersonaID == "" {
		m.PersonaID = aux.LegacyPersona
	}
	return nil
}

// ChatRequest is a validated request into the chat mediator
type ChatRequest struct {
	Message   string    `json:"message"`
	PersonaID string    `json:"personaId"`
	History   []Message `json:"history"`
}

// ChatResponse is the uniform envelope returned by the chat endpoint
type ChatResponse struct {
	Success   bool     `json:"success"`
	Response  string   `json:"response,omitempty"`
	Error     string   `json:"error,omitempty"`
	Details   string   `json:"details,omitempty"`
	PersonaID string   `json:"personaId,omitempty"`
	Provider  Provider `json:"provider,omitempty"`
}
