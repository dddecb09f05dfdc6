package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageUnmarshalLegacyPersonaKey(t *testing.T) {
	var msg Message
	err := json.Unmarshal([]byte(`{"id":"m1","role":"assistant","content":"hi","timestamp":42,"persona":"hitesh"}`), &msg)
	require.NoError(t, err)

	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, int64(42), msg.Timestamp)
	assert.Equal(t, "hitesh", msg.PersonaID)
}

func TestMessageUnmarshalPrefersPersonaID(t *testing.T) {
	var msg Message
	err := json.Unmarshal([]byte(`{"role":"assistant","content":"hi","personaId":"piyush","persona":"hitesh"}`), &msg)
	require.NoError(t, err)
	assert.Equal(t, "piyush", msg.PersonaID)
}

func TestMessageMarshalOmitsEmptyPersona(t *testing.T) {
	data, err := json.Marshal(Message{ID: "m1", Role: RoleUser, Content: "hello", Timestamp: 1})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "personaId")
}

func TestPersonaSummaryDropsSystemPrompt(t *testing.T) {
	p := Persona{ID: "x", Name: "X", Provider: ProviderGemini, SystemPrompt: "secret"}
	data, err := json.Marshal(p.Summary())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.Contains(t, string(data), `"provider":"gemini"`)
}

func TestProviderDisplayName(t *testing.T) {
	assert.Equal(t, "OpenAI", ProviderOpenAI.DisplayName())
	assert.Equal(t, "Gemini", ProviderGemini.DisplayName())
	assert.Equal(t, "claude", Provider("claude").DisplayName())
}
