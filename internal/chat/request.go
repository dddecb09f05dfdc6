package chat

import (
	"bytes"
	"encoding/json"

	"github.com/personachat/pkg/models"
)

// Validation messages returned before any persona lookup happens
const (
	msgInvalidBody      = "Invalid JSON request body"
	msgMessageRequired  = "Message is required and must be a string"
	msgPersonaRequired  = "Persona ID is required and must be a string"
	msgHistoryMalformed = "History must be an array of messages"
)

// DecodeRequest parses a raw request body into a typed ChatRequest. The checks run
// in a fixed order: message, then persona id, then history.
func DecodeRequest(body []byte) (models.ChatRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return models.ChatRequest{}, validationError(msgInvalidBody)
	}

	message, ok := stringField(raw, "message")
	if !ok || message == "" {
		return models.ChatRequest{}, validationError(msgMessageRequired)
	}

	personaID, ok := stringField(raw, "personaId")
	if !ok {
		// older clients send the id under "persona"
		personaID, ok = stringField(raw, "persona")
	}
	if !ok || personaID == "" {
		return models.ChatRequest{}, validationError(msgPersonaRequired)
	}

	var history []models.Message
	if rawHistory, present := raw["history"]; present && !isNull(rawHistory) {
		if err := json.Unmarshal(rawHistory, &history); err != nil {
			return models.ChatRequest{}, validationError(msgHistoryMalformed)
		}
	}

	return models.ChatRequest{
		Message:   message,
		PersonaID: personaID,
		History:   history,
	}, nil
}

// stringField reports the value of key when it is present and a JSON string
func stringField(raw map[string]json.RawMessage, key string) (string, bool) {
	value, present := raw[key]
	if !present {
		return "", false
	}
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", false
	}
	return s, true
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}
