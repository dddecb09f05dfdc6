package chatclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/personachat/pkg/models"
)

// Option customizes a Session
type Option func(*Session)

// WithClock overrides the time source used for message timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// Session holds one user's conversation on the client side: the transcript,
// the selected persona and whether a request is in flight.
type Session struct {
	transport Transport
	store     Store
	now       func() time.Time

	mu             sync.Mutex
	messages       []models.Message
	currentPersona string
	loading        bool
	lastErr        string
}

// NewSession creates a session and restores any persisted transcript.
// Unreadable history is discarded and the session starts empty.
func NewSession(transport Transport, store Store, defaultPersona string, opts ...Option) *Session {
	s := &Session{
		transport:      transport,
		store:          store,
		now:            time.Now,
		currentPersona: defaultPersona,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

func (s *Session) load() {
	data, ok, err := s.store.Get(StorageKey)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read chat history")
		return
	}
	if !ok {
		return
	}

	var messages []models.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		log.Warn().Err(err).Msg("Discarding corrupted chat history")
		if rmErr := s.store.Remove(StorageKey); rmErr != nil {
			log.Warn().Err(rmErr).Msg("Failed to remove corrupted chat history")
		}
		return
	}

	s.messages = messages
	log.Debug().Int("messages", len(messages)).Msg("Loaded chat history")
}

// persist writes the transcript; callers hold s.mu
func (s *Session) persist() {
	if len(s.messages) == 0 {
		return
	}
	data, err := json.Marshal(s.messages)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode chat history")
		return
	}
	if err := s.store.Set(StorageKey, data); err != nil {
		log.Error().Err(err).Msg("Failed to save chat history")
	}
}

// appendMessage adds a message and persists; callers hold s.mu
func (s *Session) appendMessage(role models.Role, content, personaID string) models.Message {
	msg := models.Message{
		ID:        "msg_" + uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: s.now().UnixMilli(),
		PersonaID: personaID,
	}
	s.messages = append(s.messages, msg)
	s.persist()
	return msg
}

// SendMessage submits text to the current persona. Blank input, or a call made
// while another request is in flight, is ignored.
func (s *Session) SendMessage(ctx context.Context, text string) {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	if text == "" || s.loading {
		s.mu.Unlock()
		return
	}
	s.loading = true
	s.lastErr = ""
	persona := s.currentPersona
	history := append([]models.Message(nil), s.messages...)
	s.appendMessage(models.RoleUser, text, "")
	s.mu.Unlock()

	log.Debug().Str("persona", persona).Int("history_length", len(history)).Msg("Sending message")

	resp, err := s.transport.Send(ctx, models.ChatRequest{
		Message:   text,
		PersonaID: persona,
		History:   history,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		log.Warn().Err(err).Str("persona", persona).Msg("Chat request failed")
		s.lastErr = err.Error()
		s.appendMessage(models.RoleAssistant, fmt.Sprintf("Sorry, I encountered an error: %s", err.Error()), persona)
		return
	}
	s.appendMessage(models.RoleAssistant, resp.Response, persona)
}

// SwitchPersona selects another persona and announces it in the transcript
func (s *Session) SwitchPersona(personaID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if personaID == s.currentPersona {
		return
	}
	s.currentPersona = personaID
	s.appendMessage(models.RoleAssistant,
		fmt.Sprintf("Hello! I'm now responding as %s. How can I help you?", personaID), personaID)
}

// ClearChat empties the transcript and forgets the persisted copy
func (s *Session) ClearChat() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = nil
	s.lastErr = ""
	return s.store.Remove(StorageKey)
}

// RetryLastMessage resubmits the most recent user message, if any
func (s *Session) RetryLastMessage(ctx context.Context) {
	s.mu.Lock()
	var content string
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == models.RoleUser {
			content = s.messages[i].Content
			break
		}
	}
	s.mu.Unlock()

	if content != "" {
		s.SendMessage(ctx, content)
	}
}

// Messages returns a copy of the transcript, oldest first
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.messages...)
}

func (s *Session) CurrentPersona() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPersona
}

func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError is the message of the most recent failed send, or ""
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) HasMessages() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages) > 0
}

// LastMessage returns the newest message, or ok=false for an empty transcript
func (s *Session) LastMessage() (models.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return models.Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}
