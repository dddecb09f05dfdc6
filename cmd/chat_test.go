package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personachat/internal/chatclient"
	"github.com/personachat/internal/personas"
	"github.com/personachat/pkg/models"
)

type scriptedTransport struct {
	replies []string
	failing bool
}

func (s *scriptedTransport) Send(_ context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	if s.failing {
		return models.ChatResponse{}, errors.New("server unavailable")
	}
	reply := "..."
	if len(s.replies) > 0 {
		reply, s.replies = s.replies[0], s.replies[1:]
	}
	return models.ChatResponse{Success: true, Response: reply, PersonaID: req.PersonaID}, nil
}

func runScript(t *testing.T, transport chatclient.Transport, script string) (string, *chatclient.Session) {
	t.Helper()

	registry, err := personas.New(personas.Builtin())
	require.NoError(t, err)
	session := chatclient.NewSession(transport, chatclient.NewMemoryStore(), registry.Default().ID)

	var out bytes.Buffer
	require.NoError(t, chatLoop(context.Background(), session, registry, strings.NewReader(script), &out))
	return out.String(), session
}

func TestChatLoopConversation(t *testing.T) {
	out, session := runScript(t, &scriptedTransport{replies: []string{"Haan ji!"}}, "hello\n/persona piyush\n/quit\nignored\n")

	assert.Contains(t, out, "Chatting with Hitesh Chaudhary")
	assert.Contains(t, out, "Hitesh Chaudhary: Haan ji!")
	assert.Contains(t, out, "Hello! I'm now responding as piyush. How can I help you?")
	assert.Equal(t, "piyush", session.CurrentPersona())
	assert.Len(t, session.Messages(), 3)
}

func TestChatLoopRetryAndClear(t *testing.T) {
	transport := &scriptedTransport{failing: true}
	registry, err := personas.New(personas.Builtin())
	require.NoError(t, err)
	session := chatclient.NewSession(transport, chatclient.NewMemoryStore(), "hitesh")

	var out bytes.Buffer
	require.NoError(t, chatLoop(context.Background(), session, registry, strings.NewReader("hello\n"), &out))
	assert.Contains(t, out.String(), "Sorry, I encountered an error: server unavailable")

	transport.failing = false
	transport.replies = []string{"back online"}
	out.Reset()
	require.NoError(t, chatLoop(context.Background(), session, registry, strings.NewReader("/retry\n/clear\n"), &out))
	assert.Contains(t, out.String(), "You: hello")
	assert.Contains(t, out.String(), "back online")
	assert.Contains(t, out.String(), "Chat history cleared.")
	assert.False(t, session.HasMessages())
}

func TestChatLoopUnknownPersona(t *testing.T) {
	out, session := runScript(t, &scriptedTransport{}, "/persona nobody\n/dance\n")

	assert.Contains(t, out, `Unknown persona "nobody". Available: hitesh, piyush`)
	assert.Contains(t, out, "Unknown command /dance")
	assert.Equal(t, "hitesh", session.CurrentPersona())
	assert.False(t, session.HasMessages())
}
