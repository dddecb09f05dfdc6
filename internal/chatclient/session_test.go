package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personachat/pkg/models"
)

type fakeTransport struct {
	mu       sync.Mutex
	requests []models.ChatRequest
	reply    string
	err      error
	block    chan struct{}
}

func (f *fakeTransport) Send(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if f.err != nil {
		return models.ChatResponse{}, f.err
	}
	return models.ChatResponse{Success: true, Response: f.reply, PersonaID: req.PersonaID}, nil
}

func (f *fakeTransport) sent() []models.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ChatRequest(nil), f.requests...)
}

func fixedClock() func() time.Time {
	t := time.UnixMilli(1700000000000)
	return func() time.Time { return t }
}

func TestSendMessageRoundTrip(t *testing.T) {
	transport := &fakeTransport{reply: "Haan ji, bilkul!"}
	store := NewMemoryStore()
	s := NewSession(transport, store, "hitesh", WithClock(fixedClock()))

	s.SendMessage(context.Background(), "  hello  ")

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Empty(t, msgs[0].PersonaID)
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "Haan ji, bilkul!", msgs[1].Content)
	assert.Equal(t, "hitesh", msgs[1].PersonaID)
	assert.Equal(t, int64(1700000000000), msgs[1].Timestamp)
	assert.True(t, strings.HasPrefix(msgs[0].ID, "msg_"))
	assert.NotEqual(t, msgs[0].ID, msgs[1].ID)

	req := transport.sent()
	require.Len(t, req, 1)
	assert.Equal(t, "hello", req[0].Message)
	assert.Equal(t, "hitesh", req[0].PersonaID)
	assert.Empty(t, req[0].History, "history excludes the message being sent")

	assert.False(t, s.IsLoading())
	assert.Empty(t, s.LastError())

	// a fresh session over the same store sees the same transcript
	restored := NewSession(transport, store, "hitesh")
	if diff := cmp.Diff(msgs, restored.Messages()); diff != "" {
		t.Errorf("restored transcript mismatch (-want +got):\n%s", diff)
	}
}

func TestSendMessageSendsPriorHistory(t *testing.T) {
	transport := &fakeTransport{reply: "ok"}
	s := NewSession(transport, NewMemoryStore(), "hitesh")

	s.SendMessage(context.Background(), "first")
	s.SendMessage(context.Background(), "second")

	req := transport.sent()
	require.Len(t, req, 2)
	require.Len(t, req[1].History, 2)
	assert.Equal(t, "first", req[1].History[0].Content)
	assert.Equal(t, "ok", req[1].History[1].Content)
}

func TestSendMessageBlankIsNoop(t *testing.T) {
	transport := &fakeTransport{reply: "ok"}
	store := NewMemoryStore()
	s := NewSession(transport, store, "hitesh")

	s.SendMessage(context.Background(), "   \n\t")

	assert.False(t, s.HasMessages())
	assert.Empty(t, transport.sent())
	_, ok, err := store.Get(StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSendMessageFailure(t *testing.T) {
	transport := &fakeTransport{err: errors.New("Gemini API quota exceeded. Please try again later.")}
	s := NewSession(transport, NewMemoryStore(), "piyush")

	s.SendMessage(context.Background(), "hello")

	assert.Equal(t, "Gemini API quota exceeded. Please try again later.", s.LastError())
	last, ok := s.LastMessage()
	require.True(t, ok)
	assert.Equal(t, models.RoleAssistant, last.Role)
	assert.Equal(t, "Sorry, I encountered an error: Gemini API quota exceeded. Please try again later.", last.Content)
	assert.Equal(t, "piyush", last.PersonaID)
	assert.False(t, s.IsLoading())
}

func TestSendMessageWhileLoadingIsIgnored(t *testing.T) {
	transport := &fakeTransport{reply: "done", block: make(chan struct{})}
	s := NewSession(transport, NewMemoryStore(), "hitesh")

	done := make(chan struct{})
	go func() {
		s.SendMessage(context.Background(), "first")
		close(done)
	}()

	require.Eventually(t, s.IsLoading, time.Second, time.Millisecond)

	s.SendMessage(context.Background(), "second")
	assert.Len(t, s.Messages(), 1)

	close(transport.block)
	<-done

	assert.Len(t, transport.sent(), 1)
	assert.Len(t, s.Messages(), 2)
}

func TestRetryLastMessage(t *testing.T) {
	transport := &fakeTransport{reply: "first answer"}
	s := NewSession(transport, NewMemoryStore(), "hitesh")

	s.SendMessage(context.Background(), "first")
	transport.err = errors.New("boom")
	s.SendMessage(context.Background(), "hello")
	require.Equal(t, "boom", s.LastError())

	transport.err = nil
	transport.reply = "recovered"
	s.RetryLastMessage(context.Background())

	req := transport.sent()
	require.Len(t, req, 3)
	assert.Equal(t, "first", req[0].Message)
	assert.Equal(t, "hello", req[1].Message)
	assert.Equal(t, "hello", req[2].Message, "only the latest user message is resubmitted")
	for _, m := range req[2].History {
		if m.Role == models.RoleUser {
			assert.Contains(t, []string{"first", "hello"}, m.Content)
		}
	}

	last, ok := s.LastMessage()
	require.True(t, ok)
	assert.Equal(t, "recovered", last.Content)
	assert.Empty(t, s.LastError())
}

func TestRetryWithoutUserMessage(t *testing.T) {
	transport := &fakeTransport{reply: "ok"}
	s := NewSession(transport, NewMemoryStore(), "hitesh")

	s.RetryLastMessage(context.Background())
	assert.Empty(t, transport.sent())
}

func TestSwitchPersona(t *testing.T) {
	s := NewSession(&fakeTransport{}, NewMemoryStore(), "hitesh")

	s.SwitchPersona("hitesh")
	assert.False(t, s.HasMessages())

	s.SwitchPersona("piyush")
	assert.Equal(t, "piyush", s.CurrentPersona())
	last, ok := s.LastMessage()
	require.True(t, ok)
	assert.Equal(t, "Hello! I'm now responding as piyush. How can I help you?", last.Content)
	assert.Equal(t, "piyush", last.PersonaID)
	assert.Equal(t, models.RoleAssistant, last.Role)
}

func TestClearChat(t *testing.T) {
	transport := &fakeTransport{err: errors.New("boom")}
	store := NewMemoryStore()
	s := NewSession(transport, store, "hitesh")
	s.SendMessage(context.Background(), "hello")

	require.NoError(t, s.ClearChat())

	assert.False(t, s.HasMessages())
	assert.Empty(t, s.LastError())
	_, ok, err := store.Get(StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCorruptHistoryIsDiscarded(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(StorageKey, []byte("{not json")))

	s := NewSession(&fakeTransport{}, store, "hitesh")

	assert.False(t, s.HasMessages())
	_, ok, err := store.Get(StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLegacyHistoryLoads(t *testing.T) {
	store := NewMemoryStore()
	legacy := `[{"id":"msg_1","role":"assistant","content":"hi","timestamp":5,"persona":"piyush"}]`
	require.NoError(t, store.Set(StorageKey, []byte(legacy)))

	s := NewSession(&fakeTransport{}, store, "hitesh")

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "piyush", msgs[0].PersonaID)
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, ok, err := store.Get(StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(StorageKey, []byte(`[]`)))
	data, ok, err := store.Get(StorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(data))

	require.NoError(t, store.Remove(StorageKey))
	require.NoError(t, store.Remove(StorageKey))
	_, ok, err = store.Get(StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHTTPTransport(t *testing.T) {
	var got models.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		if got.PersonaID == "ghost" {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(models.ChatResponse{Error: "Persona 'ghost' not found"})
			return
		}
		_ = json.NewEncoder(w).Encode(models.ChatResponse{Success: true, Response: "pong", PersonaID: got.PersonaID})
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL + "/")

	resp, err := transport.Send(context.Background(), models.ChatRequest{Message: "ping", PersonaID: "hitesh"})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Response)
	assert.Equal(t, "ping", got.Message)

	_, err = transport.Send(context.Background(), models.ChatRequest{Message: "ping", PersonaID: "ghost"})
	require.Error(t, err)
	assert.Equal(t, "Persona 'ghost' not found", err.Error())
}

func TestHTTPTransportHasNoClientTimeout(t *testing.T) {
	assert.Zero(t, NewHTTPTransport("http://localhost:3000").client.Timeout)

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewHTTPTransport(srv.URL).Send(ctx, models.ChatRequest{Message: "slow", PersonaID: "hitesh"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
