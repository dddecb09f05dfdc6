package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/personachat/pkg/models"
)

// Transport delivers a chat request to the mediator
type Transport interface {
	Send(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error)
}

// HTTPTransport posts requests to a running chat API
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

// NewHTTPTransport creates a transport for the server at baseURL. Requests are
// bounded only by the caller's context.
func NewHTTPTransport(baseURL string) *HTTPTransport {
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

// Send posts to /api/chat. A non-2xx status or a failed envelope becomes an
// error carrying the server's message.
func (t *HTTPTransport) Send(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	var out models.ChatResponse

	body, err := json.Marshal(req)
	if err != nil {
		return out, fmt.Errorf("failed to encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return out, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return out, fmt.Errorf("failed to reach chat server: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, fmt.Errorf("failed to read response: %w", err)
	}

	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && out.Error != "" {
			return out, errors.New(out.Error)
		}
		return out, errors.New("Failed to get response")
	}
	if decodeErr != nil {
		return out, fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if !out.Success || out.Response == "" {
		if out.Error != "" {
			return out, errors.New(out.Error)
		}
		return out, errors.New("Invalid response format")
	}
	return out, nil
}
