package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/personachat/internal/chat"
	"github.com/personachat/pkg/models"
)

// postChat handles POST /api/chat
func (s *Server) postChat(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		// BodyLimit surfaces as an echo.HTTPError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		log.Error().Err(err).Msg("Failed to read chat request body")
		return c.JSON(http.StatusBadRequest, models.ChatResponse{
			Success: false,
			Error:   "Invalid request body",
		})
	}

	var result chat.Result
	req, err := chat.DecodeRequest(body)
	var cerr *chat.Error
	if errors.As(err, &cerr) {
		result = chat.Result{Err: cerr}
	} else {
		result = s.mediator.Reply(c.Request().Context(), req)
	}

	status, resp := chat.Envelope(result, s.devMode)
	if !result.OK() {
		log.Warn().
			Int("status", status).
			Str("kind", result.Err.Kind.String()).
			Str("error", result.Err.Message).
			Msg("Chat request failed")
	}
	return c.JSON(status, resp)
}

// getChat answers GET /api/chat with a usage hint
func (s *Server) getChat(c echo.Context) error {
	return c.JSON(http.StatusMethodNotAllowed, models.ChatResponse{
		Success: false,
		Error:   "Method not allowed. Use POST to send chat messages.",
	})
}

func (s *Server) methodNotAllowed(c echo.Context) error {
	return c.JSON(http.StatusMethodNotAllowed, models.ChatResponse{
		Success: false,
		Error:   "Method not allowed",
	})
}

// listPersonas handles GET /api/personas for the persona picker
func (s *Server) listPersonas(c echo.Context) error {
	all := s.registry.All()
	out := make([]models.PersonaSummary, 0, len(all))
	for _, p := range all {
		out = append(out, p.Summary())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"personas":       out,
		"defaultPersona": s.registry.Default().ID,
	})
}
