package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/personachat/internal/chat"
	"github.com/personachat/internal/personas"
	"github.com/personachat/pkg/models"
)

// Options configures the API server
type Options struct {
	Port      int
	DevMode   bool
	BodyLimit string
}

// Server represents the API server
type Server struct {
	echo     *echo.Echo
	port     int
	devMode  bool
	mediator *chat.Mediator
	registry *personas.Registry
}

// NewServer creates a new API server
func NewServer(mediator *chat.Mediator, registry *personas.Registry, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	bodyLimit := opts.BodyLimit
	if bodyLimit == "" {
		bodyLimit = "1M"
	}

	// Middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil {
				event = log.Warn().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(bodyLimit))

	server := &Server{
		echo:     e,
		port:     opts.Port,
		devMode:  opts.DevMode,
		mediator: mediator,
		registry: registry,
	}
	e.HTTPErrorHandler = server.handleError

	// Setup routes
	server.setupRoutes()

	return server
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	api := s.echo.Group("/api")

	api.POST("/chat", s.postChat)
	api.GET("/chat", s.getChat)
	api.Match([]string{http.MethodPut, http.MethodPatch, http.MethodDelete}, "/chat", s.methodNotAllowed)

	api.GET("/personas", s.listPersonas)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start begins the API server and blocks until interrupted
func (s *Server) Start() error {
	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%d", s.port)
		log.Info().Str("addr", addr).Bool("dev_mode", s.devMode).Msg("Chat API listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info().Msg("Shutting down chat API")
	return s.echo.Shutdown(ctx)
}

// handleError renders router and middleware failures in the chat envelope
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "An unexpected error occurred"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch status {
		case http.StatusMethodNotAllowed:
			message = "Method not allowed"
		case http.StatusNotFound:
			message = "Not found"
		case http.StatusRequestEntityTooLarge:
			message = "Request body too large"
		default:
			message = fmt.Sprint(he.Message)
		}
	}

	resp := models.ChatResponse{Success: false, Error: message}
	if s.devMode {
		resp.Details = err.Error()
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("Unhandled API error")
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	if writeErr := c.JSON(status, resp); writeErr != nil {
		log.Error().Err(writeErr).Msg("Failed to write error response")
	}
}
