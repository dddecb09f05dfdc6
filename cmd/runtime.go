package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/personachat/internal/aiconnectors"
	"github.com/personachat/internal/chat"
	"github.com/personachat/internal/config"
	"github.com/personachat/internal/logging"
	"github.com/personachat/internal/personas"
	"github.com/personachat/pkg/models"
)

// loadConfig reads .env, the config file named by the global --config flag and
// the environment, then configures logging
func loadConfig(c *cli.Context) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Server.DevMode)
	return cfg, nil
}

// buildAdapters creates one adapter per supported provider from the config
func buildAdapters(cfg *config.Config) ([]aiconnectors.Adapter, error) {
	var adapters []aiconnectors.Adapter
	for _, p := range []models.Provider{models.ProviderOpenAI, models.ProviderGemini} {
		pc := cfg.Provider(p)
		adapter, err := aiconnectors.NewAdapter(aiconnectors.ConnectorOptions{
			Provider: p,
			APIKey:   pc.APIKey,
			BaseURL:  pc.BaseURL,
			ModelConfig: aiconnectors.ModelConfig{
				Temperature: pc.Temperature,
				MaxTokens:   pc.MaxTokens,
				Model:       pc.Model,
			},
		})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, adapter)
	}
	return adapters, nil
}

// buildMediator wires the persona registry and provider adapters together
func buildMediator(cfg *config.Config) (*chat.Mediator, *personas.Registry, error) {
	registry, err := personas.New(cfg.PersonaTable())
	if err != nil {
		return nil, nil, fmt.Errorf("invalid personas: %w", err)
	}

	adapters, err := buildAdapters(cfg)
	if err != nil {
		return nil, nil, err
	}

	mediator := chat.NewMediator(registry, adapters, chat.Options{
		MaxMessageLength: cfg.Chat.MaxMessageLength,
	})
	return mediator, registry, nil
}
