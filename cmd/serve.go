package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/personachat/internal/aiconnectors"
	"github.com/personachat/internal/api"
	"github.com/personachat/internal/config"
)

// ServeCommand returns the CLI command for starting the chat API server
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the chat API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port for the API server (overrides server.port)",
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("port") {
		cfg.Server.Port = c.Int("port")
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	mediator, registry, err := buildMediator(cfg)
	if err != nil {
		return err
	}

	for _, p := range registry.All() {
		key := cfg.Provider(p.Provider).APIKey
		event := log.Info()
		if key == "" {
			event = log.Warn()
		}
		event.
			Str("persona", p.ID).
			Str("provider", string(p.Provider)).
			Str("api_key", aiconnectors.MaskKey(key)).
			Msg("Persona ready")
	}

	fmt.Printf("Starting chat API server on port %d...\n", cfg.Server.Port)

	server := api.NewServer(mediator, registry, api.Options{
		Port:      cfg.Server.Port,
		DevMode:   cfg.Server.DevMode,
		BodyLimit: cfg.Server.BodyLimit,
	})
	return server.Start()
}
