package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/personachat/internal/aiconnectors"
	"github.com/personachat/internal/config"
	"github.com/personachat/pkg/models"
)

// ConfigCommand returns the config command
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage configuration",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Initialize a new configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
						Value:   "personachat.toml",
					},
				},
				Action: runConfigInit,
			},
			{
				Name:   "validate",
				Usage:  "Validate the configuration file",
				Action: runConfigValidate,
			},
		},
	}
}

func runConfigInit(c *cli.Context) error {
	outputPath := c.String("output")

	if err := config.InitConfig(outputPath); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Created configuration file at %s\n", outputPath)
	return nil
}

func runConfigValidate(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ready := printPersonaStatus(os.Stdout, cfg)
	fmt.Printf("Configuration is valid: %d of %d personas ready\n", ready, len(cfg.PersonaTable()))
	return nil
}

// printPersonaStatus writes one line per persona with its provider, model and
// credential state, and returns how many personas can answer right now
func printPersonaStatus(out io.Writer, cfg *config.Config) int {
	ready := 0
	for _, p := range cfg.PersonaTable() {
		var status, model string
		switch p.Provider {
		case models.ProviderOpenAI, models.ProviderGemini:
			pc := cfg.Provider(p.Provider)
			model = pc.Model
			if model == "" {
				model = aiconnectors.GetDefaultModel(p.Provider)
			}
			if pc.APIKey != "" {
				status = "ready (" + aiconnectors.MaskKey(pc.APIKey) + ")"
				ready++
			} else {
				status = "missing " + aiconnectors.CredentialName(p.Provider)
			}
		default:
			model = "-"
			status = "unsupported provider"
		}
		fmt.Fprintf(out, "  %-10s %-8s %-18s %s\n", p.ID, p.Provider, model, status)
	}
	return ready
}
