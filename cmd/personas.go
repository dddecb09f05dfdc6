package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/personachat/internal/personas"
)

// PersonasCommand lists the configured personas
func PersonasCommand() *cli.Command {
	return &cli.Command{
		Name:  "personas",
		Usage: "List the configured personas",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			registry, err := personas.New(cfg.PersonaTable())
			if err != nil {
				return fmt.Errorf("invalid personas: %w", err)
			}

			def := registry.Default().ID
			for _, p := range registry.All() {
				marker := " "
				if p.ID == def {
					marker = "*"
				}
				fmt.Printf("%s %-10s %-20s %-8s %s\n", marker, p.ID, p.Name, p.Provider, p.Description)
			}
			return nil
		},
	}
}
