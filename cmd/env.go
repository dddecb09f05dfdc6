package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/personachat/internal/aiconnectors"
	"github.com/personachat/internal/config"
	"github.com/personachat/pkg/models"
)

// ConfigCheckResult holds the result of credential validation
type ConfigCheckResult struct {
	Missing  []string          // Credentials used by a persona but not set
	Present  map[string]string // Credentials that are set (masked values)
	Warnings []string          // Non-fatal warnings
}

// EnvCommand groups environment diagnostics
func EnvCommand() *cli.Command {
	return &cli.Command{
		Name:  "env",
		Usage: "Inspect the environment",
		Subcommands: []*cli.Command{
			{
				Name:  "check",
				Usage: "Report which provider credentials are configured",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					result := CheckRequiredConfig(cfg)
					PrintConfigCheck(os.Stdout, result)
					if len(result.Missing) > 0 {
						return fmt.Errorf("%d provider credential(s) missing", len(result.Missing))
					}
					return nil
				},
			},
		},
	}
}

// CheckRequiredConfig checks that every provider used by a persona has a credential
func CheckRequiredConfig(cfg *config.Config) *ConfigCheckResult {
	result := &ConfigCheckResult{
		Missing:  []string{},
		Present:  make(map[string]string),
		Warnings: []string{},
	}

	used := make(map[models.Provider][]string)
	for _, p := range cfg.PersonaTable() {
		used[p.Provider] = append(used[p.Provider], p.ID)
	}

	for _, provider := range []models.Provider{models.ProviderOpenAI, models.ProviderGemini} {
		name := aiconnectors.CredentialName(provider)
		key := cfg.Provider(provider).APIKey
		switch {
		case key != "":
			result.Present[name] = maskSecret(key)
		case len(used[provider]) > 0:
			result.Missing = append(result.Missing, name)
		}
		delete(used, provider)
	}

	for provider, ids := range used {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("personas %v use unsupported provider %q", ids, provider))
	}
	sort.Strings(result.Warnings)

	return result
}

// PrintConfigCheck prints the configuration check results
func PrintConfigCheck(out io.Writer, result *ConfigCheckResult) {
	fmt.Fprintln(out, "=== Configuration Check ===")
	fmt.Fprintln(out, "")

	if len(result.Missing) > 0 {
		fmt.Fprintln(out, "❌ Missing required variables:")
		for _, v := range result.Missing {
			fmt.Fprintf(out, "   - %s\n", v)
		}
		fmt.Fprintln(out, "")
	}

	if len(result.Present) > 0 {
		names := make([]string, 0, len(result.Present))
		for k := range result.Present {
			names = append(names, k)
		}
		sort.Strings(names)

		fmt.Fprintln(out, "✓ Configured variables:")
		for _, k := range names {
			fmt.Fprintf(out, "   - %s = %s\n", k, result.Present[k])
		}
		fmt.Fprintln(out, "")
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(out, "⚠ Warning: %s\n", w)
	}

	if len(result.Missing) == 0 {
		fmt.Fprintln(out, "✓ All required configuration is present")
	}

	fmt.Fprintln(out, "============================")
}

// maskSecret masks a secret value for display, showing only first and last 2 chars
func maskSecret(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:2] + "****" + value[len(value)-2:]
}
