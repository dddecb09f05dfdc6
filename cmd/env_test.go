package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/personachat/internal/config"
	"github.com/personachat/pkg/models"
)

func TestCheckRequiredConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Providers.OpenAI.APIKey = "sk-test-1234567890"

	result := CheckRequiredConfig(cfg)

	assert.Equal(t, []string{"GEMINI_API_KEY"}, result.Missing)
	assert.Equal(t, map[string]string{"OPENAI_API_KEY": "sk****90"}, result.Present)
	assert.Empty(t, result.Warnings)
}

func TestCheckRequiredConfigUnusedProvider(t *testing.T) {
	cfg := &config.Config{
		Personas: []models.Persona{
			{ID: "hitesh", Provider: models.ProviderOpenAI},
			{ID: "claudia", Provider: models.Provider("claude")},
		},
	}
	cfg.Providers.OpenAI.APIKey = "short"

	result := CheckRequiredConfig(cfg)

	assert.Empty(t, result.Missing, "gemini is not used by any persona")
	assert.Equal(t, "****", result.Present["OPENAI_API_KEY"])
	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "claude")
}

func TestPrintConfigCheck(t *testing.T) {
	var buf bytes.Buffer
	PrintConfigCheck(&buf, &ConfigCheckResult{
		Missing: []string{"GEMINI_API_KEY"},
		Present: map[string]string{"OPENAI_API_KEY": "sk****90"},
	})

	out := buf.String()
	assert.Contains(t, out, "GEMINI_API_KEY")
	assert.Contains(t, out, "OPENAI_API_KEY = sk****90")
	assert.NotContains(t, out, "All required configuration is present")
}

func TestPrintPersonaStatus(t *testing.T) {
	cfg := &config.Config{
		Personas: []models.Persona{
			{ID: "hitesh", Provider: models.ProviderOpenAI},
			{ID: "piyush", Provider: models.ProviderGemini},
			{ID: "claudia", Provider: models.Provider("claude")},
		},
	}
	cfg.Providers.OpenAI.APIKey = "sk-test-1234567890"
	cfg.Providers.Gemini.Model = "gemini-1.5-pro"

	var buf bytes.Buffer
	ready := printPersonaStatus(&buf, cfg)

	assert.Equal(t, 1, ready)
	out := buf.String()
	assert.Contains(t, out, "ready (sk-te...)")
	assert.NotContains(t, out, "sk-test-1234567890")
	assert.Contains(t, out, "gpt-4")
	assert.Contains(t, out, "gemini-1.5-pro")
	assert.Contains(t, out, "missing GEMINI_API_KEY")
	assert.Contains(t, out, "unsupported provider")
}
