package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/personachat/internal/personas"
	"github.com/personachat/pkg/models"
)

const envPrefix = "PERSONACHAT_"

// ProviderConfig holds the credentials and model settings of one provider
type ProviderConfig struct {
	APIKey      string  `koanf:"api_key"`
	Model       string  `koanf:"model"`
	MaxTokens   int     `koanf:"max_tokens"`
	Temperature float64 `koanf:"temperature"`
	BaseURL     string  `koanf:"base_url"`
}

// Config represents the application configuration
type Config struct {
	Server struct {
		Port      int    `koanf:"port"`
		DevMode   bool   `koanf:"dev_mode"`
		BodyLimit string `koanf:"body_limit"`
	} `koanf:"server"`

	Chat struct {
		MaxMessageLength int `koanf:"max_message_length"`
	} `koanf:"chat"`

	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`

	Providers struct {
		OpenAI ProviderConfig `koanf:"openai"`
		Gemini ProviderConfig `koanf:"gemini"`
	} `koanf:"providers"`

	Client struct {
		ServerURL string `koanf:"server_url"`
		DataDir   string `koanf:"data_dir"`
	} `koanf:"client"`

	Personas []models.Persona `koanf:"personas"`
}

// Provider returns the settings for p, or a zero value for unknown providers
func (c *Config) Provider(p models.Provider) ProviderConfig {
	switch p {
	case models.ProviderOpenAI:
		return c.Providers.OpenAI
	case models.ProviderGemini:
		return c.Providers.Gemini
	default:
		return ProviderConfig{}
	}
}

// PersonaTable returns the configured personas, or the built-in table when none are set
func (c *Config) PersonaTable() []models.Persona {
	if len(c.Personas) == 0 {
		return personas.Builtin()
	}
	return c.Personas
}

// LoadDotEnv loads a .env file into the process environment when one exists.
// Variables already set in the environment win.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

func defaults() map[string]interface{} {
	home, _ := os.UserHomeDir()
	return map[string]interface{}{
		"server.port":                  3000,
		"server.dev_mode":              false,
		"server.body_limit":            "1M",
		"chat.max_message_length":      2000,
		"log.level":                    "info",
		"client.server_url":            "http://localhost:3000",
		"client.data_dir":              filepath.Join(home, ".personachat"),
		"providers.openai.model":       "gpt-4",
		"providers.openai.max_tokens":  1000,
		"providers.openai.temperature": 0.7,
		"providers.gemini.model":       "gemini-1.5-flash",
	}
}

// envKey maps PERSONACHAT_SERVER__DEV_MODE to server.dev_mode
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// LoadConfig loads the configuration from a file
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	// Set up default configuration
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	// Load from TOML file if it exists
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
				return nil, fmt.Errorf("error loading config: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		defaultPaths := []string{"./personachat.toml", "$HOME/.personachat.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// Plain provider credentials, as most deployments set them
	credentials := map[string]interface{}{}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		credentials["providers.openai.api_key"] = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		credentials["providers.gemini.api_key"] = v
	}
	if len(credentials) > 0 {
		if err := k.Load(confmap.Provider(credentials, "."), nil); err != nil {
			return nil, fmt.Errorf("error loading credentials: %w", err)
		}
	}

	// Load from environment variables with prefix PERSONACHAT_
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	// Unmarshal into Config struct
	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &config, nil
}

// InitConfig initializes a new configuration file
func InitConfig(configPath string) error {
	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	// Create sample configuration
	sampleConfig := `# personachat configuration

[server]
port = 3000
dev_mode = false
body_limit = "1M"

[chat]
max_message_length = 2000

[log]
level = "info"

# Credentials may also come from OPENAI_API_KEY and GEMINI_API_KEY
[providers.openai]
api_key = ""
model = "gpt-4"
max_tokens = 1000
temperature = 0.7

[providers.gemini]
api_key = ""
model = "gemini-1.5-flash"

[client]
server_url = "http://localhost:3000"

# Leave [[personas]] out to use the built-in personas
# [[personas]]
# id = "hitesh"
# name = "Hitesh Chaudhary"
# description = "Tech educator and YouTuber"
# avatar = "👨‍💻"
# color = "bg-blue-500"
# provider = "openai"
# system_prompt = "You are Hitesh Choudhary..."
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}

// Validate validates the configuration
func Validate(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server port %d is out of range", config.Server.Port)
	}

	if config.Chat.MaxMessageLength <= 0 {
		return fmt.Errorf("chat max_message_length must be positive")
	}

	if _, err := zerolog.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", config.Log.Level, err)
	}

	for _, p := range []ProviderConfig{config.Providers.OpenAI, config.Providers.Gemini} {
		if p.Temperature < 0 || p.Temperature > 2 {
			return fmt.Errorf("temperature %.2f is out of range", p.Temperature)
		}
		if p.MaxTokens < 0 {
			return fmt.Errorf("max_tokens must not be negative")
		}
	}

	if _, err := personas.New(config.PersonaTable()); err != nil {
		return fmt.Errorf("invalid personas: %w", err)
	}

	return nil
}
