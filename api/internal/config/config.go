package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const AzureAPIVersion = "2024-02-15-preview"

type Config struct {
	Engine     string `yaml:"engine"`
	PromptFile string `yaml:"prompt_file"`
	JSONMode   *bool  `yaml:"json_mode"`
	Port       string `yaml:"port"`

	Azure    AzureConfig    `yaml:"azure"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Telegram TelegramConfig `yaml:"telegram"`
}

type AzureConfig struct {
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"api_key"`
	Deployment string `yaml:"deployment"`
	APIVersion string `yaml:"-"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type TelegramConfig struct {
	Token   string `yaml:"token"`
	WorkDir string `yaml:"work_dir"`
}

func defaults() *Config {
	return &Config{
		Engine: "azure",
		Port:   "8080",
		Azure: AzureConfig{
			Deployment: "gpt-4-vision",
			APIVersion: AzureAPIVersion,
		},
		OpenAI: OpenAIConfig{
			Model:   "gpt-4o",
			BaseURL: "https://api.openai.com/v1",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		Telegram: TelegramConfig{
			WorkDir: filepath.Join(os.TempDir(), "banner-check"),
		},
	}
}

// Load собирает конфигурацию: значения по умолчанию, затем YAML из MORPH_CONFIG_FILE,
// затем .env и переменные окружения. Проверку обязательных полей делает Validate.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env ignored: %v", err)
	}

	cfg := defaults()
	if p := strings.TrimSpace(os.Getenv("MORPH_CONFIG_FILE")); p != "" {
		if err := cfg.mergeFile(p); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	cfg.Azure.APIVersion = AzureAPIVersion
	cfg.Engine = strings.ToLower(strings.TrimSpace(cfg.Engine))
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Engine = getEnv("MORPH_ENGINE", c.Engine)
	c.PromptFile = getEnv("MORPH_PROMPT_FILE", c.PromptFile)
	c.JSONMode = getEnvAsBoolPtr("MORPH_JSON_MODE", c.JSONMode)
	c.Port = getEnv("PORT", c.Port)

	c.Azure.Endpoint = getEnv("AZURE_OPENAI_ENDPOINT", c.Azure.Endpoint)
	c.Azure.APIKey = getEnv("AZURE_OPENAI_KEY", c.Azure.APIKey)
	c.Azure.Deployment = getEnv("AZURE_OPENAI_DEPLOYMENT", c.Azure.Deployment)

	c.OpenAI.APIKey = getEnv("OPENAI_API_KEY", c.OpenAI.APIKey)
	c.OpenAI.Model = getEnv("OPENAI_MODEL", c.OpenAI.Model)
	c.OpenAI.BaseURL = getEnv("OPENAI_BASE_URL", c.OpenAI.BaseURL)

	c.Gemini.APIKey = getEnv("GEMINI_API_KEY", c.Gemini.APIKey)
	c.Gemini.Model = getEnv("GEMINI_MODEL", c.Gemini.Model)

	c.Telegram.Token = getEnv("TELEGRAM_BOT_TOKEN", c.Telegram.Token)
	c.Telegram.WorkDir = getEnv("MORPH_WORK_DIR", c.Telegram.WorkDir)
}

// JSONModeFor reports whether the chat engine should request
// response_format=json_object. An explicit MORPH_JSON_MODE / json_mode wins;
// otherwise it is off for Azure, whose gpt-4-vision deployments reject it,
// and on for api.openai.com.
func (c *Config) JSONModeFor(engine string) bool {
	if c.JSONMode != nil {
		return *c.JSONMode
	}
	return engine != "azure"
}

// MissingError lists the environment variables the selected engine still needs.
type MissingError struct {
	Engine string
	Vars   []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s credentials not found: set %s", e.Engine, strings.Join(e.Vars, ", "))
}

// Validate checks the credentials of the selected engine only.
func (c *Config) Validate() error {
	var missing []string
	switch c.Engine {
	case "azure":
		if strings.TrimSpace(c.Azure.Endpoint) == "" {
			missing = append(missing, "AZURE_OPENAI_ENDPOINT")
		}
		if strings.TrimSpace(c.Azure.APIKey) == "" {
			missing = append(missing, "AZURE_OPENAI_KEY")
		}
	case "openai", "gpt":
		if strings.TrimSpace(c.OpenAI.APIKey) == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case "gemini":
		if strings.TrimSpace(c.Gemini.APIKey) == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown MORPH_ENGINE %q; use azure | openai | gemini", c.Engine)
	}
	if len(missing) > 0 {
		return &MissingError{Engine: c.Engine, Vars: missing}
	}
	return nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// getEnvAsBoolPtr keeps def (nil means "not set") when k is empty or invalid.
func getEnvAsBoolPtr(k string, def *bool) *bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Warning: invalid boolean for %s, ignoring %q", k, v)
		return def
	}
	return &b
}
