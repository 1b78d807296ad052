package config

import (
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log      Log      `yaml:"log"`
	Server   Server   `yaml:"server"`
	Storage  Storage  `yaml:"storage"`
	Provider Provider `yaml:"provider"`
	Chat     Chat     `yaml:"chat"`
	MCP      MCP      `yaml:"mcp"`
}

type Provider struct {
	// Which vision backend to use
	Name string `yaml:"name" example:"anthropic" validate:"required,oneof=anthropic openai"`
	// Instruction prompt override; the embedded default is used when empty
	Prompt    string      `yaml:"prompt"`
	Anthropic ModelConfig `yaml:"anthropic"`
	OpenAI    ModelConfig `yaml:"openai"`
}

type ModelConfig struct {
	// API base url, vendor default is used when empty
	BaseURL string `yaml:"base_url" example:"https://api.anthropic.com"`
	// API token
	Token string `yaml:"token" example:"sk-ant-REDACTED"`
	// Model name
	Model string `yaml:"model" example:"claude-opus-4-1-20250805"`
	// Completion token limit
	MaxTokens int `yaml:"max_tokens" example:"4000"`
	// Sampling temperature
	Temperature float32 `yaml:"temperature" example:"0.7"`
}

type Chat struct {
	// Number of non-system turns retained in the conversation
	HistorySize int `yaml:"history_size" example:"19"`
}

type Server struct {
	// Address the companion API listens on
	Listen string `yaml:"listen" example:"127.0.0.1:8089" validate:"required"`
}

type Storage struct {
	// Path to the bolt database file
	Path string `yaml:"path" example:"data/snapsight.bolt" validate:"required"`
}

type MCP struct {
	// Address of the MCP SSE endpoint, disabled when empty
	Listen string `yaml:"listen" example:"127.0.0.1:8090"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	ApplyDefaults(&result)

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}

func ApplyDefaults(cfg *Config) {
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = "127.0.0.1:8089"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = filepath.Join("data", "snapsight.bolt")
	}
	if cfg.Provider.Name == "" {
		cfg.Provider.Name = "anthropic"
	}
	if cfg.Provider.Anthropic.Model == "" {
		cfg.Provider.Anthropic.Model = "claude-opus-4-1-20250805"
	}
	if cfg.Provider.Anthropic.MaxTokens == 0 {
		cfg.Provider.Anthropic.MaxTokens = 4000
	}
	if cfg.Provider.OpenAI.Model == "" {
		cfg.Provider.OpenAI.Model = "gpt-4o"
	}
	if cfg.Provider.OpenAI.MaxTokens == 0 {
		cfg.Provider.OpenAI.MaxTokens = 1000
	}
	if cfg.Provider.OpenAI.Temperature == 0 {
		cfg.Provider.OpenAI.Temperature = 0.7
	}
	if cfg.Chat.HistorySize == 0 {
		cfg.Chat.HistorySize = 19
	}
}
