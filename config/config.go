package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"port"`
	DataRoot string `mapstructure:"data_root"`

	// Generator selects the generation backend: "openai" or "gemini".
	Generator   string `mapstructure:"generator"`
	AIEndpoint  string `mapstructure:"ai_endpoint"`
	ChatModel   string `mapstructure:"chat_model"`
	EmbedModel  string `mapstructure:"embed_model"`
	GeminiModel string `mapstructure:"gemini_model"`

	OpenAIAPIKey  string `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKeys string `mapstructure:"GEMINI_API_KEYS"` // comma-separated
	GitHubToken   string `mapstructure:"GITHUB_TOKEN"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`

	GitHubRepo   string `mapstructure:"github_repo"` // "owner/repo"
	GitHubBranch string `mapstructure:"github_branch"`

	QuotaMB      float64 `mapstructure:"quota_mb"`
	OCRLanguages string  `mapstructure:"ocr_languages"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("data_root", "data")
	v.SetDefault("generator", "openai")
	v.SetDefault("ai_endpoint", "https://api.openai.com/v1")
	v.SetDefault("chat_model", "gpt-4o-mini")
	v.SetDefault("embed_model", "text-embedding-3-small")
	v.SetDefault("gemini_model", "gemini-1.5-flash")
	v.SetDefault("github_branch", "main")
	v.SetDefault("quota_mb", 300)
	v.SetDefault("ocr_languages", "eng")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("GEMINI_API_KEYS")
	v.BindEnv("GITHUB_TOKEN")
	v.BindEnv("ADMIN_PASSWORD")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// GeminiKeys splits the comma-separated GEMINI_API_KEYS value.
func (c *Config) GeminiKeys() []string {
	if c.GeminiAPIKeys == "" {
		return nil
	}
	parts := strings.Split(c.GeminiAPIKeys, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}
