// internal/engine/mistral/config.go
package mistral

import (
	"time"

	"review-rating-engine/internal/common/config"
)

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	MaxRetries  int
	CacheTTL    time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		BaseURL:     cfg.Mistral.BaseURL,
		APIKey:      cfg.Mistral.APIKey,
		Model:       cfg.Mistral.Model,
		Temperature: cfg.Mistral.Temperature,
		MaxTokens:   cfg.Mistral.MaxTokens,
		Timeout:     config.GetDuration(cfg.Mistral.Timeout),
		MaxRetries:  cfg.Mistral.MaxRetries,
		CacheTTL:    config.CacheTTL(cfg),
	}
}
