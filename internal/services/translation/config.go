// File: internal/services/translation/config.go
package translation

import (
	"fmt"
	"time"
)

type Config struct {
	// Backend
	APIKey  string
	BaseURL string
	Model   string

	// Per-call budget. A translation that has not finished within Timeout
	// is abandoned and the original text is shown instead.
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	// Fan-out and throttling
	Concurrency int
	RPS         float64
	Burst       int

	Temperature float32
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return NewConfigError("TRANSLATION_API_KEY is required")
	}
	if c.Model == "" {
		return NewConfigError("TRANSLATION_MODEL is required")
	}
	if c.Timeout <= 0 {
		return NewConfigError("timeout must be positive")
	}
	if c.MaxRetries < 1 {
		return NewConfigError("max retries must be at least 1")
	}
	if c.Concurrency < 1 {
		return NewConfigError(fmt.Sprintf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "https://api.openai.com/v1",
		Model:       "gpt-4o-mini",
		Timeout:     8 * time.Second,
		MaxRetries:  2,
		RetryDelay:  300 * time.Millisecond,
		Concurrency: 4,
		RPS:         5,
		Burst:       10,
		Temperature: 0.1,
	}
}
