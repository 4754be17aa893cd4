// File: internal/services/translation/openai_provider.go
package translation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You translate chat messages. Translate the user's message into the language with BCP 47 code %q. " +
	"Keep names, emoji and URLs unchanged. Reply with the translation only, without quotes or commentary."

type OpenAIProvider struct {
	config *Config
	client *openai.Client
	logger Logger
}

func NewOpenAIProvider(config *Config, logger Logger) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return &OpenAIProvider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
		logger: logger,
	}
}

func (p *OpenAIProvider) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &TranslationError{Type: ErrTypeValidation, Operation: "translate", Message: "empty text"}
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(systemPrompt, targetLanguage)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: p.config.Temperature,
	})
	if err != nil {
		return "", p.classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", NewProviderError("translate", "empty completion response", nil)
	}
	translated := strings.TrimSpace(resp.Choices[0].Message.Content)
	translated = strings.Trim(translated, "\"'")
	if translated == "" {
		return "", NewProviderError("translate", "translation returned empty result", nil)
	}

	p.logger.Debug("translation completed", "language", targetLanguage, "model", p.config.Model)
	return translated, nil
}

func (p *OpenAIProvider) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		p.logger.Warn("translation API error", "status", apiErr.HTTPStatusCode, "type", apiErr.Type)
		tErr := &TranslationError{
			Type:      ErrTypeProvider,
			Code:      apiErr.HTTPStatusCode,
			Operation: "translate",
			Message:   apiErr.Message,
			Cause:     err,
		}
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			tErr.Type = ErrTypeRateLimit
		case apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500:
			tErr.Type = ErrTypeValidation
		}
		return tErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	p.logger.Warn("translation request failed", "error", err)
	return &TranslationError{Type: ErrTypeNetwork, Operation: "translate", Message: "request failed", Cause: err}
}
