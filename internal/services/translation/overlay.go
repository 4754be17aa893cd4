// File: internal/services/translation/overlay.go
package translation

import (
	"context"
	"strings"
	"sync"

	"github.com/iyunix/go-messenger/internal/domain"
	"github.com/iyunix/go-messenger/internal/ratelimit"
)

const maxCachedTranslations = 4096

type cacheKey struct {
	messageID string
	language  string
}

// Overlay produces the per-viewer translated text of a message. Results are
// cached per (message, language); message content never changes after send,
// so a cached translation never goes stale.
type Overlay struct {
	translator Translator
	limiter    *ratelimit.Pool
	config     *Config
	logger     Logger

	mu    sync.Mutex
	cache map[cacheKey]string
	order []cacheKey
}

func NewOverlay(translator Translator, limiter *ratelimit.Pool, config *Config, logger Logger) *Overlay {
	if config == nil {
		config = DefaultConfig()
	}
	return &Overlay{
		translator: translator,
		limiter:    limiter,
		config:     config,
		logger:     logger,
		cache:      make(map[cacheKey]string),
	}
}

// Concurrency is how many translations one reconciliation pass may run at once.
func (o *Overlay) Concurrency() int {
	if o.config.Concurrency < 1 {
		return 1
	}
	return o.config.Concurrency
}

// Translate returns text rendered in language. Any failure, including the
// per-call timeout, is reported as domain.ErrTranslationUnavailable so the
// caller can fall back to the original.
func (o *Overlay) Translate(ctx context.Context, messageID, text, language string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	key := cacheKey{messageID: messageID, language: language}
	if cached, ok := o.lookup(key); ok {
		return cached, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	if o.limiter != nil {
		if err := o.limiter.Wait(callCtx, language); err != nil {
			return "", o.unavailable(messageID, language, err)
		}
	}

	var translated string
	err := RetryWithBackoff(callCtx, o.config.MaxRetries, o.config.RetryDelay, func(ctx context.Context) error {
		out, err := o.translator.Translate(ctx, text, language)
		if err != nil {
			return err
		}
		translated = out
		return nil
	})
	if err != nil {
		return "", o.unavailable(messageID, language, err)
	}

	o.store(key, translated)
	return translated, nil
}

func (o *Overlay) unavailable(messageID, language string, cause error) error {
	o.logger.Warn("translation unavailable", "message_id", messageID, "language", language, "error", cause)
	return &domain.Error{
		Kind:      domain.KindBackendUnavailable,
		Operation: "translate",
		Err:       domain.ErrTranslationUnavailable,
		Cause:     cause,
	}
}

func (o *Overlay) lookup(key cacheKey) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.cache[key]
	return v, ok
}

func (o *Overlay) store(key cacheKey, value string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.cache[key]; ok {
		return
	}
	if len(o.order) >= maxCachedTranslations {
		oldest := o.order[0]
		o.order = o.order[1:]
		delete(o.cache, oldest)
	}
	o.cache[key] = value
	o.order = append(o.order, key)
}
