// File: internal/services/translation/errors.go
package translation

import "fmt"

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeNetwork    ErrorType = "NETWORK"
	ErrTypeProvider   ErrorType = "PROVIDER"
	ErrTypeRateLimit  ErrorType = "RATE_LIMIT"
	ErrTypeValidation ErrorType = "VALIDATION"
)

type TranslationError struct {
	Type      ErrorType
	Code      int
	Message   string
	Operation string
	Cause     error
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("translation %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("translation %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether another attempt could succeed.
func (e *TranslationError) Retryable() bool {
	return e.Type == ErrTypeNetwork || e.Type == ErrTypeProvider || e.Type == ErrTypeRateLimit
}

func NewConfigError(msg string) *TranslationError {
	return &TranslationError{Type: ErrTypeConfig, Message: msg, Operation: "config"}
}

func NewProviderError(operation, msg string, cause error) *TranslationError {
	return &TranslationError{Type: ErrTypeProvider, Operation: operation, Message: msg, Cause: cause}
}
