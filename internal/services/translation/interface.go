// File: internal/services/translation/interface.go
package translation

import "context"

// Translator turns text into targetLanguage, a BCP 47 code such as "es".
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
