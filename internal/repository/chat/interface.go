// File: internal/repository/chat/interface.go
package chat

import (
	"context"
	"time"

	"github.com/iyunix/go-messenger/internal/domain"
)

type ChatRepository interface {
	// CreateIfAbsent inserts chat unless a record with the same id exists,
	// and returns the stored record either way.
	CreateIfAbsent(ctx context.Context, chat *domain.ChatSession) (*domain.ChatSession, error)
	FindByID(ctx context.Context, chatID string) (*domain.ChatSession, error)
	// FindByParticipant lists the chats of userID, most recent activity first.
	FindByParticipant(ctx context.Context, userID string) ([]domain.ChatSession, error)
	UpdateLastMessage(ctx context.Context, chatID, preview string, at time.Time) error
	UpdateTranslationSetting(ctx context.Context, chatID, userID string, setting domain.TranslationSetting) (*domain.ChatSession, error)
}

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
