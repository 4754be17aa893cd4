// File: internal/repository/message/interface.go
package message

import (
	"context"
	"time"

	"github.com/iyunix/go-messenger/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) (*domain.Message, error)
	FindByID(ctx context.Context, messageID string) (*domain.Message, error)
	// FindByChatID returns every message of the chat ordered by send time
	// then id, with read sets populated.
	FindByChatID(ctx context.Context, chatID string) ([]domain.Message, error)
	// MarkDeletedForEveryone flips the deletion flag once. It reports false
	// when the message was already deleted.
	MarkDeletedForEveryone(ctx context.Context, messageID string, at time.Time) (bool, error)
	// MarkRead adds viewerID to the read set of every message of the chat
	// addressed to the viewer and returns how many sets grew.
	MarkRead(ctx context.Context, chatID, viewerID string, at time.Time) (int64, error)
	CountUnread(ctx context.Context, chatID, viewerID string) (int64, error)
	DeleteByChatID(ctx context.Context, chatID string) (int64, error)
}

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
