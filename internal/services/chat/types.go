// File: internal/services/chat/types.go
package chat

import (
	"time"

	"github.com/iyunix/go-messenger/internal/domain"
)

// Logger defines the logging interface used across chat services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

type ItemKind string

const (
	ItemMessage   ItemKind = "message"
	ItemSeparator ItemKind = "date"
)

// MessageView is one message as a particular viewer on a particular device
// sees it.
type MessageView struct {
	ID         string
	ChatID     string
	SenderID   string
	ReceiverID string
	// Text is always the original. TranslatedText is set only when the
	// viewer's translation setting produced one.
	Text           string
	TranslatedText string
	Media          *domain.Media
	SentAt         time.Time
	ReplyTo        *domain.ReplyRef
	Deleted        bool
	DeletedAt      *time.Time
	ReadBy         []string
	Outgoing       bool
}

// DisplayText is what the message bubble shows.
func (m MessageView) DisplayText() string {
	if m.Deleted {
		return domain.DeletedPlaceholder
	}
	if m.TranslatedText != "" {
		return m.TranslatedText
	}
	return m.Text
}

func (m MessageView) IsReadBy(userID string) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

// ViewItem is either a message or a date separator.
type ViewItem struct {
	Kind    ItemKind
	Message *MessageView
	Date    time.Time
	Label   string
}

// View is the complete reconciled state of a chat for one viewer. Each
// View replaces the previous one.
type View struct {
	ChatID     string
	ViewerID   string
	Generation uint64
	Items      []ViewItem
}

// Messages returns the message items in display order.
func (v View) Messages() []MessageView {
	out := make([]MessageView, 0, len(v.Items))
	for _, item := range v.Items {
		if item.Kind == ItemMessage {
			out = append(out, *item.Message)
		}
	}
	return out
}

// SendRequest is one outgoing message. Either Text or Media must be set.
type SendRequest struct {
	ChatID     string
	SenderID   string
	ReceiverID string
	Text       string
	Media      *domain.Media
	ReplyToID  string
}
