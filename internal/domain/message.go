// File: internal/domain/message.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeleteWindow bounds how long after sending a message its sender may still
// delete it for everyone.
const DeleteWindow = 24 * time.Hour

// DeletedPlaceholder replaces the content of a message deleted for everyone.
const DeletedPlaceholder = "This message was deleted"

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaFile  MediaKind = "file"
)

func (k MediaKind) Valid() bool {
	switch k {
	case MediaImage, MediaVideo, MediaFile:
		return true
	}
	return false
}

// Media references an uploaded blob.
type Media struct {
	URL      string    `json:"url"`
	Kind     MediaKind `json:"kind"`
	FileName string    `json:"file_name"`
	Size     int64     `json:"size"`
}

// ReplyRef is a point-in-time copy of the message being replied to. It is
// not a live link and keeps its content when the target is deleted.
type ReplyRef struct {
	MessageID  string `json:"message_id"`
	SenderName string `json:"sender_name"`
	Text       string `json:"text"`
}

// Message is immutable once written, except for the global deletion flag
// (set once) and the read set (grows only).
type Message struct {
	ID                 string     `json:"id" gorm:"primaryKey;size:36"`
	ChatID             string     `json:"chat_id" gorm:"size:36;not null;index:idx_messages_chat_sent,priority:1"`
	SenderID           string     `json:"sender_id" gorm:"size:128;not null"`
	ReceiverID         string     `json:"receiver_id" gorm:"size:128;not null;index"`
	Text               string     `json:"text"`
	TranslatedText     string     `json:"translated_text"`
	Media              *Media     `json:"media,omitempty" gorm:"serializer:json"`
	SentAt             time.Time  `json:"sent_at" gorm:"not null;index:idx_messages_chat_sent,priority:2"`
	ReplyTo            *ReplyRef  `json:"reply_to,omitempty" gorm:"serializer:json"`
	DeletedForEveryone bool       `json:"deleted_for_everyone" gorm:"not null;default:false"`
	DeletedAt          *time.Time `json:"deleted_at,omitempty"`
	ReadBy             []string   `json:"read_by" gorm:"-"`
}

// MessageRead records that UserID has acknowledged MessageID. The composite
// key makes the read set a set.
type MessageRead struct {
	MessageID string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"primaryKey;size:128"`
	ReadAt    time.Time `gorm:"not null"`
}

// NewMessageID returns a time-ordered UUIDv7. Ids from one process increase
// monotonically, so the id tie-break of Less follows send order.
func NewMessageID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// IsReadBy reports whether userID is in the read set.
func (m *Message) IsReadBy(userID string) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

// Less orders messages by send time, then by identifier.
func (m *Message) Less(other *Message) bool {
	if !m.SentAt.Equal(other.SentAt) {
		return m.SentAt.Before(other.SentAt)
	}
	return m.ID < other.ID
}

// Preview is the human string used as a chat's last-message preview and as
// the reply snippet of media-only messages.
func Preview(text string, media *Media) string {
	if strings.TrimSpace(text) != "" {
		return text
	}
	if media != nil {
		switch media.Kind {
		case MediaImage:
			return "📷 Photo"
		case MediaVideo:
			return "🎥 Video"
		case MediaFile:
			return "📎 " + media.FileName
		}
	}
	return "Message"
}

// Snippet is the text copied into a reply reference to m.
func (m *Message) Snippet() string {
	if m.DeletedForEveryone {
		return DeletedPlaceholder
	}
	return Preview(m.Text, m.Media)
}

// CanDeleteForEveryone reports whether now is still strictly inside the
// delete window of a message sent at sentAt.
func CanDeleteForEveryone(sentAt, now time.Time) bool {
	return now.Sub(sentAt) < DeleteWindow
}

// DeleteWindowRemaining returns how long the sender still has, or zero.
func DeleteWindowRemaining(sentAt, now time.Time) time.Duration {
	remaining := DeleteWindow - now.Sub(sentAt)
	if remaining <= 0 {
		return 0
	}
	return remaining
}

// FormatRemaining renders a remaining window as "5h 12m" or "12m", and an
// exhausted one as "".
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
