// File: internal/domain/chat.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

const DefaultTargetLanguage = "en"

// chatNamespace scopes the name-based UUIDs used as chat identifiers.
var chatNamespace = uuid.MustParse("6f0d2c4e-5b7a-4f57-9a43-3c1e9d8b2a10")

// TranslationSetting is one user's translation preference for one chat.
type TranslationSetting struct {
	Enabled        bool   `json:"enabled"`
	TargetLanguage string `json:"targetLanguage"`
}

// DefaultTranslationSetting is what a user gets before choosing anything.
func DefaultTranslationSetting() TranslationSetting {
	return TranslationSetting{Enabled: false, TargetLanguage: DefaultTargetLanguage}
}

// TranslationSettings maps a user identifier to that user's setting.
type TranslationSettings map[string]TranslationSetting

// For returns the setting of userID, or the default when none is stored.
func (s TranslationSettings) For(userID string) TranslationSetting {
	if setting, ok := s[userID]; ok {
		if setting.TargetLanguage == "" {
			setting.TargetLanguage = DefaultTargetLanguage
		}
		return setting
	}
	return DefaultTranslationSetting()
}

// ChatSession is the unique conversation between an unordered pair of users.
// ParticipantA is always the lexically smaller identifier.
type ChatSession struct {
	ID                  string              `json:"id" gorm:"primaryKey;size:36"`
	ParticipantA        string              `json:"participant_a" gorm:"size:128;not null;index"`
	ParticipantB        string              `json:"participant_b" gorm:"size:128;not null;index"`
	LastMessage         string              `json:"last_message"`
	LastMessageAt       time.Time           `json:"last_message_at" gorm:"index"`
	TranslationSettings TranslationSettings `json:"translation_settings" gorm:"serializer:json"`
	CreatedAt           time.Time           `json:"created_at"`
}

// NewChatSession builds the record for a first contact between a and b, with
// default translation settings for both.
func NewChatSession(a, b string, now time.Time) *ChatSession {
	first, second := OrderPair(a, b)
	return &ChatSession{
		ID:            ChatIDFor(a, b),
		ParticipantA:  first,
		ParticipantB:  second,
		LastMessageAt: now,
		TranslationSettings: TranslationSettings{
			first:  DefaultTranslationSetting(),
			second: DefaultTranslationSetting(),
		},
		CreatedAt: now,
	}
}

func (c *ChatSession) Participants() [2]string {
	return [2]string{c.ParticipantA, c.ParticipantB}
}

func (c *ChatSession) HasParticipant(userID string) bool {
	return userID != "" && (c.ParticipantA == userID || c.ParticipantB == userID)
}

// OtherParticipant returns the counterparty of userID.
func (c *ChatSession) OtherParticipant(userID string) string {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}

// OrderPair returns a and b in canonical order.
func OrderPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// ChatIDFor derives the chat identifier from the unordered pair, so that
// every caller computes the same id for the same two users.
func ChatIDFor(a, b string) string {
	first, second := OrderPair(a, b)
	return uuid.NewSHA1(chatNamespace, []byte(first+"\x00"+second)).String()
}
