// Package directory maps unordered user pairs to their single chat session
// and owns per-user translation settings of each chat.
package directory

import (
	"context"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/iyunix/go-messenger/internal/domain"
	"github.com/iyunix/go-messenger/internal/repository/chat"
)

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

type Directory struct {
	chats  chat.ChatRepository
	logger Logger
	now    func() time.Time
}

func New(chats chat.ChatRepository, logger Logger) *Directory {
	return &Directory{chats: chats, logger: logger, now: time.Now}
}

// GetOrCreate returns the session of the pair {a, b}, creating it on first
// contact. The id is derived from the pair, so concurrent callers converge on
// the same record.
func (d *Directory) GetOrCreate(ctx context.Context, a, b string) (*domain.ChatSession, error) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" || a == b {
		return nil, domain.NewValidationError("get_or_create_chat", domain.ErrInvalidChatPair, "")
	}

	existing, err := d.chats.FindByID(ctx, domain.ChatIDFor(a, b))
	if err == nil {
		return existing, nil
	}
	if domain.KindOf(err) != domain.KindNotFound {
		return nil, err
	}

	session, err := d.chats.CreateIfAbsent(ctx, domain.NewChatSession(a, b, d.now()))
	if err != nil {
		return nil, err
	}
	d.logger.Debug("chat session ready", "chat_id", session.ID)
	return session, nil
}

// Get returns the session chatID after checking that userID takes part in it.
func (d *Directory) Get(ctx context.Context, chatID, userID string) (*domain.ChatSession, error) {
	session, err := d.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !session.HasParticipant(userID) {
		return nil, domain.NewPolicyError("get_chat", domain.ErrNotParticipant, "")
	}
	return session, nil
}

// Lookup returns the session chatID without a membership check.
func (d *Directory) Lookup(ctx context.Context, chatID string) (*domain.ChatSession, error) {
	return d.chats.FindByID(ctx, chatID)
}

// ListForUser returns the sessions userID takes part in, most recent first.
func (d *Directory) ListForUser(ctx context.Context, userID string) ([]domain.ChatSession, error) {
	return d.chats.FindByParticipant(ctx, userID)
}

// TranslationSetting returns userID's setting in chatID, or the default.
func (d *Directory) TranslationSetting(ctx context.Context, chatID, userID string) (domain.TranslationSetting, error) {
	session, err := d.Get(ctx, chatID, userID)
	if err != nil {
		return domain.TranslationSetting{}, err
	}
	return session.TranslationSettings.For(userID), nil
}

// UpdateTranslationSetting stores userID's setting in chatID. The other
// participant's entry is left untouched.
func (d *Directory) UpdateTranslationSetting(ctx context.Context, chatID, userID string, setting domain.TranslationSetting) (*domain.ChatSession, error) {
	tag, err := ParseLanguage(setting.TargetLanguage)
	if err != nil {
		return nil, err
	}
	setting.TargetLanguage = tag

	if _, err := d.Get(ctx, chatID, userID); err != nil {
		return nil, err
	}
	session, err := d.chats.UpdateTranslationSetting(ctx, chatID, userID, setting)
	if err != nil {
		return nil, err
	}
	d.logger.Info("translation setting changed", "chat_id", chatID, "user_id", userID,
		"enabled", setting.Enabled, "language", setting.TargetLanguage)
	return session, nil
}

// ParseLanguage validates a BCP 47 code and returns its canonical form.
// An empty code means the default language.
func ParseLanguage(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.DefaultTargetLanguage, nil
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", domain.NewValidationError("parse_language", domain.ErrInvalidLanguage, "Unsupported language code: "+code)
	}
	return tag.String(), nil
}

// Touch records the latest activity of chatID for chat listings. The
// preview is advisory and may lag the message log.
func (d *Directory) Touch(ctx context.Context, chatID, preview string, at time.Time) error {
	return d.chats.UpdateLastMessage(ctx, chatID, preview, at)
}
