// File: internal/repository/chat/chat_repository.go
package chat

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iyunix/go-messenger/internal/domain"
)

type gormChatRepository struct {
	db     *gorm.DB
	logger Logger
}

func NewChatRepository(db *gorm.DB, logger Logger) ChatRepository {
	return &gormChatRepository{db: db, logger: logger}
}

func (r *gormChatRepository) CreateIfAbsent(ctx context.Context, chat *domain.ChatSession) (*domain.ChatSession, error) {
	if chat.ID == "" || chat.ParticipantA == "" || chat.ParticipantB == "" || chat.ParticipantA == chat.ParticipantB {
		return nil, domain.NewValidationError("create_chat", domain.ErrInvalidChatPair, "")
	}

	var stored domain.ChatSession
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(chat)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			r.logger.Info("chat created", "chat_id", chat.ID)
		}
		return tx.Where("id = ?", chat.ID).First(&stored).Error
	})
	if err != nil {
		r.logger.Error("database error creating chat", "chat_id", chat.ID, "error", err)
		return nil, domain.NewBackendError("create_chat", err)
	}
	return &stored, nil
}

func (r *gormChatRepository) FindByID(ctx context.Context, chatID string) (*domain.ChatSession, error) {
	if chatID == "" {
		return nil, domain.NewNotFoundError("find_chat", domain.ErrChatNotFound)
	}
	var chat domain.ChatSession
	err := r.db.WithContext(ctx).Where("id = ?", chatID).First(&chat).Error
	return r.handleFindError(err, &chat, "find_chat")
}

func (r *gormChatRepository) FindByParticipant(ctx context.Context, userID string) ([]domain.ChatSession, error) {
	var chats []domain.ChatSession
	err := r.db.WithContext(ctx).
		Where("participant_a = ? OR participant_b = ?", userID, userID).
		Order("last_message_at DESC, id ASC").
		Find(&chats).Error
	if err != nil {
		r.logger.Error("database error listing chats", "user_id", userID, "error", err)
		return nil, domain.NewBackendError("list_chats", err)
	}
	return chats, nil
}

func (r *gormChatRepository) UpdateLastMessage(ctx context.Context, chatID, preview string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&domain.ChatSession{}).
		Where("id = ?", chatID).
		Updates(map[string]interface{}{"last_message": preview, "last_message_at": at})
	if result.Error != nil {
		r.logger.Error("database error updating chat preview", "chat_id", chatID, "error", result.Error)
		return domain.NewBackendError("update_last_message", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("update_last_message", domain.ErrChatNotFound)
	}
	return nil
}

func (r *gormChatRepository) UpdateTranslationSetting(ctx context.Context, chatID, userID string, setting domain.TranslationSetting) (*domain.ChatSession, error) {
	var chat domain.ChatSession
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", chatID).First(&chat).Error; err != nil {
			return err
		}
		if chat.TranslationSettings == nil {
			chat.TranslationSettings = domain.TranslationSettings{}
		}
		chat.TranslationSettings[userID] = setting
		return tx.Save(&chat).Error
	})
	if err != nil {
		_, err = r.handleFindError(err, nil, "update_translation_setting")
		return nil, err
	}
	r.logger.Debug("translation setting updated", "chat_id", chatID, "user_id", userID,
		"enabled", setting.Enabled, "language", setting.TargetLanguage)
	return &chat, nil
}

func (r *gormChatRepository) handleFindError(err error, chat *domain.ChatSession, operation string) (*domain.ChatSession, error) {
	if err == nil {
		return chat, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError(operation, domain.ErrChatNotFound)
	}
	r.logger.Error("database query error", "operation", operation, "error", err)
	return nil, domain.NewBackendError(operation, err)
}
