// File: internal/repository/message/message_repository.go
package message

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iyunix/go-messenger/internal/domain"
)

const readBatchSize = 200

const unreadByViewer = "NOT EXISTS (SELECT 1 FROM message_reads WHERE message_reads.message_id = messages.id AND message_reads.user_id = ?)"

type gormMessageRepository struct {
	db     *gorm.DB
	logger Logger
}

func NewMessageRepository(db *gorm.DB, logger Logger) MessageRepository {
	return &gormMessageRepository{db: db, logger: logger}
}

func (r *gormMessageRepository) Create(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	if msg.ID == "" {
		msg.ID = domain.NewMessageID()
	}
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		r.logger.Error("database error creating message", "chat_id", msg.ChatID, "error", err)
		return nil, domain.NewBackendError("create_message", err)
	}
	if msg.ReadBy == nil {
		msg.ReadBy = []string{}
	}
	r.logger.Debug("message created", "message_id", msg.ID, "chat_id", msg.ChatID)
	return msg, nil
}

func (r *gormMessageRepository) FindByID(ctx context.Context, messageID string) (*domain.Message, error) {
	if messageID == "" {
		return nil, domain.NewNotFoundError("find_message", domain.ErrMessageNotFound)
	}
	var msg domain.Message
	db := r.db.WithContext(ctx)
	if err := db.Where("id = ?", messageID).First(&msg).Error; err != nil {
		return nil, r.mapError(err, "find_message")
	}
	var readers []string
	if err := db.Model(&domain.MessageRead{}).Where("message_id = ?", messageID).Order("user_id").Pluck("user_id", &readers).Error; err != nil {
		return nil, r.mapError(err, "find_message")
	}
	msg.ReadBy = nonNil(readers)
	return &msg, nil
}

func (r *gormMessageRepository) FindByChatID(ctx context.Context, chatID string) ([]domain.Message, error) {
	var messages []domain.Message
	var reads []domain.MessageRead
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", chatID).Order("sent_at ASC, id ASC").Find(&messages).Error; err != nil {
			return err
		}
		return tx.Model(&domain.MessageRead{}).
			Joins("JOIN messages ON messages.id = message_reads.message_id").
			Where("messages.chat_id = ?", chatID).
			Order("message_reads.user_id").
			Find(&reads).Error
	})
	if err != nil {
		return nil, r.mapError(err, "list_messages")
	}

	readers := make(map[string][]string, len(reads))
	for _, read := range reads {
		readers[read.MessageID] = append(readers[read.MessageID], read.UserID)
	}
	for i := range messages {
		messages[i].ReadBy = nonNil(readers[messages[i].ID])
	}
	return messages, nil
}

func (r *gormMessageRepository) MarkDeletedForEveryone(ctx context.Context, messageID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("id = ? AND deleted_for_everyone = ?", messageID, false).
		Updates(map[string]interface{}{
			"deleted_for_everyone": true,
			"deleted_at":           at,
		})
	if result.Error != nil {
		return false, r.mapError(result.Error, "delete_for_everyone")
	}
	if result.RowsAffected > 0 {
		r.logger.Info("message deleted for everyone", "message_id", messageID)
	}
	return result.RowsAffected > 0, nil
}

func (r *gormMessageRepository) MarkRead(ctx context.Context, chatID, viewerID string, at time.Time) (int64, error) {
	var marked int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		err := tx.Model(&domain.Message{}).
			Where("chat_id = ? AND receiver_id = ?", chatID, viewerID).
			Where(unreadByViewer, viewerID).
			Pluck("id", &ids).Error
		if err != nil || len(ids) == 0 {
			return err
		}
		reads := make([]domain.MessageRead, 0, len(ids))
		for _, id := range ids {
			reads = append(reads, domain.MessageRead{MessageID: id, UserID: viewerID, ReadAt: at})
		}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(reads, readBatchSize)
		marked = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, r.mapError(err, "mark_read")
	}
	if marked > 0 {
		r.logger.Debug("messages marked read", "chat_id", chatID, "user_id", viewerID, "count", marked)
	}
	return marked, nil
}

func (r *gormMessageRepository) CountUnread(ctx context.Context, chatID, viewerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("chat_id = ? AND receiver_id = ?", chatID, viewerID).
		Where(unreadByViewer, viewerID).
		Count(&count).Error
	if err != nil {
		return 0, r.mapError(err, "unread_count")
	}
	return count, nil
}

func (r *gormMessageRepository) DeleteByChatID(ctx context.Context, chatID string) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("message_id IN (?)", tx.Model(&domain.Message{}).Select("id").Where("chat_id = ?", chatID)).
			Delete(&domain.MessageRead{}).Error
		if err != nil {
			return err
		}
		result := tx.Where("chat_id = ?", chatID).Delete(&domain.Message{})
		deleted = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, r.mapError(err, "clear_history")
	}
	r.logger.Info("chat history cleared", "chat_id", chatID, "deleted", deleted)
	return deleted, nil
}

func (r *gormMessageRepository) mapError(err error, operation string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewNotFoundError(operation, domain.ErrMessageNotFound)
	}
	r.logger.Error("database query error", "operation", operation, "error", err)
	return domain.NewBackendError(operation, err)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
