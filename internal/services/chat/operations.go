// File: internal/services/chat/operations.go
package chat

import (
	"context"
	"strings"

	"github.com/iyunix/go-messenger/internal/domain"
	"github.com/iyunix/go-messenger/internal/metrics"
)

// Send appends a message to the shared log. The block check runs before
// anything is written; a denied or invalid send leaves no trace. A failed
// send must not be retried blindly since the write may have landed.
func (e *Engine) Send(ctx context.Context, req SendRequest) (*domain.Message, error) {
	if err := validatePayload(req); err != nil {
		e.metrics.ObserveSend(metrics.SendInvalid)
		return nil, err
	}

	session, err := e.directory.Get(ctx, req.ChatID, req.SenderID)
	if err != nil {
		e.metrics.ObserveSend(metrics.SendFailed)
		return nil, err
	}
	if req.ReceiverID == req.SenderID || !session.HasParticipant(req.ReceiverID) {
		e.metrics.ObserveSend(metrics.SendInvalid)
		return nil, domain.NewPolicyError("send", domain.ErrNotParticipant, "")
	}

	decision, err := e.gate.CanSend(ctx, req.SenderID, req.ReceiverID)
	if err != nil {
		e.metrics.ObserveSend(metrics.SendFailed)
		return nil, err
	}
	if !decision.Allowed {
		e.metrics.ObserveSend(metrics.SendDenied)
		return nil, decision.Err()
	}

	var reply *domain.ReplyRef
	if req.ReplyToID != "" {
		if reply, err = e.replyRef(ctx, req.ChatID, req.ReplyToID); err != nil {
			e.metrics.ObserveSend(metrics.SendFailed)
			return nil, err
		}
	}

	msg := &domain.Message{
		ID:         domain.NewMessageID(),
		ChatID:     req.ChatID,
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Text:       req.Text,
		Media:      req.Media,
		SentAt:     e.now(),
		ReplyTo:    reply,
	}
	if _, err := e.messages.Create(ctx, msg); err != nil {
		e.metrics.ObserveSend(metrics.SendFailed)
		return nil, err
	}

	if err := e.directory.Touch(ctx, req.ChatID, domain.Preview(msg.Text, msg.Media), msg.SentAt); err != nil {
		e.logger.Warn("chat preview not updated", "chat_id", req.ChatID, "message_id", msg.ID, "error", err)
	}
	e.publish(ctx, req.ChatID)
	e.metrics.ObserveSend(metrics.SendOK)
	e.logger.Info("message sent", "chat_id", req.ChatID, "message_id", msg.ID,
		"has_media", msg.Media != nil, "is_reply", reply != nil)
	return msg, nil
}

func validatePayload(req SendRequest) error {
	if strings.TrimSpace(req.Text) == "" && req.Media == nil {
		return domain.NewValidationError("send", domain.ErrInvalidPayload, "")
	}
	if req.Media != nil && (req.Media.URL == "" || !req.Media.Kind.Valid()) {
		return domain.NewValidationError("send", domain.ErrInvalidMedia, "Attachment is incomplete")
	}
	return nil
}

// replyRef copies what the reply needs from its target now, so the
// reference outlives later changes to the target.
func (e *Engine) replyRef(ctx context.Context, chatID, targetID string) (*domain.ReplyRef, error) {
	target, err := e.messages.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.ChatID != chatID {
		return nil, domain.NewNotFoundError("reply", domain.ErrMessageNotFound)
	}

	name := e.config.UnknownSenderName
	author, err := e.users.FindByID(ctx, target.SenderID)
	switch {
	case err == nil:
		name = author.DisplayName
	case domain.KindOf(err) != domain.KindNotFound:
		return nil, err
	}
	return &domain.ReplyRef{MessageID: target.ID, SenderName: name, Text: target.Snippet()}, nil
}

// DeleteLocal hides messageID on this device only. Open views of the chat
// are reconciled again straight away.
func (e *Engine) DeleteLocal(ctx context.Context, chatID, messageID string) error {
	if err := e.tombstones.Add(chatID, messageID); err != nil {
		e.logger.Error("local delete failed", "chat_id", chatID, "message_id", messageID, "error", err)
		return domain.NewBackendError("delete_local", err)
	}
	e.refreshChat(chatID)
	return nil
}

// DeleteForEveryone replaces messageID with a placeholder for every viewer.
// Only its sender may do so, and only strictly within DeleteWindow of
// sending. Deleting an already deleted message is a no-op.
func (e *Engine) DeleteForEveryone(ctx context.Context, chatID, messageID, requesterID string) error {
	msg, err := e.messages.FindByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.ChatID != chatID {
		return domain.NewNotFoundError("delete_for_everyone", domain.ErrMessageNotFound)
	}
	if msg.SenderID != requesterID {
		return domain.NewPolicyError("delete_for_everyone", domain.ErrNotSender, "You can only delete your own messages for everyone")
	}
	if msg.DeletedForEveryone {
		return nil
	}
	now := e.now()
	if !domain.CanDeleteForEveryone(msg.SentAt, now) {
		return domain.NewPolicyError("delete_for_everyone", domain.ErrDeleteWindowExpired,
			"Messages can only be deleted for everyone within 24 hours of sending")
	}

	changed, err := e.messages.MarkDeletedForEveryone(ctx, messageID, now)
	if err != nil {
		return err
	}
	if changed {
		e.publish(ctx, chatID)
	}
	return nil
}

// MarkRead acknowledges every message of chatID addressed to viewerID.
func (e *Engine) MarkRead(ctx context.Context, chatID, viewerID string) error {
	if _, err := e.directory.Get(ctx, chatID, viewerID); err != nil {
		return err
	}
	marked, err := e.messages.MarkRead(ctx, chatID, viewerID, e.now())
	if err != nil {
		return err
	}
	if marked > 0 {
		e.publish(ctx, chatID)
	}
	return nil
}

// UnreadCount counts messages addressed to viewerID that viewerID has not
// read. Messages hidden locally still count: the badge has to agree with
// the viewer's other devices.
func (e *Engine) UnreadCount(ctx context.Context, chatID, viewerID string) (int, error) {
	n, err := e.messages.CountUnread(ctx, chatID, viewerID)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// ClearHistory removes every message of chatID from the shared log. The
// session itself stays.
func (e *Engine) ClearHistory(ctx context.Context, chatID, requesterID string) error {
	if _, err := e.directory.Get(ctx, chatID, requesterID); err != nil {
		return err
	}
	if _, err := e.messages.DeleteByChatID(ctx, chatID); err != nil {
		return err
	}
	if err := e.tombstones.Clear(chatID); err != nil {
		e.logger.Warn("local tombstones not cleared", "chat_id", chatID, "error", err)
	}
	if err := e.directory.Touch(ctx, chatID, "", e.now()); err != nil {
		e.logger.Warn("chat preview not cleared", "chat_id", chatID, "error", err)
	}
	e.publish(ctx, chatID)
	return nil
}

// UpdateTranslationSetting stores userID's preference and reconciles the
// open views of chatID with it.
func (e *Engine) UpdateTranslationSetting(ctx context.Context, chatID, userID string, setting domain.TranslationSetting) error {
	if _, err := e.directory.UpdateTranslationSetting(ctx, chatID, userID, setting); err != nil {
		return err
	}
	e.refreshChat(chatID)
	return nil
}
