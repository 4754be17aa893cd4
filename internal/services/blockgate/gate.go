// Package blockgate decides whether one user may message another.
package blockgate

import (
	"context"
	"errors"

	"github.com/iyunix/go-messenger/internal/domain"
	"github.com/iyunix/go-messenger/internal/repository/user"
)

type Reason string

const (
	ReasonNone               Reason = ""
	ReasonRecipientMissing   Reason = "recipient_missing"
	ReasonRecipientDeleted   Reason = "recipient_deleted"
	ReasonRecipientSuspended Reason = "recipient_suspended"
	ReasonBlockedBySender    Reason = "blocked_by_sender"
	ReasonBlockedByRecipient Reason = "blocked_by_recipient"
	ReasonSenderDeleted      Reason = "sender_deleted"
)

var reasonText = map[Reason]string{
	ReasonRecipientMissing:   "User not found",
	ReasonRecipientDeleted:   "This user account has been deleted",
	ReasonRecipientSuspended: "This account is temporarily unavailable",
	ReasonBlockedByRecipient: "This user has blocked you",
	ReasonBlockedBySender:    "You have blocked this user",
	ReasonSenderDeleted:      "Your account has been deleted",
}

// Decision is the outcome of a send check. Message is the text shown to the
// sender when the send is denied.
type Decision struct {
	Allowed bool
	Reason  Reason
	Message string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason Reason) Decision {
	return Decision{Reason: reason, Message: reasonText[reason]}
}

// Err converts a denial into a POLICY_DENIED error. It returns nil for an
// allowed decision.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	sentinel := domain.ErrSendDenied
	if d.Reason == ReasonSenderDeleted {
		sentinel = errors.Join(domain.ErrSendDenied, domain.ErrAccountDeleted)
	}
	return domain.NewPolicyError("send", sentinel, d.Message)
}

// Evaluate is the pure decision over the two profiles. A nil recipient means
// no such user exists.
func Evaluate(sender, recipient *domain.User) Decision {
	if sender != nil && sender.IsDeleted() {
		return deny(ReasonSenderDeleted)
	}
	if recipient == nil {
		return deny(ReasonRecipientMissing)
	}
	switch recipient.EffectiveStatus() {
	case domain.UserStatusDeleted:
		return deny(ReasonRecipientDeleted)
	case domain.UserStatusSuspended:
		return deny(ReasonRecipientSuspended)
	}
	if sender == nil {
		return allow()
	}
	if recipient.HasBlocked(sender.ID) {
		return deny(ReasonBlockedByRecipient)
	}
	if sender.HasBlocked(recipient.ID) {
		return deny(ReasonBlockedBySender)
	}
	return allow()
}

type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Gate loads both profiles and applies Evaluate.
type Gate struct {
	users  user.UserRepository
	logger Logger
}

func New(users user.UserRepository, logger Logger) *Gate {
	return &Gate{users: users, logger: logger}
}

// CanSend returns the decision for senderID messaging recipientID. An error
// is returned only when the profiles could not be read.
func (g *Gate) CanSend(ctx context.Context, senderID, recipientID string) (Decision, error) {
	sender, err := g.lookup(ctx, senderID)
	if err != nil {
		return Decision{}, err
	}
	recipient, err := g.lookup(ctx, recipientID)
	if err != nil {
		return Decision{}, err
	}

	d := Evaluate(sender, recipient)
	if !d.Allowed {
		g.logger.Debug("send denied", "sender_id", senderID, "recipient_id", recipientID, "reason", d.Reason)
	}
	return d, nil
}

func (g *Gate) lookup(ctx context.Context, id string) (*domain.User, error) {
	u, err := g.users.FindByID(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		g.logger.Warn("profile lookup failed", "user_id", id, "error", err)
		return nil, err
	}
	return u, nil
}
