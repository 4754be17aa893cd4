// File: internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation         ErrorKind = "VALIDATION"
	KindPolicyDenied       ErrorKind = "POLICY_DENIED"
	KindBackendUnavailable ErrorKind = "BACKEND_UNAVAILABLE"
	KindNotFound           ErrorKind = "NOT_FOUND"
)

var (
	ErrInvalidPayload      = errors.New("message must contain text or media")
	ErrInvalidDisplayName  = errors.New("invalid display name")
	ErrInvalidMedia        = errors.New("invalid media")
	ErrInvalidLanguage     = errors.New("invalid language code")
	ErrInvalidChatPair     = errors.New("a chat needs two distinct participants")
	ErrSelfBlock           = errors.New("cannot block yourself")
	ErrNotParticipant      = errors.New("user is not a participant of this chat")
	ErrSendDenied          = errors.New("send denied")
	ErrDeleteWindowExpired = errors.New("delete window expired")
	ErrNotSender           = errors.New("only the sender can delete a message for everyone")
	ErrAccountDeleted      = errors.New("account has been deleted")
	ErrNotSignedIn         = errors.New("no user signed in")
	ErrInvalidToken        = errors.New("invalid identity token")

	ErrTranslationUnavailable = errors.New("translation unavailable")
	ErrBackendUnavailable     = errors.New("backend unavailable")

	ErrUserNotFound    = errors.New("user not found")
	ErrChatNotFound    = errors.New("chat not found")
	ErrMessageNotFound = errors.New("message not found")
)

// Error is the error type surfaced by every operation of the messaging core.
// Reason is safe to show to the end user verbatim.
type Error struct {
	Kind      ErrorKind
	Operation string
	Reason    string
	Err       error
	Cause     error
}

func (e *Error) Error() string {
	msg := e.Reason
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s error in %s: %s (caused by: %v)", e.Kind, e.Operation, msg, e.Cause)
	}
	return fmt.Sprintf("%s error in %s: %s", e.Kind, e.Operation, msg)
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func NewValidationError(operation string, err error, reason string) *Error {
	return &Error{Kind: KindValidation, Operation: operation, Err: err, Reason: reason}
}

func NewPolicyError(operation string, err error, reason string) *Error {
	return &Error{Kind: KindPolicyDenied, Operation: operation, Err: err, Reason: reason}
}

func NewNotFoundError(operation string, err error) *Error {
	return &Error{Kind: KindNotFound, Operation: operation, Err: err}
}

// NewBackendError marks a store, blob or translation failure. These are
// transient; callers decide whether the operation is safe to retry.
func NewBackendError(operation string, cause error) *Error {
	return &Error{Kind: KindBackendUnavailable, Operation: operation, Err: ErrBackendUnavailable, Cause: cause}
}

// KindOf classifies err. Errors that did not originate in the core are
// treated as backend failures.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindBackendUnavailable
}

// ReasonOf returns the user-facing reason carried by err, if any.
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Reason != "" {
			return e.Reason
		}
		if e.Err != nil {
			return e.Err.Error()
		}
	}
	return ""
}
