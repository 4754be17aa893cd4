// File: internal/domain/user.go
package domain

import (
	"regexp"
	"slices"
	"strings"
	"time"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDeleted   UserStatus = "deleted"
)

// DisplayNameError is shown to the user whenever a display name is rejected.
const DisplayNameError = "Display name can only contain letters (a-z, A-Z), numbers (0-9), and underscores (_). Please try another name."

var displayNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// User is the profile record of the shared store. ID is the identifier
// handed out by the auth provider.
type User struct {
	ID               string     `json:"id" gorm:"primaryKey;size:128"`
	Email            string     `json:"email" gorm:"size:320"`
	DisplayName      string     `json:"display_name" gorm:"size:64"`
	Status           UserStatus `json:"status" gorm:"size:16;not null;default:active"`
	BlockList        []string   `json:"block_list" gorm:"serializer:json"`
	CreatedAt        time.Time  `json:"created_at"`
	LastLoginAt      *time.Time `json:"last_login_at"`
	ProfileUpdatedAt *time.Time `json:"profile_updated_at"`
	DeletedAt        *time.Time `json:"deleted_at"`
}

// HasBlocked reports whether other is on u's block list.
func (u *User) HasBlocked(other string) bool {
	return slices.Contains(u.BlockList, other)
}

func (u *User) IsDeleted() bool {
	return u.Status == UserStatusDeleted
}

// EffectiveStatus treats an empty status (records written before the field
// existed) as active.
func (u *User) EffectiveStatus() UserStatus {
	if u.Status == "" {
		return UserStatusActive
	}
	return u.Status
}

// ValidateDisplayName rejects empty names and anything outside ASCII letters,
// digits and underscore. It has no side effects.
func ValidateDisplayName(name string) error {
	if strings.TrimSpace(name) == "" || !displayNamePattern.MatchString(name) {
		return NewValidationError("validate_display_name", ErrInvalidDisplayName, DisplayNameError)
	}
	return nil
}
