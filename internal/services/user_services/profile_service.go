package user_services

import (
	"context"
	"strings"

	"github.com/iyunix/go-messenger/internal/domain"
	"github.com/iyunix/go-messenger/internal/repository/user"
)

type ProfileService struct {
	userRepo user.UserRepository
	logger   Logger
	now      Clock
}

// Register creates the profile of a freshly authenticated user.
func (s *ProfileService) Register(ctx context.Context, uid, email, displayName string) (*domain.User, error) {
	if err := domain.ValidateDisplayName(displayName); err != nil {
		s.logger.Warn("registration rejected", "user_id", uid, "reason", "invalid_display_name")
		return nil, err
	}

	u, err := s.userRepo.Create(ctx, &domain.User{
		ID:          uid,
		Email:       strings.TrimSpace(email),
		DisplayName: displayName,
		Status:      domain.UserStatusActive,
		BlockList:   []string{},
		CreatedAt:   s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", uid)
	return u, nil
}

func (s *ProfileService) Profile(ctx context.Context, uid string) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, uid)
}

// Contacts lists the users uid can start a chat with: everyone except uid
// and deleted accounts, ordered by display name.
func (s *ProfileService) Contacts(ctx context.Context, uid string) ([]domain.User, error) {
	all, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	contacts := make([]domain.User, 0, len(all))
	for _, u := range all {
		if u.ID == uid || u.IsDeleted() {
			continue
		}
		contacts = append(contacts, u)
	}
	return contacts, nil
}

// RecordLogin stamps the last-login time. Deleted accounts cannot sign in.
func (s *ProfileService) RecordLogin(ctx context.Context, uid string) error {
	_, err := s.userRepo.Update(ctx, uid, func(u *domain.User) error {
		if u.IsDeleted() {
			return domain.NewPolicyError("record_login", domain.ErrAccountDeleted, "This account has been deleted")
		}
		now := s.now()
		u.LastLoginAt = &now
		return nil
	})
	return err
}

func (s *ProfileService) UpdateDisplayName(ctx context.Context, uid, displayName string) (*domain.User, error) {
	if err := domain.ValidateDisplayName(displayName); err != nil {
		return nil, err
	}
	u, err := s.userRepo.Update(ctx, uid, func(u *domain.User) error {
		if u.IsDeleted() {
			return domain.NewPolicyError("update_display_name", domain.ErrAccountDeleted, "This account has been deleted")
		}
		now := s.now()
		u.DisplayName = displayName
		u.ProfileUpdatedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("display name updated", "user_id", uid)
	return u, nil
}
