package user_services

import (
	"context"

	"github.com/iyunix/go-messenger/internal/domain"
	"github.com/iyunix/go-messenger/internal/repository/user"
)

// LifecycleService moves accounts between active, suspended and deleted.
// Deleted is terminal.
type LifecycleService struct {
	userRepo user.UserRepository
	logger   Logger
	now      Clock
}

func (s *LifecycleService) DeleteAccount(ctx context.Context, uid string) error {
	_, err := s.userRepo.Update(ctx, uid, func(u *domain.User) error {
		if u.IsDeleted() {
			return nil
		}
		now := s.now()
		u.Status = domain.UserStatusDeleted
		u.DeletedAt = &now
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("account deleted", "user_id", uid)
	return nil
}

func (s *LifecycleService) Suspend(ctx context.Context, uid string) error {
	return s.setStatus(ctx, uid, domain.UserStatusSuspended)
}

func (s *LifecycleService) Reinstate(ctx context.Context, uid string) error {
	return s.setStatus(ctx, uid, domain.UserStatusActive)
}

func (s *LifecycleService) setStatus(ctx context.Context, uid string, status domain.UserStatus) error {
	_, err := s.userRepo.Update(ctx, uid, func(u *domain.User) error {
		if u.IsDeleted() {
			return domain.NewPolicyError("set_status", domain.ErrAccountDeleted, "This account has been deleted")
		}
		u.Status = status
		return nil
	})
	if err != nil {
		s.logger.Warn("status change failed", "user_id", uid, "status", status, "error", err)
		return err
	}
	s.logger.Info("account status changed", "user_id", uid, "status", status)
	return nil
}
