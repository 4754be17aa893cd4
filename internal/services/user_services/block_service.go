package user_services

import (
	"context"
	"slices"

	"github.com/iyunix/go-messenger/internal/domain"
	"github.com/iyunix/go-messenger/internal/repository/user"
)

type BlockService struct {
	userRepo user.UserRepository
	logger   Logger
}

// Block adds other to uid's block list. Blocking twice is a no-op.
func (s *BlockService) Block(ctx context.Context, uid, other string) error {
	if uid == other {
		return domain.NewValidationError("block", domain.ErrSelfBlock, "You cannot block yourself")
	}
	if _, err := s.userRepo.FindByID(ctx, other); err != nil {
		return err
	}
	_, err := s.userRepo.Update(ctx, uid, func(u *domain.User) error {
		if !u.HasBlocked(other) {
			u.BlockList = append(u.BlockList, other)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("user blocked", "user_id", uid, "blocked_id", other)
	return nil
}

// Unblock removes other from uid's block list.
func (s *BlockService) Unblock(ctx context.Context, uid, other string) error {
	_, err := s.userRepo.Update(ctx, uid, func(u *domain.User) error {
		u.BlockList = slices.DeleteFunc(u.BlockList, func(id string) bool { return id == other })
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("user unblocked", "user_id", uid, "unblocked_id", other)
	return nil
}

// IsBlocked reports whether either user has blocked the other.
func (s *BlockService) IsBlocked(ctx context.Context, a, b string) (bool, error) {
	ua, err := s.userRepo.FindByID(ctx, a)
	if err != nil {
		return false, err
	}
	ub, err := s.userRepo.FindByID(ctx, b)
	if err != nil {
		return false, err
	}
	return ua.HasBlocked(b) || ub.HasBlocked(a), nil
}
