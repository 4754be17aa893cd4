// File: internal/services/user_services/user_service.go
package user_services

import (
	"context"
	"time"

	"github.com/iyunix/go-messenger/internal/domain"
	"github.com/iyunix/go-messenger/internal/repository/user"
)

// UserService is the main service that composes other user-related services
type UserService struct {
	*ProfileService
	*LifecycleService
	*BlockService
}

func NewUserService(userRepo user.UserRepository, logger Logger) *UserService {
	return NewUserServiceWithClock(userRepo, logger, time.Now)
}

func NewUserServiceWithClock(userRepo user.UserRepository, logger Logger, now Clock) *UserService {
	return &UserService{
		ProfileService:   &ProfileService{userRepo: userRepo, logger: logger, now: now},
		LifecycleService: &LifecycleService{userRepo: userRepo, logger: logger, now: now},
		BlockService:     &BlockService{userRepo: userRepo, logger: logger},
	}
}

// UserServiceInterface defines the complete interface for user operations
type UserServiceInterface interface {
	// Profile methods
	Register(ctx context.Context, uid, email, displayName string) (*domain.User, error)
	Profile(ctx context.Context, uid string) (*domain.User, error)
	Contacts(ctx context.Context, uid string) ([]domain.User, error)
	RecordLogin(ctx context.Context, uid string) error
	UpdateDisplayName(ctx context.Context, uid, displayName string) (*domain.User, error)

	// Lifecycle methods
	DeleteAccount(ctx context.Context, uid string) error
	Suspend(ctx context.Context, uid string) error
	Reinstate(ctx context.Context, uid string) error

	// Block list methods
	Block(ctx context.Context, uid, other string) error
	Unblock(ctx context.Context, uid, other string) error
	IsBlocked(ctx context.Context, a, b string) (bool, error)
}

var _ UserServiceInterface = (*UserService)(nil)
