package user

import (
	"context"

	"github.com/iyunix/go-messenger/internal/domain"
)

// UserRepository handles user records in the shared store.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	// Update loads the user, applies mutate and saves the result inside one
	// transaction. If mutate returns an error nothing is written.
	Update(ctx context.Context, id string, mutate func(u *domain.User) error) (*domain.User, error)
}

// Logger is the logging surface used by the repository.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
