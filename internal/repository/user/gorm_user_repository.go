package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iyunix/go-messenger/internal/domain"
)

var ErrUserExists = errors.New("user already exists")

type gormUserRepository struct {
	db     *gorm.DB
	logger Logger
}

func NewGormUserRepository(db *gorm.DB, logger Logger) UserRepository {
	return &gormUserRepository{db: db, logger: logger}
}

// Create inserts a new profile. An existing id yields ErrUserExists.
func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if strings.TrimSpace(user.ID) == "" {
		return nil, domain.NewValidationError("create_user", domain.ErrUserNotFound, "user id is required")
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if user.Status == "" {
		user.Status = domain.UserStatusActive
	}
	if user.BlockList == nil {
		user.BlockList = []string{}
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(user)
	if result.Error != nil {
		r.logger.Error("database error creating user", "user_id", user.ID, "error", result.Error)
		return nil, domain.NewBackendError("create_user", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, domain.NewValidationError("create_user", ErrUserExists, "user already exists")
	}

	r.logger.Debug("user created", "user_id", user.ID)
	return user, nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.NewNotFoundError("find_user", domain.ErrUserNotFound)
	}
	var user domain.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	return r.handleFindError(err, &user, "find_user")
}

func (r *gormUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Order("display_name asc, id asc").Find(&users).Error; err != nil {
		r.logger.Error("database error listing users", "error", err)
		return nil, domain.NewBackendError("list_users", err)
	}
	return users, nil
}

func (r *gormUserRepository) Update(ctx context.Context, id string, mutate func(u *domain.User) error) (*domain.User, error) {
	var updated domain.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&updated).Error; err != nil {
			return err
		}
		if err := mutate(&updated); err != nil {
			return err
		}
		return tx.Save(&updated).Error
	})
	if err != nil {
		var domainErr *domain.Error
		if errors.As(err, &domainErr) {
			return nil, err
		}
		_, findErr := r.handleFindError(err, nil, "update_user")
		return nil, findErr
	}
	r.logger.Debug("user updated", "user_id", id)
	return &updated, nil
}

func (r *gormUserRepository) handleFindError(err error, user *domain.User, operation string) (*domain.User, error) {
	if err == nil {
		return user, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError(operation, domain.ErrUserNotFound)
	}
	r.logger.Error("database query error", "operation", operation, "error", err)
	return nil, domain.NewBackendError(operation, err)
}
