package user

import (
	"Foodgram-Backend/entities"
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type (
	UserRepository interface {
		CreateUser(ctx context.Context, user *entities.User) error
		GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
		GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
		GetUsers(ctx context.Context, limit, offset int) ([]*entities.User, int64, error)
		CheckEmail(ctx context.Context, email string) (bool, error)
		CheckUsername(ctx context.Context, username string) (bool, error)
		UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
		UpdateAvatar(ctx context.Context, id uuid.UUID, avatar string) error
	}

	userRepository struct {
		db *gorm.DB
	}
)

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUsers(ctx context.Context, limit, offset int) ([]*entities.User, int64, error) {
	var users []*entities.User
	var count int64

	if err := r.db.WithContext(ctx).Model(&entities.User{}).Count(&count).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count users")
	}

	if err := r.db.WithContext(ctx).
		Order("username asc").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, 0, errors.Wrap(err, "get users")
	}
	return users, count, nil
}

func (r *userRepository) CheckEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("LOWER(email) = LOWER(?)", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) CheckUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("id = ?", id).
		Update("password", hash).Error
}

func (r *userRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatar string) error {
	return r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("id = ?", id).
		Update("avatar", avatar).Error
}
