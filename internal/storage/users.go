package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type UserRepository interface {
	// GetByTelegramID returns nil without error when no such user exists.
	GetByTelegramID(ctx context.Context, telegramID int64) (*User, error)
	// Register creates the user unless one with the same telegram_id already
	// exists. Reports whether a row was created.
	Register(ctx context.Context, u *User) (bool, error)
	ListStudents(ctx context.Context) ([]User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Register(ctx context.Context, u *User) (bool, error) {
	existing, err := r.GetByTelegramID(ctx, u.TelegramID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		*u = *existing
		return false, nil
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *userRepository) ListStudents(ctx context.Context) ([]User, error) {
	var students []User
	err := r.db.WithContext(ctx).
		Where("role = ?", RoleStudent).
		Order("full_name").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}
