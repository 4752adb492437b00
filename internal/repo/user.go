package repo

import (
	"context"

	"github.com/Skotchmaster/shopcore/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) UserTaken(ctx context.Context, username, email string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
