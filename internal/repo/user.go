package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/ecom/internal/models"
)

var ErrUserAlreadyExist = errors.New("user already exist")

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) CreateUserIfNotExists(ctx context.Context, u *models.User) error {
	tx := r.DB.WithContext(ctx).Where("email = ?", u.Email).FirstOrCreate(u)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrUserAlreadyExist
	}
	return nil
}

func (r *GormRepo) UpdateUserRole(ctx context.Context, id uint, role string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role).Error
}
