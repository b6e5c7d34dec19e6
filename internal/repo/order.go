package repo

import (
	"context"

	"github.com/Skotchmaster/ecom/internal/models"
	"gorm.io/gorm"
)

// CreateOrder inserts the order together with its items.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.DB.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders returns the user's orders newest first.
func (r *GormRepo) ListOrders(ctx context.Context, userID uint, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("user_id = ?", userID).
		Order("order_date DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}
