package repo

import (
	"context"

	"github.com/Skotchmaster/ecom/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetCart loads the user's cart with its items in insertion order.
// With forUpdate the cart row stays locked until the surrounding transaction ends.
func (r *GormRepo) GetCart(ctx context.Context, userID uint, forUpdate bool) (*models.Cart, error) {
	q := r.DB.WithContext(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var cart models.Cart
	if err := q.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}

	items, err := r.cartItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	return &cart, nil
}

func (r *GormRepo) cartItems(ctx context.Context, cartID uint) ([]models.CartItem, error) {
	items := []models.CartItem{}
	if err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetOrCreateCart returns the user's cart, creating an empty one if needed, locked FOR UPDATE.
func (r *GormRepo) GetOrCreateCart(ctx context.Context, userID uint) (*models.Cart, error) {
	if err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&models.Cart{UserID: userID}).Error; err != nil {
		return nil, err
	}
	return r.GetCart(ctx, userID, true)
}

func (r *GormRepo) AddCartItem(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (r *GormRepo) SetCartItemQuantity(ctx context.Context, itemID uint, quantity int) error {
	res := r.DB.WithContext(ctx).Model(&models.CartItem{}).Where("id = ?", itemID).Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCartItem removes the item only if it belongs to cartID and reports how many rows went away.
func (r *GormRepo) DeleteCartItem(ctx context.Context, cartID, itemID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Where("id = ? AND cart_id = ?", itemID, cartID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) ClearCart(ctx context.Context, cartID uint) error {
	return r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
