package repo

import (
	"context"
	"strings"

	"github.com/Skotchmaster/ecom/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product := models.Product{}
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) GetProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

// GetProductsByIDs keeps the order of ids; unknown or deleted ids are skipped.
func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var found []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	items := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			items = append(items, p)
		}
	}
	return items, nil
}

// SearchProducts matches key as a case-insensitive substring of the product name.
func (r *GormRepo) SearchProducts(ctx context.Context, key string, offset, limit int) (int64, []models.Product, error) {
	pattern := "%" + escapeLike(strings.ToLower(key)) + "%"
	where := "LOWER(name) LIKE ? ESCAPE '\\'"

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Where(where, pattern).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where(where, pattern).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		return nil, err
	}
	return prod, nil
}

// UpdateProduct replaces the mutable fields of an existing product.
func (r *GormRepo) UpdateProduct(ctx context.Context, id uint, upd models.Product) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&prod, id).Error; err != nil {
		return nil, err
	}

	prod.Name = upd.Name
	prod.Description = upd.Description
	prod.Price = upd.Price
	prod.StockQuantity = upd.StockQuantity

	if err := r.DB.WithContext(ctx).Save(&prod).Error; err != nil {
		return nil, err
	}
	return &prod, nil
}

// DeleteProduct soft-deletes the product and drops it from every cart.
// Order items keep pointing at the soft-deleted row.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error
	})
}

// LockProducts loads the products FOR UPDATE in ascending id order so that
// concurrent placements acquire row locks in the same sequence.
func (r *GormRepo) LockProducts(ctx context.Context, ids []uint) ([]models.Product, error) {
	var items []models.Product
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// DecrementStock lowers stock only if enough is left. false means nothing changed.
func (r *GormRepo) DecrementStock(ctx context.Context, id uint, quantity int) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
