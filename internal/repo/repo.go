package repo

import (
	"context"

	"gorm.io/gorm"
)

type GormRepo struct {
	DB *gorm.DB
}

// Transaction runs fn against a repo bound to a single database transaction.
// Any error returned by fn rolls the whole unit back.
func (r *GormRepo) Transaction(ctx context.Context, fn func(tx *GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}
