// Package search finds products by a case-insensitive substring of their name.
package search

import (
	"context"

	"github.com/Skotchmaster/ecom/internal/models"
	"github.com/Skotchmaster/ecom/internal/repo"
)

type Results struct {
	Total int64
	Items []models.Product
}

// Engine is implemented by every search backend. Index and Remove keep an
// external index in step with the catalog; the SQL engine ignores them.
type Engine interface {
	Search(ctx context.Context, key string, offset, limit int) (Results, error)
	Index(ctx context.Context, p *models.Product) error
	Remove(ctx context.Context, id uint) error
}

// SQLEngine searches the products table directly.
type SQLEngine struct {
	Repo *repo.GormRepo
}

func (e *SQLEngine) Search(ctx context.Context, key string, offset, limit int) (Results, error) {
	total, items, err := e.Repo.SearchProducts(ctx, key, offset, limit)
	if err != nil {
		return Results{}, err
	}
	return Results{Total: total, Items: items}, nil
}

func (e *SQLEngine) Index(context.Context, *models.Product) error { return nil }

func (e *SQLEngine) Remove(context.Context, uint) error { return nil }
