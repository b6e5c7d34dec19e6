package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/ecom/internal/models"
	"github.com/Skotchmaster/ecom/internal/repo"
	"github.com/Skotchmaster/ecom/internal/search"
	"github.com/Skotchmaster/ecom/internal/transport"
	"github.com/Skotchmaster/ecom/pkg/events"
	"github.com/Skotchmaster/ecom/pkg/logging"
	"gorm.io/gorm"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Search search.Engine
	Events events.Publisher
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return p, err
}

func (s *CatalogService) GetProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.GetProducts(ctx, offset, limit)
}

// SearchProducts falls back to the plain listing for a blank key.
func (s *CatalogService) SearchProducts(ctx context.Context, key string, offset, limit int) (int64, []models.Product, error) {
	if strings.TrimSpace(key) == "" {
		return s.Repo.GetProducts(ctx, offset, limit)
	}
	res, err := s.Search.Search(ctx, key, offset, limit)
	if err != nil {
		return 0, nil, err
	}
	return res.Total, res.Items, nil
}

func productFromRequest(req transport.ProductRequest) (models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Product{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if req.Price == nil {
		return models.Product{}, fmt.Errorf("%w: price is required", ErrValidation)
	}
	if req.Price.IsNegative() {
		return models.Product{}, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if req.StockQuantity < 0 {
		return models.Product{}, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}
	return models.Product{
		Name:          name,
		Description:   strings.TrimSpace(req.Description),
		Price:         models.NewMoney(req.Price.Decimal),
		StockQuantity: req.StockQuantity,
	}, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.ProductRequest) (*models.Product, error) {
	prod, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}

	created, err := s.Repo.CreateProduct(ctx, &prod)
	if err != nil {
		return nil, err
	}

	s.reindex(ctx, created)
	publish(ctx, s.Events, events.TopicProduct, idKey(created.ID), events.ProductCreated, created)
	return created, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, req transport.ProductRequest) (*models.Product, error) {
	upd, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}

	var prod *models.Product
	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		var err error
		prod, err = tx.UpdateProduct(ctx, id, upd)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, err
	}

	s.reindex(ctx, prod)
	publish(ctx, s.Events, events.TopicProduct, idKey(prod.ID), events.ProductUpdated, prod)
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return err
	}

	if s.Search != nil {
		if err := s.Search.Remove(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_remove_failed", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProduct, idKey(id), events.ProductDeleted, map[string]any{"id": id})
	return nil
}

func (s *CatalogService) reindex(ctx context.Context, p *models.Product) {
	if s.Search == nil {
		return
	}
	if err := s.Search.Index(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
	}
}
