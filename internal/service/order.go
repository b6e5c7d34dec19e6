package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/ecom/internal/models"
	"github.com/Skotchmaster/ecom/internal/repo"
	"github.com/Skotchmaster/ecom/pkg/events"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Now    func() time.Time
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// PlaceOrder converts the user's cart into an order in one transaction.
// Every referenced product row is locked before any stock is checked, so two
// placements cannot both pass the check for the same units. Any failure leaves
// stock, cart and orders untouched.
func (s *OrderService) PlaceOrder(ctx context.Context, email string) (*models.Order, error) {
	var order *models.Order
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		user, err := lookupUser(ctx, tx, email)
		if err != nil {
			return err
		}

		cart, err := tx.GetCart(ctx, user.ID, true)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: cart is empty", ErrNotFound)
			}
			return err
		}
		if len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		ids := make([]uint, 0, len(cart.Items))
		for _, it := range cart.Items {
			ids = append(ids, it.ProductID)
		}
		locked, err := tx.LockProducts(ctx, ids)
		if err != nil {
			return err
		}
		products := make(map[uint]*models.Product, len(locked))
		for i := range locked {
			products[locked[i].ID] = &locked[i]
		}

		o := &models.Order{
			UserID:    user.ID,
			OrderDate: s.now(),
			Status:    models.OrderStatusPlaced,
			Items:     make([]models.OrderItem, 0, len(cart.Items)),
		}
		total := decimal.Zero

		for _, it := range cart.Items {
			p, ok := products[it.ProductID]
			if !ok {
				return fmt.Errorf("%w: product %d", ErrNotFound, it.ProductID)
			}
			if p.StockQuantity < it.Quantity {
				return fmt.Errorf("%w: %q has %d in stock, %d ordered",
					ErrInsufficientStock, p.Name, p.StockQuantity, it.Quantity)
			}

			ok, err := tx.DecrementStock(ctx, p.ID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %q", ErrInsufficientStock, p.Name)
			}
			p.StockQuantity -= it.Quantity

			o.Items = append(o.Items, models.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    it.Quantity,
				Price:       p.Price,
			})
			total = total.Add(p.Price.Decimal.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		o.TotalAmount = models.NewMoney(total)

		if order, err = tx.CreateOrder(ctx, o); err != nil {
			return err
		}
		return tx.ClearCart(ctx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicOrder, idKey(order.ID), events.OrderPlaced, order)
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, email string, offset, limit int) (int64, []models.Order, error) {
	user, err := lookupUser(ctx, s.Repo, email)
	if err != nil {
		return 0, nil, err
	}
	return s.Repo.ListOrders(ctx, user.ID, offset, limit)
}
