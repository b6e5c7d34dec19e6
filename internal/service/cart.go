package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/ecom/internal/models"
	"github.com/Skotchmaster/ecom/internal/repo"
	"github.com/Skotchmaster/ecom/pkg/events"
	"gorm.io/gorm"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

type cartItemEvent struct {
	UserID    uint `json:"user_id"`
	CartID    uint `json:"cart_id"`
	ItemID    uint `json:"item_id"`
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

func lookupUser(ctx context.Context, r *repo.GormRepo, email string) (*models.User, error) {
	user, err := r.GetUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, email)
	}
	return user, err
}

// AddItem puts quantity units of a product into the user's cart, creating the
// cart on first use. The product's stock must cover what the cart would then
// hold; stock itself is only decremented when an order is placed.
func (s *CartService) AddItem(ctx context.Context, email string, productID uint, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be more than zero", ErrValidation)
	}

	var (
		cart *models.Cart
		evt  cartItemEvent
	)
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		user, err := lookupUser(ctx, tx, email)
		if err != nil {
			return err
		}

		product, err := tx.GetProduct(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %d", ErrNotFound, productID)
			}
			return err
		}

		locked, err := tx.GetOrCreateCart(ctx, user.ID)
		if err != nil {
			return err
		}

		var existing *models.CartItem
		for i := range locked.Items {
			if locked.Items[i].ProductID == productID {
				existing = &locked.Items[i]
				break
			}
		}

		already := 0
		if existing != nil {
			already = existing.Quantity
		}
		// stock and already are never negative, so this cannot overflow
		if quantity > product.StockQuantity-already {
			return fmt.Errorf("%w: %q has %d in stock, %d already in cart, requested %d",
				ErrInsufficientStock, product.Name, product.StockQuantity, already, quantity)
		}

		evt = cartItemEvent{UserID: user.ID, CartID: locked.ID, ProductID: productID, Quantity: already + quantity}
		if existing != nil {
			evt.ItemID = existing.ID
			if err := tx.SetCartItemQuantity(ctx, existing.ID, already+quantity); err != nil {
				return err
			}
		} else {
			item := models.CartItem{CartID: locked.ID, ProductID: productID, Quantity: quantity}
			if err := tx.AddCartItem(ctx, &item); err != nil {
				return err
			}
			evt.ItemID = item.ID
		}

		cart, err = tx.GetCart(ctx, user.ID, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicCart, idKey(evt.CartID), events.CartItemAdded, evt)
	return cart, nil
}

func (s *CartService) GetCart(ctx context.Context, email string) (*models.Cart, error) {
	user, err := lookupUser(ctx, s.Repo, email)
	if err != nil {
		return nil, err
	}

	cart, err := s.Repo.GetCart(ctx, user.ID, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: cart is empty", ErrNotFound)
	}
	return cart, err
}

// RemoveItem deletes one line item from the user's cart. An id that is not in
// the cart is not an error.
func (s *CartService) RemoveItem(ctx context.Context, email string, itemID uint) error {
	var (
		removed int64
		evt     cartItemEvent
	)
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

		for _, it := range cart.Items {
			if it.ID == itemID {
				evt = cartItemEvent{UserID: user.ID, CartID: cart.ID, ItemID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity}
				break
			}
		}

		removed, err = tx.DeleteCartItem(ctx, cart.ID, itemID)
		return err
	})
	if err != nil {
		return err
	}

	if removed > 0 {
		publish(ctx, s.Events, events.TopicCart, idKey(evt.CartID), events.CartItemRemoved, evt)
	}
	return nil
}
