package service

import (
	"context"
	"testing"
	"time"

	"github.com/Skotchmaster/ecom/internal/models"
	"github.com/Skotchmaster/ecom/internal/testutil"
	"github.com/Skotchmaster/ecom/internal/transport"
	"github.com/Skotchmaster/ecom/pkg/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrder_TotalsAndDecrements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, f.repo.DB, "u@example.com", models.RoleUser)
	p1 := testutil.SeedProduct(t, f.repo.DB, "P1", "10.00", 5)
	p2 := testutil.SeedProduct(t, f.repo.DB, "P2", "25.00", 1)

	_, err := f.carts.AddItem(ctx, u.Email, p1.ID, 2)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, u.Email, p2.ID, 1)
	require.NoError(t, err)

	order, err := f.orders.PlaceOrder(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, "45.00", order.TotalAmount.String())
	assert.Equal(t, models.OrderStatusPlaced, order.Status)
	require.Len(t, order.Items, 2)
	assert.Equal(t, p1.ID, order.Items[0].ProductID)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "10.00", order.Items[0].Price.String())

	assert.Equal(t, 3, f.stock(t, p1.ID))
	assert.Equal(t, 0, f.stock(t, p2.ID))

	cart, err := f.carts.GetCart(ctx, u.Email)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	assert.Contains(t, f.pub.types(), events.OrderPlaced)
}

func TestPlaceOrder_InsufficientStockRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, f.repo.DB, "u@example.com", models.RoleUser)
	p1 := testutil.SeedProduct(t, f.repo.DB, "P1", "10.00", 5)
	p2 := testutil.SeedProduct(t, f.repo.DB, "P2", "25.00", 3)

	_, err := f.carts.AddItem(ctx, u.Email, p1.ID, 2)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, u.Email, p2.ID, 3)
	require.NoError(t, err)

	// someone else bought P2 after it was carted
	require.NoError(t, f.repo.DB.Model(&models.Product{}).Where("id = ?", p2.ID).Update("stock_quantity", 2).Error)

	_, err = f.orders.PlaceOrder(ctx, u.Email)
	require.ErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, 5, f.stock(t, p1.ID), "earlier decrement must be rolled back")
	assert.Equal(t, 2, f.stock(t, p2.ID))
	assert.Len(t, f.cartItems(t, u.ID), 2)

	total, _, err := f.orders.ListOrders(ctx, u.Email, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotContains(t, f.pub.types(), events.OrderPlaced)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, f.repo.DB, "u@example.com", models.RoleUser)
	p := testutil.SeedProduct(t, f.repo.DB, "P", "1.00", 1)

	_, err := f.orders.PlaceOrder(ctx, u.Email)
	require.ErrorIs(t, err, ErrNotFound, "no cart row yet")

	cart, err := f.carts.AddItem(ctx, u.Email, p.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.carts.RemoveItem(ctx, u.Email, cart.Items[0].ID))

	_, err = f.orders.PlaceOrder(ctx, u.Email)
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, f.stock(t, p.ID))

	total, _, err := f.orders.ListOrders(ctx, u.Email, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestPlaceOrder_UnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders.PlaceOrder(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, ErrNotFound)

	_, _, err = f.orders.ListOrders(context.Background(), "ghost@example.com", 0, 10)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListOrders_NewestFirstPaged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, f.repo.DB, "u@example.com", models.RoleUser)
	p := testutil.SeedProduct(t, f.repo.DB, "P", "3.00", 10)

	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	f.orders.Now = func() time.Time { return clock }

	var placed []uint
	for i := 0; i < 3; i++ {
		_, err := f.carts.AddItem(ctx, u.Email, p.ID, 1)
		require.NoError(t, err)
		o, err := f.orders.PlaceOrder(ctx, u.Email)
		require.NoError(t, err)
		placed = append(placed, o.ID)
		clock = clock.Add(time.Minute)
	}

	total, page0, err := f.orders.ListOrders(ctx, u.Email, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page0, 2)
	assert.Equal(t, placed[2], page0[0].ID)
	assert.Equal(t, placed[1], page0[1].ID)

	_, page1, err := f.orders.ListOrders(ctx, u.Email, 2, 2)
	require.NoError(t, err)
	require.Len(t, page1, 1)
	assert.Equal(t, placed[0], page1[0].ID)
}

func TestOrderTotal_IndependentOfLaterPriceChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, f.repo.DB, "u@example.com", models.RoleUser)
	p := testutil.SeedProduct(t, f.repo.DB, "P", "0.10", 10)

	_, err := f.carts.AddItem(ctx, u.Email, p.ID, 3)
	require.NoError(t, err)
	_, err = f.orders.PlaceOrder(ctx, u.Email)
	require.NoError(t, err)

	price := models.MustMoney("99.99")
	_, err = f.catalog.UpdateProduct(ctx, p.ID, transport.ProductRequest{Name: "P", Price: &price, StockQuantity: 7})
	require.NoError(t, err)

	_, orders, err := f.orders.ListOrders(ctx, u.Email, 0, 10)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	sum := decimal.Zero
	for _, it := range orders[0].Items {
		sum = sum.Add(it.Price.Decimal.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	assert.Equal(t, "0.30", orders[0].TotalAmount.String())
	assert.True(t, sum.Equal(orders[0].TotalAmount.Decimal))
	assert.Equal(t, "0.10", orders[0].Items[0].Price.String())
}

func TestPlaceOrder_StockNeverNegative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testutil.SeedProduct(t, f.repo.DB, "Last one", "5.00", 1)
	buyers := []string{"a@example.com", "b@example.com", "c@example.com"}
	for _, email := range buyers {
		testutil.SeedUser(t, f.repo.DB, email, models.RoleUser)
		_, err := f.carts.AddItem(ctx, email, p.ID, 1)
		require.NoError(t, err)
	}

	succeeded := 0
	for _, email := range buyers {
		if _, err := f.orders.PlaceOrder(ctx, email); err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, f.stock(t, p.ID))

	err := f.repo.DB.Model(&models.Product{}).Where("id = ?", p.ID).Update("stock_quantity", -1).Error
	require.Error(t, err, "check constraint rejects negative stock")
}
