package shopclient_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Skotchmaster/ecom/internal/app"
	"github.com/Skotchmaster/ecom/internal/testutil"
	"github.com/Skotchmaster/ecom/pkg/config"
	"github.com/Skotchmaster/ecom/pkg/shopclient"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *shopclient.Client {
	t.Helper()
	a, err := app.New(context.Background(), app.Options{
		Config: config.Config{
			JWTSecret:     "client-test-secret",
			JWTTTL:        time.Hour,
			AdminEmail:    "admin@example.com",
			AdminPassword: "admin-pass",
		},
		Logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		DB:     testutil.NewDB(t),
	})
	require.NoError(t, err)

	srv := httptest.NewServer(a.Echo)
	t.Cleanup(srv.Close)
	return shopclient.NewClient(srv.URL + "/")
}

func TestClient_ShoppingRoundTrip(t *testing.T) {
	ctx := context.Background()
	anon := newServer(t)

	adminAuth, err := anon.Authenticate(ctx, "admin@example.com", "admin-pass")
	require.NoError(t, err)
	admin := anon.WithToken(adminAuth.Token)

	mug, err := admin.CreateProduct(ctx, shopclient.ProductInput{Name: "Mug", Price: decimal.RequireFromString("10.00"), StockQuantity: 5})
	require.NoError(t, err)
	tea, err := admin.CreateProduct(ctx, shopclient.ProductInput{Name: "Tea", Price: decimal.RequireFromString("25.00"), StockQuantity: 1})
	require.NoError(t, err)

	userAuth, err := anon.Register(ctx, "buyer@example.com", "secret1", "Buyer")
	require.NoError(t, err)
	user := anon.WithToken(userAuth.Token)

	_, err = user.CreateProduct(ctx, shopclient.ProductInput{Name: "Nope", Price: decimal.NewFromInt(1)})
	var apiErr *shopclient.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)

	_, err = user.AddToCart(ctx, mug.ID, 2)
	require.NoError(t, err)
	cart, err := user.AddToCart(ctx, tea.ID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)

	order, err := user.PlaceOrder(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("45").Equal(order.TotalAmount), order.TotalAmount.String())
	assert.Equal(t, "PLACED", order.Status)

	got, err := anon.GetProduct(ctx, mug.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.StockQuantity)

	orders, err := user.ListOrders(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, orders.Data, 1)
	assert.Equal(t, order.ID, orders.Data[0].ID)

	cart, err = user.GetCart(ctx)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	require.NoError(t, user.RemoveCartItem(ctx, 12345))

	_, err = user.PlaceOrder(ctx)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestClient_CatalogAdmin(t *testing.T) {
	ctx := context.Background()
	anon := newServer(t)

	adminAuth, err := anon.Authenticate(ctx, "admin@example.com", "admin-pass")
	require.NoError(t, err)
	admin := anon.WithToken(adminAuth.Token)

	p, err := admin.CreateProduct(ctx, shopclient.ProductInput{Name: "Blue Pen", Price: decimal.RequireFromString("1.25"), StockQuantity: 40})
	require.NoError(t, err)

	p, err = admin.UpdateProduct(ctx, p.ID, shopclient.ProductInput{Name: "Blue Pen Fine", Price: decimal.RequireFromString("1.40"), StockQuantity: 30})
	require.NoError(t, err)
	assert.Equal(t, "Blue Pen Fine", p.Name)

	found, err := anon.SearchProducts(ctx, "pen", 0, 10)
	require.NoError(t, err)
	require.Len(t, found.Data, 1)
	assert.EqualValues(t, 1, found.Meta.Total)

	require.NoError(t, admin.DeleteProduct(ctx, p.ID))
	_, err = anon.GetProduct(ctx, p.ID)
	var apiErr *shopclient.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}
