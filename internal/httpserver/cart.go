package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/ecom/internal/service"
	"github.com/Skotchmaster/ecom/internal/transport"
	"github.com/Skotchmaster/ecom/pkg/logging"
	middleware "github.com/Skotchmaster/ecom/pkg/middleware/auth"
	"github.com/labstack/echo/v4"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	email, err := middleware.UserEmail(c)
	if err != nil {
		return err
	}

	cart, err := h.Svc.GetCart(ctx, email)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	email, err := middleware.UserEmail(c)
	if err != nil {
		return err
	}

	var q transport.AddToCartQuery
	if err := echo.QueryParamsBinder(c).
		MustUint("productId", &q.ProductID).
		MustInt("quantity", &q.Quantity).
		BindError(); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "productId and quantity are required", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "productId and quantity are required")
	}

	cart, err := h.Svc.AddItem(ctx, email, q.ProductID, q.Quantity)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}

	l.Info("add_to_cart_success", "product_id", q.ProductID, "quantity", q.Quantity)
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	email, err := middleware.UserEmail(c)
	if err != nil {
		return err
	}

	itemID, err := parseID(c.Param("itemId"))
	if err != nil {
		l.Warn("remove_item_error", "status", 400, "reason", "bad item id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.Svc.RemoveItem(ctx, email, itemID); err != nil {
		return fail(l, "remove_item_error", err)
	}

	l.Info("remove_item_success", "item_id", itemID)
	return c.NoContent(http.StatusOK)
}
