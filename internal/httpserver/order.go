package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/ecom/internal/service"
	"github.com/Skotchmaster/ecom/pkg/logging"
	middleware "github.com/Skotchmaster/ecom/pkg/middleware/auth"
	"github.com/Skotchmaster/ecom/pkg/util"
	"github.com/labstack/echo/v4"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.place")

	email, err := middleware.UserEmail(c)
	if err != nil {
		return err
	}

	order, err := h.Svc.PlaceOrder(ctx, email)
	if err != nil {
		return fail(l, "place_order_error", err)
	}

	l.Info("place_order_success", "order_id", order.ID, "total", order.TotalAmount.String())
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	email, err := middleware.UserEmail(c)
	if err != nil {
		return err
	}

	page, offset, limit := pageParams(c)
	total, orders, err := h.Svc.ListOrders(ctx, email, offset, limit)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}

	return c.JSON(http.StatusOK, util.NewPage(orders, page, limit, total))
}
