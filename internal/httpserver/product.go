package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/ecom/internal/service"
	"github.com/Skotchmaster/ecom/internal/transport"
	"github.com/Skotchmaster/ecom/pkg/logging"
	"github.com/Skotchmaster/ecom/pkg/util"
	"github.com/labstack/echo/v4"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func pageParams(c echo.Context) (page, offset, limit int) {
	return util.Calculate(
		util.ParseIntDefault(c.QueryParam("page"), 0),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
	)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := parseID(c.Param("id"))
	if err != nil {
		l.Warn("get_product_failed", "status", 400, "reason", "bad id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product_failed", err)
	}

	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page, offset, limit := pageParams(c)
	total, items, err := h.Svc.GetProducts(ctx, offset, limit)
	if err != nil {
		return fail(l, "get_products_error", err)
	}

	l.Info("get_products_success", "total", total)
	return c.JSON(http.StatusOK, util.NewPage(items, page, limit, total))
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	key := c.QueryParam("key")
	page, offset, limit := pageParams(c)
	total, items, err := h.Svc.SearchProducts(ctx, key, offset, limit)
	if err != nil {
		return fail(l, "search_products_error", err)
	}

	l.Info("search_products_success", "key", key, "total", total)
	return c.JSON(http.StatusOK, util.NewPage(items, page, limit, total))
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "product_create_error", err)
	}

	created, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return fail(l, "product_create_error", err)
	}

	l.Info("create_product_success", "product_id", created.ID)
	return c.JSON(http.StatusCreated, created)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := parseID(c.Param("id"))
	if err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "bad id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "product_update_error", err)
	}

	prod, err := h.Svc.UpdateProduct(ctx, id, req)
	if err != nil {
		return fail(l, "product_update_error", err)
	}

	l.Info("update_product_success", "product_id", id)
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := parseID(c.Param("id"))
	if err != nil {
		l.Warn("product_delete_error", "status", 400, "reason", "bad id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(l, "product_delete_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}
