package httpserver

import (
	"context"
	"net/http"

	middleware "github.com/Skotchmaster/ecom/pkg/middleware/auth"
	"github.com/labstack/echo/v4"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	CartHandler    *CartHTTP
	OrderHandler   *OrderHTTP
	AuthMW         *middleware.JWTAuth
	Ready          func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/authenticate", d.AuthHandler.Authenticate)
	auth.POST("/logout", d.AuthHandler.LogOut)

	products := api.Group("/products")
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	admin := products.Group("", d.AuthMW.RequireAdmin)
	admin.POST("", d.CatalogHandler.CreateProduct)
	admin.PUT("/:id", d.CatalogHandler.UpdateProduct)
	admin.DELETE("/:id", d.CatalogHandler.DeleteProduct)

	cart := api.Group("/cart", d.AuthMW.RequireAuth)
	cart.POST("/add", d.CartHandler.AddToCart)
	cart.GET("", d.CartHandler.GetCart)
	cart.DELETE("/:itemId", d.CartHandler.RemoveItem)

	orders := api.Group("/orders", d.AuthMW.RequireAuth)
	orders.POST("/place", d.OrderHandler.PlaceOrder)
	orders.GET("", d.OrderHandler.ListOrders)
}
