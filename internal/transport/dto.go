package transport

import "github.com/Skotchmaster/ecom/internal/models"

type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"`
}

type AuthenticateRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token     string `json:"token"`
	Role      string `json:"role"`
	ExpiresAt int64  `json:"expires_at"`
}

// ProductRequest is the body of both create and full update.
type ProductRequest struct {
	Name          string        `json:"name"           validate:"required"`
	Description   string        `json:"description"`
	Price         *models.Money `json:"price"          validate:"required"`
	StockQuantity int           `json:"stock_quantity" validate:"gte=0"`
}

type AddToCartQuery struct {
	ProductID uint `query:"productId"`
	Quantity  int  `query:"quantity"`
}
