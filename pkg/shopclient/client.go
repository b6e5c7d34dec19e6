// Package shopclient is a small Go client for the shop HTTP API.
package shopclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// WithToken returns a copy of the client that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// APIError carries the status and message of a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shop api: %d %s", e.Status, e.Message)
}

type AuthResponse struct {
	Token     string `json:"token"`
	Role      string `json:"role"`
	ExpiresAt int64  `json:"expires_at"`
}

type Product struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
}

type CartItem struct {
	ID        uint    `json:"id"`
	ProductID uint    `json:"product_id"`
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
}

type Cart struct {
	ID    uint       `json:"id"`
	Items []CartItem `json:"items"`
}

type OrderItem struct {
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type Order struct {
	ID          uint            `json:"id"`
	OrderDate   time.Time       `json:"order_date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	Items       []OrderItem     `json:"items"`
}

type Meta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type Page[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

type ProductInput struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
}

func (c *Client) Register(ctx context.Context, email, password, name string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"email": email, "password": password, "name": name}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Authenticate(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/authenticate", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodPost, "/api/v1/products", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodPut, "/api/v1/products/"+idStr(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/products/"+idStr(id), nil, nil, nil)
}

func (c *Client) GetProduct(ctx context.Context, id uint) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodGet, "/api/v1/products/"+idStr(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchProducts(ctx context.Context, key string, page, size int) (*Page[Product], error) {
	var out Page[Product]
	q := url.Values{"key": {key}, "page": {strconv.Itoa(page)}, "size": {strconv.Itoa(size)}}
	if err := c.do(ctx, http.MethodGet, "/api/v1/products/search", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddToCart(ctx context.Context, productID uint, quantity int) (*Cart, error) {
	var out Cart
	q := url.Values{"productId": {idStr(productID)}, "quantity": {strconv.Itoa(quantity)}}
	if err := c.do(ctx, http.MethodPost, "/api/v1/cart/add", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetCart(ctx context.Context) (*Cart, error) {
	var out Cart
	if err := c.do(ctx, http.MethodGet, "/api/v1/cart", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, itemID uint) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/cart/"+idStr(itemID), nil, nil, nil)
}

func (c *Client) PlaceOrder(ctx context.Context) (*Order, error) {
	var out Order
	if err := c.do(ctx, http.MethodPost, "/api/v1/orders/place", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListOrders(ctx context.Context, page, size int) (*Page[Order], error) {
	var out Page[Order]
	q := url.Values{"page": {strconv.Itoa(page)}, "size": {strconv.Itoa(size)}}
	if err := c.do(ctx, http.MethodGet, "/api/v1/orders", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func idStr(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
