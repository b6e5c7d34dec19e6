package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

const OrderStatusPlaced = "PLACED"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	Name         string    `gorm:"not null;default:''"           json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"          json:"email"`
	PasswordHash string    `gorm:"not null"                      json:"-"`
	Role         string    `gorm:"not null;default:USER"         json:"role"`
	CreatedAt    time.Time `                                     json:"created_at"`
}

type Product struct {
	ID            uint           `gorm:"primaryKey;autoIncrement"           json:"id"`
	Name          string         `gorm:"not null;index"                     json:"name"`
	Description   string         `gorm:"not null;default:''"                json:"description"`
	Price         Money          `gorm:"type:decimal(12,2);not null"        json:"price"`
	StockQuantity int            `gorm:"not null;check:stock_quantity>=0"   json:"stock_quantity"`
	CreatedAt     time.Time      `                                          json:"created_at"`
	UpdatedAt     time.Time      `                                          json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index"                              json:"-"`
}

// Cart is created lazily on the first add; placing an order empties it but keeps the row.
type Cart struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"                   json:"id"`
	UserID    uint       `gorm:"uniqueIndex;not null"                       json:"user_id"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `                                                  json:"created_at"`
	UpdatedAt time.Time  `                                                  json:"updated_at"`
}

type CartItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"              json:"id"`
	CartID    uint    `gorm:"not null;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID uint    `gorm:"not null;uniqueIndex:idx_cart_product" json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID"                  json:"product"`
	Quantity  int     `gorm:"not null;check:quantity>0"             json:"quantity"`
}

type Order struct {
	ID          uint        `gorm:"primaryKey;autoIncrement"                     json:"id"`
	UserID      uint        `gorm:"index;not null"                               json:"user_id"`
	OrderDate   time.Time   `gorm:"index;not null"                               json:"order_date"`
	TotalAmount Money       `gorm:"type:decimal(12,2);not null"                  json:"total_amount"`
	Status      string      `gorm:"not null"                                     json:"status"`
	Items       []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// "order" is reserved in SQL.
func (Order) TableName() string {
	return "customer_orders"
}

// OrderItem references its product weakly: price and name are snapshots taken at placement.
type OrderItem struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"     json:"id"`
	OrderID     uint   `gorm:"index;not null"               json:"order_id"`
	ProductID   uint   `gorm:"index;not null"               json:"product_id"`
	ProductName string `gorm:"not null;default:''"          json:"product_name"`
	Quantity    int    `gorm:"not null;check:quantity>0"    json:"quantity"`
	Price       Money  `gorm:"type:decimal(12,2);not null"  json:"price"`
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Product{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
	)
}
