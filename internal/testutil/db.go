// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/Skotchmaster/ecom/internal/models"
	"github.com/Skotchmaster/ecom/pkg/db"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a private in-memory sqlite database with all tables migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	gdb, err := db.Open(context.Background(), "sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(gdb))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func SeedUser(t testing.TB, gdb *gorm.DB, email, role string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Name: email, PasswordHash: "x", Role: role}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

func SeedProduct(t testing.TB, gdb *gorm.DB, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: models.MustMoney(price), StockQuantity: stock}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

// PostgresEnv names the variable holding a disposable postgres DSN for
// integration tests.
const PostgresEnv = "SHOP_TEST_DATABASE_URL"

// NewPostgresDB opens the database named by PostgresEnv, migrates it and
// empties every shop table. The test is skipped when the variable is unset.
func NewPostgresDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := os.Getenv(PostgresEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresEnv)
	}
	gdb, err := db.Open(context.Background(), "postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(gdb))
	require.NoError(t, gdb.Exec(
		"TRUNCATE order_items, customer_orders, cart_items, carts, products, users RESTART IDENTITY CASCADE",
	).Error)

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}
