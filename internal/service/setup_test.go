package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Skotchmaster/ecom/internal/models"
	"github.com/Skotchmaster/ecom/internal/repo"
	"github.com/Skotchmaster/ecom/internal/search"
	"github.com/Skotchmaster/ecom/internal/testutil"
	"github.com/Skotchmaster/ecom/pkg/events"
	"github.com/stretchr/testify/require"
)

type published struct {
	Topic string
	Key   string
	Event events.Event
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{Topic: topic, Key: key, Event: e})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.sent))
	for _, s := range p.sent {
		out = append(out, s.Event.Type)
	}
	return out
}

type fixture struct {
	repo    *repo.GormRepo
	pub     *recordingPublisher
	catalog *CatalogService
	carts   *CartService
	orders  *OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	r := &repo.GormRepo{DB: testutil.NewDB(t)}
	pub := &recordingPublisher{}
	return &fixture{
		repo:    r,
		pub:     pub,
		catalog: &CatalogService{Repo: r, Search: &search.SQLEngine{Repo: r}, Events: pub},
		carts:   &CartService{Repo: r, Events: pub},
		orders:  &OrderService{Repo: r, Events: pub},
	}
}

func (f *fixture) stock(t *testing.T, id uint) int {
	t.Helper()
	p, err := f.repo.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.StockQuantity
}

func (f *fixture) cartItems(t *testing.T, userID uint) []models.CartItem {
	t.Helper()
	cart, err := f.repo.GetCart(context.Background(), userID, false)
	require.NoError(t, err)
	return cart.Items
}

var errBroker = errors.New("broker down")
