package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/internal/app/repository"
	"github.com/ikkim/maison-backend/internal/kv"
	"github.com/ikkim/maison-backend/pkg/payment/checkout"
	"github.com/stretchr/testify/require"
)

// flakyStore fails every Save while failing is set.
type flakyStore struct {
	*kv.MemoryStore
	failing atomic.Bool
}

func (s *flakyStore) Save(ctx context.Context, slot string, data []byte) error {
	if s.failing.Load() {
		return errors.New("quota exceeded")
	}
	return s.MemoryStore.Save(ctx, slot, data)
}

// fakePayments answers every verification with tx or err.
type fakePayments struct {
	tx       *checkout.Transaction
	err      error
	calls    int
	onVerify func()
}

func (f *fakePayments) Verify(_ context.Context, reference string) (*checkout.Transaction, error) {
	f.calls++
	if f.onVerify != nil {
		f.onVerify()
	}
	if f.err != nil {
		return nil, f.err
	}
	tx := *f.tx
	tx.Reference = reference
	return &tx, nil
}

func paidTx(units int64) *checkout.Transaction {
	return &checkout.Transaction{Status: checkout.StatusSuccess, Amount: units * checkout.SubunitFactor}
}

func testCatalog() []model.Product {
	return []model.Product{
		{
			ID:       "P1",
			Name:     "Silk Slip Dress",
			Brand:    "Maison",
			Price:    1000,
			Images:   []string{"https://cdn.example/p1.jpg"},
			Category: model.CategoryClothing,
			Stock:    10,
			Tags:     []string{model.TagNew},
			Colors:   []model.Color{{Name: "Black", Hex: "#000000"}, {Name: "Ivory", Hex: "#fffff0"}},
			Sizes:    []string{"S", "M", "L"},
		},
		{
			ID:       "P2",
			Name:     "Leather Tote",
			Brand:    "Maison",
			Price:    2500,
			Images:   []string{"https://cdn.example/p2.jpg"},
			Category: model.CategoryBags,
			Stock:    5,
			Tags:     []string{model.TagBestseller},
		},
		{
			ID:       "P3",
			Name:     "Gold Hoops",
			Brand:    "Atelier",
			Price:    800,
			Images:   []string{"https://cdn.example/p3.jpg"},
			Category: model.CategoryJewelry,
			Stock:    0,
		},
	}
}

type testDeps struct {
	store    *flakyStore
	state    *repository.State
	products repository.ProductRepository
	carts    repository.CartRepository
	orders   repository.OrderRepository
}

func setupServiceTest(t *testing.T) *testDeps {
	store := &flakyStore{MemoryStore: kv.NewMemoryStore()}
	state, err := repository.Open(context.Background(), store, repository.Defaults{
		Products: testCatalog(),
		Pages:    []model.FooterPage{{Slug: "shipping", Title: "Shipping", Content: "Worldwide."}},
		Layout: model.LayoutConfig{
			HeroTitle: "Maison",
			Sections:  []model.LayoutSection{{Title: "New In", Tag: model.TagNew, Limit: 4}},
		},
	})
	require.NoError(t, err)

	return &testDeps{
		store:    store,
		state:    state,
		products: repository.NewProductRepository(state),
		carts:    repository.NewCartRepository(state),
		orders:   repository.NewOrderRepository(state),
	}
}

func repositoryWishlist(deps *testDeps) repository.WishlistRepository {
	return repository.NewWishlistRepository(deps.state)
}
