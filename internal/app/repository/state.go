package repository

import (
	"context"
	"sync"

	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/internal/kv"
	"github.com/ikkim/maison-backend/pkg/logger"
)

// Slot names. Carts and wishlists get one slot per shopper.
const (
	SlotProducts        = "products"
	SlotOrders          = "orders"
	SlotViewLogs        = "view_logs"
	SlotRestockRequests = "restock_requests"
	SlotFooterPages     = "footer_pages"
	SlotLayoutConfig    = "layout_config"
	SlotSentEmails      = "sent_emails"

	cartSlotPrefix     = "cart:"
	wishlistSlotPrefix = "wishlist:"
)

// Defaults seeds slots that do not exist yet.
type Defaults struct {
	Products []model.Product
	Pages    []model.FooterPage
	Layout   model.LayoutConfig
}

// State owns every durable binding of the storefront. Services receive it
// instead of reaching for package globals.
type State struct {
	store kv.Store

	Products        *Collection[model.Product]
	Orders          *Collection[model.Order]
	ViewLogs        *Collection[model.ViewLog]
	RestockRequests *Collection[model.RestockRequest]
	FooterPages     *Collection[model.FooterPage]
	Layout          *Document[model.LayoutConfig]
	SentEmails      *Collection[model.SentEmail]

	mu        sync.Mutex
	carts     map[string]*Collection[model.CartItem]
	wishlists map[string]*Collection[model.WishlistItem]
}

// Open binds every shared slot. Shopper slots are bound on first use.
func Open(ctx context.Context, store kv.Store, defaults Defaults) (*State, error) {
	s := &State{
		store:     store,
		carts:     make(map[string]*Collection[model.CartItem]),
		wishlists: make(map[string]*Collection[model.WishlistItem]),
	}

	var err error
	if s.Products, err = BindCollection(ctx, store, SlotProducts, defaults.Products, DefaultMigrations...); err != nil {
		return nil, err
	}
	if s.Orders, err = BindCollection[model.Order](ctx, store, SlotOrders, nil, DefaultMigrations...); err != nil {
		return nil, err
	}
	if s.ViewLogs, err = BindCollection[model.ViewLog](ctx, store, SlotViewLogs, nil, DefaultMigrations...); err != nil {
		return nil, err
	}
	if s.RestockRequests, err = BindCollection[model.RestockRequest](ctx, store, SlotRestockRequests, nil, DefaultMigrations...); err != nil {
		return nil, err
	}
	if s.FooterPages, err = BindCollection(ctx, store, SlotFooterPages, defaults.Pages, DefaultMigrations...); err != nil {
		return nil, err
	}
	if s.Layout, err = BindDocument(ctx, store, SlotLayoutConfig, defaults.Layout, DefaultMigrations...); err != nil {
		return nil, err
	}
	if s.SentEmails, err = BindCollection[model.SentEmail](ctx, store, SlotSentEmails, nil, DefaultMigrations...); err != nil {
		return nil, err
	}

	logger.Info("Storefront state loaded", map[string]interface{}{
		"products":         s.Products.Len(),
		"orders":           s.Orders.Len(),
		"restock_requests": s.RestockRequests.Len(),
	})
	return s, nil
}

// Cart returns the cart binding of shopperID.
func (s *State) Cart(ctx context.Context, shopperID string) (*Collection[model.CartItem], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.carts[shopperID]; ok {
		return c, nil
	}
	c, err := BindCollection[model.CartItem](ctx, s.store, cartSlotPrefix+shopperID, nil, DefaultMigrations...)
	if err != nil {
		return nil, err
	}
	s.carts[shopperID] = c
	return c, nil
}

// Wishlist returns the wishlist binding of shopperID.
func (s *State) Wishlist(ctx context.Context, shopperID string) (*Collection[model.WishlistItem], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.wishlists[shopperID]; ok {
		return w, nil
	}
	w, err := BindCollection[model.WishlistItem](ctx, s.store, wishlistSlotPrefix+shopperID, nil, DefaultMigrations...)
	if err != nil {
		return nil, err
	}
	s.wishlists[shopperID] = w
	return w, nil
}

func (s *State) Close() error {
	return s.store.Close()
}
