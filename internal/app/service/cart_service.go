package service

import (
	"context"
	"errors"
	"slices"

	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/internal/app/repository"
	"github.com/ikkim/maison-backend/pkg/logger"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
)

// Cart is a shopper's cart with its derived totals.
type Cart struct {
	Items    []model.CartItem `json:"items"`
	Quantity int              `json:"quantity"`
	Total    int64            `json:"total"`
}

type CartService interface {
	GetCart(ctx context.Context, shopperID string) (*Cart, error)
	// AddToCart merges into the line with the same product, color and size,
	// or appends a new line holding a snapshot of the product.
	AddToCart(ctx context.Context, shopperID, productID string, quantity int, color, size string) (*Cart, error)
	// RemoveFromCart removes every line of productID regardless of variant.
	RemoveFromCart(ctx context.Context, shopperID, productID string) (*Cart, error)
	RemoveLine(ctx context.Context, shopperID string, key model.LineKey) (*Cart, error)
	// UpdateQuantity sets the quantity of one line; below 1 removes it.
	UpdateQuantity(ctx context.Context, shopperID string, key model.LineKey, quantity int) (*Cart, error)
	ClearCart(ctx context.Context, shopperID string) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func newCart(items []model.CartItem) *Cart {
	if items == nil {
		items = []model.CartItem{}
	}
	return &Cart{
		Items:    items,
		Quantity: model.CartQuantity(items),
		Total:    model.CartTotal(items),
	}
}

func (s *cartService) GetCart(ctx context.Context, shopperID string) (*Cart, error) {
	items, err := s.cartRepo.FindByShopper(ctx, shopperID)
	if err != nil {
		logger.Error("Failed to fetch cart", err, map[string]interface{}{
			"shopper_id": shopperID,
		})
		return nil, err
	}

	logger.Debug("Cart fetched", map[string]interface{}{
		"shopper_id": shopperID,
		"lines":      len(items),
	})
	return newCart(items), nil
}

// update applies fn and returns the resulting cart. A persist failure still
// returns the cart alongside the error.
func (s *cartService) update(ctx context.Context, shopperID string, fn func([]model.CartItem) ([]model.CartItem, error)) (*Cart, error) {
	var result []model.CartItem
	err := s.cartRepo.Update(ctx, shopperID, func(items []model.CartItem) ([]model.CartItem, error) {
		next, err := fn(items)
		if err != nil {
			return nil, err
		}
		result = next
		return next, nil
	})
	if err != nil && !errors.Is(err, repository.ErrPersistFailed) {
		return nil, err
	}
	return newCart(result), err
}

func (s *cartService) AddToCart(ctx context.Context, shopperID, productID string, quantity int, color, size string) (*Cart, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"shopper_id": shopperID,
		"product_id": productID,
		"quantity":   quantity,
		"color":      color,
		"size":       size,
	})

	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"shopper_id": shopperID,
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	key := model.LineKey{ProductID: productID, Color: color, Size: size}
	return s.update(ctx, shopperID, func(items []model.CartItem) ([]model.CartItem, error) {
		i := slices.IndexFunc(items, func(item model.CartItem) bool { return item.Key() == key })
		if i >= 0 {
			items[i].Quantity += quantity
			return items, nil
		}
		return append(items, model.CartItem{
			Product:       *product,
			Quantity:      quantity,
			SelectedColor: color,
			SelectedSize:  size,
		}), nil
	})
}

func (s *cartService) RemoveFromCart(ctx context.Context, shopperID, productID string) (*Cart, error) {
	logger.Info("Removing product from cart", map[string]interface{}{
		"shopper_id": shopperID,
		"product_id": productID,
	})

	return s.update(ctx, shopperID, func(items []model.CartItem) ([]model.CartItem, error) {
		next := slices.DeleteFunc(items, func(item model.CartItem) bool { return item.ID == productID })
		if len(next) == len(items) {
			return nil, ErrCartItemNotFound
		}
		return next, nil
	})
}

func (s *cartService) RemoveLine(ctx context.Context, shopperID string, key model.LineKey) (*Cart, error) {
	logger.Info("Removing cart line", map[string]interface{}{
		"shopper_id": shopperID,
		"product_id": key.ProductID,
		"color":      key.Color,
		"size":       key.Size,
	})

	return s.update(ctx, shopperID, func(items []model.CartItem) ([]model.CartItem, error) {
		i := slices.IndexFunc(items, func(item model.CartItem) bool { return item.Key() == key })
		if i < 0 {
			return nil, ErrCartItemNotFound
		}
		return slices.Delete(items, i, i+1), nil
	})
}

func (s *cartService) UpdateQuantity(ctx context.Context, shopperID string, key model.LineKey, quantity int) (*Cart, error) {
	logger.Info("Updating cart line quantity", map[string]interface{}{
		"shopper_id": shopperID,
		"product_id": key.ProductID,
		"quantity":   quantity,
	})

	return s.update(ctx, shopperID, func(items []model.CartItem) ([]model.CartItem, error) {
		i := slices.IndexFunc(items, func(item model.CartItem) bool { return item.Key() == key })
		if i < 0 {
			return nil, ErrCartItemNotFound
		}
		if quantity < 1 {
			return slices.Delete(items, i, i+1), nil
		}
		items[i].Quantity = quantity
		return items, nil
	})
}

func (s *cartService) ClearCart(ctx context.Context, shopperID string) error {
	logger.Info("Clearing cart", map[string]interface{}{
		"shopper_id": shopperID,
	})
	return s.cartRepo.DeleteByShopper(ctx, shopperID)
}
