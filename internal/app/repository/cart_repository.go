package repository

import (
	"context"

	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/pkg/logger"
)

// CartRepository stores one cart per shopper.
type CartRepository interface {
	FindByShopper(ctx context.Context, shopperID string) ([]model.CartItem, error)
	// Update replaces the shopper's cart with the result of fn.
	Update(ctx context.Context, shopperID string, fn func(items []model.CartItem) ([]model.CartItem, error)) error
	DeleteByShopper(ctx context.Context, shopperID string) error
}

type cartRepository struct {
	state *State
}

func NewCartRepository(state *State) CartRepository {
	return &cartRepository{state: state}
}

func (r *cartRepository) FindByShopper(ctx context.Context, shopperID string) ([]model.CartItem, error) {
	cart, err := r.state.Cart(ctx, shopperID)
	if err != nil {
		logger.Error("Failed to bind cart", err, map[string]interface{}{
			"shopper_id": shopperID,
		})
		return nil, err
	}
	return cart.All(), nil
}

func (r *cartRepository) Update(ctx context.Context, shopperID string, fn func(items []model.CartItem) ([]model.CartItem, error)) error {
	cart, err := r.state.Cart(ctx, shopperID)
	if err != nil {
		logger.Error("Failed to bind cart", err, map[string]interface{}{
			"shopper_id": shopperID,
		})
		return err
	}

	err = cart.Mutate(ctx, fn)
	logger.Debug("Cart updated", map[string]interface{}{
		"shopper_id": shopperID,
		"lines":      cart.Len(),
	})
	return err
}

func (r *cartRepository) DeleteByShopper(ctx context.Context, shopperID string) error {
	logger.Debug("Clearing cart", map[string]interface{}{
		"shopper_id": shopperID,
	})
	return r.Update(ctx, shopperID, func([]model.CartItem) ([]model.CartItem, error) {
		return []model.CartItem{}, nil
	})
}
