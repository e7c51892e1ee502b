package repository

import (
	"context"
	"slices"

	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/pkg/logger"
)

type WishlistRepository interface {
	FindByShopper(ctx context.Context, shopperID string) ([]model.WishlistItem, error)
	// Toggle adds the product when absent and removes it when present. It
	// reports whether the product is in the wishlist afterwards.
	Toggle(ctx context.Context, shopperID string, item model.WishlistItem) (bool, error)
}

type wishlistRepository struct {
	state *State
}

func NewWishlistRepository(state *State) WishlistRepository {
	return &wishlistRepository{state: state}
}

func (r *wishlistRepository) FindByShopper(ctx context.Context, shopperID string) ([]model.WishlistItem, error) {
	list, err := r.state.Wishlist(ctx, shopperID)
	if err != nil {
		logger.Error("Failed to bind wishlist", err, map[string]interface{}{
			"shopper_id": shopperID,
		})
		return nil, err
	}
	return list.All(), nil
}

func (r *wishlistRepository) Toggle(ctx context.Context, shopperID string, item model.WishlistItem) (bool, error) {
	list, err := r.state.Wishlist(ctx, shopperID)
	if err != nil {
		logger.Error("Failed to bind wishlist", err, map[string]interface{}{
			"shopper_id": shopperID,
		})
		return false, err
	}

	var added bool
	err = list.Mutate(ctx, func(items []model.WishlistItem) ([]model.WishlistItem, error) {
		i := slices.IndexFunc(items, func(w model.WishlistItem) bool { return w.ID == item.ID })
		if i >= 0 {
			return slices.Delete(items, i, i+1), nil
		}
		added = true
		return append(items, item), nil
	})

	logger.Debug("Wishlist toggled", map[string]interface{}{
		"shopper_id": shopperID,
		"product_id": item.ID,
		"added":      added,
	})
	return added, err
}
