package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/ikkim/maison-backend/internal/app/model"
	"github.com/ikkim/maison-backend/internal/app/repository"
	"github.com/ikkim/maison-backend/pkg/logger"
)

type WishlistService interface {
	GetWishlist(ctx context.Context, shopperID string) ([]model.WishlistItem, error)
	// ToggleWishlist flips membership of productID and reports whether it is
	// in the wishlist afterwards.
	ToggleWishlist(ctx context.Context, shopperID, productID string) (bool, error)
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

func NewWishlistService(wishlistRepo repository.WishlistRepository, productRepo repository.ProductRepository) WishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

func (s *wishlistService) GetWishlist(ctx context.Context, shopperID string) ([]model.WishlistItem, error) {
	items, err := s.wishlistRepo.FindByShopper(ctx, shopperID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.WishlistItem{}
	}
	return items, nil
}

func (s *wishlistService) ToggleWishlist(ctx context.Context, shopperID, productID string) (bool, error) {
	logger.Info("Toggling wishlist", map[string]interface{}{
		"shopper_id": shopperID,
		"product_id": productID,
	})

	item := model.WishlistItem{Product: model.Product{ID: productID}, AddedAt: time.Now().UTC()}

	// Removal works for products that have since left the catalog.
	product, err := s.productRepo.FindByID(productID)
	if err == nil {
		item.Product = *product
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	} else {
		items, err := s.wishlistRepo.FindByShopper(ctx, shopperID)
		if err != nil {
			return false, err
		}
		if !slices.ContainsFunc(items, func(w model.WishlistItem) bool { return w.ID == productID }) {
			return false, ErrProductNotFound
		}
	}

	added, err := s.wishlistRepo.Toggle(ctx, shopperID, item)
	if err != nil && !errors.Is(err, repository.ErrPersistFailed) {
		logger.Error("Failed to toggle wishlist", err, map[string]interface{}{
			"shopper_id": shopperID,
			"product_id": productID,
		})
		return false, err
	}
	return added, err
}
