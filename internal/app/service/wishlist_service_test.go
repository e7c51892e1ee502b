package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistService_ToggleIsInvolution(t *testing.T) {
	deps := setupServiceTest(t)
	wishlistService := NewWishlistService(repositoryWishlist(deps), deps.products)
	ctx := context.Background()

	wishlistService.ToggleWishlist(ctx, "s1", "P2")
	before, err := wishlistService.GetWishlist(ctx, "s1")
	require.NoError(t, err)

	added, err := wishlistService.ToggleWishlist(ctx, "s1", "P1")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = wishlistService.ToggleWishlist(ctx, "s1", "P1")
	require.NoError(t, err)
	assert.False(t, added)

	after, err := wishlistService.GetWishlist(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestWishlistService_ToggleUnknownProduct(t *testing.T) {
	deps := setupServiceTest(t)
	wishlistService := NewWishlistService(repositoryWishlist(deps), deps.products)

	_, err := wishlistService.ToggleWishlist(context.Background(), "s1", "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestWishlistService_RemoveProductDroppedFromCatalog(t *testing.T) {
	deps := setupServiceTest(t)
	wishlistService := NewWishlistService(repositoryWishlist(deps), deps.products)
	ctx := context.Background()

	_, err := wishlistService.ToggleWishlist(ctx, "s1", "P3")
	require.NoError(t, err)
	require.NoError(t, deps.products.Delete(ctx, "P3"))

	added, err := wishlistService.ToggleWishlist(ctx, "s1", "P3")
	require.NoError(t, err)
	assert.False(t, added)

	items, _ := wishlistService.GetWishlist(ctx, "s1")
	assert.Empty(t, items)
}
