package service

import (
	"context"
	"errors"
	"testing"

	"bakerlane-api/internal/apperr"
	"bakerlane-api/internal/dto"
	"bakerlane-api/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddProductCountsTowardsShop(t *testing.T) {
	f := newFixture(t)
	seller, shop := f.seller(t, "oven")
	assert.Equal(t, int64(0), shop.ProductCount)

	cake := f.product(t, seller, "Black Forest", "50")
	assert.Equal(t, shop.ID, cake.ShopID)
	assert.Equal(t, seller.ID, cake.ClientID)
	assert.True(t, cake.IsActive)
	assert.Equal(t, int64(1), f.reloadShop(t, shop.ID).ProductCount)

	f.product(t, seller, "Cinnamon Bun", "5")
	assert.Equal(t, int64(2), f.reloadShop(t, shop.ID).ProductCount)
}

func TestAddProductValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller, shop := f.seller(t, "oven")

	_, err := f.shops.AddProduct(ctx, seller, &dto.CreateProductRequest{
		ProductName: "Free Cake",
		Price:       decimal.Zero,
		UnitType:    string(model.UnitQuantity),
		UnitValue:   1,
		Category:    string(model.CategoryCake),
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.shops.AddProduct(ctx, seller, &dto.CreateProductRequest{
		ProductName: "Mystery",
		Price:       decimal.RequireFromString("10"),
		UnitType:    string(model.UnitQuantity),
		UnitValue:   1,
		Category:    "Soup",
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, int64(0), f.reloadShop(t, shop.ID).ProductCount)
}

func TestDeleteProductSurvivesStorageFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller, shop := f.seller(t, "oven")
	cake := f.product(t, seller, "Black Forest", "50")
	f.product(t, seller, "Cinnamon Bun", "5")

	withImages, err := f.shops.AddProductImages(ctx, seller, cake.ID, []Upload{
		{Data: []byte("front"), ContentType: "image/png"},
		{Data: []byte("side"), ContentType: "image/png"},
	})
	require.NoError(t, err)
	require.Len(t, withImages.Images, 2)

	f.storage.deleteErr = errors.New("bucket unreachable")

	require.NoError(t, f.shops.DeleteProduct(ctx, seller, cake.ID))

	_, err = f.productRepo.FindByID(ctx, cake.ID)
	assert.True(t, isNotFound(err))
	assert.Equal(t, int64(1), f.reloadShop(t, shop.ID).ProductCount)
	assert.ElementsMatch(t, withImages.Images, f.storage.deleted)

	err = f.shops.DeleteProduct(ctx, seller, cake.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, int64(1), f.reloadShop(t, shop.ID).ProductCount)
}

func TestDeleteProductRemovesImages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller, shop := f.seller(t, "oven")
	cake := f.product(t, seller, "Black Forest", "50")

	withImages, err := f.shops.AddProductImages(ctx, seller, cake.ID, []Upload{{Data: []byte("front"), ContentType: "image/png"}})
	require.NoError(t, err)

	require.NoError(t, f.shops.DeleteProduct(ctx, seller, cake.ID))
	assert.Equal(t, withImages.Images, f.storage.deleted)
	assert.Empty(t, f.storage.objects)
	assert.Equal(t, int64(0), f.reloadShop(t, shop.ID).ProductCount)
}

func TestProductChangesNeedOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, shop := f.seller(t, "oven")
	rival, _ := f.seller(t, "rival")
	cake := f.product(t, owner, "Black Forest", "50")

	name := "Stolen Forest"
	_, err := f.shops.UpdateProduct(ctx, rival, cake.ID, &dto.UpdateProductRequest{ProductName: &name})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	err = f.shops.DeleteProduct(ctx, rival, cake.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.shops.AddProductImages(ctx, rival, cake.ID, []Upload{{Data: []byte("x"), ContentType: "image/png"}})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Empty(t, f.storage.objects)

	unchanged, err := f.shops.GetProduct(ctx, cake.ID)
	require.NoError(t, err)
	assert.Equal(t, "Black Forest", unchanged.ProductName)
	assert.Equal(t, int64(1), f.reloadShop(t, shop.ID).ProductCount)

	price := decimal.RequireFromString("55")
	updated, err := f.shops.UpdateProduct(ctx, owner, cake.ID, &dto.UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.True(t, price.Equal(updated.Price))
}

func TestGetShopShowsCounters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller, shop := f.seller(t, "oven")
	buyer := f.buyer(t, "priya")
	cake := f.product(t, seller, "Black Forest", "50")

	order := f.placeOrder(t, buyer, shop, OrderLine{ProductID: cake.ID, Quantity: 1})
	f.forceStatus(t, order.ID, model.OrderDelivered)
	_, err := f.reviews.AddReview(ctx, buyer, &dto.AddReviewRequest{OrderID: order.ID, ProductID: cake.ID, Rating: 4})
	require.NoError(t, err)

	public, err := f.shops.GetShop(ctx, shop.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), public.TotalOrder)
	assert.Equal(t, int64(1), public.ProductCount)
	assert.Equal(t, int64(1), public.TotalReviews)
	assert.InDelta(t, 4.0, public.AverageRating, 0.001)

	_, err = f.shops.GetShop(ctx, "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
