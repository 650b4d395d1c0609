package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bakerlane-api/internal/apperr"
	"bakerlane-api/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySeller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller, _ := f.seller(t, "oven")
	buyer := f.buyer(t, "priya")

	require.NoError(t, f.admin.VerifySeller(ctx, seller.ID))
	verified, err := f.identityRepo.FindByID(ctx, model.KindSeller, seller.ID)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)

	err = f.admin.VerifySeller(ctx, buyer.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteSellerCascadesToProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller, shop := f.seller(t, "oven")
	other, otherShop := f.seller(t, "crust")
	buyer := f.buyer(t, "priya")

	cake := f.product(t, seller, "Black Forest", "50")
	f.product(t, seller, "Cinnamon Bun", "5")
	kept := f.product(t, other, "Sourdough", "8")

	withImages, err := f.shops.AddProductImages(ctx, seller, cake.ID, []Upload{{Data: []byte("front"), ContentType: "image/png"}})
	require.NoError(t, err)
	order := f.placeOrder(t, buyer, shop, OrderLine{ProductID: cake.ID, Quantity: 1})

	session, err := f.auth.Login(ctx, model.KindSeller, seller.EmailValue(), testPassword)
	require.NoError(t, err)

	require.NoError(t, f.admin.DeleteSeller(ctx, seller.ID))

	_, err = f.identityRepo.FindByID(ctx, model.KindSeller, seller.ID)
	assert.True(t, isNotFound(err))
	_, err = f.auth.ResolveSession(ctx, session.ID)
	assert.ErrorIs(t, err, apperr.ErrSessionNotFound)

	products, err := f.admin.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, kept.ID, products[0].ID)
	assert.Equal(t, withImages.Images, f.storage.deleted)

	retired := f.reloadShop(t, shop.ID)
	assert.False(t, retired.IsActive)
	assert.Equal(t, int64(0), retired.ProductCount)
	assert.Equal(t, int64(1), f.reloadShop(t, otherShop.ID).ProductCount)

	// past orders stay readable for the buyer
	views, err := f.orders.GetMyOrders(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, order.ID, views[0].Order.ID)

	err = f.admin.DeleteSeller(ctx, seller.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = f.auth.Login(ctx, model.KindSeller, seller.EmailValue(), testPassword)
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestDeleteSellerIgnoresImageFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller, _ := f.seller(t, "oven")
	cake := f.product(t, seller, "Black Forest", "50")
	_, err := f.shops.AddProductImages(ctx, seller, cake.ID, []Upload{{Data: []byte("front"), ContentType: "image/png"}})
	require.NoError(t, err)

	f.storage.deleteErr = errors.New("bucket unreachable")
	require.NoError(t, f.admin.DeleteSeller(ctx, seller.ID))

	_, err = f.productRepo.FindByID(ctx, cake.ID)
	assert.True(t, isNotFound(err))
}

func TestDeleteSellerRejectsBuyerID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := f.buyer(t, "priya")
	session, err := f.auth.Login(ctx, model.KindBuyer, buyer.EmailValue(), testPassword)
	require.NoError(t, err)

	err = f.admin.DeleteSeller(ctx, buyer.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// the rolled back transaction keeps the buyer signed in
	resolved, err := f.auth.ResolveSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, buyer.ID, resolved.ID)

	err = f.admin.DeleteSeller(ctx, uuid.NewString())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteBuyer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller, shop := f.seller(t, "oven")
	buyer := f.buyer(t, "priya")
	cake := f.product(t, seller, "Black Forest", "50")
	f.placeOrder(t, buyer, shop, OrderLine{ProductID: cake.ID, Quantity: 1})

	session, err := f.auth.Login(ctx, model.KindBuyer, buyer.EmailValue(), testPassword)
	require.NoError(t, err)

	err = f.admin.DeleteBuyer(ctx, seller.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.NoError(t, f.admin.DeleteBuyer(ctx, buyer.ID))
	_, err = f.auth.ResolveSession(ctx, session.ID)
	assert.ErrorIs(t, err, apperr.ErrSessionNotFound)

	buyers, err := f.admin.ListIdentities(ctx, model.KindBuyer)
	require.NoError(t, err)
	assert.Empty(t, buyers)

	// the shop still sees the order, without buyer contact details
	views, err := f.orders.GetShopOrders(ctx, seller)
	require.NoError(t, err)
	require.Len(t, views, 1)
	if views[0].Counterpart != nil {
		assert.Empty(t, views[0].Counterpart.Email)
	}

	err = f.admin.DeleteBuyer(ctx, buyer.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListErrorLogsNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, route := range []string{"/api/orders", "/api/seller/subscription"} {
		require.NoError(t, f.errorLogRepo.Create(ctx, &model.ErrorLog{
			ID:        uuid.NewString(),
			Route:     route,
			Method:    "POST",
			Status:    500,
			Message:   "boom",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := f.admin.ListErrorLogs(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "/api/seller/subscription", entries[0].Route)
	assert.Equal(t, "/api/orders", entries[1].Route)
}
