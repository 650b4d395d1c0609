package service

import (
	"context"
	"testing"

	"bakerlane-api/internal/apperr"
	"bakerlane-api/internal/dto"
	"bakerlane-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddReviewRequiresDeliveredOwnOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller, shop := f.seller(t, "oven")
	buyer := f.buyer(t, "priya")
	stranger := f.buyer(t, "stranger")
	cake := f.product(t, seller, "Black Forest", "50")
	order := f.placeOrder(t, buyer, shop, OrderLine{ProductID: cake.ID, Quantity: 1})

	req := &dto.AddReviewRequest{OrderID: order.ID, ProductID: cake.ID, Rating: 4}

	for _, status := range []model.OrderStatus{model.OrderPending, model.OrderPreparing, model.OrderOnTheWay, model.OrderCancelled} {
		f.forceStatus(t, order.ID, status)
		_, err := f.reviews.AddReview(ctx, buyer, req)
		assert.ErrorIs(t, err, apperr.ErrNotEligible, status)
	}

	f.forceStatus(t, order.ID, model.OrderDelivered)
	_, err := f.reviews.AddReview(ctx, stranger, req)
	assert.ErrorIs(t, err, apperr.ErrNotEligible)

	_, err = f.reviews.AddReview(ctx, buyer, &dto.AddReviewRequest{OrderID: "missing", ProductID: cake.ID, Rating: 4})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	review, err := f.reviews.AddReview(ctx, buyer, req)
	require.NoError(t, err)
	assert.Equal(t, order.ID, review.OrderID)
	assert.Equal(t, 4, review.Rating)

	_, err = f.reviews.AddReview(ctx, buyer, req)
	assert.ErrorIs(t, err, apperr.ErrAlreadyReviewed)
}

func TestAddReviewRejectsProductOutsideOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller, shop := f.seller(t, "oven")
	buyer := f.buyer(t, "priya")
	cake := f.product(t, seller, "Black Forest", "50")
	bun := f.product(t, seller, "Cinnamon Bun", "5")
	order := f.placeOrder(t, buyer, shop, OrderLine{ProductID: cake.ID, Quantity: 1})
	f.forceStatus(t, order.ID, model.OrderDelivered)

	_, err := f.reviews.AddReview(ctx, buyer, &dto.AddReviewRequest{OrderID: order.ID, ProductID: bun.ID, Rating: 5})
	assert.ErrorIs(t, err, apperr.ErrNotEligible)
}

func TestAddReviewRatingRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := f.buyer(t, "priya")

	for _, rating := range []int{0, 6, -1} {
		_, err := f.reviews.AddReview(ctx, buyer, &dto.AddReviewRequest{OrderID: "any", ProductID: "any", Rating: rating})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), rating)
	}
}

func TestAddReviewRecomputesRatings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller, shop := f.seller(t, "oven")
	cake := f.product(t, seller, "Black Forest", "50")

	for i, rating := range []int{5, 1} {
		buyer := f.buyer(t, []string{"priya", "omar"}[i])
		order := f.placeOrder(t, buyer, shop, OrderLine{ProductID: cake.ID, Quantity: 1})
		f.forceStatus(t, order.ID, model.OrderDelivered)

		_, err := f.reviews.AddReview(ctx, buyer, &dto.AddReviewRequest{
			OrderID:   order.ID,
			ProductID: cake.ID,
			Rating:    rating,
			Comment:   "  lovely  ",
		})
		require.NoError(t, err)
	}

	product, err := f.productRepo.FindByID(ctx, cake.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, product.AverageRating, 0.0001)
	assert.Equal(t, int64(2), product.ReviewCount)

	stored := f.reloadShop(t, shop.ID)
	assert.InDelta(t, 3.0, stored.AverageRating, 0.0001)
	assert.Equal(t, int64(2), stored.TotalReviews)

	reviews, err := f.reviews.GetProductReviews(ctx, cake.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	names := []string{reviews[0].ReviewerName, reviews[1].ReviewerName}
	assert.ElementsMatch(t, []string{"priya", "omar"}, names)
	assert.Equal(t, "lovely", reviews[0].Comment)

	_, err = f.reviews.GetProductReviews(ctx, "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
