package service

import (
	"context"
	"fmt"
	"strings"

	"bakerlane-api/internal/apperr"
	"bakerlane-api/internal/dto"
	"bakerlane-api/internal/model"
	"bakerlane-api/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewView struct {
	*model.Review
	ReviewerName string `json:"reviewerName"`
}

type ReviewService interface {
	AddReview(ctx context.Context, buyer *model.Identity, req *dto.AddReviewRequest) (*model.Review, error)
	GetProductReviews(ctx context.Context, productID string) ([]*ReviewView, error)
}

type reviewServiceImpl struct {
	db           *gorm.DB
	reviewRepo   repository.ReviewRepository
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	shopRepo     repository.ShopRepository
	identityRepo repository.IdentityRepository
}

func NewReviewService(
	db *gorm.DB,
	reviewRepo repository.ReviewRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	shopRepo repository.ShopRepository,
	identityRepo repository.IdentityRepository,
) ReviewService {
	return &reviewServiceImpl{
		db:           db,
		reviewRepo:   reviewRepo,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		shopRepo:     shopRepo,
		identityRepo: identityRepo,
	}
}

// AddReview accepts one review per delivered order of the buyer, then
// recomputes the product and shop ratings from every stored review.
func (s *reviewServiceImpl) AddReview(ctx context.Context, buyer *model.Identity, req *dto.AddReviewRequest) (*model.Review, error) {
	if req.Rating < model.MinRating || req.Rating > model.MaxRating {
		return nil, apperr.Validation("rating must be between 1 and 5", map[string]string{"rating": "range"})
	}

	order, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, storeErr(err, "find order", "order")
	}
	if order.UserID != buyer.ID || order.OrderStatus != model.OrderDelivered {
		return nil, apperr.ErrNotEligible
	}
	if !order.HasProduct(req.ProductID) {
		return nil, apperr.ErrNotEligible.With("product is not part of this order")
	}

	review := &model.Review{
		ID:        uuid.NewString(),
		UserID:    buyer.ID,
		OrderID:   order.ID,
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.reviewRepo.ExistsForOrder(ctx, tx, order.ID)
		if err != nil {
			return fmt.Errorf("check existing review: %w", err)
		}
		if exists {
			return apperr.ErrAlreadyReviewed
		}

		if err := s.reviewRepo.Create(ctx, tx, review); err != nil {
			if isDuplicateKey(err) {
				return apperr.ErrAlreadyReviewed
			}
			return fmt.Errorf("store review: %w", err)
		}

		productStats, err := s.reviewRepo.ProductStats(ctx, tx, review.ProductID)
		if err != nil {
			return fmt.Errorf("aggregate product rating: %w", err)
		}
		if err := s.productRepo.UpdateRatingStats(ctx, tx, review.ProductID, productStats); err != nil {
			return fmt.Errorf("store product rating: %w", err)
		}

		shopStats, err := s.reviewRepo.ShopStats(ctx, tx, order.ShopID)
		if err != nil {
			return fmt.Errorf("aggregate shop rating: %w", err)
		}
		if err := s.shopRepo.UpdateRatingStats(ctx, tx, order.ShopID, shopStats); err != nil {
			return fmt.Errorf("store shop rating: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return review, nil
}

func (s *reviewServiceImpl) GetProductReviews(ctx context.Context, productID string) ([]*ReviewView, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, storeErr(err, "find product", "product")
	}

	reviews, err := s.reviewRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	userIDs := make([]string, 0, len(reviews))
	for _, r := range reviews {
		userIDs = append(userIDs, r.UserID)
	}
	users, err := s.identityRepo.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load reviewers: %w", err)
	}

	views := make([]*ReviewView, 0, len(reviews))
	for _, r := range reviews {
		view := &ReviewView{Review: r}
		if user, ok := users[r.UserID]; ok {
			view.ReviewerName = user.Name
		}
		views = append(views, view)
	}
	return views, nil
}
