package handler

import (
	"net/http"

	"bakerlane-api/internal/dto"
	"bakerlane-api/internal/middleware"
	"bakerlane-api/internal/service"

	"github.com/labstack/echo/v4"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

func (h *ReviewHandler) AddReview(c echo.Context) error {
	var req dto.AddReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	review, err := h.reviewService.AddReview(c.Request().Context(), middleware.Identity(c), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) GetProductReviews(c echo.Context) error {
	reviews, err := h.reviewService.GetProductReviews(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reviews)
}
