package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"marketplace-service/internal/authz"
	"marketplace-service/internal/middleware"
	"marketplace-service/internal/review"
	"marketplace-service/pkg/database"
	"marketplace-service/pkg/logger"
	"marketplace-service/prometheus"
)

// CreateReview adds a review to a product and returns the product's
// full review list so the storefront can rerender in place.
func CreateReview(c echo.Context) error {
	log := logger.FromContext(c)

	username, ok := c.Get("username").(string)
	if !ok || username == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
	}

	productID, err := strconv.ParseUint(formOrQuery(c, "product_id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Product id is required."})
	}

	rating, err := strconv.Atoi(c.FormValue("rating"))
	if err != nil || rating < 1 || rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Rating must be between 1 and 5."})
	}

	body := c.FormValue("review")
	if body == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Review text is required."})
	}

	reviews, err := review.Add(database.GetDB(), uint(productID), username, rating, body)
	if err != nil {
		if err == review.ErrProductNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Product not found."})
		}
		log.Error("Failed to create review", zap.Uint64("product_id", productID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to create review."})
	}
	prometheus.ReviewsCreatedCounter.Inc()

	log.Info("Review created",
		zap.Uint64("product_id", productID),
		zap.String("review_by", username),
		zap.Int("rating", rating))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Success",
		"reviews": reviews,
	})
}

// ToggleLike flips the caller's like on a review
func ToggleLike(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
	}

	reviewID, err := strconv.ParseUint(formOrQuery(c, "id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Review id is required."})
	}

	db := database.GetDB()

	// Likes are keyed by customer id, not user id
	customer, err := authz.VendorProfile(db, userID)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "No customer profile for this account."})
	}

	message, updated, err := review.ToggleLike(db, uint(reviewID), customer.ID)
	if err != nil {
		if err == review.ErrReviewNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Review not found."})
		}
		log.Error("Failed to toggle like", zap.Uint64("review_id", reviewID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to toggle like."})
	}

	if message == review.LikeAdded {
		prometheus.RecordLikeToggle("added")
	} else {
		prometheus.RecordLikeToggle("removed")
	}

	log.Info("Like toggled",
		zap.Uint64("review_id", reviewID),
		zap.Uint("customer_id", customer.ID),
		zap.String("result", message))
	return c.JSON(http.StatusOK, echo.Map{
		"message": message,
		"review":  updated,
	})
}
