package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"marketplace-service/internal/cache"
	"marketplace-service/internal/model"
	"marketplace-service/pkg/database"
	"marketplace-service/pkg/logger"
)

// ListCategories returns every category in random order. Categories
// are seeded out of band, so there is no mutation surface here.
func ListCategories(c echo.Context) error {
	log := logger.FromContext(c)

	var categories []model.Category
	result := database.GetDB().Order("RANDOM()").Find(&categories)
	if result.Error != nil {
		log.Error("Failed to list categories", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve categories."})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Success",
		"categories": categories,
	})
}

// CategorySlugs returns the bare slug list, served from cache when warm
func CategorySlugs(c echo.Context) error {
	return slugListResponse(c, cache.KeyCategorySlugs, "categories")
}
