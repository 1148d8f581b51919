package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"marketplace-service/internal/middleware"
	"marketplace-service/internal/model"
	"marketplace-service/pkg/database"
	"marketplace-service/pkg/logger"
)

// GetProfile returns the caller's customer profile
func GetProfile(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
	}

	var customer model.Customer
	result := database.GetDB().Preload("User").Where("user_id = ?", userID).First(&customer)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Profile not found."})
		}
		log.Error("Failed to load profile", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Something went wrong."})
	}

	return c.JSON(http.StatusOK, customer)
}

// UpdateProfile partially updates the caller's mobile number and
// avatar image URL.
func UpdateProfile(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
	}

	var customer model.Customer
	result := database.GetDB().Where("user_id = ?", userID).First(&customer)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Profile not found."})
		}
		log.Error("Failed to load profile", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Something went wrong."})
	}

	if mobile := c.FormValue("mobile"); mobile != "" {
		parsed, err := strconv.ParseUint(mobile, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Mobile must be a number."})
		}
		customer.Mobile = &parsed
	}
	if image := c.FormValue("image"); image != "" {
		customer.Image = image
	}

	if err := database.GetDB().Save(&customer).Error; err != nil {
		log.Error("Failed to update profile", zap.Uint("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to update profile."})
	}

	log.Info("Profile updated", zap.Uint("user_id", userID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Success"})
}
