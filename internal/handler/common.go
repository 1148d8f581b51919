package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"marketplace-service/internal/authz"
	"marketplace-service/internal/catalog"
	"marketplace-service/internal/middleware"
	"marketplace-service/internal/model"
	"marketplace-service/pkg/database"
	"marketplace-service/pkg/logger"
)

// errInvalidInput marks a validation failure whose message was already
// prepared for the response body.
var errInvalidInput = errors.New("invalid input")

// actingVendor resolves the authenticated user's vendor profile
func actingVendor(c echo.Context) (*model.Customer, error) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return nil, errNotAuthenticated
	}
	return authz.VendorProfile(database.GetDB(), userID)
}

// vendorError translates a vendor resolution failure into a response
func vendorError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errNotAuthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
	case errors.Is(err, authz.ErrNoVendorProfile):
		return c.JSON(http.StatusForbidden, echo.Map{"message": "No vendor profile for this account."})
	default:
		logger.FromContext(c).Error("Failed to resolve vendor profile", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Something went wrong."})
	}
}

var errNotAuthenticated = errors.New("not authenticated")

// formOrQuery reads a parameter from the form body, falling back to
// the query string.
func formOrQuery(c echo.Context, name string) string {
	if v := c.FormValue(name); v != "" {
		return v
	}
	return c.QueryParam(name)
}

// slugListResponse serves a bare slug list for a table, cache first
func slugListResponse(c echo.Context, cacheKey, table string) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()

	if slugs, ok := slugCache.Get(ctx, cacheKey); ok {
		return c.JSON(http.StatusOK, echo.Map{
			"message": "Success",
			"slugs":   slugs,
		})
	}

	slugs, err := catalog.Slugs(database.GetDB(), table)
	if err != nil {
		log.Error("Failed to list slugs", zap.String("table", table), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve slugs."})
	}
	slugCache.Set(ctx, cacheKey, slugs)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Success",
		"slugs":   slugs,
	})
}
