package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"marketplace-service/internal/model"
	"marketplace-service/pkg/database"
	"marketplace-service/pkg/jwtutil"
	"marketplace-service/pkg/logger"
)

// AccessTokenCookie is the HTTP-only cookie carrying the signed token
const AccessTokenCookie = "access_token"

// AuthMiddleware validates the access_token cookie and resolves the
// acting user. The three failure modes are reported distinctly: no
// token, invalid/expired token, and a token for a deleted user.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		cookie, err := c.Cookie(AccessTokenCookie)
		if err != nil || cookie.Value == "" {
			log.Warn("Missing access token cookie")
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
		}

		claims, err := jwtutil.ValidateToken(cookie.Value)
		if err != nil {
			log.Warn("Invalid access token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid or expired token."})
		}

		// The token may outlive the account
		var user model.User
		result := database.GetDB().First(&user, claims.UserID)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				log.Warn("Token for deleted user", zap.Uint("user_id", claims.UserID))
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "User no longer exists."})
			}
			log.Error("Failed to resolve user", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Something went wrong."})
		}

		c.Set("user_id", user.ID)
		c.Set("username", user.Username)
		c.Set("email", user.Email)

		return next(c)
	}
}

// GetUserIDFromContext retrieves the authenticated user id from the
// context. Returns 0, false outside authenticated routes.
func GetUserIDFromContext(c echo.Context) (uint, bool) {
	userID, ok := c.Get("user_id").(uint)
	return userID, ok
}
