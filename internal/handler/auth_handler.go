package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"marketplace-service/internal/middleware"
	"marketplace-service/internal/model"
	"marketplace-service/pkg/database"
	"marketplace-service/pkg/jwtutil"
	"marketplace-service/pkg/logger"
	"marketplace-service/prometheus"
)

// New customers start with a stock avatar until they upload their own
const defaultAvatarURL = "https://cdn-icons-png.flaticon.com/128/236/236831.png"

const authCookieMaxAge = 7 * 24 * time.Hour

// setAuthCookie places the signed token in an HTTP-only cookie. The
// frontend lives on another origin, hence SameSite=None + Secure.
func setAuthCookie(c echo.Context, token string, maxAge time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

// Register creates a user account plus its customer profile and logs
// the new user in via cookie.
func Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Username string `json:"username" form:"username"`
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request data."})
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "All fields are required."})
	}
	if len(req.Username) < 3 || len(req.Username) > 30 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Username must be between 3 and 30 characters."})
	}
	if len(req.Email) < 5 || len(req.Email) > 50 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email must be between 5 and 50 characters."})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Password must be at least 8 characters."})
	}

	db := database.GetDB()

	var count int64
	db.Model(&model.User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		log.Warn("Registration with existing email", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email already exists."})
	}
	db.Model(&model.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		prometheus.RecordAuthError("username_already_exists")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Username already exists."})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Registration failed."})
	}

	user := model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashed),
	}
	customer := model.Customer{Image: defaultAvatarURL}

	// The account and its profile land together or not at all
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		customer.UserID = user.ID
		return tx.Create(&customer).Error
	})
	if err != nil {
		log.Error("Failed to create user", zap.Error(err))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Registration failed."})
	}

	// Best effort; the original swallows mail failures too
	if mailer != nil {
		if err := mailer.SendWelcome(user.Email); err != nil {
			log.Warn("Failed to send welcome mail", zap.String("email", user.Email), zap.Error(err))
		}
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID, user.Username)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Registration failed."})
	}
	setAuthCookie(c, token, authCookieMaxAge)

	log.Info("User registered",
		zap.String("username", user.Username),
		zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Success",
		"user_id": customer.ID,
	})
}

// Login authenticates by email and password and sets the cookie
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request data."})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "All fields are required."})
	}

	var user model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		log.Warn("Login for unknown email", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid Email/Password!!"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid Email/Password!!"})
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID, user.Username)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Token error."})
	}
	setAuthCookie(c, token, authCookieMaxAge)

	log.Info("User logged in", zap.String("email", user.Email))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Success",
		"user":    user.Username,
	})
}

// Logout clears the auth cookie
func Logout(c echo.Context) error {
	setAuthCookie(c, "", 0)
	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully logged out."})
}

// ValidateUser reports whether the request carries a valid token
// without requiring the full auth middleware.
func ValidateUser(c echo.Context) error {
	cookie, err := c.Cookie(middleware.AccessTokenCookie)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
	}
	if _, err := jwtutil.ValidateToken(cookie.Value); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid or expired token."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Success"})
}
