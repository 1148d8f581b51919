package main

import (
	"net/http"

	"marketplace-service/internal/cache"
	"marketplace-service/internal/handler"
	"marketplace-service/internal/mail"
	"marketplace-service/internal/media"
	mid "marketplace-service/internal/middleware"
	"marketplace-service/pkg/config"
	"marketplace-service/pkg/database"
	"marketplace-service/pkg/jwtutil"
	"marketplace-service/pkg/logger"
	"marketplace-service/prometheus"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		// Just log a warning, don't fail if .env file is not found
		// This allows the service to run in environments where env vars are set differently
		// such as production environments with proper environment configuration
		// The fallback values will be used in case env vars are not set
	}

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting marketplace-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	err = database.InitDB(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Redis is optional; running without it only costs cache hits
	slugCache, err := cache.Connect(&appConfig.Redis)
	if err != nil {
		log.Warn("Redis unavailable, slug caching disabled", zap.Error(err))
	} else if slugCache != nil {
		log.Info("Redis connection established", zap.String("addr", appConfig.Redis.Addr))
	}

	mediaStore := media.NewHTTPStore(&appConfig.Media)
	log.Info("Media store configured", zap.String("base_url", appConfig.Media.BaseURL))

	// Keep a disabled mailer out of the interface so the nil check in
	// the handlers stays meaningful
	var mailer mail.Mailer
	if m := mail.NewSMTPMailer(&appConfig.Mail); m != nil {
		mailer = m
	} else {
		log.Warn("Mail host not configured, welcome mail disabled")
	}

	handler.Init(mediaStore, slugCache, mailer)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Routes
	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth
	e.POST("/register", handler.Register)
	e.POST("/login", handler.Login)
	e.GET("/logout", handler.Logout)
	e.GET("/validate-user", handler.ValidateUser)

	// Profile
	e.GET("/profile", handler.GetProfile, mid.AuthMiddleware)
	e.POST("/profile", handler.UpdateProfile, mid.AuthMiddleware)

	// Products: reads are public, mutation requires the owning vendor
	e.GET("/products", handler.ListProducts)
	e.GET("/product", handler.GetProduct)
	e.GET("/product/slugs", handler.ProductSlugs)
	e.POST("/product", handler.CreateProduct, mid.AuthMiddleware)
	e.PUT("/product", handler.UpdateProduct, mid.AuthMiddleware)
	e.DELETE("/product", handler.DeleteProduct, mid.AuthMiddleware)
	e.GET("/myproducts", handler.MyProducts, mid.AuthMiddleware)

	// Brands
	e.GET("/brands", handler.ListBrands)
	e.GET("/brand", handler.GetBrand)
	e.GET("/brand/slugs", handler.BrandSlugs)
	e.POST("/brand", handler.CreateBrand, mid.AuthMiddleware)
	e.PUT("/brand", handler.UpdateBrand, mid.AuthMiddleware)
	e.DELETE("/brand", handler.DeleteBrand, mid.AuthMiddleware)
	e.GET("/mybrands", handler.MyBrands, mid.AuthMiddleware)

	// Categories
	e.GET("/categories", handler.ListCategories)
	e.GET("/category/slugs", handler.CategorySlugs)

	// Reviews
	e.POST("/review", handler.CreateReview, mid.AuthMiddleware)
	e.GET("/review/like", handler.ToggleLike, mid.AuthMiddleware)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
