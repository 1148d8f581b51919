package main

import (
	"os"

	"marketplace-service/internal/linkcheck"
	"marketplace-service/pkg/config"
	"marketplace-service/pkg/database"
	"marketplace-service/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Walks the public site's static pages and every product, brand and
// category page and reports broken links. Exits non-zero when any are
// found, so it can gate a deploy.
func main() {
	_ = godotenv.Load()

	appConfig, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}

	checker := linkcheck.New(appConfig.Site.BaseURL, database.GetDB(), log)
	broken, err := checker.Run()
	if err != nil {
		log.Fatal("Link analysis failed", zap.Error(err))
	}
	if broken > 0 {
		os.Exit(1)
	}
}
