package linkcheck

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"marketplace-service/internal/catalog"
)

// Static public pages checked on every run
var staticPaths = []string{"/", "/products", "/signin", "/register", "/contact"}

// Checker HEAD-requests the public site's static and per-slug pages
// and logs any that do not come back 200.
type Checker struct {
	BaseURL string
	DB      *gorm.DB
	Log     *zap.Logger

	staticClient  *http.Client
	dynamicClient *http.Client
}

// New builds a checker. Static pages get a longer timeout than the
// many per-slug pages.
func New(baseURL string, db *gorm.DB, log *zap.Logger) *Checker {
	return &Checker{
		BaseURL:       baseURL,
		DB:            db,
		Log:           log,
		staticClient:  &http.Client{Timeout: 15 * time.Second},
		dynamicClient: &http.Client{Timeout: 6 * time.Second},
	}
}

// Run walks every checked path once and returns the number of broken
// links found.
func (c *Checker) Run() (int, error) {
	c.Log.Info("Started link analysis", zap.String("base_url", c.BaseURL))
	broken := 0

	for _, path := range staticPaths {
		if !c.check(c.staticClient, path) {
			broken++
		}
	}

	productSlugs, err := catalog.Slugs(c.DB, "products")
	if err != nil {
		return broken, fmt.Errorf("loading product slugs: %w", err)
	}
	brandSlugs, err := catalog.Slugs(c.DB, "brands")
	if err != nil {
		return broken, fmt.Errorf("loading brand slugs: %w", err)
	}
	categorySlugs, err := catalog.Slugs(c.DB, "categories")
	if err != nil {
		return broken, fmt.Errorf("loading category slugs: %w", err)
	}

	for _, slug := range productSlugs {
		if !c.check(c.dynamicClient, "/product/"+slug) {
			broken++
		}
	}
	for _, slug := range brandSlugs {
		if !c.check(c.dynamicClient, "/brand/"+slug) {
			broken++
		}
	}
	for _, slug := range brandSlugs {
		if !c.check(c.dynamicClient, "/products/brand/"+slug) {
			broken++
		}
	}
	for _, slug := range categorySlugs {
		if !c.check(c.dynamicClient, "/products/category/"+slug) {
			broken++
		}
	}

	c.Log.Info("Link analysis completed", zap.Int("broken", broken))
	return broken, nil
}

// check HEAD-requests one path and logs the outcome
func (c *Checker) check(client *http.Client, path string) bool {
	url := c.BaseURL + path
	resp, err := client.Head(url)
	if err != nil {
		c.Log.Warn("Error checking link", zap.String("url", url), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.Log.Warn("Broken link found", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return false
	}
	c.Log.Info("Status 200", zap.String("url", url))
	return true
}
