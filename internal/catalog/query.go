package catalog

import (
	"marketplace-service/internal/model"

	"gorm.io/gorm"
)

// Sort keys accepted by the product listing
const (
	SortAlphabetic = "alphabetic"
	SortPriceHTL   = "price_htl"
	SortPriceLTH   = "price_lth"
	SortLatest     = "latest"
)

// Filters holds the optional product listing parameters. Zero values
// mean "no filter"; all present filters combine with AND.
type Filters struct {
	Search   string
	Tag      string
	Category string
	Brand    string
	MinPrice *float64
	MaxPrice *float64
	SortBy   string
}

// Apply composes the filters onto a product query. Unrecognized sort
// keys leave the store's natural order untouched.
func (f Filters) Apply(db *gorm.DB) *gorm.DB {
	q := db.Model(&model.Product{})

	if f.Search != "" {
		q = q.Where("products.name ILIKE ?", "%"+f.Search+"%")
	}
	if f.Tag != "" {
		tagged := db.Session(&gorm.Session{NewDB: true}).
			Table("product_tag_links").
			Select("product_tag_links.product_id").
			Joins("JOIN product_tags ON product_tags.id = product_tag_links.product_tag_id").
			Where("product_tags.name ILIKE ?", "%"+f.Tag+"%")
		q = q.Where("products.id IN (?)", tagged)
	}
	if f.Category != "" {
		q = q.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", f.Category)
	}
	if f.Brand != "" {
		q = q.Joins("JOIN brands ON brands.id = products.brand_id").
			Where("brands.slug = ?", f.Brand)
	}
	if f.MinPrice != nil {
		q = q.Where("products.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("products.price <= ?", *f.MaxPrice)
	}

	switch f.SortBy {
	case SortAlphabetic:
		q = q.Order("products.name ASC")
	case SortPriceHTL:
		q = q.Order("products.price DESC")
	case SortPriceLTH:
		q = q.Order("products.price ASC")
	case SortLatest:
		q = q.Order("products.created_at DESC")
	}

	return q
}

// List runs the filtered query with every association resolved, so
// callers never need a second round trip.
func List(db *gorm.DB, f Filters) ([]model.Product, error) {
	var products []model.Product
	result := f.Apply(db).
		Preload("Vendor.User").
		Preload("Brand.Vendor.User").
		Preload("Category").
		Preload("Tags").
		Preload("Reviews").
		Find(&products)
	if result.Error != nil {
		return nil, result.Error
	}
	return products, nil
}
