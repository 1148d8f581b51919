package catalog

import (
	"errors"

	"marketplace-service/internal/model"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("resource not found")
	ErrSlugTaken = errors.New("a record with this name already exists")
)

// GetProductBySlug loads one product with all associations resolved
func GetProductBySlug(db *gorm.DB, slug string) (*model.Product, error) {
	var product model.Product
	result := db.
		Preload("Vendor.User").
		Preload("Brand.Vendor.User").
		Preload("Category").
		Preload("Tags").
		Preload("Reviews").
		Where("slug = ?", slug).
		First(&product)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &product, nil
}

// GetBrandBySlug loads one brand with its vendor resolved
func GetBrandBySlug(db *gorm.DB, slug string) (*model.Brand, error) {
	var brand model.Brand
	result := db.Preload("Vendor.User").Where("slug = ?", slug).First(&brand)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &brand, nil
}

// CheckProductSlug rejects a slug already held by another product.
// excludeID carries the record being updated so it does not collide
// with itself; pass 0 on creation.
func CheckProductSlug(db *gorm.DB, slug string, excludeID uint) error {
	var count int64
	q := db.Model(&model.Product{}).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrSlugTaken
	}
	return nil
}

// CheckBrandSlug is the brand counterpart of CheckProductSlug
func CheckBrandSlug(db *gorm.DB, slug string, excludeID uint) error {
	var count int64
	q := db.Model(&model.Brand{}).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrSlugTaken
	}
	return nil
}

// RandomTag picks one tag at random for assignment at product
// creation. Returns nil without error when no tags exist.
func RandomTag(db *gorm.DB) (*model.ProductTag, error) {
	var tag model.ProductTag
	result := db.Order("RANDOM()").First(&tag)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &tag, nil
}

// Slugs returns the bare slug column of the given table
func Slugs(db *gorm.DB, tableName string) ([]string, error) {
	var slugs []string
	if err := db.Table(tableName).Order("slug").Pluck("slug", &slugs).Error; err != nil {
		return nil, err
	}
	return slugs, nil
}
