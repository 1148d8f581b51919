package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"marketplace-service/internal/authz"
	"marketplace-service/internal/cache"
	"marketplace-service/internal/catalog"
	"marketplace-service/internal/media"
	"marketplace-service/internal/model"
	"marketplace-service/pkg/database"
	"marketplace-service/pkg/logger"
	"marketplace-service/pkg/slugutil"
	"marketplace-service/prometheus"
)

// ListBrands returns every brand in random order so the storefront
// rotates what it showcases.
func ListBrands(c echo.Context) error {
	log := logger.FromContext(c)

	var brands []model.Brand
	result := database.GetDB().
		Preload("Vendor.User").
		Order("RANDOM()").
		Find(&brands)
	if result.Error != nil {
		log.Error("Failed to list brands", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve brands."})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Success",
		"brands":  brands,
	})
}

// GetBrand returns one brand by slug
func GetBrand(c echo.Context) error {
	log := logger.FromContext(c)
	slug := c.QueryParam("slug")

	brand, err := catalog.GetBrandBySlug(database.GetDB(), slug)
	if err != nil {
		if err == catalog.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Brand not found."})
		}
		log.Error("Failed to load brand", zap.String("slug", slug), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Something went wrong."})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Success",
		"brand":   brand,
	})
}

// MyBrands lists the caller's own brands
func MyBrands(c echo.Context) error {
	log := logger.FromContext(c)

	vendor, err := actingVendor(c)
	if err != nil {
		return vendorError(c, err)
	}

	var brands []model.Brand
	result := database.GetDB().
		Where("vendor_id = ?", vendor.ID).
		Find(&brands)
	if result.Error != nil {
		log.Error("Failed to list vendor brands", zap.Uint("vendor_id", vendor.ID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve brands."})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Success",
		"brands":  brands,
	})
}

// CreateBrand creates a brand with its single logo image. The record
// is rolled back when the upload fails.
func CreateBrand(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordBrandOperation("create")

	vendor, err := actingVendor(c)
	if err != nil {
		return vendorError(c, err)
	}

	name := c.FormValue("name")
	description := c.FormValue("description")
	if err := authz.ValidateBrand(authz.BrandInput{Name: name}); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Brand image is required."})
	}
	src, err := fh.Open()
	if err != nil {
		log.Error("Failed to read image upload", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to read image."})
	}

	db := database.GetDB()

	slug := slugutil.Slugify(name)
	if err := catalog.CheckBrandSlug(db, slug, 0); err != nil {
		if err == catalog.ErrSlugTaken {
			return c.JSON(http.StatusConflict, echo.Map{"message": "A brand with this name already exists."})
		}
		log.Error("Slug check failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Something went wrong."})
	}

	brand := model.Brand{
		VendorID:    vendor.ID,
		Name:        name,
		Slug:        slug,
		Description: description,
	}
	if err := db.Create(&brand).Error; err != nil {
		log.Error("Failed to create brand", zap.String("name", name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to create brand."})
	}

	files := []media.File{{Name: fh.Filename, Content: src}}
	urls, err := mediaStore.Upload(c.Request().Context(), files, media.CategoryBrand, brand.ID)
	if err != nil {
		prometheus.RecordMediaUpload("failed")
		log.Error("Image upload failed, rolling back brand",
			zap.Uint("brand_id", brand.ID),
			zap.Error(err))
		if derr := db.Delete(&brand).Error; derr != nil {
			log.Error("Compensating delete failed", zap.Uint("brand_id", brand.ID), zap.Error(derr))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Image upload failed."})
	}
	prometheus.RecordMediaUpload("ok")

	brand.Image = urls[0]
	if err := db.Model(&brand).Update("image", brand.Image).Error; err != nil {
		log.Error("Failed to store image URL", zap.Uint("brand_id", brand.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to create brand."})
	}

	slugCache.Invalidate(c.Request().Context(), cache.KeyBrandSlugs)

	log.Info("Brand created",
		zap.Uint("brand_id", brand.ID),
		zap.String("slug", slug),
		zap.Uint("vendor_id", vendor.ID))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Success",
		"brand":   brand,
	})
}

// UpdateBrand updates an owned brand, optionally replacing its image
func UpdateBrand(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordBrandOperation("update")

	vendor, err := actingVendor(c)
	if err != nil {
		return vendorError(c, err)
	}

	id, err := strconv.ParseUint(formOrQuery(c, "id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Brand id is required."})
	}

	db := database.GetDB()
	var brand model.Brand
	if err := db.First(&brand, uint(id)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Brand not found."})
		}
		log.Error("Failed to load brand", zap.Uint64("brand_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Something went wrong."})
	}

	if err := authz.CanMutate(vendor, &brand); err != nil {
		log.Warn("Forbidden brand mutation",
			zap.Uint("brand_id", brand.ID),
			zap.Uint("vendor_id", vendor.ID))
		return c.JSON(http.StatusForbidden, echo.Map{"message": "You do not own this brand."})
	}

	name := c.FormValue("name")
	if err := authz.ValidateBrand(authz.BrandInput{Name: name}); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	slug := slugutil.Slugify(name)
	if err := catalog.CheckBrandSlug(db, slug, brand.ID); err != nil {
		if err == catalog.ErrSlugTaken {
			return c.JSON(http.StatusConflict, echo.Map{"message": "A brand with this name already exists."})
		}
		log.Error("Slug check failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Something went wrong."})
	}

	if fh, err := c.FormFile("image"); err == nil {
		src, err := fh.Open()
		if err != nil {
			log.Error("Failed to read image upload", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to read image."})
		}
		ctx := c.Request().Context()
		if err := mediaStore.DeleteAll(ctx, media.CategoryBrand, brand.ID); err != nil {
			log.Error("Failed to clear old image", zap.Uint("brand_id", brand.ID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Image replacement failed."})
		}
		urls, err := mediaStore.Upload(ctx, []media.File{{Name: fh.Filename, Content: src}}, media.CategoryBrand, brand.ID)
		if err != nil {
			prometheus.RecordMediaUpload("failed")
			log.Error("Image upload failed", zap.Uint("brand_id", brand.ID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Image upload failed."})
		}
		prometheus.RecordMediaUpload("ok")
		brand.Image = urls[0]
	}

	brand.Name = name
	brand.Slug = slug
	brand.Description = c.FormValue("description")

	if err := db.Save(&brand).Error; err != nil {
		log.Error("Failed to update brand", zap.Uint("brand_id", brand.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to update brand."})
	}

	slugCache.Invalidate(c.Request().Context(), cache.KeyBrandSlugs)

	log.Info("Brand updated", zap.Uint("brand_id", brand.ID), zap.String("slug", slug))
	return c.JSON(http.StatusOK, echo.Map{"message": "Success"})
}

// DeleteBrand deletes an owned brand. Products under the brand go with
// it, so their stored images are cleaned up first.
func DeleteBrand(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordBrandOperation("delete")

	vendor, err := actingVendor(c)
	if err != nil {
		return vendorError(c, err)
	}

	id, err := strconv.ParseUint(formOrQuery(c, "id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Brand id is required."})
	}

	db := database.GetDB()
	var brand model.Brand
	if err := db.First(&brand, uint(id)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Brand not found."})
		}
		log.Error("Failed to load brand", zap.Uint64("brand_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Something went wrong."})
	}

	if err := authz.CanMutate(vendor, &brand); err != nil {
		log.Warn("Forbidden brand deletion",
			zap.Uint("brand_id", brand.ID),
			zap.Uint("vendor_id", vendor.ID))
		return c.JSON(http.StatusForbidden, echo.Map{"message": "You do not own this brand."})
	}

	ctx := c.Request().Context()

	// The cascade will take the products, so their media must go now
	var productIDs []uint
	if err := db.Model(&model.Product{}).Where("brand_id = ?", brand.ID).Pluck("id", &productIDs).Error; err != nil {
		log.Error("Failed to list brand products", zap.Uint("brand_id", brand.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Something went wrong."})
	}
	for _, pid := range productIDs {
		if err := mediaStore.DeleteAll(ctx, media.CategoryProduct, pid); err != nil {
			log.Error("Failed to delete product images",
				zap.Uint("product_id", pid),
				zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to delete product images."})
		}
	}
	if err := mediaStore.DeleteAll(ctx, media.CategoryBrand, brand.ID); err != nil {
		log.Error("Failed to delete brand image", zap.Uint("brand_id", brand.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to delete brand image."})
	}

	if err := db.Select(clause.Associations).Delete(&brand).Error; err != nil {
		log.Error("Failed to delete brand", zap.Uint("brand_id", brand.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to delete brand."})
	}

	slugCache.Invalidate(c.Request().Context(), cache.KeyBrandSlugs, cache.KeyProductSlugs)

	log.Info("Brand deleted", zap.Uint("brand_id", brand.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Brand deleted successfully."})
}

// BrandSlugs returns the bare slug list, served from cache when warm
func BrandSlugs(c echo.Context) error {
	return slugListResponse(c, cache.KeyBrandSlugs, "brands")
}
