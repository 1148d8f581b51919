package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
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

// productImageCount is the exact number of images a product carries
const productImageCount = 4

// parseFilters maps the listing query parameters onto catalog.Filters.
// Malformed price bounds are a caller error, never coerced.
func parseFilters(c echo.Context) (catalog.Filters, error) {
	f := catalog.Filters{
		Search:   c.QueryParam("search"),
		Tag:      c.QueryParam("tag"),
		Category: c.QueryParam("category"),
		Brand:    c.QueryParam("brand"),
		SortBy:   c.QueryParam("sortby"),
	}
	if raw := c.QueryParam("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return f, err
		}
		f.MinPrice = &v
	}
	if raw := c.QueryParam("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return f, err
		}
		f.MaxPrice = &v
	}
	return f, nil
}

// ListProducts handles the public catalog listing with optional
// filtering and sorting.
func ListProducts(c echo.Context) error {
	log := logger.FromContext(c)

	filters, err := parseFilters(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Price filters must be numeric."})
	}

	products, err := catalog.List(database.GetDB(), filters)
	if err != nil {
		log.Error("Failed to list products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve products."})
	}

	log.Info("Products retrieved", zap.Int("count", len(products)))
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Success",
		"products": products,
	})
}

// GetProduct returns one product by slug with everything resolved
func GetProduct(c echo.Context) error {
	log := logger.FromContext(c)
	slug := c.QueryParam("slug")

	product, err := catalog.GetProductBySlug(database.GetDB(), slug)
	if err != nil {
		if err == catalog.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Product not found."})
		}
		log.Error("Failed to load product", zap.String("slug", slug), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Something went wrong."})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Success",
		"product": product,
	})
}

// MyProducts lists the caller's own products
func MyProducts(c echo.Context) error {
	log := logger.FromContext(c)

	vendor, err := actingVendor(c)
	if err != nil {
		return vendorError(c, err)
	}

	var products []model.Product
	result := database.GetDB().
		Preload("Brand.Vendor.User").
		Preload("Category").
		Preload("Tags").
		Preload("Reviews").
		Where("vendor_id = ?", vendor.ID).
		Find(&products)
	if result.Error != nil {
		log.Error("Failed to list vendor products", zap.Uint("vendor_id", vendor.ID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve products."})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Success",
		"products": products,
	})
}

// productForm carries the parsed mutation fields
type productForm struct {
	Name        string
	Description string
	Content     string
	BrandID     uint
	CategoryID  uint
	Price       float64
	Discount    float64
	Details     json.RawMessage
}

// parseProductForm reads and checks the mutation fields common to
// create and update. All validation happens before any store write.
func parseProductForm(c echo.Context) (*productForm, string, error) {
	f := &productForm{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Content:     c.FormValue("content"),
	}

	price, err := strconv.ParseFloat(c.FormValue("price"), 64)
	if err != nil {
		return nil, "Price must be a number.", errInvalidInput
	}
	f.Price = price

	if raw := c.FormValue("discount"); raw != "" {
		discount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, "Discount must be a number.", errInvalidInput
		}
		f.Discount = discount
	}

	brandID, err := strconv.ParseUint(c.FormValue("brand"), 10, 32)
	if err != nil {
		return nil, "Brand is required.", errInvalidInput
	}
	f.BrandID = uint(brandID)

	categoryID, err := strconv.ParseUint(c.FormValue("category"), 10, 32)
	if err != nil {
		return nil, "Category is required.", errInvalidInput
	}
	f.CategoryID = uint(categoryID)

	details := c.FormValue("details")
	if details == "" {
		details = "[]"
	}
	if !json.Valid([]byte(details)) {
		return nil, "Details must be valid JSON.", errInvalidInput
	}
	f.Details = json.RawMessage(details)

	if err := authz.ValidateProduct(authz.ProductInput{
		Name:     f.Name,
		Price:    f.Price,
		Discount: f.Discount,
	}); err != nil {
		return nil, err.Error(), errInvalidInput
	}

	// Referenced records must exist before anything is written
	db := database.GetDB()
	var count int64
	db.Model(&model.Brand{}).Where("id = ?", f.BrandID).Count(&count)
	if count == 0 {
		return nil, "Referenced brand does not exist.", errInvalidInput
	}
	db.Model(&model.Category{}).Where("id = ?", f.CategoryID).Count(&count)
	if count == 0 {
		return nil, "Referenced category does not exist.", errInvalidInput
	}

	return f, "", nil
}

// collectProductImages opens the image0..image3 uploads. Returns the
// number of fields that were present so callers can enforce the
// all-or-nothing batch rule.
func collectProductImages(c echo.Context) ([]media.File, int, error) {
	files := make([]media.File, 0, productImageCount)
	present := 0
	for i := 0; i < productImageCount; i++ {
		fh, err := c.FormFile("image" + strconv.Itoa(i))
		if err != nil {
			continue
		}
		present++
		src, err := fh.Open()
		if err != nil {
			return nil, present, err
		}
		files = append(files, media.File{Name: fh.Filename, Content: src})
	}
	return files, present, nil
}

// CreateProduct creates a product with its four images. The database
// record is rolled back when the upload batch fails.
func CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordProductOperation("create")

	vendor, err := actingVendor(c)
	if err != nil {
		return vendorError(c, err)
	}

	form, msg, err := parseProductForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
	}

	files, present, err := collectProductImages(c)
	if err != nil {
		log.Error("Failed to read image uploads", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to read images."})
	}
	if present != productImageCount {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Exactly four images are required."})
	}

	db := database.GetDB()

	slug := slugutil.Slugify(form.Name)
	if err := catalog.CheckProductSlug(db, slug, 0); err != nil {
		if err == catalog.ErrSlugTaken {
			return c.JSON(http.StatusConflict, echo.Map{"message": "A product with this name already exists."})
		}
		log.Error("Slug check failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Something went wrong."})
	}

	product := model.Product{
		VendorID:    vendor.ID,
		BrandID:     form.BrandID,
		CategoryID:  form.CategoryID,
		Name:        form.Name,
		Description: form.Description,
		Content:     form.Content,
		Slug:        slug,
		Price:       form.Price,
		Discount:    form.Discount,
		Details:     form.Details,
	}
	if err := db.Create(&product).Error; err != nil {
		log.Error("Failed to create product", zap.String("name", form.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to create product."})
	}

	// One random tag, when any exist
	if tag, err := catalog.RandomTag(db); err == nil && tag != nil {
		if err := db.Model(&product).Association("Tags").Append(tag); err != nil {
			log.Warn("Failed to assign tag", zap.Uint("product_id", product.ID), zap.Error(err))
		}
	}

	urls, err := mediaStore.Upload(c.Request().Context(), files, media.CategoryProduct, product.ID)
	if err != nil {
		// Compensate: the record must not outlive its failed upload
		prometheus.RecordMediaUpload("failed")
		log.Error("Image upload failed, rolling back product",
			zap.Uint("product_id", product.ID),
			zap.Error(err))
		if derr := db.Select(clause.Associations).Delete(&product).Error; derr != nil {
			log.Error("Compensating delete failed", zap.Uint("product_id", product.ID), zap.Error(derr))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Image upload failed."})
	}
	prometheus.RecordMediaUpload("ok")

	if err := db.Model(&product).Update("images", pq.StringArray(urls)).Error; err != nil {
		log.Error("Failed to store image URLs", zap.Uint("product_id", product.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to create product."})
	}

	slugCache.Invalidate(c.Request().Context(), cache.KeyProductSlugs)

	created, err := catalog.GetProductBySlug(db, slug)
	if err != nil {
		log.Error("Failed to reload product", zap.String("slug", slug), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Something went wrong."})
	}

	log.Info("Product created",
		zap.Uint("product_id", product.ID),
		zap.String("slug", slug),
		zap.Uint("vendor_id", vendor.ID))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Success",
		"product": created,
	})
}

// UpdateProduct updates an owned product. Images are replaced as a
// batch of four or left untouched entirely.
func UpdateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordProductOperation("update")

	vendor, err := actingVendor(c)
	if err != nil {
		return vendorError(c, err)
	}

	id, err := strconv.ParseUint(formOrQuery(c, "id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Product id is required."})
	}

	db := database.GetDB()
	var product model.Product
	if err := db.First(&product, uint(id)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Product not found."})
		}
		log.Error("Failed to load product", zap.Uint64("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Something went wrong."})
	}

	if err := authz.CanMutate(vendor, &product); err != nil {
		log.Warn("Forbidden product mutation",
			zap.Uint("product_id", product.ID),
			zap.Uint("vendor_id", vendor.ID))
		return c.JSON(http.StatusForbidden, echo.Map{"message": "You do not own this product."})
	}

	form, msg, err := parseProductForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
	}

	files, present, err := collectProductImages(c)
	if err != nil {
		log.Error("Failed to read image uploads", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to read images."})
	}
	if present != 0 && present != productImageCount {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Exactly four images are required."})
	}

	slug := slugutil.Slugify(form.Name)
	if err := catalog.CheckProductSlug(db, slug, product.ID); err != nil {
		if err == catalog.ErrSlugTaken {
			return c.JSON(http.StatusConflict, echo.Map{"message": "A product with this name already exists."})
		}
		log.Error("Slug check failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Something went wrong."})
	}

	if present == productImageCount {
		// Old objects go first so the namespace never holds both sets
		ctx := c.Request().Context()
		if err := mediaStore.DeleteAll(ctx, media.CategoryProduct, product.ID); err != nil {
			log.Error("Failed to clear old images", zap.Uint("product_id", product.ID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Image replacement failed."})
		}
		urls, err := mediaStore.Upload(ctx, files, media.CategoryProduct, product.ID)
		if err != nil {
			prometheus.RecordMediaUpload("failed")
			log.Error("Image upload failed", zap.Uint("product_id", product.ID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Image upload failed."})
		}
		prometheus.RecordMediaUpload("ok")
		product.Images = pq.StringArray(urls)
	}

	product.Name = form.Name
	product.Description = form.Description
	product.Content = form.Content
	product.BrandID = form.BrandID
	product.CategoryID = form.CategoryID
	product.Slug = slug
	product.Price = form.Price
	product.Discount = form.Discount
	product.Details = form.Details

	if err := db.Save(&product).Error; err != nil {
		log.Error("Failed to update product", zap.Uint("product_id", product.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to update product."})
	}

	slugCache.Invalidate(c.Request().Context(), cache.KeyProductSlugs)

	log.Info("Product updated", zap.Uint("product_id", product.ID), zap.String("slug", slug))
	return c.JSON(http.StatusOK, echo.Map{"message": "Success"})
}

// DeleteProduct deletes an owned product along with its stored images
func DeleteProduct(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordProductOperation("delete")

	vendor, err := actingVendor(c)
	if err != nil {
		return vendorError(c, err)
	}

	id, err := strconv.ParseUint(formOrQuery(c, "id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Product id is required."})
	}

	db := database.GetDB()
	var product model.Product
	if err := db.First(&product, uint(id)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Product not found."})
		}
		log.Error("Failed to load product", zap.Uint64("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Something went wrong."})
	}

	if err := authz.CanMutate(vendor, &product); err != nil {
		log.Warn("Forbidden product deletion",
			zap.Uint("product_id", product.ID),
			zap.Uint("vendor_id", vendor.ID))
		return c.JSON(http.StatusForbidden, echo.Map{"message": "You do not own this product."})
	}

	if err := mediaStore.DeleteAll(c.Request().Context(), media.CategoryProduct, product.ID); err != nil {
		log.Error("Failed to delete stored images", zap.Uint("product_id", product.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to delete product images."})
	}

	if err := db.Select(clause.Associations).Delete(&product).Error; err != nil {
		log.Error("Failed to delete product", zap.Uint("product_id", product.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to delete product."})
	}

	slugCache.Invalidate(c.Request().Context(), cache.KeyProductSlugs)

	log.Info("Product deleted", zap.Uint("product_id", product.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully."})
}

// ProductSlugs returns the bare slug list, served from cache when warm
func ProductSlugs(c echo.Context) error {
	return slugListResponse(c, cache.KeyProductSlugs, "products")
}
