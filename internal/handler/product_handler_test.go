package handler

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListProductsRejectsBadPrice(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/products?min_price=cheap", nil)

	require.NoError(t, ListProducts(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Price filters must be numeric.", decodeBody(t, rec.Body.Bytes())["message"])
}

func TestGetProductNotFound(t *testing.T) {
	mock := installMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE slug = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug"}))

	c, rec := newContext(http.MethodGet, "/product?slug=ghost", nil)

	require.NoError(t, GetProduct(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found.", decodeBody(t, rec.Body.Bytes())["message"])
}

func TestCreateProductRequiresAuth(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/products", nil)

	require.NoError(t, CreateProduct(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateProductRequiresVendorProfile(t *testing.T) {
	mock := installMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "customers" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}))

	c, rec := newContext(http.MethodPost, "/products", nil)
	asUser(c, 42, "maya")

	require.NoError(t, CreateProduct(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "No vendor profile for this account.", decodeBody(t, rec.Body.Bytes())["message"])
}

// multipartProduct builds a product mutation request with the given
// number of image parts attached.
func multipartProduct(t *testing.T, fields map[string]string, images int) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for i := 0; i < images; i++ {
		part, err := writer.CreateFormFile("image"+strconv.Itoa(i), "photo.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("jpeg-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/products", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func productFields() map[string]string {
	return map[string]string{
		"name":     "Walnut Serving Bowl",
		"price":    "45.00",
		"discount": "10",
		"brand":    "2",
		"category": "3",
		"details":  `[{"name":"Material","value":"Walnut"}]`,
	}
}

func expectVendor(mock sqlmock.Sqlmock, customerID uint) {
	mock.ExpectQuery(`SELECT \* FROM "customers" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(customerID, 42))
}

func expectRefsExist(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT count\(\*\) FROM "brands" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "categories" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
}

func TestCreateProductRejectsShortName(t *testing.T) {
	mock := installMockDB(t)
	expectVendor(mock, 7)

	fields := productFields()
	fields["name"] = "Bowl"
	c, rec := multipartProduct(t, fields, 4)
	asUser(c, 42, "maya")

	require.NoError(t, CreateProduct(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Product name must be at least 6 characters.", decodeBody(t, rec.Body.Bytes())["message"])
}

func TestCreateProductRejectsMissingReferences(t *testing.T) {
	mock := installMockDB(t)
	expectVendor(mock, 7)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "brands" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	c, rec := multipartProduct(t, productFields(), 4)
	asUser(c, 42, "maya")

	require.NoError(t, CreateProduct(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Referenced brand does not exist.", decodeBody(t, rec.Body.Bytes())["message"])
}

func TestCreateProductRequiresFourImages(t *testing.T) {
	mock := installMockDB(t)
	expectVendor(mock, 7)
	expectRefsExist(mock)

	c, rec := multipartProduct(t, productFields(), 2)
	asUser(c, 42, "maya")

	require.NoError(t, CreateProduct(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Exactly four images are required.", decodeBody(t, rec.Body.Bytes())["message"])
}

func TestCreateProductSlugConflict(t *testing.T) {
	mock := installMockDB(t)
	expectVendor(mock, 7)
	expectRefsExist(mock)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "products" WHERE slug = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	c, rec := multipartProduct(t, productFields(), 4)
	asUser(c, 42, "maya")

	require.NoError(t, CreateProduct(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "A product with this name already exists.", decodeBody(t, rec.Body.Bytes())["message"])
}

func TestCreateProductRollsBackOnUploadFailure(t *testing.T) {
	mock := installMockDB(t)
	mock.MatchExpectationsInOrder(false)
	expectVendor(mock, 7)
	expectRefsExist(mock)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "products" WHERE slug = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	// Insert
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()
	// Random tag lookup comes back empty
	mock.ExpectQuery(`SELECT \* FROM "product_tags" ORDER BY RANDOM\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	// Compensating delete after the failed upload
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "product_tag_links"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "reviews"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "products"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	failing := &stubStore{uploadErr: errors.New("object store unavailable")}
	Init(failing, nil, nil)
	t.Cleanup(func() { Init(&stubStore{}, nil, nil) })

	c, rec := multipartProduct(t, productFields(), 4)
	asUser(c, 42, "maya")

	require.NoError(t, CreateProduct(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Image upload failed.", decodeBody(t, rec.Body.Bytes())["message"])
}

func TestUpdateProductForbiddenForNonOwner(t *testing.T) {
	mock := installMockDB(t)
	expectVendor(mock, 8)
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE "products"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vendor_id", "slug"}).AddRow(5, 7, "walnut-bowl"))

	c, rec := newContext(http.MethodPut, "/products?id=5", nil)
	asUser(c, 42, "maya")

	require.NoError(t, UpdateProduct(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You do not own this product.", decodeBody(t, rec.Body.Bytes())["message"])
}

func TestDeleteProductForbiddenForNonOwner(t *testing.T) {
	mock := installMockDB(t)
	expectVendor(mock, 8)
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE "products"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vendor_id", "slug"}).AddRow(5, 7, "walnut-bowl"))

	c, rec := newContext(http.MethodDelete, "/products?id=5", nil)
	asUser(c, 42, "maya")

	require.NoError(t, DeleteProduct(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You do not own this product.", decodeBody(t, rec.Body.Bytes())["message"])
}

func TestProductSlugs(t *testing.T) {
	mock := installMockDB(t)
	mock.ExpectQuery(`SELECT "slug" FROM "products" ORDER BY slug`).
		WillReturnRows(sqlmock.NewRows([]string{"slug"}).AddRow("oak-tray").AddRow("walnut-bowl"))

	c, rec := newContext(http.MethodGet, "/product/slugs", nil)

	require.NoError(t, ProductSlugs(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec.Body.Bytes())
	assert.Equal(t, []interface{}{"oak-tray", "walnut-bowl"}, body["slugs"])
}
