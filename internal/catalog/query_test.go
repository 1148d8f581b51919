package catalog

import (
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"marketplace-service/internal/model"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

// buildSQL renders the filtered query without touching the database
func buildSQL(t *testing.T, db *gorm.DB, f Filters) (string, []interface{}) {
	t.Helper()
	var products []model.Product
	stmt := f.Apply(db.Session(&gorm.Session{DryRun: true})).Find(&products).Statement
	return stmt.SQL.String(), stmt.Vars
}

func TestFiltersNoConditions(t *testing.T) {
	db, _ := newMockDB(t)

	sql, vars := buildSQL(t, db, Filters{})
	assert.NotContains(t, sql, "WHERE")
	assert.NotContains(t, sql, "ORDER BY")
	assert.Empty(t, vars)
}

func TestFiltersSearch(t *testing.T) {
	db, _ := newMockDB(t)

	sql, vars := buildSQL(t, db, Filters{Search: "vase"})
	assert.Contains(t, sql, "products.name ILIKE")
	assert.Contains(t, vars, "%vase%")
}

func TestFiltersTagSubquery(t *testing.T) {
	db, _ := newMockDB(t)

	sql, vars := buildSQL(t, db, Filters{Tag: "wood"})
	assert.Contains(t, sql, "products.id IN")
	assert.Contains(t, sql, "product_tag_links")
	assert.Contains(t, sql, "JOIN product_tags")
	assert.Contains(t, vars, "%wood%")
}

func TestFiltersCategoryAndBrandJoin(t *testing.T) {
	db, _ := newMockDB(t)

	sql, vars := buildSQL(t, db, Filters{Category: "pottery", Brand: "oakware"})
	assert.Contains(t, sql, "JOIN categories ON categories.id = products.category_id")
	assert.Contains(t, sql, "categories.slug")
	assert.Contains(t, sql, "JOIN brands ON brands.id = products.brand_id")
	assert.Contains(t, sql, "brands.slug")
	assert.Contains(t, vars, "pottery")
	assert.Contains(t, vars, "oakware")
}

func TestFiltersPriceWindow(t *testing.T) {
	db, _ := newMockDB(t)

	min, max := 10.0, 50.0
	sql, vars := buildSQL(t, db, Filters{MinPrice: &min, MaxPrice: &max})
	assert.Contains(t, sql, "products.price >=")
	assert.Contains(t, sql, "products.price <=")
	assert.Contains(t, vars, 10.0)
	assert.Contains(t, vars, 50.0)
}

func TestFiltersCombineWithAND(t *testing.T) {
	db, _ := newMockDB(t)

	min := 10.0
	sql, _ := buildSQL(t, db, Filters{Search: "vase", Category: "pottery", MinPrice: &min})
	assert.Equal(t, 2, strings.Count(sql, " AND "))
}

func TestFiltersSort(t *testing.T) {
	db, _ := newMockDB(t)

	cases := map[string]string{
		SortAlphabetic: "products.name ASC",
		SortPriceHTL:   "products.price DESC",
		SortPriceLTH:   "products.price ASC",
		SortLatest:     "products.created_at DESC",
	}
	for key, clause := range cases {
		sql, _ := buildSQL(t, db, Filters{SortBy: key})
		assert.Contains(t, sql, "ORDER BY "+clause, "sort key %q", key)
	}

	// Unknown keys fall back to natural order
	sql, _ := buildSQL(t, db, Filters{SortBy: "bogus"})
	assert.NotContains(t, sql, "ORDER BY")
}

func TestPriceWindowSelectsInclusiveBounds(t *testing.T) {
	db, mock := newMockDB(t)

	// Products priced 5, 12, 30, 48, 60; window [10, 50] keeps three,
	// returned cheapest first.
	rows := sqlmock.NewRows([]string{"id", "name", "price"}).
		AddRow(2, "b", 12.0).
		AddRow(3, "c", 30.0).
		AddRow(4, "d", 48.0)
	mock.ExpectQuery(`SELECT .* FROM "products" WHERE products\.price >= .* AND products\.price <= .* ORDER BY products\.price ASC`).
		WillReturnRows(rows)
	// Preload queries for the empty association sets
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 5; i++ {
		mock.ExpectQuery(`SELECT`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	}

	min, max := 10.0, 50.0
	products, err := List(db, Filters{MinPrice: &min, MaxPrice: &max, SortBy: SortPriceLTH})
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, 12.0, products[0].Price)
	assert.Equal(t, 48.0, products[2].Price)
}
