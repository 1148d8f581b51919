package linkcheck

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
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

func slugRows(slugs ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"slug"})
	for _, s := range slugs {
		rows.AddRow(s)
	}
	return rows
}

func TestRunVisitsEveryPage(t *testing.T) {
	var mu sync.Mutex
	visited := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		visited[r.URL.Path]++
		mu.Unlock()
		if r.URL.Path == "/product/broken-item" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT "slug" FROM "products" ORDER BY slug`).
		WillReturnRows(slugRows("broken-item", "walnut-bowl"))
	mock.ExpectQuery(`SELECT "slug" FROM "brands" ORDER BY slug`).
		WillReturnRows(slugRows("oakware"))
	mock.ExpectQuery(`SELECT "slug" FROM "categories" ORDER BY slug`).
		WillReturnRows(slugRows("pottery"))

	checker := New(srv.URL, db, zap.NewNop())
	broken, err := checker.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, broken)

	// Static pages
	for _, path := range []string{"/", "/products", "/signin", "/register", "/contact"} {
		assert.Equal(t, 1, visited[path], "path %s", path)
	}
	// Per-slug pages
	assert.Equal(t, 1, visited["/product/walnut-bowl"])
	assert.Equal(t, 1, visited["/product/broken-item"])
	assert.Equal(t, 1, visited["/brand/oakware"])
	assert.Equal(t, 1, visited["/products/brand/oakware"])
	assert.Equal(t, 1, visited["/products/category/pottery"])
}

func TestRunSurfacesSlugLoadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT "slug" FROM "products"`).
		WillReturnError(assert.AnError)

	checker := New(srv.URL, db, zap.NewNop())
	_, err := checker.Run()
	assert.Error(t, err)
}
