package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(url string) *HTTPStore {
	return &HTTPStore{
		BaseURL:    url,
		APIKey:     "test-key",
		HTTPClient: http.DefaultClient,
	}
}

func TestUploadPreservesOrder(t *testing.T) {
	var uploads int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/objects/products/9", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		uploads++
		fmt.Fprintf(w, `{"url":"https://img.example/%d.jpg"}`, uploads)
	}))
	defer srv.Close()

	files := []File{
		{Name: "front.jpg", Content: strings.NewReader("1")},
		{Name: "back.jpeg", Content: strings.NewReader("2")},
		{Name: "side.png", Content: strings.NewReader("3")},
		{Name: "detail.jpg", Content: strings.NewReader("4")},
	}
	urls, err := testStore(srv.URL).Upload(context.Background(), files, CategoryProduct, 9)
	require.NoError(t, err)
	require.Len(t, urls, 4)
	for i, url := range urls {
		assert.Equal(t, fmt.Sprintf("https://img.example/%d.jpg", i+1), url)
	}
}

func TestUploadAbortsBatchOnFailure(t *testing.T) {
	var uploads int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uploads++
		if uploads == 3 {
			http.Error(w, "disk full", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"url":"https://img.example/x.jpg"}`)
	}))
	defer srv.Close()

	files := []File{
		{Name: "a.jpg", Content: strings.NewReader("a")},
		{Name: "b.jpg", Content: strings.NewReader("b")},
		{Name: "c.jpg", Content: strings.NewReader("c")},
		{Name: "d.jpg", Content: strings.NewReader("d")},
	}
	urls, err := testStore(srv.URL).Upload(context.Background(), files, CategoryProduct, 9)
	assert.Nil(t, urls)
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Equal(t, 3, uploads, "the batch stops at the first failure")
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should reach the store")
	}))
	defer srv.Close()

	files := []File{{Name: "malware.exe", Content: strings.NewReader("x")}}
	_, err := testStore(srv.URL).Upload(context.Background(), files, CategoryProduct, 9)
	assert.True(t, errors.Is(err, ErrUploadFailed))
}

func TestDeleteAllToleratesMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/objects/brands/4", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := testStore(srv.URL).DeleteAll(context.Background(), CategoryBrand, 4)
	assert.NoError(t, err)
}

func TestDeleteAllSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := testStore(srv.URL).DeleteAll(context.Background(), CategoryBrand, 4)
	assert.Error(t, err)
}
