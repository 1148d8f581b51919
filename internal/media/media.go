package media

import (
	"context"
	"errors"
	"io"
)

// Object-store namespaces for the two image-owning entities
const (
	CategoryProduct = "products"
	CategoryBrand   = "brands"
)

var (
	ErrUploadFailed   = errors.New("image upload failed")
	ErrUnsupportedExt = errors.New("only .jpg, .jpeg and .png files are allowed")
)

// File is one binary blob queued for upload
type File struct {
	Name    string
	Content io.Reader
}

// Store is the external image store. Upload returns one public URL
// per input file in the same order; any individual failure fails the
// whole batch and the caller must treat it as not committed.
// DeleteAll removes every object under the owner's namespace.
type Store interface {
	Upload(ctx context.Context, files []File, category string, ownerID uint) ([]string, error)
	DeleteAll(ctx context.Context, category string, ownerID uint) error
}
