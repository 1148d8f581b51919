package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateProduct(t *testing.T) {
	ok := ProductInput{Name: "Walnut Bowl", Price: 25, Discount: 10}
	assert.NoError(t, ValidateProduct(ok))

	short := ProductInput{Name: "Bowl", Price: 25}
	assert.EqualError(t, ValidateProduct(short), "Product name must be at least 6 characters.")

	free := ProductInput{Name: "Walnut Bowl", Price: 0}
	assert.EqualError(t, ValidateProduct(free), "Price must be greater than zero.")

	over := ProductInput{Name: "Walnut Bowl", Price: 25, Discount: 101}
	assert.EqualError(t, ValidateProduct(over), "Discount cannot exceed 100.")

	// The lower bound is unchecked on purpose
	negative := ProductInput{Name: "Walnut Bowl", Price: 25, Discount: -5}
	assert.NoError(t, ValidateProduct(negative))
}

func TestValidateBrand(t *testing.T) {
	assert.NoError(t, ValidateBrand(BrandInput{Name: "Oak"}))
	assert.EqualError(t, ValidateBrand(BrandInput{Name: "ab"}), "Brand name must be between 3 and 30 characters.")
	assert.EqualError(t, ValidateBrand(BrandInput{Name: ""}), "Brand name must be between 3 and 30 characters.")

	long := "a very very very long brand name here"
	assert.Error(t, ValidateBrand(BrandInput{Name: long}))
}
