package authz

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ProductInput carries the fields checked before any product write.
// The discount lower bound is deliberately not validated; only the
// cap of 100 is enforced.
type ProductInput struct {
	Name     string  `validate:"required,min=6"`
	Price    float64 `validate:"required,gt=0"`
	Discount float64 `validate:"lte=100"`
}

// BrandInput carries the fields checked before any brand write
type BrandInput struct {
	Name string `validate:"required,min=3,max=30"`
}

// ValidateProduct reports the first violated product rule as a
// human-readable message
func ValidateProduct(in ProductInput) error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].StructField() {
			case "Name":
				return errors.New("Product name must be at least 6 characters.")
			case "Price":
				return errors.New("Price must be greater than zero.")
			case "Discount":
				return errors.New("Discount cannot exceed 100.")
			}
		}
		return err
	}
	return nil
}

// ValidateBrand reports the first violated brand rule as a
// human-readable message
func ValidateBrand(in BrandInput) error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return errors.New("Brand name must be between 3 and 30 characters.")
		}
		return err
	}
	return nil
}
