package authz

import (
	"errors"

	"marketplace-service/internal/model"

	"gorm.io/gorm"
)

var (
	// ErrNoVendorProfile means the authenticated user has no Customer
	// record at all, distinct from owning the wrong resource.
	ErrNoVendorProfile = errors.New("no vendor profile for this account")
	ErrNotOwner        = errors.New("you do not own this resource")
)

// Owned is any resource with exclusive vendor ownership
type Owned interface {
	OwnerID() uint
}

// VendorProfile resolves the acting user's Customer record. Creation
// of vendor-owned resources requires only that this lookup succeed.
func VendorProfile(db *gorm.DB, userID uint) (*model.Customer, error) {
	var customer model.Customer
	result := db.Where("user_id = ?", userID).First(&customer)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNoVendorProfile
		}
		return nil, result.Error
	}
	return &customer, nil
}

// CanMutate permits update/delete only when the acting customer is
// exactly the resource's vendor.
func CanMutate(vendor *model.Customer, resource Owned) error {
	if vendor == nil {
		return ErrNoVendorProfile
	}
	if resource.OwnerID() != vendor.ID {
		return ErrNotOwner
	}
	return nil
}
