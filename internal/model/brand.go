package model

// Brand is owned by exactly one Customer (the vendor). Deleting a
// brand cascades to its products.
type Brand struct {
	ID          uint     `json:"id" gorm:"primarykey"`
	VendorID    uint     `json:"-" gorm:"index;not null"`
	Vendor      Customer `json:"vendor" gorm:"foreignKey:VendorID;constraint:OnDelete:CASCADE"`
	Name        string   `json:"name" gorm:"type:varchar(50);uniqueIndex;not null"`
	Slug        string   `json:"slug" gorm:"type:varchar(50);uniqueIndex;not null"`
	Description string   `json:"description" gorm:"type:text"`
	Image       string   `json:"image"`
}

// OwnerID reports the owning vendor's customer id
func (b *Brand) OwnerID() uint {
	return b.VendorID
}
