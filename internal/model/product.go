package model

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// Product belongs to one vendor, one brand and one category. Images
// is an ordered set of exactly four public URLs; Details is a
// free-form JSON list.
type Product struct {
	ID          uint            `json:"id" gorm:"primarykey"`
	VendorID    uint            `json:"-" gorm:"index;not null"`
	Vendor      Customer        `json:"vendor" gorm:"foreignKey:VendorID;constraint:OnDelete:CASCADE"`
	BrandID     uint            `json:"-" gorm:"index;not null"`
	Brand       Brand           `json:"brand" gorm:"constraint:OnDelete:CASCADE"`
	CategoryID  uint            `json:"-" gorm:"index;not null"`
	Category    Category        `json:"category" gorm:"constraint:OnDelete:CASCADE"`
	Name        string          `json:"name" gorm:"not null"`
	Description string          `json:"description"`
	Content     string          `json:"content" gorm:"type:text"`
	Slug        string          `json:"slug" gorm:"uniqueIndex;not null"`
	Tags        []ProductTag    `json:"tags" gorm:"many2many:product_tag_links"`
	Price       float64         `json:"price" gorm:"type:decimal(12,2);not null"`
	Discount    float64         `json:"discount" gorm:"type:decimal(5,2);default:0"`
	Details     json.RawMessage `json:"details" gorm:"type:jsonb;default:'[]'"`
	Images      pq.StringArray  `json:"images" gorm:"type:text[]"`
	Reviews     []Review        `json:"reviews" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `json:"created_at"`
}

// OwnerID reports the owning vendor's customer id
func (p *Product) OwnerID() uint {
	return p.VendorID
}
