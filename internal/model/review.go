package model

import (
	"time"

	"github.com/lib/pq"
)

// Review belongs to one product. ReviewBy is the reviewer's display
// name, denormalized on purpose. Likes holds the ids of customers who
// currently like the review; an id appears at most once.
type Review struct {
	ID        uint          `json:"id" gorm:"primarykey"`
	ProductID uint          `json:"product_id" gorm:"index;not null;constraint:OnDelete:CASCADE"`
	ReviewBy  string        `json:"review_by" gorm:"type:varchar(100);not null"`
	Rating    int           `json:"rating" gorm:"not null"`
	Review    string        `json:"review" gorm:"type:text"`
	Likes     pq.Int64Array `json:"likes" gorm:"type:bigint[]"`
	CreatedAt time.Time     `json:"created_at"`
}
