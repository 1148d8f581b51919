package review

import (
	"errors"

	"marketplace-service/internal/model"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Messages returned by ToggleLike, surfaced verbatim to the client
const (
	LikeAdded   = "Like added"
	LikeRemoved = "Like removed"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrReviewNotFound  = errors.New("review not found")
)

// Add appends a review with an empty likes list and returns the
// product's full review collection in insertion order.
func Add(db *gorm.DB, productID uint, reviewer string, rating int, body string) ([]model.Review, error) {
	var count int64
	if err := db.Model(&model.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrProductNotFound
	}

	rev := model.Review{
		ProductID: productID,
		ReviewBy:  reviewer,
		Rating:    rating,
		Review:    body,
		Likes:     pq.Int64Array{},
	}
	if err := db.Create(&rev).Error; err != nil {
		return nil, err
	}

	var reviews []model.Review
	if err := db.Where("product_id = ?", productID).Order("id ASC").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// ToggleLike flips the customer's membership in the review's likes
// list. The row is locked for the duration of the read-modify-write
// so concurrent toggles by different customers cannot lose updates.
func ToggleLike(db *gorm.DB, reviewID, customerID uint) (string, *model.Review, error) {
	var (
		message string
		updated model.Review
	)

	err := db.Transaction(func(tx *gorm.DB) error {
		var rev model.Review
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rev, reviewID)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return result.Error
		}

		likes, added := toggle(rev.Likes, int64(customerID))
		if added {
			message = LikeAdded
		} else {
			message = LikeRemoved
		}

		if err := tx.Model(&model.Review{}).Where("id = ?", rev.ID).
			Update("likes", likes).Error; err != nil {
			return err
		}

		rev.Likes = likes
		updated = rev
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return message, &updated, nil
}

// toggle removes every occurrence of id when present, otherwise
// appends it. Removal sweeps the whole list so a duplicate can never
// survive a toggle.
func toggle(likes pq.Int64Array, id int64) (pq.Int64Array, bool) {
	out := make(pq.Int64Array, 0, len(likes))
	found := false
	for _, v := range likes {
		if v == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if found {
		return out, false
	}
	return append(out, id), true
}
