package model

// Customer wraps one user account with marketplace profile fields.
// Mobile is optional but unique when present.
type Customer struct {
	ID     uint    `json:"id" gorm:"primarykey"`
	UserID uint    `json:"-" gorm:"uniqueIndex;not null;constraint:OnDelete:CASCADE"`
	User   User    `json:"user" gorm:"constraint:OnDelete:CASCADE"`
	Mobile *uint64 `json:"mobile" gorm:"uniqueIndex"`
	Image  string  `json:"image"`
}
