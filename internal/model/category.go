package model

// Category groups products; name and slug are immutable identity
type Category struct {
	ID    uint   `json:"id" gorm:"primarykey"`
	Name  string `json:"name" gorm:"type:varchar(50);uniqueIndex;not null"`
	Slug  string `json:"slug" gorm:"type:varchar(50);uniqueIndex;not null"`
	Image string `json:"image"`
}
