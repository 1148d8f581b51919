package model

// ProductTag is a many-to-many label on products
type ProductTag struct {
	ID   uint   `json:"id" gorm:"primarykey"`
	Name string `json:"name" gorm:"type:varchar(50);uniqueIndex;not null"`
}
