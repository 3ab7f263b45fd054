package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:128" json:"name" form:"name"`
	Slug        string    `gorm:"uniqueIndex;size:128" json:"slug" form:"slug"`
	Description string    `gorm:"size:1024" json:"description" form:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Category) TableName() string {
	return "categories"
}

// Product is a storefront catalog item. Stock is only mutated by the
// checkout transaction and by admin edits.
type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID  *int64          `gorm:"index" json:"category_id"`
	Name        string          `gorm:"index;size:256" json:"name" form:"name"`
	Description string          `json:"description" form:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`
	Stock       int             `json:"stock" form:"stock"`
	ImageURL    string          `gorm:"size:1024" json:"image_url" form:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}
