package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Slug        string          `gorm:"uniqueIndex;not null" json:"slug"`
	SKU         string          `gorm:"column:sku;uniqueIndex;not null" json:"sku"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	IsActive    bool            `gorm:"not null" json:"is_active"`
	Image       string          `json:"image"`
	Images      []string        `gorm:"serializer:json" json:"images"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Categories []Category  `gorm:"many2many:product_categories" json:"categories,omitempty"`
	Related    []Product   `gorm:"many2many:product_related;joinForeignKey:ProductID;joinReferences:RelatedProductID" json:"-"`
	CartItems  []CartItem  `gorm:"foreignKey:ProductID" json:"-"`
	OrderItems []OrderItem `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// Available reports whether the product can be purchased: it must be
// active and have stock on hand.
func (p *Product) Available() bool {
	return p.IsActive && p.Stock > 0
}
