// internal/models/product.go
package models

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// MaxThumbnails is the largest number of supplementary images a product can carry.
const MaxThumbnails = 10

type Product struct {
	BaseModel
	SKU              *string             `json:"sku,omitempty" gorm:"size:100;uniqueIndex"`
	Title            string              `json:"title" gorm:"size:255;not null"`
	Description      string              `json:"description" gorm:"type:text;not null"`
	ShortDescription string              `json:"shortDescription" gorm:"type:text"`
	Price            decimal.Decimal     `json:"price" gorm:"type:decimal(12,2);not null"`
	CutPrice         decimal.NullDecimal `json:"cutPrice" gorm:"type:decimal(12,2)"`
	Discount         string              `json:"discount,omitempty" gorm:"size:100"`
	Stocks           int                 `json:"stocks" gorm:"not null;default:0"`
	Categories       string              `json:"categories" gorm:"size:100;index"`
	Subcategory      string              `json:"subcategory" gorm:"size:100;index"`
	Tags             pq.StringArray      `json:"tags" gorm:"type:text[]"`
	Image            string              `json:"image" gorm:"type:text;not null"`
	Thumbnail        pq.StringArray      `json:"thumbnail" gorm:"type:text[]"`
	IsApproved       bool                `json:"isApproved" gorm:"default:false;index"`
}

// HasSKU reports whether a stock-keeping unit has been assigned.
func (p *Product) HasSKU() bool {
	return p.SKU != nil && *p.SKU != ""
}
