package model

import "time"

type Product struct {
	ID         string `gorm:"primaryKey;size:64;not null"` // product sku
	Title      string `gorm:"size:255;not null"`
	PriceCents int64  `gorm:"not null"`
	Currency   string `gorm:"size:8;not null"`
	Stock      int32  `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ProductVariant overrides the base product price when selected in a cart line.
type ProductVariant struct {
	ID         string `gorm:"primaryKey;size:64;not null"`
	ProductID  string `gorm:"size:64;index;not null"`
	Label      string `gorm:"size:128;not null"`
	PriceCents int64  `gorm:"not null"`
	CreatedAt  time.Time
}
