package model

import "time"

type Cart struct {
	ID            string `gorm:"primaryKey;size:64;not null"`
	CustomerID    *string
	CustomerEmail string `gorm:"size:255;index"`
	Currency      string `gorm:"size:8;not null"`
	// PurchasedAt, once set, makes the cart immutable.
	PurchasedAt *time.Time
	Items       []CartItem `gorm:"foreignKey:CartID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *Cart) IsPurchased() bool {
	return c.PurchasedAt != nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

type CartItem struct {
	ID        uint   `gorm:"primaryKey"`
	CartID    string `gorm:"size:64;index;not null"`
	ProductID string `gorm:"size:64;not null"`
	VariantID *string
	Quantity  int32 `gorm:"not null"`

	Product *Product        `gorm:"foreignKey:ProductID"`
	Variant *ProductVariant `gorm:"foreignKey:VariantID"`

	CreatedAt time.Time
}
