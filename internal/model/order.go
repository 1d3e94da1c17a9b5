package model

import "time"

const (
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderCancelled  = "cancelled"
)

// Order is materialized exactly once per successful payment, from the cart
// snapshot recorded on the transaction. The payment subsystem is its only
// writer.
type Order struct {
	ID            string `gorm:"primaryKey;size:64;not null"`
	CustomerID    *string
	CustomerEmail string `gorm:"size:255;index;not null"`
	Status        string `gorm:"size:32;index;not null"`
	AmountCents   int64  `gorm:"not null"`
	Currency      string `gorm:"size:8;not null"`

	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_"`

	Items []OrderItem `gorm:"foreignKey:OrderID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderItem struct {
	ID             uint   `gorm:"primaryKey"`
	OrderID        string `gorm:"size:64;index;not null"`
	ProductID      string `gorm:"size:64;not null"`
	VariantID      *string
	Title          string `gorm:"size:255"`
	Quantity       int32  `gorm:"not null"`
	UnitPriceCents int64  `gorm:"not null"`
	Currency       string `gorm:"size:8;not null"`
	CreatedAt      time.Time
}
