package model

import "time"

const (
	PaymentMethodStripe    = "stripe"
	PaymentMethodPayPal    = "paypal"
	PaymentMethodBraintree = "braintree"
)

const (
	TransactionPending   = "pending"
	TransactionSucceeded = "succeeded"
	TransactionFailed    = "failed"
)

// Transaction is one payment attempt on a cart. A cart may accumulate several
// pending transactions from abandoned attempts; at most one may ever reach
// succeeded.
type Transaction struct {
	ID            string `gorm:"primaryKey;size:64;not null"`
	PaymentMethod string `gorm:"size:32;index;not null"` // stripe | paypal | braintree
	Status        string `gorm:"size:32;index;not null"` // pending | succeeded | failed
	AmountCents   int64  `gorm:"not null"`
	Currency      string `gorm:"size:8;not null"`
	CartID        string `gorm:"size:64;index;not null"`
	OrderID       *string
	CustomerEmail string `gorm:"size:255"`

	BillingAddress  Address `gorm:"embedded;embeddedPrefix:billing_"`
	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_"`

	// PayPal
	PayPalOrderID    string `gorm:"size:64;index"`
	PayPalCaptureID  string `gorm:"size:64"`
	PayPalPayerID    string `gorm:"size:64"`
	PayPalPayerEmail string `gorm:"size:255"`

	// Stripe
	StripePaymentIntentID string `gorm:"size:64;index"`
	StripeClientSecret    string `gorm:"size:255"`

	// Braintree
	BraintreeTransactionID string `gorm:"size:64"`

	ProviderStatus string `gorm:"size:32"` // provider-side terminal status at last sync
	CapturedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
