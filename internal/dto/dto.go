package dto

import "storefront-payments/internal/model"

type InitiateRequest struct {
	CartID          string         `json:"cartId"`
	CustomerEmail   string         `json:"customerEmail"`
	BillingAddress  *model.Address `json:"billingAddress"`
	ShippingAddress *model.Address `json:"shippingAddress"`
}

type InitiateResponse struct {
	Message       string `json:"message"`
	TransactionID string `json:"transactionId"`
	CartID        string `json:"cartId"`

	// Provider-specific: exactly one of these is set.
	ApprovalURL   string `json:"approvalUrl,omitempty"`   // paypal
	PayPalOrderID string `json:"paypalOrderId,omitempty"` // paypal
	ClientSecret  string `json:"clientSecret,omitempty"`  // stripe
	ClientToken   string `json:"clientToken,omitempty"`   // braintree
}

type ConfirmRequest struct {
	PayPalOrderID   string `json:"paypalOrderId,omitempty"`
	PayerID         string `json:"payerId,omitempty"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
	Nonce           string `json:"nonce,omitempty"`
	TransactionID   string `json:"transactionId"`
	CartID          string `json:"cartId"`
	CustomerEmail   string `json:"customerEmail,omitempty"`
}

type DocRef struct {
	ID string `json:"id"`
}

// ConfirmResponse mirrors the CMS plugin shape the storefront consumes:
// callers read either doc.id or orderID.
type ConfirmResponse struct {
	Message       string `json:"message"`
	Doc           DocRef `json:"doc"`
	OrderID       string `json:"orderID"`
	TransactionID string `json:"transactionID"`
}

type ErrorCause struct {
	Code string `json:"code"`
}

type ErrorResponse struct {
	Error string      `json:"error"`
	Cause *ErrorCause `json:"cause,omitempty"`
}
