package service

import (
	"context"
	"fmt"

	"storefront-payments/internal/model"
)

// InitiateData is the cart snapshot an adapter turns into a provider-side
// payment attempt.
type InitiateData struct {
	Cart            *model.Cart
	Currency        string
	CustomerEmail   string
	CustomerID      string // empty for guests
	BillingAddress  *model.Address
	ShippingAddress *model.Address
	// BaseURL is resolved from the incoming request's proto/host headers and
	// used to build absolute return/cancel URLs. Never hardcoded.
	BaseURL string
}

type InitiateResult struct {
	TransactionID string
	CartID        string

	ProviderOrderID string // paypal order id
	ApprovalURL     string // paypal redirect target
	ClientSecret    string // stripe, consumed by the embedded UI
	ClientToken     string // braintree drop-in token
}

// ConfirmData carries the hand-off fields threaded through the return URL or
// the initiate response. Adapters fail with ErrMissingField when a required
// id is absent.
type ConfirmData struct {
	TransactionID string
	CartID        string
	CustomerEmail string
	CustomerID    string // authenticated customer, if any

	ProviderOrderID string // paypal
	PayerID         string // paypal
	PaymentIntentID string // stripe
	Nonce           string // braintree
}

type ConfirmResult struct {
	OrderID       string
	TransactionID string
}

// PaymentAdapter is the fixed capability set one payment provider implements.
type PaymentAdapter interface {
	Name() string
	InitiatePayment(ctx context.Context, data *InitiateData) (*InitiateResult, error)
	ConfirmOrder(ctx context.Context, data *ConfirmData) (*ConfirmResult, error)
}

// Registry resolves adapters by name at request time.
type Registry struct {
	adapters map[string]PaymentAdapter
}

func NewRegistry(adapters ...PaymentAdapter) *Registry {
	m := make(map[string]PaymentAdapter, len(adapters))
	for _, a := range adapters {
		m[a.Name()] = a
	}
	return &Registry{adapters: m}
}

func (r *Registry) Lookup(name string) (PaymentAdapter, error) {
	adapter, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPaymentMethod, name)
	}
	return adapter, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}
