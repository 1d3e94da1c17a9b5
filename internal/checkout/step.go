// Package checkout models the storefront checkout progression. The current
// step is never stored: it is recomputed from the accumulated form state on
// every evaluation, so step and data cannot drift apart.
package checkout

import "storefront-payments/internal/model"

type Step int

const (
	StepContact Step = iota
	StepAddress
	StepPayment
)

func (s Step) String() string {
	switch s {
	case StepContact:
		return "Contact"
	case StepAddress:
		return "Address"
	case StepPayment:
		return "Payment"
	}
	return "Unknown"
}

// State is the immutable record of everything the buyer has filled in so far.
type State struct {
	HasUser               bool
	Email                 string
	EmailConfirmed        bool
	BillingAddress        *model.Address
	ShippingAddress       *model.Address
	BillingSameAsShipping bool
}

// ContactComplete holds for signed-in users, or guests who confirmed an email.
func (s State) ContactComplete() bool {
	return s.HasUser || (s.Email != "" && s.EmailConfirmed)
}

func (s State) AddressComplete() bool {
	if s.BillingAddress.IsZero() {
		return false
	}
	return s.BillingSameAsShipping || !s.ShippingAddress.IsZero()
}

// CurrentStep is the first step whose completeness predicate fails.
func CurrentStep(s State) Step {
	switch {
	case !s.ContactComplete():
		return StepContact
	case !s.AddressComplete():
		return StepAddress
	}
	return StepPayment
}
