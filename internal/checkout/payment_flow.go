package checkout

import (
	"errors"
	"sync"

	"storefront-payments/internal/service"
)

type PaymentPhase int

const (
	PhaseIdle PaymentPhase = iota
	PhaseInitiating
	PhaseAwaitingProvider
	PhaseDone
	PhaseFailed
)

const (
	msgGeneric    = "An error occurred while initiating payment."
	msgOutOfStock = "One or more items in your cart are out of stock."
)

// PaymentFlow is the sub-state machine inside the Payment step. It guards
// against double submission: concurrent begin calls collapse to one, and
// switching the selected method hard-resets so a stale client secret or
// approval URL from one provider can never be presented under another.
type PaymentFlow struct {
	mu sync.Mutex

	phase    PaymentPhase
	method   string
	result   *service.InitiateResult
	errorMsg string
}

func NewPaymentFlow() *PaymentFlow {
	return &PaymentFlow{phase: PhaseIdle}
}

func (f *PaymentFlow) Phase() PaymentPhase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

func (f *PaymentFlow) Method() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.method
}

// Result returns the provider data held for the embedded UI or redirect, nil
// unless awaiting provider action.
func (f *PaymentFlow) Result() *service.InitiateResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

func (f *PaymentFlow) ErrorMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errorMsg
}

// SelectMethod records the chosen payment method. Selecting a different
// method while provider data is held clears it and returns to idle. Selection
// is refused mid-initiate.
func (f *PaymentFlow) SelectMethod(method string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.phase == PhaseInitiating {
		return false
	}
	if method != f.method {
		f.result = nil
		f.errorMsg = ""
		f.phase = PhaseIdle
	}
	f.method = method
	return true
}

// Begin claims the in-flight guard. It returns false when a call is already
// in flight or provider data is already held, collapsing concurrent clicks
// to a single initiate.
func (f *PaymentFlow) Begin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.phase == PhaseInitiating || f.result != nil {
		return false
	}
	f.phase = PhaseInitiating
	f.errorMsg = ""
	return true
}

// Complete stores the initiate result and moves to awaiting-provider-action:
// Stripe's embedded UI is shown, or the PayPal redirect offered.
func (f *PaymentFlow) Complete(result *service.InitiateResult) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.phase != PhaseInitiating {
		return
	}
	f.result = result
	f.phase = PhaseAwaitingProvider
}

// Fail records a user-facing message for the failure and releases the guard.
// The OutOfStock cause gets its specific message; everything else degrades to
// the generic one with a retry affordance.
func (f *PaymentFlow) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if errors.Is(err, service.ErrOutOfStock) {
		f.errorMsg = msgOutOfStock
	} else {
		f.errorMsg = msgGeneric
	}
	f.result = nil
	f.phase = PhaseFailed
}

// Reset clears payment data and the in-flight guard, returning to idle so
// the buyer can retry from scratch.
func (f *PaymentFlow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.result = nil
	f.errorMsg = ""
	f.phase = PhaseIdle
}

// Finish marks terminal navigation away to the order page.
func (f *PaymentFlow) Finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phase = PhaseDone
}
