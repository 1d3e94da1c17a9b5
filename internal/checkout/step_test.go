package checkout

import (
	"testing"

	"storefront-payments/internal/model"

	"github.com/stretchr/testify/assert"
)

var testAddress = &model.Address{
	FirstName:  "Ada",
	Line1:      "10 Analytical Way",
	City:       "London",
	PostalCode: "N1 9GU",
	Country:    "GB",
}

func TestCurrentStep(t *testing.T) {
	cases := []struct {
		name  string
		state State
		want  Step
	}{
		{
			name:  "nothing filled in",
			state: State{},
			want:  StepContact,
		},
		{
			name:  "email entered but not confirmed",
			state: State{Email: "a@b.com"},
			want:  StepContact,
		},
		{
			name:  "guest with confirmed email",
			state: State{Email: "a@b.com", EmailConfirmed: true},
			want:  StepAddress,
		},
		{
			name:  "signed-in user skips contact",
			state: State{HasUser: true},
			want:  StepAddress,
		},
		{
			name: "billing set, shipping missing and not same",
			state: State{
				HasUser:        true,
				BillingAddress: testAddress,
			},
			want: StepAddress,
		},
		{
			name: "billing same as shipping",
			state: State{
				HasUser:               true,
				BillingAddress:        testAddress,
				BillingSameAsShipping: true,
			},
			want: StepPayment,
		},
		{
			name: "separate shipping address",
			state: State{
				HasUser:         true,
				BillingAddress:  testAddress,
				ShippingAddress: testAddress,
			},
			want: StepPayment,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CurrentStep(tc.state))
		})
	}
}

func TestCurrentStepRecomputesAfterRegression(t *testing.T) {
	state := State{
		Email:                 "a@b.com",
		EmailConfirmed:        true,
		BillingAddress:        testAddress,
		BillingSameAsShipping: true,
	}
	assert.Equal(t, StepPayment, CurrentStep(state))

	// Clearing the email sends the buyer all the way back. The step is
	// derived, never stored.
	state.Email = ""
	assert.Equal(t, StepContact, CurrentStep(state))
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "Contact", StepContact.String())
	assert.Equal(t, "Address", StepAddress.String())
	assert.Equal(t, "Payment", StepPayment.String())
	assert.Equal(t, "Unknown", Step(99).String())
}
