package service

import (
	"context"
	"testing"

	"storefront-payments/internal/client"
	"storefront-payments/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBraintreeFixture(t *testing.T) (*testEnv, *mockBraintreeClient, PaymentAdapter) {
	t.Helper()

	env := newTestEnv(t)
	braintree := &mockBraintreeClient{token: "bt-client-token"}
	adapter := NewBraintreeAdapter(braintree, env.transactions, env.creator, env.log)
	return env, braintree, adapter
}

func TestBraintreeInitiateIssuesClientToken(t *testing.T) {
	env, _, adapter := newBraintreeFixture(t)
	cart := env.seedCart(t, "buyer@example.com", cartLine{priceCents: 4500, quantity: 2, stock: 4})

	result, err := adapter.InitiatePayment(context.Background(), &InitiateData{
		Cart:          cart,
		Currency:      "USD",
		CustomerEmail: "buyer@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "bt-client-token", result.ClientToken)

	txn := env.reloadTransaction(t, result.TransactionID)
	assert.Equal(t, model.TransactionPending, txn.Status)
	assert.Equal(t, int64(9000), txn.AmountCents)
}

func TestBraintreeConfirmRequiresNonce(t *testing.T) {
	_, _, adapter := newBraintreeFixture(t)

	_, err := adapter.ConfirmOrder(context.Background(), &ConfirmData{
		TransactionID: "t1",
		CartID:        "c1",
	})
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestBraintreeConfirmChargesStoredAmount(t *testing.T) {
	env, braintree, adapter := newBraintreeFixture(t)
	cart := env.seedCart(t, "buyer@example.com", cartLine{priceCents: 2000, quantity: 1, stock: 4})

	initiated, err := adapter.InitiatePayment(context.Background(), &InitiateData{
		Cart:          cart,
		Currency:      "USD",
		CustomerEmail: "buyer@example.com",
	})
	require.NoError(t, err)

	braintree.charge = &client.BraintreeChargeResult{
		TransactionID: "bt-txn-1",
		Status:        "submitted_for_settlement",
	}

	confirmed, err := adapter.ConfirmOrder(context.Background(), &ConfirmData{
		TransactionID: initiated.TransactionID,
		CartID:        cart.ID,
		Nonce:         "fake-valid-nonce",
	})
	require.NoError(t, err)
	require.NotEmpty(t, confirmed.OrderID)

	txn := env.reloadTransaction(t, initiated.TransactionID)
	assert.Equal(t, model.TransactionSucceeded, txn.Status)
	assert.Equal(t, "bt-txn-1", txn.BraintreeTransactionID)
}

func TestBraintreeConfirmRejectsUnsettledStatus(t *testing.T) {
	env, braintree, adapter := newBraintreeFixture(t)
	cart := env.seedCart(t, "buyer@example.com", cartLine{priceCents: 2000, quantity: 1, stock: 4})

	initiated, err := adapter.InitiatePayment(context.Background(), &InitiateData{
		Cart:          cart,
		Currency:      "USD",
		CustomerEmail: "buyer@example.com",
	})
	require.NoError(t, err)

	braintree.charge = &client.BraintreeChargeResult{
		TransactionID: "bt-txn-1",
		Status:        "gateway_rejected",
	}

	_, err = adapter.ConfirmOrder(context.Background(), &ConfirmData{
		TransactionID: initiated.TransactionID,
		CartID:        cart.ID,
		Nonce:         "fake-valid-nonce",
	})
	assert.ErrorIs(t, err, ErrCaptureIncomplete)
	assert.Zero(t, env.countOrders(t))
}
