package service

import (
	"context"
	"testing"
	"time"

	"storefront-payments/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) seedPendingTxn(t *testing.T, cart *model.Cart) *model.Transaction {
	t.Helper()

	txn := &model.Transaction{
		ID:            uuid.NewString(),
		PaymentMethod: model.PaymentMethodStripe,
		Status:        model.TransactionPending,
		AmountCents:   2000,
		Currency:      "USD",
		CartID:        cart.ID,
		CustomerEmail: cart.CustomerEmail,
	}
	require.NoError(t, e.transactions.Create(context.Background(), txn))
	return txn
}

func TestFinalizeOnlyOneSucceededPerCart(t *testing.T) {
	env := newTestEnv(t)
	cart := env.seedCart(t, "buyer@example.com", cartLine{priceCents: 2000, quantity: 1, stock: 5})

	first := env.seedPendingTxn(t, cart)
	second := env.seedPendingTxn(t, cart)

	meta := &captureMeta{ProviderStatus: "succeeded", CapturedAt: time.Now()}

	result, err := env.creator.Finalize(context.Background(), first, meta, "buyer@example.com", "")
	require.NoError(t, err)
	require.NotEmpty(t, result.OrderID)

	// The cart is purchased now, so a second pending attempt cannot win.
	_, err = env.creator.Finalize(context.Background(), second, meta, "buyer@example.com", "")
	require.Error(t, err)

	assert.EqualValues(t, 1, env.countOrders(t))
	assert.Equal(t, model.TransactionPending, env.reloadTransaction(t, second.ID).Status)
}

func TestFinalizeLinksAuthenticatedCustomer(t *testing.T) {
	env := newTestEnv(t)
	cart := env.seedCart(t, "buyer@example.com", cartLine{priceCents: 2000, quantity: 1, stock: 5})
	txn := env.seedPendingTxn(t, cart)

	require.NoError(t, env.customers.Create(context.Background(),
		&model.Customer{ID: "cust-42", Email: "buyer@example.com"}))

	meta := &captureMeta{ProviderStatus: "succeeded", CapturedAt: time.Now()}

	result, err := env.creator.Finalize(context.Background(), txn, meta, "buyer@example.com", "cust-42")
	require.NoError(t, err)

	order, err := env.orders.FindByID(context.Background(), result.OrderID)
	require.NoError(t, err)
	require.NotNil(t, order.CustomerID)
	assert.Equal(t, "cust-42", *order.CustomerID)
}

func TestFinalizeIgnoresStaleTokenSubject(t *testing.T) {
	env := newTestEnv(t)
	cart := env.seedCart(t, "buyer@example.com", cartLine{priceCents: 2000, quantity: 1, stock: 5})
	txn := env.seedPendingTxn(t, cart)

	meta := &captureMeta{ProviderStatus: "succeeded", CapturedAt: time.Now()}

	// The token names an account that no longer exists.
	result, err := env.creator.Finalize(context.Background(), txn, meta, "buyer@example.com", "cust-deleted")
	require.NoError(t, err)

	order, err := env.orders.FindByID(context.Background(), result.OrderID)
	require.NoError(t, err)
	assert.Nil(t, order.CustomerID)
}

func TestFinalizeResolvesCustomerByEmail(t *testing.T) {
	env := newTestEnv(t)
	cart := env.seedCart(t, "known@example.com", cartLine{priceCents: 2000, quantity: 1, stock: 5})
	txn := env.seedPendingTxn(t, cart)

	customer := &model.Customer{ID: "cust-7", Email: "known@example.com"}
	require.NoError(t, env.customers.Create(context.Background(), customer))

	meta := &captureMeta{ProviderStatus: "succeeded", CapturedAt: time.Now()}

	result, err := env.creator.Finalize(context.Background(), txn, meta, "known@example.com", "")
	require.NoError(t, err)

	order, err := env.orders.FindByID(context.Background(), result.OrderID)
	require.NoError(t, err)
	require.NotNil(t, order.CustomerID)
	assert.Equal(t, "cust-7", *order.CustomerID)
}

func TestFinalizeGuestOrderHasNoCustomer(t *testing.T) {
	env := newTestEnv(t)
	cart := env.seedCart(t, "guest@example.com", cartLine{priceCents: 2000, quantity: 1, stock: 5})
	txn := env.seedPendingTxn(t, cart)

	meta := &captureMeta{ProviderStatus: "succeeded", CapturedAt: time.Now()}

	result, err := env.creator.Finalize(context.Background(), txn, meta, "guest@example.com", "")
	require.NoError(t, err)

	order, err := env.orders.FindByID(context.Background(), result.OrderID)
	require.NoError(t, err)
	assert.Nil(t, order.CustomerID)
	assert.Equal(t, "guest@example.com", order.CustomerEmail)
}

func TestFinalizeFallsBackToBillingAddress(t *testing.T) {
	env := newTestEnv(t)
	cart := env.seedCart(t, "buyer@example.com", cartLine{priceCents: 2000, quantity: 1, stock: 5})

	txn := &model.Transaction{
		ID:            uuid.NewString(),
		PaymentMethod: model.PaymentMethodStripe,
		Status:        model.TransactionPending,
		AmountCents:   2000,
		Currency:      "USD",
		CartID:        cart.ID,
		CustomerEmail: "buyer@example.com",
		BillingAddress: model.Address{
			FirstName: "Ada", LastName: "Lovelace",
			Line1: "10 Analytical Way", City: "London", PostalCode: "N1 9GU", Country: "GB",
		},
	}
	require.NoError(t, env.transactions.Create(context.Background(), txn))

	meta := &captureMeta{ProviderStatus: "succeeded", CapturedAt: time.Now()}

	result, err := env.creator.Finalize(context.Background(), txn, meta, "buyer@example.com", "")
	require.NoError(t, err)

	order, err := env.orders.FindByID(context.Background(), result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "10 Analytical Way", order.ShippingAddress.Line1)
}

func TestFinalizeSnapshotsOrderItems(t *testing.T) {
	env := newTestEnv(t)
	cart := env.seedCart(t, "buyer@example.com",
		cartLine{priceCents: 1000, quantity: 2, stock: 5},
		cartLine{priceCents: 500, variantCents: 750, quantity: 1, stock: 5})
	txn := env.seedPendingTxn(t, cart)
	txn.AmountCents = 2750

	meta := &captureMeta{ProviderStatus: "succeeded", CapturedAt: time.Now()}

	result, err := env.creator.Finalize(context.Background(), txn, meta, "buyer@example.com", "")
	require.NoError(t, err)

	order, err := env.orders.FindByID(context.Background(), result.OrderID)
	require.NoError(t, err)
	require.Len(t, order.Items, 2)

	byPrice := map[int64]int32{}
	for _, item := range order.Items {
		byPrice[item.UnitPriceCents] = item.Quantity
	}
	assert.Equal(t, int32(2), byPrice[1000])
	assert.Equal(t, int32(1), byPrice[750], "variant price must be snapshotted")
}
