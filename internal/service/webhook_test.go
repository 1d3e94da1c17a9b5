package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"storefront-payments/internal/model"
	"storefront-payments/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWebhookFixture(t *testing.T) (*testEnv, *mockPaypalClient, WebhookService) {
	t.Helper()

	env := newTestEnv(t)
	paypal := &mockPaypalClient{}
	events := repository.NewWebhookEventRepository(env.db)
	svc := NewWebhookService(paypal, env.transactions, events, env.creator, env.log)
	return env, paypal, svc
}

func captureCompletedBody(eventID, paypalOrderID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"event_type": "PAYMENT.CAPTURE.COMPLETED",
		"resource": {
			"id": "CAP-WH-1",
			"status": "COMPLETED",
			"supplementary_data": {"related_ids": {"order_id": %q}}
		}
	}`, eventID, paypalOrderID))
}

func (e *testEnv) seedPendingPaypalTxn(t *testing.T, paypalOrderID string) (*model.Cart, *model.Transaction) {
	t.Helper()

	cart := e.seedCart(t, "buyer@example.com", cartLine{priceCents: 2000, quantity: 1, stock: 5})
	txn := &model.Transaction{
		ID:            uuid.NewString(),
		PaymentMethod: model.PaymentMethodPayPal,
		Status:        model.TransactionPending,
		AmountCents:   2000,
		Currency:      "USD",
		CartID:        cart.ID,
		CustomerEmail: "buyer@example.com",
		PayPalOrderID: paypalOrderID,
	}
	require.NoError(t, e.transactions.Create(context.Background(), txn))
	return cart, txn
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	_, paypal, svc := newWebhookFixture(t)
	paypal.verifyErr = errors.New("verification_status FAILURE")

	err := svc.HandlePaypalWebhook(context.Background(), http.Header{}, captureCompletedBody("WH-1", "PP-1"))
	require.Error(t, err)
}

func TestWebhookCaptureCompletedFinalizesTransaction(t *testing.T) {
	env, _, svc := newWebhookFixture(t)
	cart, txn := env.seedPendingPaypalTxn(t, "PP-WH-1")

	err := svc.HandlePaypalWebhook(context.Background(), http.Header{}, captureCompletedBody("WH-1", "PP-WH-1"))
	require.NoError(t, err)

	updated := env.reloadTransaction(t, txn.ID)
	assert.Equal(t, model.TransactionSucceeded, updated.Status)
	assert.Equal(t, "CAP-WH-1", updated.PayPalCaptureID)
	require.NotNil(t, updated.OrderID)

	reloaded, err := env.carts.FindByID(context.Background(), cart.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsPurchased())
	assert.EqualValues(t, 1, env.countOrders(t))
}

func TestWebhookDuplicateEventIsIgnored(t *testing.T) {
	env, _, svc := newWebhookFixture(t)
	env.seedPendingPaypalTxn(t, "PP-WH-1")

	body := captureCompletedBody("WH-1", "PP-WH-1")
	require.NoError(t, svc.HandlePaypalWebhook(context.Background(), http.Header{}, body))
	require.NoError(t, svc.HandlePaypalWebhook(context.Background(), http.Header{}, body))

	assert.EqualValues(t, 1, env.countOrders(t))
}

func TestWebhookUnknownTransactionIsAcknowledged(t *testing.T) {
	env, _, svc := newWebhookFixture(t)

	// No transaction for this paypal order. The event is acked so PayPal
	// stops retrying.
	err := svc.HandlePaypalWebhook(context.Background(), http.Header{}, captureCompletedBody("WH-9", "PP-UNKNOWN"))
	require.NoError(t, err)
	assert.Zero(t, env.countOrders(t))
}

func TestWebhookAfterReturnConfirmIsNoOp(t *testing.T) {
	env, paypal, svc := newWebhookFixture(t)
	cart, txn := env.seedPendingPaypalTxn(t, "PP-WH-1")

	paypal.captureResult = completedCapture("PP-WH-1")
	adapter := NewPaypalAdapter(paypal, env.transactions, env.creator, "Test Store", env.log)

	confirmed, err := adapter.ConfirmOrder(context.Background(), &ConfirmData{
		TransactionID:   txn.ID,
		CartID:          cart.ID,
		ProviderOrderID: "PP-WH-1",
	})
	require.NoError(t, err)

	// The async notification for the same capture arrives afterwards.
	err = svc.HandlePaypalWebhook(context.Background(), http.Header{}, captureCompletedBody("WH-1", "PP-WH-1"))
	require.NoError(t, err)

	assert.EqualValues(t, 1, env.countOrders(t))
	updated := env.reloadTransaction(t, txn.ID)
	require.NotNil(t, updated.OrderID)
	assert.Equal(t, confirmed.OrderID, *updated.OrderID)
}

func TestWebhookIgnoresUnrelatedEventTypes(t *testing.T) {
	env, _, svc := newWebhookFixture(t)

	body := []byte(`{"id": "WH-2", "event_type": "CHECKOUT.ORDER.APPROVED", "resource": {}}`)
	require.NoError(t, svc.HandlePaypalWebhook(context.Background(), http.Header{}, body))
	assert.Zero(t, env.countOrders(t))
}
