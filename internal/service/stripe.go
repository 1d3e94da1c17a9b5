package service

import (
	"context"
	"fmt"
	"time"

	"storefront-payments/internal/client"
	"storefront-payments/internal/model"
	"storefront-payments/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type stripeAdapter struct {
	client       client.StripeClient
	transactions repository.TransactionRepository
	creator      *OrderCreator
	log          *logrus.Logger
}

func NewStripeAdapter(
	stripeClient client.StripeClient,
	transactions repository.TransactionRepository,
	creator *OrderCreator,
	log *logrus.Logger,
) PaymentAdapter {
	return &stripeAdapter{
		client:       stripeClient,
		transactions: transactions,
		creator:      creator,
		log:          log,
	}
}

func (a *stripeAdapter) Name() string {
	return model.PaymentMethodStripe
}

func (a *stripeAdapter) InitiatePayment(ctx context.Context, data *InitiateData) (*InitiateResult, error) {
	_, totalCents, err := priceCart(data.Cart)
	if err != nil {
		return nil, err
	}

	txnID := uuid.NewString()

	intent, err := a.client.CreatePaymentIntent(ctx, &client.StripeCreateIntentRequest{
		AmountCents:    totalCents,
		Currency:       data.Currency,
		ReceiptEmail:   data.CustomerEmail,
		CartID:         data.Cart.ID,
		TransactionID:  txnID,
		IdempotencyKey: idempotencyKey(data.Cart),
	})
	if err != nil {
		return nil, fmt.Errorf("stripe create payment intent: %w", err)
	}

	txn := &model.Transaction{
		ID:                    txnID,
		PaymentMethod:         model.PaymentMethodStripe,
		Status:                model.TransactionPending,
		AmountCents:           totalCents,
		Currency:              data.Currency,
		CartID:                data.Cart.ID,
		CustomerEmail:         data.CustomerEmail,
		StripePaymentIntentID: intent.ID,
		StripeClientSecret:    intent.ClientSecret,
		ProviderStatus:        intent.Status,
	}
	if data.BillingAddress != nil {
		txn.BillingAddress = *data.BillingAddress
	}
	if data.ShippingAddress != nil {
		txn.ShippingAddress = *data.ShippingAddress
	}

	if err := a.transactions.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("store pending transaction: %w", err)
	}

	a.log.WithFields(logrus.Fields{
		"transaction_id":    txn.ID,
		"payment_intent_id": intent.ID,
		"cart_id":           data.Cart.ID,
	}).Info("stripe payment intent created")

	return &InitiateResult{
		TransactionID: txn.ID,
		CartID:        data.Cart.ID,
		ClientSecret:  intent.ClientSecret,
	}, nil
}

func (a *stripeAdapter) ConfirmOrder(ctx context.Context, data *ConfirmData) (*ConfirmResult, error) {
	if data.TransactionID == "" {
		return nil, fmt.Errorf("%w: transactionId", ErrMissingField)
	}
	if data.CartID == "" {
		return nil, fmt.Errorf("%w: cartId", ErrMissingField)
	}

	txn, err := a.transactions.FindByID(ctx, data.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("load transaction %s: %w", data.TransactionID, err)
	}

	if txn.Status == model.TransactionSucceeded {
		return a.creator.alreadyFinalized(txn)
	}

	intentID := data.PaymentIntentID
	if intentID == "" {
		intentID = txn.StripePaymentIntentID
	}
	if intentID == "" {
		return nil, fmt.Errorf("%w: paymentIntentId", ErrMissingField)
	}

	intent, err := a.client.GetPaymentIntent(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("stripe get payment intent: %w", err)
	}

	if intent.Status != "succeeded" {
		// canceled is terminal; processing/requires_* may still succeed.
		if intent.Status == "canceled" {
			if err := a.transactions.MarkFailed(ctx, txn.ID, intent.Status); err != nil {
				a.log.WithError(err).WithField("transaction_id", txn.ID).
					Warn("could not record failed payment intent")
			}
		}
		return nil, fmt.Errorf("%w: payment intent status %s", ErrCaptureIncomplete, intent.Status)
	}

	meta := &captureMeta{
		ProviderStatus: intent.Status,
		CapturedAt:     time.Now(),
	}

	return a.creator.Finalize(ctx, txn, meta, data.CustomerEmail, data.CustomerID)
}
