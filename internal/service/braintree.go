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

// braintreeSettled lists the gateway statuses accepted as a terminal capture.
var braintreeSettled = map[string]bool{
	"authorized":               true,
	"submitted_for_settlement": true,
	"settling":                 true,
	"settled":                  true,
}

type braintreeAdapter struct {
	client       client.BraintreeClient
	transactions repository.TransactionRepository
	creator      *OrderCreator
	log          *logrus.Logger
}

func NewBraintreeAdapter(
	braintreeClient client.BraintreeClient,
	transactions repository.TransactionRepository,
	creator *OrderCreator,
	log *logrus.Logger,
) PaymentAdapter {
	return &braintreeAdapter{
		client:       braintreeClient,
		transactions: transactions,
		creator:      creator,
		log:          log,
	}
}

func (a *braintreeAdapter) Name() string {
	return model.PaymentMethodBraintree
}

func (a *braintreeAdapter) InitiatePayment(ctx context.Context, data *InitiateData) (*InitiateResult, error) {
	_, totalCents, err := priceCart(data.Cart)
	if err != nil {
		return nil, err
	}

	token, err := a.client.GenerateClientToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("braintree client token: %w", err)
	}

	txn := &model.Transaction{
		ID:            uuid.NewString(),
		PaymentMethod: model.PaymentMethodBraintree,
		Status:        model.TransactionPending,
		AmountCents:   totalCents,
		Currency:      data.Currency,
		CartID:        data.Cart.ID,
		CustomerEmail: data.CustomerEmail,
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
		"transaction_id": txn.ID,
		"cart_id":        data.Cart.ID,
	}).Info("braintree client token issued")

	return &InitiateResult{
		TransactionID: txn.ID,
		CartID:        data.Cart.ID,
		ClientToken:   token,
	}, nil
}

func (a *braintreeAdapter) ConfirmOrder(ctx context.Context, data *ConfirmData) (*ConfirmResult, error) {
	if data.TransactionID == "" {
		return nil, fmt.Errorf("%w: transactionId", ErrMissingField)
	}
	if data.CartID == "" {
		return nil, fmt.Errorf("%w: cartId", ErrMissingField)
	}
	if data.Nonce == "" {
		return nil, fmt.Errorf("%w: nonce", ErrMissingField)
	}

	txn, err := a.transactions.FindByID(ctx, data.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("load transaction %s: %w", data.TransactionID, err)
	}

	if txn.Status == model.TransactionSucceeded {
		return a.creator.alreadyFinalized(txn)
	}

	charge, err := a.client.ChargeNonce(ctx, data.Nonce, formatCents(txn.AmountCents), txn.ID)
	if err != nil {
		return nil, fmt.Errorf("braintree charge: %w", err)
	}

	if !braintreeSettled[charge.Status] {
		return nil, fmt.Errorf("%w: braintree status %s", ErrCaptureIncomplete, charge.Status)
	}

	meta := &captureMeta{
		ProviderStatus: charge.Status,
		CapturedAt:     time.Now(),
		BraintreeTxID:  charge.TransactionID,
	}

	return a.creator.Finalize(ctx, txn, meta, data.CustomerEmail, data.CustomerID)
}
