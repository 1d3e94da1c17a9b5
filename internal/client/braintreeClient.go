package client

import (
	"context"
	"fmt"

	"storefront-payments/internal/config"

	"github.com/braintree-go/braintree-go"
	"github.com/shopspring/decimal"
)

type BraintreeClient interface {
	// GenerateClientToken returns the token the embedded drop-in UI needs to
	// tokenize card details client-side.
	GenerateClientToken(ctx context.Context) (string, error)

	// ChargeNonce charges a frontend payment-method nonce and submits for
	// settlement. Amount is a decimal string, e.g. "20.00".
	ChargeNonce(ctx context.Context, nonce, amount, orderID string) (*BraintreeChargeResult, error)
}

type BraintreeChargeResult struct {
	TransactionID string
	Status        string
}

type braintreeClientImpl struct {
	gateway *braintree.Braintree
}

func NewBraintreeClient(cfg *config.Braintree) BraintreeClient {
	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	gateway := braintree.New(
		env,
		cfg.MerchantID,
		cfg.PublicKey,
		cfg.PrivateKey,
	)

	return &braintreeClientImpl{
		gateway: gateway,
	}
}

func (c *braintreeClientImpl) GenerateClientToken(ctx context.Context) (string, error) {
	token, err := c.gateway.ClientToken().Generate(ctx)
	if err != nil {
		return "", fmt.Errorf("generate client token: %w", err)
	}
	return token, nil
}

func (c *braintreeClientImpl) ChargeNonce(ctx context.Context, nonce, amount, orderID string) (*BraintreeChargeResult, error) {
	decAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	// Braintree expects NewDecimal(unscaled, scale). For 2 decimal places:
	// "20.00" * 100 = 2000 -> braintree.NewDecimal(2000, 2)
	cents := decAmount.Mul(decimal.NewFromInt(100)).IntPart()
	btAmount := braintree.NewDecimal(cents, 2)

	req := &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             btAmount,
		PaymentMethodNonce: nonce,
		OrderId:            orderID,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true,
		},
	}

	tx, err := c.gateway.Transaction().Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("transaction creation failed: %w", err)
	}

	if tx.Status == braintree.TransactionStatusProcessorDeclined {
		return nil, fmt.Errorf("transaction declined by processor: %s", tx.ProcessorResponseText)
	}

	return &BraintreeChargeResult{
		TransactionID: tx.Id,
		Status:        string(tx.Status),
	}, nil
}
