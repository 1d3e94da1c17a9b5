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

type paypalAdapter struct {
	client       client.PaypalClient
	transactions repository.TransactionRepository
	creator      *OrderCreator
	brandName    string
	log          *logrus.Logger
}

func NewPaypalAdapter(
	paypalClient client.PaypalClient,
	transactions repository.TransactionRepository,
	creator *OrderCreator,
	brandName string,
	log *logrus.Logger,
) PaymentAdapter {
	return &paypalAdapter{
		client:       paypalClient,
		transactions: transactions,
		creator:      creator,
		brandName:    brandName,
		log:          log,
	}
}

func (a *paypalAdapter) Name() string {
	return model.PaymentMethodPayPal
}

func (a *paypalAdapter) InitiatePayment(ctx context.Context, data *InitiateData) (*InitiateResult, error) {
	lines, totalCents, err := priceCart(data.Cart)
	if err != nil {
		return nil, err
	}

	items := make([]client.PaypalOrderItem, len(lines))
	for i, line := range lines {
		items[i] = client.PaypalOrderItem{
			Name:      line.Title,
			SKU:       line.SKU,
			UnitValue: formatCents(line.UnitCents),
			Quantity:  line.Quantity,
		}
	}

	orderReq := &client.PaypalCreateOrderRequest{
		ReferenceID: data.Cart.ID,
		InvoiceID:   fmt.Sprintf("INV-%d-%s", time.Now().Unix(), data.Cart.ID),
		RequestID:   idempotencyKey(data.Cart),
		Currency:    data.Currency,
		TotalValue:  formatCents(totalCents),
		Items:       items,
		Shipping:    paypalShipping(data.ShippingAddress, data.BillingAddress, data.CustomerEmail),
		BrandName:   a.brandName,
		ReturnURL:   data.BaseURL + "/api/payments/paypal/return",
		CancelURL:   data.BaseURL + "/api/payments/paypal/cancel",
	}

	created, err := a.client.CreateOrder(ctx, orderReq)
	if err != nil {
		return nil, fmt.Errorf("paypal create order: %w", err)
	}

	txn := &model.Transaction{
		ID:             uuid.NewString(),
		PaymentMethod:  model.PaymentMethodPayPal,
		Status:         model.TransactionPending,
		AmountCents:    totalCents,
		Currency:       data.Currency,
		CartID:         data.Cart.ID,
		CustomerEmail:  data.CustomerEmail,
		PayPalOrderID:  created.OrderID,
		ProviderStatus: created.Status,
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
		"transaction_id":  txn.ID,
		"paypal_order_id": created.OrderID,
		"cart_id":         data.Cart.ID,
	}).Info("paypal order created, awaiting approval")

	return &InitiateResult{
		TransactionID:   txn.ID,
		CartID:          data.Cart.ID,
		ProviderOrderID: created.OrderID,
		ApprovalURL:     created.ApproveURL,
	}, nil
}

func (a *paypalAdapter) ConfirmOrder(ctx context.Context, data *ConfirmData) (*ConfirmResult, error) {
	if data.ProviderOrderID == "" {
		return nil, fmt.Errorf("%w: paypalOrderId", ErrMissingField)
	}
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

	// A retried confirm on an already-captured transaction must not hit the
	// provider again or create a second order.
	if txn.Status == model.TransactionSucceeded {
		return a.creator.alreadyFinalized(txn)
	}

	captured, err := a.client.CaptureOrder(ctx, data.ProviderOrderID)
	if err != nil {
		return nil, fmt.Errorf("paypal capture order: %w", err)
	}

	capture := firstCapture(captured)
	if capture == nil {
		return nil, fmt.Errorf("%w: paypal returned no capture, order status %s", ErrCaptureIncomplete, captured.Status)
	}
	if capture.Status != "COMPLETED" {
		// DECLINED and FAILED are terminal; PENDING may still complete and is
		// left for the webhook to reconcile.
		if capture.Status == "DECLINED" || capture.Status == "FAILED" {
			if err := a.transactions.MarkFailed(ctx, txn.ID, capture.Status); err != nil {
				a.log.WithError(err).WithField("transaction_id", txn.ID).
					Warn("could not record failed capture")
			}
		}
		return nil, fmt.Errorf("%w: capture status %s", ErrCaptureIncomplete, capture.Status)
	}

	meta := &captureMeta{
		ProviderStatus:   capture.Status,
		CapturedAt:       time.Now(),
		PayPalCaptureID:  capture.ID,
		PayPalPayerID:    captured.Payer.PayerID,
		PayPalPayerEmail: captured.Payer.Email,
	}

	return a.creator.Finalize(ctx, txn, meta, data.CustomerEmail, data.CustomerID)
}

func firstCapture(result *model.PayPalOrderResult) *model.PayPalCapture {
	if len(result.PurchaseUnits) == 0 {
		return nil
	}
	captures := result.PurchaseUnits[0].Payments.Captures
	if len(captures) == 0 {
		return nil
	}
	return &captures[0]
}

func paypalShipping(shipping, billing *model.Address, fallbackName string) *client.PaypalShipping {
	addr := shipping
	if addr.IsZero() {
		addr = billing
	}
	if addr.IsZero() {
		return nil
	}

	return &client.PaypalShipping{
		FullName:   addr.FullName(fallbackName),
		Line1:      addr.Line1,
		Line2:      addr.Line2,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
	}
}
