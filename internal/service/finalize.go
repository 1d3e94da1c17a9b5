package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-payments/internal/model"
	"storefront-payments/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// captureMeta is the provider metadata recorded on the transaction once the
// capture is confirmed terminal.
type captureMeta struct {
	ProviderStatus   string
	CapturedAt       time.Time
	PayPalCaptureID  string
	PayPalPayerID    string
	PayPalPayerEmail string
	BraintreeTxID    string
}

// OrderCreator is the only writer of orders. It materializes an order from
// the transaction's cart snapshot, marks the cart purchased and promotes the
// transaction to succeeded — all inside one database transaction, so a crash
// between capture and bookkeeping cannot leave a half-finished order.
type OrderCreator struct {
	db           *gorm.DB
	carts        repository.CartRepository
	transactions repository.TransactionRepository
	orders       repository.OrderRepository
	customers    repository.CustomerRepository
	log          *logrus.Logger
}

func NewOrderCreator(
	db *gorm.DB,
	carts repository.CartRepository,
	transactions repository.TransactionRepository,
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	log *logrus.Logger,
) *OrderCreator {
	return &OrderCreator{
		db:           db,
		carts:        carts,
		transactions: transactions,
		orders:       orders,
		customers:    customers,
		log:          log,
	}
}

// Finalize is idempotent per transaction id: confirming a transaction that
// already succeeded returns the existing order without creating anything.
func (f *OrderCreator) Finalize(ctx context.Context, txn *model.Transaction, meta *captureMeta, customerEmail, customerID string) (*ConfirmResult, error) {
	if txn.Status == model.TransactionSucceeded {
		return f.alreadyFinalized(txn)
	}

	if customerEmail == "" {
		customerEmail = txn.CustomerEmail
	}
	if customerEmail == "" {
		customerEmail = meta.PayPalPayerEmail
	}

	resolvedCustomerID, err := f.resolveCustomer(ctx, customerID, customerEmail)
	if err != nil {
		return nil, fmt.Errorf("resolve customer: %w", err)
	}

	cart, err := f.carts.FindByID(ctx, txn.CartID)
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", txn.CartID, err)
	}

	order := &model.Order{
		ID:              uuid.NewString(),
		CustomerID:      resolvedCustomerID,
		CustomerEmail:   customerEmail,
		Status:          model.OrderProcessing,
		AmountCents:     txn.AmountCents,
		Currency:        txn.Currency,
		ShippingAddress: txn.ShippingAddress,
		Items:           orderItemsFromCart(cart),
	}
	if order.ShippingAddress.IsZero() {
		order.ShippingAddress = txn.BillingAddress
	}

	err = f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := f.orders.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		if err := f.carts.MarkPurchased(ctx, tx, cart.ID, meta.CapturedAt); err != nil {
			return fmt.Errorf("mark cart purchased: %w", err)
		}

		updated := *txn
		updated.Status = model.TransactionSucceeded
		updated.OrderID = &order.ID
		updated.ProviderStatus = meta.ProviderStatus
		updated.CapturedAt = &meta.CapturedAt
		updated.PayPalCaptureID = meta.PayPalCaptureID
		updated.PayPalPayerID = meta.PayPalPayerID
		updated.PayPalPayerEmail = meta.PayPalPayerEmail
		updated.BraintreeTransactionID = meta.BraintreeTxID

		if err := f.transactions.MarkSucceeded(ctx, tx, &updated); err != nil {
			return fmt.Errorf("mark transaction succeeded: %w", err)
		}
		return nil
	})

	if err != nil {
		// A concurrent confirm (second tab, webhook) may have finished first.
		// If this transaction is succeeded by now, hand back its order.
		if errors.Is(err, repository.ErrCartPurchased) || errors.Is(err, repository.ErrSucceededExists) {
			if current, lookupErr := f.transactions.FindByID(ctx, txn.ID); lookupErr == nil &&
				current.Status == model.TransactionSucceeded {
				return f.alreadyFinalized(current)
			}
		}
		return nil, err
	}

	f.log.WithFields(logrus.Fields{
		"order_id":       order.ID,
		"transaction_id": txn.ID,
		"cart_id":        cart.ID,
		"payment_method": txn.PaymentMethod,
	}).Info("order created from confirmed payment")

	return &ConfirmResult{OrderID: order.ID, TransactionID: txn.ID}, nil
}

func (f *OrderCreator) alreadyFinalized(txn *model.Transaction) (*ConfirmResult, error) {
	if txn.OrderID == nil {
		return nil, fmt.Errorf("transaction %s succeeded but has no order", txn.ID)
	}
	return &ConfirmResult{OrderID: *txn.OrderID, TransactionID: txn.ID}, nil
}

// resolveCustomer prefers the authenticated user, then an existing account
// matching the email. Guests are left unset and keyed by email alone. A token
// subject with no backing account is treated as stale and ignored.
func (f *OrderCreator) resolveCustomer(ctx context.Context, customerID, email string) (*string, error) {
	if customerID != "" {
		customer, err := f.customers.FindByID(ctx, customerID)
		if err == nil {
			return &customer.ID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if email == "" {
		return nil, nil
	}

	customer, err := f.customers.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, nil
	}
	return &customer.ID, nil
}

func orderItemsFromCart(cart *model.Cart) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		unit := int64(0)
		title := item.ProductID
		if item.Product != nil {
			unit = item.Product.PriceCents
			title = item.Product.Title
		}
		if item.Variant != nil {
			unit = item.Variant.PriceCents
		}

		items = append(items, model.OrderItem{
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			Title:          title,
			Quantity:       item.Quantity,
			UnitPriceCents: unit,
			Currency:       cart.Currency,
		})
	}
	return items
}
